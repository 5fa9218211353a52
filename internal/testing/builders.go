package testing

import (
	"time"

	"github.com/imamik/srxgate/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with sensible defaults.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Appliance: config.ApplianceConfig{
				Address:   "127.0.0.1",
				Transport: config.TransportTCP,
				Username:  "admin",
				Password:  "secret",
			},
			Interfaces: config.InterfacesConfig{
				Public:  "ge-0/0/0.0",
				Private: "ge-0/0/1",
			},
			Zones: config.ZonesConfig{
				Public:  "untrust",
				Private: "trust",
			},
			Timeouts: config.Timeouts{
				Dial: 2 * time.Second,
				Read: 2 * time.Second,
			},
		},
	}
}

// WithAppliance sets the appliance address and port.
func (b *ConfigBuilder) WithAppliance(address string, port int) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Appliance.Address = address
	newBuilder.cfg.Appliance.Port = port
	return newBuilder
}

// WithTransport sets the transport (tcp or ssh).
func (b *ConfigBuilder) WithTransport(transport string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Appliance.Transport = transport
	return newBuilder
}

// WithCredentials sets the login credentials.
func (b *ConfigBuilder) WithCredentials(username, password string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Appliance.Username = username
	newBuilder.cfg.Appliance.Password = password
	return newBuilder
}

// WithInterfaces sets the public and private interface names.
func (b *ConfigBuilder) WithInterfaces(public, private string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Interfaces = config.InterfacesConfig{Public: public, Private: private}
	return newBuilder
}

// WithZones sets the public and private zone names.
func (b *ConfigBuilder) WithZones(public, private string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Zones = config.ZonesConfig{Public: public, Private: private}
	return newBuilder
}

// WithMaxRetries sets the supervisor retry count.
func (b *ConfigBuilder) WithMaxRetries(n int) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Retry.MaxRetries = &n
	return newBuilder
}

// WithReadTimeout sets the session read timeout.
func (b *ConfigBuilder) WithReadTimeout(d time.Duration) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Timeouts.Read = d
	return newBuilder
}

// WithArchive enables the usage archive.
func (b *ConfigBuilder) WithArchive(bucket, endpoint string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Usage.Archive = config.ArchiveConfig{
		Bucket:    bucket,
		Endpoint:  endpoint,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
	}
	return newBuilder
}

// Build returns the constructed config with defaults applied.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	cfg.ApplyDefaults()
	return &cfg
}

// clone creates a deep copy of the builder for immutability.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	newCfg := b.cfg
	if b.cfg.Retry.MaxRetries != nil {
		n := *b.cfg.Retry.MaxRetries
		newCfg.Retry.MaxRetries = &n
	}
	return &ConfigBuilder{cfg: newCfg}
}

// MinimalConfig returns a minimal valid config for simple tests.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}
