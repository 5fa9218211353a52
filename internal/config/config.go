package config

import (
	"net"
	"strconv"
	"time"
)

// Transport names.
const (
	TransportTCP = "tcp"
	TransportSSH = "ssh"
)

// DefaultConfigFilename is the default configuration filename.
const DefaultConfigFilename = "srxgate.yaml"

// Config is the complete driver configuration.
type Config struct {
	Appliance  ApplianceConfig  `yaml:"appliance"`
	Interfaces InterfacesConfig `yaml:"interfaces"`
	Zones      ZonesConfig      `yaml:"zones"`
	NAT        NATConfig        `yaml:"nat"`
	Usage      UsageConfig      `yaml:"usage"`
	VPN        VPNConfig        `yaml:"vpn"`
	Retry      RetryConfig      `yaml:"retry"`
	Timeouts   Timeouts         `yaml:"timeouts"`
}

// ApplianceConfig describes how to reach and authenticate to the appliance.
type ApplianceConfig struct {
	Address   string `yaml:"address"`
	Port      int    `yaml:"port,omitempty"`
	Transport string `yaml:"transport,omitempty"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password,omitempty"`

	// SSHHostKey pins the appliance host key (authorized_keys format).
	// Only used with the ssh transport; empty disables verification.
	SSHHostKey string `yaml:"ssh_host_key,omitempty"`
}

// Endpoint returns the host:port the transport dials.
func (a ApplianceConfig) Endpoint() string {
	return net.JoinHostPort(a.Address, strconv.Itoa(a.Port))
}

// InterfacesConfig names the physical interfaces facing the public and guest networks.
type InterfacesConfig struct {
	// Public is the logical public interface, e.g. "ge-0/0/0.0". Proxy-ARP
	// entries and usage filters are attached here.
	Public string `yaml:"public"`
	// Private is the physical trunk carrying guest VLANs, e.g. "ge-0/0/1".
	Private string `yaml:"private"`
}

// ZonesConfig names the security zones on either side of the appliance.
type ZonesConfig struct {
	Public  string `yaml:"public"`
	Private string `yaml:"private"`
}

// NATConfig names the rule sets NAT rules are created in.
type NATConfig struct {
	StaticRuleSet      string `yaml:"static_rule_set,omitempty"`
	DestinationRuleSet string `yaml:"destination_rule_set,omitempty"`
	SourceRuleSet      string `yaml:"source_rule_set,omitempty"`
}

// UsageConfig configures traffic accounting.
type UsageConfig struct {
	InputFilter  string        `yaml:"input_filter,omitempty"`
	OutputFilter string        `yaml:"output_filter,omitempty"`
	PollInterval time.Duration `yaml:"poll_interval,omitempty"`
	Archive      ArchiveConfig `yaml:"archive,omitempty"`
}

// ArchiveConfig configures the optional S3-compatible usage archive.
// The archive is disabled when Bucket is empty.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	Region    string `yaml:"region,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// Enabled reports whether usage snapshots are archived.
func (a ArchiveConfig) Enabled() bool {
	return a.Bucket != ""
}

// VPNConfig configures remote-access VPN objects.
type VPNConfig struct {
	DNSServer string `yaml:"dns_server,omitempty"`
}

// RetryConfig controls the retry/reconnect supervisor.
type RetryConfig struct {
	// MaxRetries is the number of re-executions after a failed attempt.
	// Zero fails fast. Nil means the default.
	MaxRetries *int          `yaml:"max_retries,omitempty"`
	Delay      time.Duration `yaml:"delay,omitempty"`
}

// Retries returns the effective retry count.
func (r RetryConfig) Retries() int {
	if r.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *r.MaxRetries
}

// Timeouts holds session timeouts.
type Timeouts struct {
	Dial time.Duration `yaml:"dial,omitempty"`
	Read time.Duration `yaml:"read,omitempty"`
}
