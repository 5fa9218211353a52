package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultTCPPort            = 3221
	DefaultSSHPort            = 22
	DefaultMaxRetries         = 1
	DefaultReadTimeout        = 30 * time.Second
	DefaultDialTimeout        = 10 * time.Second
	DefaultPollInterval       = 5 * time.Minute
	DefaultDNSServer          = "8.8.8.8"
	DefaultStaticRuleSet      = "static-nat"
	DefaultDestinationRuleSet = "destination-nat"
	DefaultSourceRuleSet      = "source-nat"
	DefaultInputFilter        = "usage-input"
	DefaultOutputFilter       = "usage-output"
	DefaultArchivePrefix      = "usage"
)

// ApplyDefaults fills every unset optional field.
func (c *Config) ApplyDefaults() {
	if c.Appliance.Transport == "" {
		c.Appliance.Transport = TransportTCP
	}
	if c.Appliance.Port == 0 {
		if c.Appliance.Transport == TransportSSH {
			c.Appliance.Port = DefaultSSHPort
		} else {
			c.Appliance.Port = DefaultTCPPort
		}
	}
	if c.NAT.StaticRuleSet == "" {
		c.NAT.StaticRuleSet = DefaultStaticRuleSet
	}
	if c.NAT.DestinationRuleSet == "" {
		c.NAT.DestinationRuleSet = DefaultDestinationRuleSet
	}
	if c.NAT.SourceRuleSet == "" {
		c.NAT.SourceRuleSet = DefaultSourceRuleSet
	}
	if c.Usage.InputFilter == "" {
		c.Usage.InputFilter = DefaultInputFilter
	}
	if c.Usage.OutputFilter == "" {
		c.Usage.OutputFilter = DefaultOutputFilter
	}
	if c.Usage.PollInterval == 0 {
		c.Usage.PollInterval = DefaultPollInterval
	}
	if c.Usage.Archive.Enabled() && c.Usage.Archive.Prefix == "" {
		c.Usage.Archive.Prefix = DefaultArchivePrefix
	}
	if c.VPN.DNSServer == "" {
		c.VPN.DNSServer = DefaultDNSServer
	}
	if c.Retry.MaxRetries == nil {
		n := DefaultMaxRetries
		c.Retry.MaxRetries = &n
	}
	if c.Timeouts.Dial == 0 {
		c.Timeouts.Dial = DefaultDialTimeout
	}
	if c.Timeouts.Read == 0 {
		c.Timeouts.Read = DefaultReadTimeout
	}
}
