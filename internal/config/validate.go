package config

import (
	"errors"
	"fmt"
	"net/netip"
)

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Appliance.Address == "" {
		errs = append(errs, errors.New("appliance.address is required"))
	}
	if c.Appliance.Username == "" {
		errs = append(errs, errors.New("appliance.username is required"))
	}
	switch c.Appliance.Transport {
	case TransportTCP, TransportSSH:
	default:
		errs = append(errs, fmt.Errorf("appliance.transport %q must be %q or %q", c.Appliance.Transport, TransportTCP, TransportSSH))
	}
	if c.Appliance.Port < 1 || c.Appliance.Port > 65535 {
		errs = append(errs, fmt.Errorf("appliance.port %d is out of range", c.Appliance.Port))
	}

	if c.Interfaces.Public == "" {
		errs = append(errs, errors.New("interfaces.public is required"))
	}
	if c.Interfaces.Private == "" {
		errs = append(errs, errors.New("interfaces.private is required"))
	}
	if c.Zones.Public == "" {
		errs = append(errs, errors.New("zones.public is required"))
	}
	if c.Zones.Private == "" {
		errs = append(errs, errors.New("zones.private is required"))
	}
	if c.Zones.Public != "" && c.Zones.Public == c.Zones.Private {
		errs = append(errs, errors.New("zones.public and zones.private must differ"))
	}

	if c.Retry.MaxRetries != nil && *c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_retries must not be negative, got %d", *c.Retry.MaxRetries))
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, errors.New("retry.delay must not be negative"))
	}
	if c.Timeouts.Read <= 0 {
		errs = append(errs, errors.New("timeouts.read must be positive"))
	}
	if c.Timeouts.Dial <= 0 {
		errs = append(errs, errors.New("timeouts.dial must be positive"))
	}
	if c.Usage.PollInterval <= 0 {
		errs = append(errs, errors.New("usage.poll_interval must be positive"))
	}

	if c.VPN.DNSServer != "" {
		if _, err := netip.ParseAddr(c.VPN.DNSServer); err != nil {
			errs = append(errs, fmt.Errorf("vpn.dns_server: %w", err))
		}
	}

	if a := c.Usage.Archive; a.Enabled() {
		if a.Region == "" {
			errs = append(errs, errors.New("usage.archive.region is required when a bucket is set"))
		}
		if a.AccessKey == "" || a.SecretKey == "" {
			errs = append(errs, errors.New("usage.archive access_key and secret_key are required when a bucket is set"))
		}
	}

	return errors.Join(errs...)
}
