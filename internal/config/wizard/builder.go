package wizard

import (
	"strconv"
	"strings"
	"time"

	"github.com/imamik/srxgate/internal/config"
)

// BuildConfig creates a Config struct from the wizard result.
// Secrets are never part of the result; they come from the environment.
func BuildConfig(result *WizardResult) *config.Config {
	cfg := &config.Config{
		Appliance: config.ApplianceConfig{
			Address:    strings.TrimSpace(result.Address),
			Transport:  result.Transport,
			Username:   strings.TrimSpace(result.Username),
			SSHHostKey: strings.TrimSpace(result.SSHHostKey),
		},
		Interfaces: config.InterfacesConfig{
			Public:  strings.TrimSpace(result.PublicInterface),
			Private: strings.TrimSpace(result.PrivateInterface),
		},
		Zones: config.ZonesConfig{
			Public:  strings.TrimSpace(result.PublicZone),
			Private: strings.TrimSpace(result.PrivateZone),
		},
	}

	if port, err := strconv.Atoi(strings.TrimSpace(result.Port)); err == nil {
		cfg.Appliance.Port = port
	}

	retries := result.MaxRetries
	cfg.Retry.MaxRetries = &retries

	if result.EnableArchive {
		cfg.Usage.Archive = config.ArchiveConfig{
			Bucket:   strings.TrimSpace(result.ArchiveBucket),
			Endpoint: strings.TrimSpace(result.ArchiveEndpoint),
			Region:   result.ArchiveRegion,
		}
	}

	if result.AdvancedOptions != nil {
		applyAdvancedOptions(cfg, result.AdvancedOptions)
	}

	cfg.ApplyDefaults()
	return cfg
}

// applyAdvancedOptions applies advanced options to the config.
func applyAdvancedOptions(cfg *config.Config, opts *AdvancedOptions) {
	cfg.NAT = config.NATConfig{
		StaticRuleSet:      opts.StaticRuleSet,
		DestinationRuleSet: opts.DestinationRuleSet,
		SourceRuleSet:      opts.SourceRuleSet,
	}
	cfg.Usage.InputFilter = opts.InputFilter
	cfg.Usage.OutputFilter = opts.OutputFilter
	cfg.Usage.PollInterval = parseDuration(opts.PollInterval)
	cfg.Timeouts.Dial = parseDuration(opts.DialTimeout)
	cfg.Timeouts.Read = parseDuration(opts.ReadTimeout)
	cfg.VPN.DNSServer = strings.TrimSpace(opts.DNSServer)
}

// parseDuration returns zero for unparsable input so the default applies.
func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return 0
	}
	return d
}
