package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/imamik/srxgate/internal/config"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes the config to a YAML file with a descriptive header.
// If fullOutput is false, only values that differ from the defaults are written.
// Secrets are never written.
func WriteConfig(cfg *config.Config, outputPath string, fullOutput bool) error {
	var yamlBytes []byte
	var err error

	if fullOutput {
		yamlBytes, err = yaml.Marshal(withoutSecrets(cfg))
	} else {
		yamlBytes, err = yaml.Marshal(buildMinimalConfig(cfg))
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath, fullOutput, cfg.Usage.Archive.Enabled()))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// MinimalConfig represents the minimal configuration for YAML output.
type MinimalConfig struct {
	Appliance  MinimalApplianceConfig  `yaml:"appliance"`
	Interfaces config.InterfacesConfig `yaml:"interfaces"`
	Zones      config.ZonesConfig      `yaml:"zones"`
	NAT        *config.NATConfig       `yaml:"nat,omitempty"`
	Usage      *MinimalUsageConfig     `yaml:"usage,omitempty"`
	VPN        *config.VPNConfig       `yaml:"vpn,omitempty"`
	Retry      *MinimalRetryConfig     `yaml:"retry,omitempty"`
	Timeouts   *config.Timeouts        `yaml:"timeouts,omitempty"`
}

// MinimalApplianceConfig contains the appliance endpoint without secrets.
type MinimalApplianceConfig struct {
	Address    string `yaml:"address"`
	Port       int    `yaml:"port,omitempty"`
	Transport  string `yaml:"transport,omitempty"`
	Username   string `yaml:"username"`
	SSHHostKey string `yaml:"ssh_host_key,omitempty"`
}

// MinimalUsageConfig contains customized usage settings.
type MinimalUsageConfig struct {
	InputFilter  string                `yaml:"input_filter,omitempty"`
	OutputFilter string                `yaml:"output_filter,omitempty"`
	PollInterval time.Duration         `yaml:"poll_interval,omitempty"`
	Archive      *MinimalArchiveConfig `yaml:"archive,omitempty"`
}

// MinimalArchiveConfig contains the archive bucket without credentials.
type MinimalArchiveConfig struct {
	Bucket   string `yaml:"bucket"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// MinimalRetryConfig contains the retry count when it is not the default.
type MinimalRetryConfig struct {
	MaxRetries int `yaml:"max_retries"`
}

// buildMinimalConfig creates a minimal config from the full config.
func buildMinimalConfig(cfg *config.Config) *MinimalConfig {
	minCfg := &MinimalConfig{
		Appliance: MinimalApplianceConfig{
			Address:    cfg.Appliance.Address,
			Username:   cfg.Appliance.Username,
			SSHHostKey: cfg.Appliance.SSHHostKey,
		},
		Interfaces: cfg.Interfaces,
		Zones:      cfg.Zones,
	}

	// Transport and port
	if cfg.Appliance.Transport != "" && cfg.Appliance.Transport != config.TransportTCP {
		minCfg.Appliance.Transport = cfg.Appliance.Transport
	}
	if cfg.Appliance.Port != 0 && fmt.Sprint(cfg.Appliance.Port) != defaultPort(cfg.Appliance.Transport) {
		minCfg.Appliance.Port = cfg.Appliance.Port
	}

	// NAT - only if any rule set is renamed
	nat := config.NATConfig{
		StaticRuleSet:      nonDefault(cfg.NAT.StaticRuleSet, config.DefaultStaticRuleSet),
		DestinationRuleSet: nonDefault(cfg.NAT.DestinationRuleSet, config.DefaultDestinationRuleSet),
		SourceRuleSet:      nonDefault(cfg.NAT.SourceRuleSet, config.DefaultSourceRuleSet),
	}
	if nat != (config.NATConfig{}) {
		minCfg.NAT = &nat
	}

	// Usage
	u := MinimalUsageConfig{
		InputFilter:  nonDefault(cfg.Usage.InputFilter, config.DefaultInputFilter),
		OutputFilter: nonDefault(cfg.Usage.OutputFilter, config.DefaultOutputFilter),
	}
	if cfg.Usage.PollInterval != config.DefaultPollInterval {
		u.PollInterval = cfg.Usage.PollInterval
	}
	if a := cfg.Usage.Archive; a.Enabled() {
		u.Archive = &MinimalArchiveConfig{
			Bucket:   a.Bucket,
			Endpoint: a.Endpoint,
			Region:   a.Region,
			Prefix:   nonDefault(a.Prefix, config.DefaultArchivePrefix),
		}
	}
	if u != (MinimalUsageConfig{}) {
		minCfg.Usage = &u
	}

	if dns := nonDefault(cfg.VPN.DNSServer, config.DefaultDNSServer); dns != "" {
		minCfg.VPN = &config.VPNConfig{DNSServer: dns}
	}

	if n := cfg.Retry.Retries(); n != config.DefaultMaxRetries {
		minCfg.Retry = &MinimalRetryConfig{MaxRetries: n}
	}

	// Timeouts
	t := config.Timeouts{}
	if cfg.Timeouts.Dial != config.DefaultDialTimeout {
		t.Dial = cfg.Timeouts.Dial
	}
	if cfg.Timeouts.Read != config.DefaultReadTimeout {
		t.Read = cfg.Timeouts.Read
	}
	if t != (config.Timeouts{}) {
		minCfg.Timeouts = &t
	}

	return minCfg
}

func nonDefault(value, def string) string {
	if value == def {
		return ""
	}
	return value
}

func withoutSecrets(cfg *config.Config) *config.Config {
	out := *cfg
	out.Appliance.Password = ""
	out.Usage.Archive.AccessKey = ""
	out.Usage.Archive.SecretKey = ""
	return &out
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string, fullOutput, archive bool) string {
	mode := "minimal"
	note := "\n# Note: This is a minimal config. Use --full flag for all options."
	if fullOutput {
		mode = "full"
		note = ""
	}

	env := "#   " + config.EnvAppliancePassword + " - Appliance login password\n"
	exports := "#   export " + config.EnvAppliancePassword + "=<password>\n"
	if archive {
		env += "#   " + config.EnvArchiveAccessKey + " - Archive bucket access key\n" +
			"#   " + config.EnvArchiveSecretKey + " - Archive bucket secret key\n"
	}

	return fmt.Sprintf(`# srxgate configuration
# Generated by: srxgate init
# Generated at: %s
# Output mode: %s%s
#
# Required environment variables:
%s#
# Usage:
%s#   srxgate doctor -c %s
`, time.Now().Format(time.RFC3339), mode, note, env, exports, outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation using a huh prompt.
func defaultConfirmOverwrite(path string) (bool, error) {
	var overwrite bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("File already exists: %s", path)).
		Description("Overwrite?").
		Value(&overwrite).
		Run()
	return overwrite, err
}
