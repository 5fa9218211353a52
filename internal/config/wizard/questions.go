package wizard

import (
	"context"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/imamik/srxgate/internal/config"
)

var (
	// hostnameRegex accepts RFC 1123 hostnames.
	hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

	// interfaceRegex accepts Junos interface names with an optional unit.
	interfaceRegex = regexp.MustCompile(`^[a-z]{2,4}-\d+/\d+/\d+(?:\.\d+)?$`)

	zoneRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
)

// runApplianceGroup prompts for the appliance endpoint and login.
func runApplianceGroup(ctx context.Context, result *WizardResult) error {
	result.Transport = config.TransportTCP

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Appliance Address").
				Description("IP address or hostname of the SRX").
				Placeholder("192.0.2.1").
				Value(&result.Address).
				Validate(validateAddress),
			huh.NewSelect[string]().
				Title("Transport").
				Description("How the Junoscript session is carried").
				Options(TransportOptions...).
				Value(&result.Transport),
			huh.NewInput().
				Title("Username").
				Description("The password is read from SRXGATE_APPLIANCE_PASSWORD").
				Placeholder("srxgate").
				Value(&result.Username).
				Validate(validateRequired(errUsernameRequired)),
		).Title("Appliance"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	result.Port = defaultPort(result.Transport)

	fields := []huh.Field{
		huh.NewInput().
			Title("Port").
			Value(&result.Port).
			Validate(validatePort),
	}
	if result.Transport == config.TransportSSH {
		fields = append(fields, huh.NewInput().
			Title("SSH Host Key (Optional)").
			Description("authorized_keys line of the appliance host key. Leave empty to skip verification.").
			Value(&result.SSHHostKey))
	}

	return huh.NewForm(huh.NewGroup(fields...).Title("Connection")).RunWithContext(ctx)
}

// runNetworkGroup prompts for the interfaces and zones.
func runNetworkGroup(ctx context.Context, result *WizardResult) error {
	result.PublicZone = "untrust"
	result.PrivateZone = "trust"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Public Interface").
				Description("Logical interface facing the internet; carries proxy-ARP and usage filters").
				Placeholder("ge-0/0/0.0").
				Value(&result.PublicInterface).
				Validate(validateInterface),
			huh.NewInput().
				Title("Private Interface").
				Description("Physical trunk carrying the guest VLANs").
				Placeholder("ge-0/0/1").
				Value(&result.PrivateInterface).
				Validate(validateInterface),
		).Title("Interfaces"),
		huh.NewGroup(
			huh.NewInput().
				Title("Public Zone").
				Value(&result.PublicZone).
				Validate(validateZone),
			huh.NewInput().
				Title("Private Zone").
				Value(&result.PrivateZone).
				Validate(validateZone),
		).Title("Security Zones"),
	).RunWithContext(ctx)
}

// runRetryGroup prompts for the number of re-executions after a failure.
func runRetryGroup(ctx context.Context, result *WizardResult) error {
	result.MaxRetries = config.DefaultMaxRetries

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Max Retries").
				Description("Re-executions of a failed command after reconnecting").
				Options(MaxRetriesOptions...).
				Value(&result.MaxRetries),
		).Title("Retry"),
	).RunWithContext(ctx)
}

// runArchiveGroup asks whether usage snapshots go to object storage.
func runArchiveGroup(ctx context.Context, result *WizardResult) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Archive Usage Snapshots?").
				Description("Store every usage poll as JSON in an S3-compatible bucket").
				Value(&result.EnableArchive),
		).Title("Usage Archive"),
	).RunWithContext(ctx)
	if err != nil || !result.EnableArchive {
		return err
	}

	result.ArchiveRegion = "us-east-1"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Bucket").
				Placeholder("srxgate-usage").
				Value(&result.ArchiveBucket).
				Validate(validateRequired(errBucketRequired)),
			huh.NewInput().
				Title("Endpoint (Optional)").
				Description("Leave empty for AWS S3").
				Placeholder("https://fsn1.your-objectstorage.com").
				Value(&result.ArchiveEndpoint),
			huh.NewSelect[string]().
				Title("Region").
				Options(ArchiveRegionOptions...).
				Value(&result.ArchiveRegion),
		).Title("Archive Bucket").
			Description("Credentials are read from SRXGATE_ARCHIVE_ACCESS_KEY and SRXGATE_ARCHIVE_SECRET_KEY"),
	).RunWithContext(ctx)
}

func newAdvancedOptions() *AdvancedOptions {
	return &AdvancedOptions{
		StaticRuleSet:      config.DefaultStaticRuleSet,
		DestinationRuleSet: config.DefaultDestinationRuleSet,
		SourceRuleSet:      config.DefaultSourceRuleSet,
		InputFilter:        config.DefaultInputFilter,
		OutputFilter:       config.DefaultOutputFilter,
		PollInterval:       config.DefaultPollInterval.String(),
		DialTimeout:        config.DefaultDialTimeout.String(),
		ReadTimeout:        config.DefaultReadTimeout.String(),
		DNSServer:          config.DefaultDNSServer,
	}
}

// runNATGroup prompts for the NAT rule set names.
func runNATGroup(ctx context.Context, opts *AdvancedOptions) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Static NAT Rule Set").
				Value(&opts.StaticRuleSet).
				Validate(validateZone),
			huh.NewInput().
				Title("Destination NAT Rule Set").
				Value(&opts.DestinationRuleSet).
				Validate(validateZone),
			huh.NewInput().
				Title("Source NAT Rule Set").
				Value(&opts.SourceRuleSet).
				Validate(validateZone),
		).Title("NAT"),
	).RunWithContext(ctx)
}

// runUsageGroup prompts for the accounting filters and poll interval.
func runUsageGroup(ctx context.Context, opts *AdvancedOptions) error {
	opts.PollInterval = "5m"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Input Filter").
				Value(&opts.InputFilter).
				Validate(validateZone),
			huh.NewInput().
				Title("Output Filter").
				Value(&opts.OutputFilter).
				Validate(validateZone),
			huh.NewSelect[string]().
				Title("Poll Interval").
				Options(PollIntervalOptions...).
				Value(&opts.PollInterval),
			huh.NewInput().
				Title("VPN DNS Server").
				Description("Handed to remote-access VPN clients").
				Value(&opts.DNSServer).
				Validate(validateDNSServer),
		).Title("Usage and VPN"),
	).RunWithContext(ctx)
}

// runTimeoutsGroup prompts for session timeouts.
func runTimeoutsGroup(ctx context.Context, opts *AdvancedOptions) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Dial Timeout").
				Value(&opts.DialTimeout).
				Validate(validateDuration),
			huh.NewInput().
				Title("Read Timeout").
				Description("Longest wait for one reply before the session is dropped").
				Value(&opts.ReadTimeout).
				Validate(validateDuration),
		).Title("Timeouts"),
	).RunWithContext(ctx)
}

func validateRequired(errEmpty error) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errEmpty
		}
		return nil
	}
}

// validateAddress accepts an IP address or a hostname.
func validateAddress(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errAddressRequired
	}
	if _, err := netip.ParseAddr(s); err == nil {
		return nil
	}
	if len(s) > 253 || !hostnameRegex.MatchString(s) {
		return errAddressInvalid
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 65535 {
		return errPortInvalid
	}
	return nil
}

func validateInterface(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errInterfaceRequired
	}
	if !interfaceRegex.MatchString(s) {
		return errInterfaceInvalid
	}
	return nil
}

func validateZone(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errZoneRequired
	}
	if !zoneRegex.MatchString(s) {
		return errZoneInvalid
	}
	return nil
}

func validateDNSServer(s string) error {
	if _, err := netip.ParseAddr(strings.TrimSpace(s)); err != nil {
		return errDNSServerInvalid
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return errDurationInvalid
	}
	return nil
}
