package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Appliance
	Address   string
	Transport string
	Port      string
	Username  string
	// SSHHostKey is only asked for with the ssh transport.
	SSHHostKey string

	// Interfaces and zones
	PublicInterface  string
	PrivateInterface string
	PublicZone       string
	PrivateZone      string

	// Retry
	MaxRetries int

	// Usage archive
	EnableArchive   bool
	ArchiveBucket   string
	ArchiveEndpoint string
	ArchiveRegion   string

	// Advanced options (only set in advanced mode)
	AdvancedOptions *AdvancedOptions
}

// AdvancedOptions holds settings that normally keep their defaults.
type AdvancedOptions struct {
	// NAT rule sets
	StaticRuleSet      string
	DestinationRuleSet string
	SourceRuleSet      string

	// Usage
	InputFilter  string
	OutputFilter string
	PollInterval string

	// Timeouts
	DialTimeout string
	ReadTimeout string

	// VPN
	DNSServer string
}

// RunWizard runs the interactive configuration wizard.
// If advanced is true, additional configuration options are shown.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context, advanced bool) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runApplianceGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("appliance: %w", err)
	}

	if err := runNetworkGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	if err := runRetryGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("retry: %w", err)
	}

	if err := runArchiveGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	if advanced {
		advOpts := newAdvancedOptions()

		if err := runNATGroup(ctx, advOpts); err != nil {
			return nil, fmt.Errorf("nat: %w", err)
		}

		if err := runUsageGroup(ctx, advOpts); err != nil {
			return nil, fmt.Errorf("usage: %w", err)
		}

		if err := runTimeoutsGroup(ctx, advOpts); err != nil {
			return nil, fmt.Errorf("timeouts: %w", err)
		}

		result.AdvancedOptions = advOpts
	}

	return result, nil
}
