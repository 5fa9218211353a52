package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/internal/config"
)

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"ipv4", "192.0.2.1", nil},
		{"ipv6", "2001:db8::1", nil},
		{"hostname", "srx1.example.net", nil},
		{"short hostname", "srx1", nil},
		{"empty", "", errAddressRequired},
		{"whitespace", "   ", errAddressRequired},
		{"underscore", "srx_1", errAddressInvalid},
		{"trailing hyphen", "srx-", errAddressInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantErr, validateAddress(tt.input))
		})
	}
}

func TestValidatePort(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validatePort("3221"))
	assert.NoError(t, validatePort(" 22 "))
	for _, bad := range []string{"", "0", "65536", "ssh", "-1"} {
		assert.Equal(t, errPortInvalid, validatePort(bad), bad)
	}
}

func TestValidateInterface(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		wantErr error
	}{
		{"ge-0/0/0", nil},
		{"ge-0/0/0.0", nil},
		{"xe-1/2/3.100", nil},
		{"reth-0/0/0", nil},
		{"", errInterfaceRequired},
		{"eth0", errInterfaceInvalid},
		{"ge-0/0", errInterfaceInvalid},
		{"ge-0/0/0.", errInterfaceInvalid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wantErr, validateInterface(tt.input), tt.input)
	}
}

func TestValidateZone(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateZone("untrust"))
	assert.NoError(t, validateZone("guest_zone-1"))
	assert.Equal(t, errZoneRequired, validateZone(""))
	assert.Equal(t, errZoneInvalid, validateZone("-trust"))
	assert.Equal(t, errZoneInvalid, validateZone("has space"))
}

func TestValidateDNSServerAndDuration(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateDNSServer("8.8.8.8"))
	assert.Equal(t, errDNSServerInvalid, validateDNSServer("dns.google"))

	assert.NoError(t, validateDuration("30s"))
	assert.Equal(t, errDurationInvalid, validateDuration("0s"))
	assert.Equal(t, errDurationInvalid, validateDuration("soon"))
}

func TestValidateRequired(t *testing.T) {
	t.Parallel()

	v := validateRequired(errUsernameRequired)
	assert.NoError(t, v("admin"))
	assert.Equal(t, errUsernameRequired, v(" "))
}

func basicResult() *WizardResult {
	return &WizardResult{
		Address:          " 192.0.2.1 ",
		Transport:        config.TransportTCP,
		Port:             "3221",
		Username:         "srxgate",
		PublicInterface:  "ge-0/0/0.0",
		PrivateInterface: "ge-0/0/1",
		PublicZone:       "untrust",
		PrivateZone:      "trust",
		MaxRetries:       1,
	}
}

func TestBuildConfig_Basic(t *testing.T) {
	t.Parallel()

	cfg := BuildConfig(basicResult())

	assert.Equal(t, "192.0.2.1", cfg.Appliance.Address)
	assert.Equal(t, 3221, cfg.Appliance.Port)
	assert.Equal(t, "ge-0/0/0.0", cfg.Interfaces.Public)
	assert.Equal(t, "trust", cfg.Zones.Private)
	assert.Equal(t, 1, cfg.Retry.Retries())
	assert.Equal(t, config.DefaultStaticRuleSet, cfg.NAT.StaticRuleSet)
	assert.False(t, cfg.Usage.Archive.Enabled())
	assert.Empty(t, cfg.Appliance.Password)
	require.NoError(t, cfg.Validate())
}

func TestBuildConfig_ZeroRetries(t *testing.T) {
	t.Parallel()

	r := basicResult()
	r.MaxRetries = 0
	cfg := BuildConfig(r)
	require.NotNil(t, cfg.Retry.MaxRetries)
	assert.Equal(t, 0, cfg.Retry.Retries())
}

func TestBuildConfig_SSHAndArchive(t *testing.T) {
	t.Parallel()

	r := basicResult()
	r.Transport = config.TransportSSH
	r.Port = "22"
	r.SSHHostKey = "ssh-ed25519 AAAA"
	r.EnableArchive = true
	r.ArchiveBucket = "usage"
	r.ArchiveRegion = "fsn1"
	r.ArchiveEndpoint = "https://fsn1.your-objectstorage.com"

	cfg := BuildConfig(r)
	assert.Equal(t, config.TransportSSH, cfg.Appliance.Transport)
	assert.Equal(t, 22, cfg.Appliance.Port)
	assert.Equal(t, "ssh-ed25519 AAAA", cfg.Appliance.SSHHostKey)
	assert.True(t, cfg.Usage.Archive.Enabled())
	assert.Equal(t, "fsn1", cfg.Usage.Archive.Region)
	assert.Equal(t, config.DefaultArchivePrefix, cfg.Usage.Archive.Prefix)
}

func TestBuildConfig_Advanced(t *testing.T) {
	t.Parallel()

	r := basicResult()
	opts := newAdvancedOptions()
	opts.StaticRuleSet = "guest-static"
	opts.PollInterval = "1m"
	opts.ReadTimeout = "garbage"
	opts.DNSServer = "1.1.1.1"
	r.AdvancedOptions = opts

	cfg := BuildConfig(r)
	assert.Equal(t, "guest-static", cfg.NAT.StaticRuleSet)
	assert.Equal(t, config.DefaultSourceRuleSet, cfg.NAT.SourceRuleSet)
	assert.Equal(t, time.Minute, cfg.Usage.PollInterval)
	assert.Equal(t, config.DefaultReadTimeout, cfg.Timeouts.Read, "unparsable values fall back to the default")
	assert.Equal(t, "1.1.1.1", cfg.VPN.DNSServer)
}

func TestNewAdvancedOptions_Defaults(t *testing.T) {
	t.Parallel()

	opts := newAdvancedOptions()
	assert.Equal(t, config.DefaultDestinationRuleSet, opts.DestinationRuleSet)
	assert.Equal(t, "10s", opts.DialTimeout)
	assert.Equal(t, "30s", opts.ReadTimeout)
	assert.NoError(t, validateDNSServer(opts.DNSServer))
}
