package handlers

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/config/wizard"
)

// saveAndRestoreInitFactories saves and restores init factory functions.
func saveAndRestoreInitFactories(t *testing.T) {
	origFileExists := wizardFileExists
	origConfirmOverwrite := wizardConfirmOverwrite
	origRunWizard := wizardRunWizard
	origBuildConfig := wizardBuildConfig
	origWriteConfig := wizardWriteConfig

	t.Cleanup(func() {
		wizardFileExists = origFileExists
		wizardConfirmOverwrite = origConfirmOverwrite
		wizardRunWizard = origRunWizard
		wizardBuildConfig = origBuildConfig
		wizardWriteConfig = origWriteConfig
	})
}

func testWizardResult() *wizard.WizardResult {
	return &wizard.WizardResult{
		Address:          "192.0.2.1",
		Transport:        config.TransportTCP,
		Port:             "3221",
		Username:         "admin",
		PublicInterface:  "ge-0/0/0.0",
		PrivateInterface: "ge-0/0/1",
		PublicZone:       "untrust",
		PrivateZone:      "trust",
		MaxRetries:       2,
	}
}

func TestPrintWelcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		advanced bool
		full     bool
		contains []string
		excludes []string
	}{
		{name: "basic", contains: []string{"srxgate - SRX gateway driver", "Minimal output mode"}, excludes: []string{"advanced mode"}},
		{name: "advanced", advanced: true, contains: []string{"Running in advanced mode"}},
		{name: "full output", full: true, contains: []string{"Full output mode"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			printWelcome(&out, tt.advanced, tt.full)
			for _, s := range tt.contains {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}

func TestPrintInitSuccess(t *testing.T) {
	t.Parallel()

	t.Run("without archive", func(t *testing.T) {
		t.Parallel()
		cfg := wizard.BuildConfig(testWizardResult())

		var out bytes.Buffer
		printInitSuccess(&out, "gw.yaml", cfg)

		assert.Contains(t, out.String(), "File: gw.yaml")
		assert.Contains(t, out.String(), "192.0.2.1:3221 (tcp)")
		assert.Contains(t, out.String(), "public ge-0/0/0.0, private ge-0/0/1")
		assert.Contains(t, out.String(), config.EnvAppliancePassword)
		assert.Contains(t, out.String(), "srxgate doctor -c gw.yaml")
		assert.NotContains(t, out.String(), "Archive:")
	})

	t.Run("with archive", func(t *testing.T) {
		t.Parallel()
		result := testWizardResult()
		result.EnableArchive = true
		result.ArchiveBucket = "usage"
		cfg := wizard.BuildConfig(result)

		var out bytes.Buffer
		printInitSuccess(&out, "gw.yaml", cfg)

		assert.Contains(t, out.String(), "Archive:    s3://usage/")
		assert.Contains(t, out.String(), config.EnvArchiveSecretKey)
	})
}

// The tests below swap package-level factories and must not run in parallel.

func TestRunInit_Success(t *testing.T) {
	saveAndRestoreInitFactories(t)

	var written string
	wizardFileExists = func(string) bool { return false }
	wizardRunWizard = func(context.Context, bool) (*wizard.WizardResult, error) {
		return testWizardResult(), nil
	}
	wizardWriteConfig = func(_ *config.Config, path string, _ bool) error {
		written = path
		return nil
	}

	var out bytes.Buffer
	err := runInit(context.Background(), &out, "gw.yaml", false, false)
	require.NoError(t, err)
	assert.Equal(t, "gw.yaml", written)
	assert.Contains(t, out.String(), "Configuration saved!")
}

func TestRunInit_DeclineOverwrite(t *testing.T) {
	saveAndRestoreInitFactories(t)

	wizardFileExists = func(string) bool { return true }
	wizardConfirmOverwrite = func(string) (bool, error) { return false, nil }
	wizardRunWizard = func(context.Context, bool) (*wizard.WizardResult, error) {
		t.Fatal("wizard must not run")
		return nil, nil
	}

	var out bytes.Buffer
	err := runInit(context.Background(), &out, "gw.yaml", false, false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Aborted.")
}

func TestRunInit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		wantErr string
	}{
		{
			name: "confirm fails",
			setup: func() {
				wizardFileExists = func(string) bool { return true }
				wizardConfirmOverwrite = func(string) (bool, error) { return false, errors.New("no tty") }
			},
			wantErr: "failed to confirm overwrite",
		},
		{
			name: "wizard canceled",
			setup: func() {
				wizardFileExists = func(string) bool { return false }
				wizardRunWizard = func(context.Context, bool) (*wizard.WizardResult, error) {
					return nil, errors.New("user aborted")
				}
			},
			wantErr: "wizard canceled",
		},
		{
			name: "write fails",
			setup: func() {
				wizardFileExists = func(string) bool { return false }
				wizardRunWizard = func(context.Context, bool) (*wizard.WizardResult, error) {
					return testWizardResult(), nil
				}
				wizardWriteConfig = func(*config.Config, string, bool) error { return errors.New("read-only") }
			},
			wantErr: "failed to write config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saveAndRestoreInitFactories(t)
			tt.setup()

			var out bytes.Buffer
			err := runInit(context.Background(), &out, "gw.yaml", false, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
