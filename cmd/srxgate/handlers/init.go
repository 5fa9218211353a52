package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/config/wizard"
)

// Factory function variables for init - can be replaced in tests.
var (
	wizardFileExists       = wizard.FileExists
	wizardConfirmOverwrite = wizard.ConfirmOverwrite
	wizardRunWizard        = wizard.RunWizard
	wizardBuildConfig      = wizard.BuildConfig
	wizardWriteConfig      = wizard.WriteConfig
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, outputPath string, advanced, fullOutput bool) error {
	return runInit(ctx, os.Stdout, outputPath, advanced, fullOutput)
}

func runInit(ctx context.Context, w io.Writer, outputPath string, advanced, fullOutput bool) error {
	if wizardFileExists(outputPath) {
		overwrite, err := wizardConfirmOverwrite(outputPath)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(w, "Aborted.")
			return nil
		}
	}

	printWelcome(w, advanced, fullOutput)

	result, err := wizardRunWizard(ctx, advanced)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := wizardBuildConfig(result)

	if err := wizardWriteConfig(cfg, outputPath, fullOutput); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(w, outputPath, cfg)
	return nil
}

// printWelcome prints the welcome message.
func printWelcome(w io.Writer, advanced, fullOutput bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "srxgate - SRX gateway driver")
	fmt.Fprintln(w, "============================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "This wizard will help you create a configuration file.")
	if advanced {
		fmt.Fprintln(w, "Running in advanced mode.")
	}
	if fullOutput {
		fmt.Fprintln(w, "Full output mode: every option is written.")
	} else {
		fmt.Fprintln(w, "Minimal output mode: only non-default values are written.")
	}
	fmt.Fprintln(w)
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(w io.Writer, outputPath string, cfg *config.Config) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration saved!")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  File: %s\n", outputPath)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "-------")
	fmt.Fprintf(w, "  Appliance:  %s (%s)\n", cfg.Appliance.Endpoint(), cfg.Appliance.Transport)
	fmt.Fprintf(w, "  Username:   %s\n", cfg.Appliance.Username)
	fmt.Fprintf(w, "  Interfaces: public %s, private %s\n", cfg.Interfaces.Public, cfg.Interfaces.Private)
	fmt.Fprintf(w, "  Zones:      public %s, private %s\n", cfg.Zones.Public, cfg.Zones.Private)
	fmt.Fprintf(w, "  Retries:    %d\n", cfg.Retry.Retries())
	if cfg.Usage.Archive.Enabled() {
		fmt.Fprintf(w, "  Archive:    s3://%s/%s\n", cfg.Usage.Archive.Bucket, cfg.Usage.Archive.Prefix)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Next Steps")
	fmt.Fprintln(w, "----------")
	fmt.Fprintln(w, "  1. Set the appliance password:")
	fmt.Fprintf(w, "     export %s=<password>\n", config.EnvAppliancePassword)
	if cfg.Usage.Archive.Enabled() {
		fmt.Fprintf(w, "     export %s=<key> %s=<secret>\n", config.EnvArchiveAccessKey, config.EnvArchiveSecretKey)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  2. Check connectivity:")
	fmt.Fprintf(w, "     srxgate doctor -c %s\n", outputPath)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  3. Serve commands:")
	fmt.Fprintf(w, "     srxgate serve -c %s\n", outputPath)
	fmt.Fprintln(w)
}
