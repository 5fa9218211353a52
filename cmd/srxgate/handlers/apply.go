package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/srxgate/api/v1alpha1"
	"github.com/imamik/srxgate/internal/ui/tui"
)

// Apply executes the command documents in commandsPath in order.
// It returns an error when any command failed.
func Apply(ctx context.Context, configPath, commandsPath string, jsonOutput bool) error {
	return runApply(ctx, os.Stdout, os.Stdin, configPath, commandsPath, jsonOutput)
}

func runApply(ctx context.Context, w io.Writer, stdin io.Reader, configPath, commandsPath string, jsonOutput bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := readCommands(commandsPath, stdin)
	if err != nil {
		return err
	}

	cmds, err := v1alpha1.DecodeCommands(data)
	if err != nil {
		return err
	}

	d, _, err := newDriver(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logr.FromContextOrDiscard(ctx).Error(err, "failed to close appliance session")
		}
	}()

	answers := make([]v1alpha1.Answer, 0, len(cmds))
	failed := 0
	for _, cmd := range cmds {
		a := d.Execute(ctx, cmd)
		if !a.Success {
			failed++
		}
		answers = append(answers, a)
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(answers); err != nil {
			return fmt.Errorf("failed to encode answers: %w", err)
		}
	} else {
		fmt.Fprint(w, tui.RenderAnswers(cmds, answers))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d commands failed", failed, len(cmds))
	}
	return nil
}

func readCommands(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read commands from stdin: %w", err)
		}
		return data, nil
	}
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}
	return data, nil
}
