package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/imamik/srxgate/internal/config"
	"github.com/imamik/srxgate/internal/driver"
	"github.com/imamik/srxgate/internal/platform/junos"
	"github.com/imamik/srxgate/internal/platform/s3"
	"github.com/imamik/srxgate/internal/ui/tui"
	"github.com/imamik/srxgate/internal/usage"
	"github.com/imamik/srxgate/internal/util/async"
	"github.com/imamik/srxgate/internal/util/netutil"
)

// DoctorReport is the JSON form of the doctor result.
type DoctorReport struct {
	Appliance string        `json:"appliance"`
	Healthy   bool          `json:"healthy"`
	Checks    []CheckResult `json:"checks"`
}

// CheckResult is the outcome of one doctor check.
type CheckResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"durationMs"`
}

// Doctor runs every check concurrently and reports the results.
// It returns an error when any check failed.
func Doctor(ctx context.Context, configPath string, jsonOutput bool) error {
	return runDoctor(ctx, os.Stdout, configPath, jsonOutput)
}

func runDoctor(ctx context.Context, w io.Writer, configPath string, jsonOutput bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	tasks, err := doctorChecks(cfg)
	if err != nil {
		return err
	}

	results := async.Run(ctx, tasks)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	if jsonOutput {
		if err := printDoctorJSON(w, cfg.Appliance.Endpoint(), results); err != nil {
			return err
		}
	} else {
		fmt.Fprint(w, tui.RenderChecks("srxgate doctor: "+cfg.Appliance.Endpoint(), results))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(results))
	}
	return nil
}

func doctorChecks(cfg *config.Config) ([]async.Task, error) {
	dialer, err := driver.NewDialer(cfg)
	if err != nil {
		return nil, err
	}
	d, err := driver.New(cfg, driver.WithDialer(dialer))
	if err != nil {
		return nil, err
	}

	newClient := func(name string) *junos.Client {
		return junos.NewClient(dialer,
			junos.WithCredentials(cfg.Appliance.Username, cfg.Appliance.Password),
			junos.WithReadTimeout(cfg.Timeouts.Read),
			junos.WithName(name),
		)
	}

	tasks := []async.Task{
		{Name: "appliance port", Func: func(ctx context.Context) error {
			return netutil.Probe(ctx, cfg.Appliance.Endpoint())
		}},
		{Name: "command session", Func: d.Ping},
		{Name: "candidate configuration", Func: func(ctx context.Context) error {
			return checkCandidate(ctx, newClient("doctor"))
		}},
		{Name: "usage session", Func: func(ctx context.Context) error {
			// No archive: doctor must not write snapshots.
			_, err := usage.NewPoller(newClient("usage"), cfg.Usage.PollInterval).Poll(ctx)
			return err
		}},
	}

	if a := cfg.Usage.Archive; a.Enabled() {
		tasks = append(tasks, async.Task{Name: "archive bucket", Func: func(ctx context.Context) error {
			client, err := s3.NewClient(a.Endpoint, a.Region, a.AccessKey, a.SecretKey)
			if err != nil {
				return err
			}
			// A missing bucket is created by the first archived poll.
			_, err = client.BucketExists(ctx, a.Bucket)
			return err
		}})
	}

	return tasks, nil
}

// checkCandidate opens a candidate configuration and discards it.
func checkCandidate(ctx context.Context, c *junos.Client) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.OpenConfiguration(ctx); err != nil {
		return err
	}
	c.Rollback(ctx)
	return nil
}

func printDoctorJSON(w io.Writer, appliance string, results []async.Result) error {
	report := DoctorReport{Appliance: appliance, Healthy: true}
	for _, r := range results {
		cr := CheckResult{Name: r.Name, OK: r.Err == nil, DurationMS: r.Duration.Round(time.Millisecond).Milliseconds()}
		if r.Err != nil {
			cr.Error = r.Err.Error()
			report.Healthy = false
		}
		report.Checks = append(report.Checks, cr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
