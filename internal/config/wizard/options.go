package wizard

import (
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/imamik/srxgate/internal/config"
)

// TransportOptions lists the session transports.
var TransportOptions = []huh.Option[string]{
	huh.NewOption("Plain Junoscript over TCP (port 3221)", config.TransportTCP),
	huh.NewOption("Junoscript over SSH (port 22)", config.TransportSSH),
}

// MaxRetriesOptions lists common retry counts.
var MaxRetriesOptions = []huh.Option[int]{
	huh.NewOption("0 (Fail fast)", 0),
	huh.NewOption("1 (Recommended)", 1),
	huh.NewOption("3", 3),
	huh.NewOption("5", 5),
}

// PollIntervalOptions lists common usage poll intervals.
var PollIntervalOptions = []huh.Option[string]{
	huh.NewOption("1 minute", "1m"),
	huh.NewOption("5 minutes (Recommended)", "5m"),
	huh.NewOption("15 minutes", "15m"),
	huh.NewOption("1 hour", "1h"),
}

// ArchiveRegionOptions lists well-known S3-compatible regions.
var ArchiveRegionOptions = []huh.Option[string]{
	huh.NewOption("us-east-1", "us-east-1"),
	huh.NewOption("eu-central-1", "eu-central-1"),
	huh.NewOption("fsn1 (Hetzner Object Storage)", "fsn1"),
	huh.NewOption("nbg1 (Hetzner Object Storage)", "nbg1"),
}

// defaultPort returns the default port of a transport as text.
func defaultPort(transport string) string {
	if transport == config.TransportSSH {
		return strconv.Itoa(config.DefaultSSHPort)
	}
	return strconv.Itoa(config.DefaultTCPPort)
}
