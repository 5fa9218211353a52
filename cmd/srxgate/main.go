// Package main is the entry point for the srxgate CLI.
//
// srxgate drives a Junos SRX gateway on behalf of a cloud orchestrator:
// guest networks, NAT, firewall rules, remote-access VPN and traffic
// accounting, applied as single committed transactions.
//
// Commands: init, apply, serve, usage, doctor.
//
// For detailed usage information, run:
//
//	srxgate --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/srxgate/cmd/srxgate/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
