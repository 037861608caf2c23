package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""
)

// DefaultConfigPaths are searched for a YAML configuration file; missing
// files are skipped.
var DefaultConfigPaths = []string{
	"~/.config/ledgerentry/config.yaml",
	".ledgerentry.yaml",
}

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool            `help:"Show timing telemetry for oracle calls and writes." env:"LEDGERENTRY_TELEMETRY"`
	LogLevel  string          `help:"Log level (debug, info, warn, error)." default:"warn" enum:"debug,info,warn,error" env:"LEDGERENTRY_LOG_LEVEL"`
	Config    kong.ConfigFlag `help:"Load flag defaults from a YAML file." placeholder:"FILE"`
}

type Commands struct {
	Globals

	Add    AddCmd    `cmd:"" help:"Compose transactions interactively and insert them into a ledger file."`
	Doctor DoctorCmd `cmd:"" help:"Doctor utilities for debugging change commands and ledger files."`
}

// Vars are the interpolation variables the command tags refer to.
func Vars() kong.Vars {
	return kong.Vars{
		"version":      BuildVersion(),
		"history_file": defaultHistoryFile(),
	}
}

// BuildVersion combines Version and CommitSHA for --version.
func BuildVersion() string {
	version := Version
	if version == "" {
		version = "dev"
	}
	if CommitSHA == "" {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, CommitSHA)
}
