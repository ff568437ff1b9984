// Package cmd provides the rpt subcommands: eval, fmt, compile, repl and
// init.
package cmd

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rpt/report"
)

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path of
	// the configuration file.
	ConfigIdentifier = "config"

	// ConfigKey is the mapping key holding flag values in the configuration
	// file.
	ConfigKey = "config"
)

// Vars returns the kong variables referenced by command help strings.
func Vars() kong.Vars {
	names := make([]string, 0, len(report.Targets()))
	for _, t := range report.Targets() {
		names = append(names, string(t))
	}

	return kong.Vars{"targets": strings.Join(names, ", ")}
}
