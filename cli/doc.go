// Package cli contains the command line interface for rpt.
//
// # Usage
//
//	rpt [flags] FORMULA                  evaluate a formula (default command)
//	rpt eval -d data.yaml 'data.total*2'
//	rpt fmt ast -F yaml '1+2*3'
//	rpt compile report.yaml -t csv -o -
//	rpt repl -d data.json
//	rpt init
//
// The global --data flag binds a YAML or JSON document to the formula
// variable data. The compile command uses it as the report's source data
// unless --data-url or --data-script is given.
//
// # Configuration
//
// Flag defaults are loaded from config.json and config.yaml in the user
// configuration directory ($RPT_CONFIG_DIR, else e.g. ~/.config/rpt). REPL
// history and profiles go to the cache directory ($RPT_CACHE_DIR, else e.g.
// ~/.cache/rpt). The YAML file holds its values under the config
// key, written by the init command:
//
//	config:
//	  log_level: debug
//	  log_format: text
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o rpt .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/rpt/pprof)
package cli
