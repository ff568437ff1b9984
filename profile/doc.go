// Package profile provides optional runtime profiling for the rpt command.
//
// Profiling uses [github.com/pkg/profile] and is compiled in only with the
// "pprof" build tag:
//
//	go build -tags pprof -o rpt .
//
// Without the tag, [Start] returns a no-op [Stopper] and [Modes]
// is empty.
//
// # Modes
//
// allocs, block, clock, cpu, goroutine, heap, mem, mutex, thread, trace.
// Use [Modes] to list the modes of the current build.
//
// # Command-Line Usage
//
//	# CPU profile of a report compilation
//	rpt --pprof-mode cpu compile invoice.yaml --data invoice.json
//
//	# Heap profile written to a custom directory
//	rpt --pprof-mode heap --pprof-dir ./profiles eval 'data.items.length'
//
// Profiles are written to $XDG_CACHE_HOME/rpt/pprof by default and can be
// inspected with:
//
//	go tool pprof -http=: ./profiles/cpu.pprof
//
// The pprof build also imports [net/http/pprof], registering its handlers on
// the default mux for programs embedding the report engine in a server.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
