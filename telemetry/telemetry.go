// Package telemetry records how long the slow steps of an entry session take:
// oracle queries, loading the ledger file and writing it back.
//
// Collectors travel in the context, so instrumented code needs no extra
// parameters and pays nothing when timing is off:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("commit journal.ledger")
//	write := timer.Child("write")
//	// ...
//	write.End()
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/ledgerentry/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers timings.
type Collector interface {
	// Start begins timing an operation. Timers started while another one is
	// running are nested under it.
	Start(name string) Timer

	// Report writes the collected timings to w. styles may be nil for plain
	// output.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks a single operation.
type Timer interface {
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector in ctx, or one that discards everything.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
