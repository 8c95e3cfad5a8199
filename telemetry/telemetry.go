// Package telemetry records how long the stages of a run take.
//
// A Collector travels through the context so that the parser, formatter and
// report builder can be instrumented without extra parameters. Without a
// collector in the context every call is a no-op.
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "report.build")
//	lookup := timer.Child("report.extract")
//	// ...
//	lookup.End()
//	timer.End()
//
//	collector.Report(os.Stderr, nil)
package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/robinvdvleuten/ofx/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector receives timings.
type Collector interface {
	// Start begins a timer. Timers started while another one is running are
	// nested under it.
	Start(name string) Timer

	// Report writes the collected timings. styles may be nil for plain text.
	Report(w io.Writer, styles *output.Styles)

	// Stages returns every finished timer in start order.
	Stages() []Stage
}

// Timer measures one stage.
type Timer interface {
	End()
	Child(name string) Timer
}

// Stage is a finished timer flattened out of the tree.
type Stage struct {
	Name     string        `json:"name"`
	Depth    int           `json:"depth"`
	Duration time.Duration `json:"duration"`
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector carried by ctx, or one that discards
// everything.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok && collector != nil {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector carried by ctx.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}
