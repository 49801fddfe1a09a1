// Package runner combines fetching and extraction into one snapshot per run.
//
// A run never fails: fetch and extraction errors become the snapshot warning.
// When a run produces no rows but the previous snapshot had some, those rows
// are served again and the snapshot is marked degraded, so a transient
// failure upstream never blanks the data shown downstream.
package runner

import (
	"context"
	"time"

	"github.com/pfrederiksen/standings-scraper/internal/logger"
	"github.com/pfrederiksen/standings-scraper/internal/standings"
)

// StaleWarning is attached when previous rows are served again
const StaleWarning = "using last known standings (new scrape failed)"

// Fetcher returns the markup of a page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns markup into standings rows
type Extractor interface {
	Extract(markup string) ([]standings.Row, error)
}

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now calls f
func (f ClockFunc) Now() time.Time {
	return f()
}

// Result is the outcome of a run
type Result struct {
	Snapshot *standings.Snapshot
	Diff     *standings.DiffResult
	// Stale is set when the rows were carried over from the previous snapshot
	Stale    bool
	FetchErr error
	ParseErr error
}

// Runner builds snapshots for a single source
type Runner struct {
	source    string
	fetcher   Fetcher
	extractor Extractor
	clock     Clock
	log       *logger.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(r *Runner) {
		r.clock = c
	}
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// New creates a Runner for source
func New(source string, fetcher Fetcher, extractor Extractor, opts ...Option) *Runner {
	r := &Runner{
		source:    source,
		fetcher:   fetcher,
		extractor: extractor,
		clock:     ClockFunc(time.Now),
		log:       logger.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run fetches and extracts the standings and builds the new snapshot.
// previous is the snapshot of the last run, or nil.
func (r *Runner) Run(ctx context.Context, previous *standings.Snapshot) *Result {
	result := &Result{}
	rows := make([]standings.Row, 0)

	markup, err := r.fetcher.Fetch(ctx, r.source)
	if err != nil {
		result.FetchErr = err
		r.log.Warn("Fetch failed", logger.Fields{"url": r.source, "error": err.Error()})
	} else {
		rows, err = r.extractor.Extract(markup)
		if err != nil {
			result.ParseErr = err
			r.log.Warn("Extraction failed", logger.Fields{"bytes": len(markup), "error": err.Error()})
		} else {
			r.log.Info("Extracted standings", logger.Fields{"rows": len(rows)})
		}
	}

	warning := warningFor(result.FetchErr, result.ParseErr)

	if len(rows) == 0 && previous.HasRows() {
		rows = previous.Standings
		result.Stale = true
		warning = staleWarning(warning)
		r.log.Warn("Serving last known standings", logger.Fields{
			"rows":       len(rows),
			"updated_at": previous.UpdatedAt,
		})
	}

	result.Snapshot = standings.NewSnapshot(rows, r.source, warning, r.clock.Now())
	if !result.Stale {
		result.Diff = standings.Diff(previous, result.Snapshot.Standings)
	}

	return result
}

func warningFor(fetchErr, parseErr error) string {
	switch {
	case fetchErr != nil:
		return fetchErr.Error()
	case parseErr != nil:
		return parseErr.Error()
	default:
		return ""
	}
}

func staleWarning(cause string) string {
	if cause == "" {
		return StaleWarning
	}
	return cause + "; " + StaleWarning
}
