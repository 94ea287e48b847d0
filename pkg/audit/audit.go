// Package audit classifies every record of a source against one valid range.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quidome/media-timefix/pkg/reconcile"
	"github.com/quidome/media-timefix/pkg/sink"
	"github.com/quidome/media-timefix/pkg/source"
	"github.com/quidome/media-timefix/pkg/timerange"
)

// Options configures Run.
type Options struct {
	// Reconciler classifies records. If nil, the default Reconciler is used.
	Reconciler *reconcile.Reconciler

	// PageSize is passed to the source. If zero, source.DefaultPageSize is used.
	PageSize int

	// Workers bounds the number of records classified concurrently.
	// Values below 1 mean 1.
	Workers int

	// Apply hands every suggestion to Applier.
	Apply   bool
	Applier sink.Applier

	Logger *slog.Logger
}

// Item is the outcome for one record. Index is the position in the source.
type Item struct {
	Index    int
	Record   source.Record
	Outcome  reconcile.Outcome
	Applied  bool
	ApplyErr error
}

// Report holds the items of a run in source order.
type Report struct {
	Range       timerange.Range
	Items       []Item
	Counts      map[reconcile.Kind]int
	Applied     int
	ApplyErrors int
	Duration    time.Duration
}

// Run walks src and classifies each record against rng.
//
// Records are independent: a malformed or unknown record never stops the run.
// An error from the source stops the run; the items classified so far are still
// returned in the report.
func Run(ctx context.Context, src source.Source, rng timerange.Range, opts Options) (*Report, error) {
	start := time.Now()

	r := opts.Reconciler
	if r == nil {
		r = reconcile.New(reconcile.Options{})
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	applier := opts.Applier
	if opts.Apply && applier == nil {
		applier = sink.NewLog(logger)
	}

	logger.Debug("starting audit", "range", rng.String(), "workers", workers, "apply", opts.Apply)

	var items []*Item
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	walkErr := source.Walk(gctx, src, opts.PageSize, func(rec source.Record) error {
		item := &Item{Index: len(items), Record: rec}
		items = append(items, item)

		g.Go(func() error {
			item.Outcome = r.Classify(rec.Filename, rec.CreatedAt, rng)
			logger.Debug("classified", "filename", rec.Filename, "kind", item.Outcome.Kind)

			if applier != nil && opts.Apply && item.Outcome.Kind == reconcile.KindSuggest {
				if err := applier.Apply(gctx, rec, item.Outcome.Suggested); err != nil {
					item.ApplyErr = err
					logger.Warn("apply failed", "filename", rec.Filename, "error", err)
				} else {
					item.Applied = true
				}
			}
			return nil
		})
		return nil
	})
	_ = g.Wait()

	report := &Report{
		Range:  rng,
		Items:  make([]Item, 0, len(items)),
		Counts: make(map[reconcile.Kind]int),
	}
	for _, item := range items {
		report.Items = append(report.Items, *item)
		report.Counts[item.Outcome.Kind]++
		if item.Applied {
			report.Applied++
		}
		if item.ApplyErr != nil {
			report.ApplyErrors++
		}
	}
	report.Duration = time.Since(start)

	if walkErr != nil {
		return report, fmt.Errorf("audit: %w", walkErr)
	}

	logger.Info("audit completed",
		"records", len(report.Items),
		"ok", report.Counts[reconcile.KindOK],
		"suggest", report.Counts[reconcile.KindSuggest],
		"unknown", report.Counts[reconcile.KindUnknown],
		"malformed", report.Counts[reconcile.KindMalformed],
		"applied", report.Applied,
		"duration", report.Duration,
	)

	return report, nil
}
