// Package sink receives corrected creation timestamps.
//
// The photo library offers no way to change the creation time of an item, so the
// only applier is Log, which records the change that would have been made.
package sink

import (
	"context"
	"log/slog"
	"time"

	"github.com/quidome/media-timefix/pkg/source"
)

// Applier applies a corrected creation time to a record.
type Applier interface {
	Apply(ctx context.Context, rec source.Record, createdAt time.Time) error
}

// Log is an Applier that only logs.
type Log struct {
	Logger *slog.Logger
}

// NewLog returns a Log applier. A nil logger uses slog.Default.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{Logger: logger}
}

func (l *Log) Apply(ctx context.Context, rec source.Record, createdAt time.Time) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "would update creation time",
		"id", rec.ID,
		"filename", rec.Filename,
		"from", rec.CreatedAt.UTC(),
		"to", createdAt.UTC(),
	)
	return nil
}
