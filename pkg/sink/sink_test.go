package sink

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/quidome/media-timefix/pkg/source"
)

func TestLog_ApplyLogsChange(t *testing.T) {
	buf := new(bytes.Buffer)
	l := NewLog(slog.New(slog.NewTextHandler(buf, nil)))

	rec := source.Record{
		ID:        "a1",
		Filename:  "PXL_20230731_003000123.jpg",
		CreatedAt: time.Date(2023, 7, 15, 12, 0, 0, 0, time.UTC),
	}
	if err := l.Apply(context.Background(), rec, time.Date(2023, 7, 31, 0, 30, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"would update creation time", "id=a1", "filename=PXL_20230731_003000123.jpg", "to=2023-07-31T00:30:00.000Z"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output, got %q", want, out)
		}
	}
}

func TestLog_NilLoggerUsesDefault(t *testing.T) {
	var l Log
	if err := l.Apply(context.Background(), source.Record{ID: "x"}, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
