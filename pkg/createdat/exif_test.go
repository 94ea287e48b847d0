package createdat

import (
	"bytes"
	"testing"
	"time"
)

func TestExifExtractor_NonExifDataIsNotFound(t *testing.T) {
	tm, ok, err := NewExifExtractor(time.UTC).CreatedAt("a.jpg", bytes.NewReader([]byte("not a jpeg")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false")
	}
	if !tm.IsZero() {
		t.Fatalf("expected zero time")
	}
}

func TestExifExtractor_EmptyStreamIsNotFound(t *testing.T) {
	_, ok, err := NewExifExtractor(nil).CreatedAt("empty.jpg", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false")
	}
}
