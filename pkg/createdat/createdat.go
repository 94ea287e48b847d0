package createdat

import (
	"io"
	"io/fs"
	"path/filepath"
	"time"
)

// Source describes where a recorded timestamp was taken from.
//
// The priority order is:
//  1. metadata
//  2. mtime
//  3. unknown
type Source string

const (
	SourceMetadata Source = "metadata"
	SourceMtime    Source = "mtime"
	SourceUnknown  Source = "unknown"
)

// Result contains the recorded timestamp and its source.
type Result struct {
	CreatedAt time.Time
	Source    Source
}

// MetadataExtractor extracts an embedded creation timestamp from a media stream.
//
// Implementations should return (t, true, nil) when a timestamp is found.
// If no timestamp exists, return (time.Time{}, false, nil).
// Errors are treated as best-effort failures by Recorded.
type MetadataExtractor interface {
	CreatedAt(path string, r io.Reader) (time.Time, bool, error)
}

// Options configures Recorded.
type Options struct {
	// Location is used for metadata timestamps that carry no timezone.
	// If nil, time.UTC is used.
	Location *time.Location

	// Metadata optionally extracts embedded timestamps.
	//
	// If nil, a default EXIF-based extractor is used.
	Metadata MetadataExtractor
}

// Recorded returns the recorded creation timestamp for a path.
func Recorded(fsys fs.FS, path string, opts Options) (Result, error) {
	path = filepath.ToSlash(filepath.Clean(path))

	info, err := fs.Stat(fsys, path)
	if err != nil {
		return Result{}, err
	}
	if info.IsDir() {
		return Result{}, fs.ErrInvalid
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	metadata := opts.Metadata
	if metadata == nil {
		metadata = exifExtractor{loc: loc}
	}

	f, err := fsys.Open(path)
	if err != nil {
		return Result{}, err
	}
	createdAt, ok, metaErr := metadata.CreatedAt(path, f)
	_ = f.Close()
	if metaErr == nil && ok && !createdAt.IsZero() {
		return Result{CreatedAt: createdAt, Source: SourceMetadata}, nil
	}

	if mtime := info.ModTime(); !mtime.IsZero() {
		return Result{CreatedAt: mtime, Source: SourceMtime}, nil
	}

	return Result{Source: SourceUnknown}, nil
}
