// Package source feeds media records to the reconciler a page at a time.
package source

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultPageSize matches the page size used against the photo library.
const DefaultPageSize = 10

// ErrInvalidPageToken is returned for page tokens a Source did not issue.
var ErrInvalidPageToken = errors.New("invalid page token")

// Record is one media item as reported by a library.
type Record struct {
	ID        string    `json:"id" yaml:"id"`
	Filename  string    `json:"filename" yaml:"filename"`
	CreatedAt time.Time `json:"creation_time" yaml:"creation_time"`
}

// Page is one page of records. An empty NextPageToken marks the last page.
type Page struct {
	Records       []Record
	NextPageToken string
}

// Source lists records. The empty token requests the first page.
type Source interface {
	List(ctx context.Context, pageToken string, pageSize int) (Page, error)
}

// Walk calls fn for every record of src in order. It stops at the first error
// from src or fn, and checks ctx between records.
func Walk(ctx context.Context, src Source, pageSize int, fn func(Record) error) error {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	token := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := src.List(ctx, token, pageSize)
		if err != nil {
			return fmt.Errorf("list records: %w", err)
		}

		for _, rec := range page.Records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(rec); err != nil {
				return err
			}
		}

		if page.NextPageToken == "" {
			return nil
		}
		token = page.NextPageToken
	}
}

// Slice is an in-memory Source.
type Slice []Record

func (s Slice) List(ctx context.Context, pageToken string, pageSize int) (Page, error) {
	return paginate(s, pageToken, pageSize)
}

// paginate pages over records using the offset as token.
func paginate(records []Record, pageToken string, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	offset := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil || n < 0 || n > len(records) {
			return Page{}, fmt.Errorf("%w: %q", ErrInvalidPageToken, pageToken)
		}
		offset = n
	}

	end := offset + pageSize
	if end > len(records) {
		end = len(records)
	}

	page := Page{Records: append([]Record(nil), records[offset:end]...)}
	if end < len(records) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}
