package source

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/quidome/media-timefix/pkg/createdat"
	"github.com/quidome/media-timefix/pkg/scan"
)

// Directory lists the media files of a local directory. The recorded timestamp
// of each file comes from createdat.Recorded.
type Directory struct {
	FS      fs.FS
	Root    string
	Scan    scan.Options
	Created createdat.Options

	once    sync.Once
	records []Record
	err     error
}

// NewDirectory returns a Directory source over fsys rooted at root.
func NewDirectory(fsys fs.FS, root string) *Directory {
	return &Directory{FS: fsys, Root: root, Scan: scan.DefaultOptions()}
}

func (d *Directory) List(ctx context.Context, pageToken string, pageSize int) (Page, error) {
	d.once.Do(func() { d.records, d.err = d.load(ctx) })
	if d.err != nil {
		return Page{}, d.err
	}
	return paginate(d.records, pageToken, pageSize)
}

func (d *Directory) load(ctx context.Context) ([]Record, error) {
	root := d.Root
	if root == "" {
		root = "."
	}

	files, err := scan.Files(d.FS, root, d.Scan)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	records := make([]Record, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := path.Join(root, f.Path)
		res, err := createdat.Recorded(d.FS, p, d.Created)
		if err != nil {
			return nil, fmt.Errorf("created at %s: %w", p, err)
		}

		records = append(records, Record{
			ID:        f.Path,
			Filename:  path.Base(f.Path),
			CreatedAt: res.CreatedAt,
		})
	}
	return records, nil
}
