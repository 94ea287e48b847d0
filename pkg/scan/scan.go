// Package scan lists the media files below a directory.
package scan

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

type Options struct {
	// MaxDepth limits recursion; 0 lists the root only and -1 is unlimited.
	MaxDepth int

	PhotoExtensions []string
	VideoExtensions []string
}

func DefaultOptions() Options {
	return Options{
		MaxDepth: -1,
		PhotoExtensions: []string{
			".jpg", ".jpeg", ".png", ".gif", ".webp", ".heic", ".tif", ".tiff", ".bmp",
		},
		VideoExtensions: []string{
			".mp4", ".mov", ".m4v", ".mkv", ".avi", ".webm", ".mts", ".3gp",
		},
	}
}

// File is a media file found by Files. Path is slash separated and relative to
// the scan root.
type File struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Files returns the media files below root, sorted by path.
func Files(fsys fs.FS, root string, opts Options) ([]File, error) {
	if opts.MaxDepth < -1 {
		return nil, fs.ErrInvalid
	}

	exts := normalizeExts(opts.PhotoExtensions, opts.VideoExtensions)

	var files []File

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel := relative(root, p)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
				return fs.SkipDir
			}
			return nil
		}

		if opts.MaxDepth >= 0 && depth(rel) > opts.MaxDepth {
			return nil
		}
		if !exts[strings.ToLower(path.Ext(rel))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, File{
			Path:    rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files, nil
}

func relative(root, p string) string {
	if root == "." || root == "" {
		return p
	}
	if p == root {
		return "."
	}
	return strings.TrimPrefix(p, strings.TrimSuffix(root, "/")+"/")
}

func normalizeExts(lists ...[]string) map[string]bool {
	m := make(map[string]bool)
	for _, exts := range lists {
		for _, ext := range exts {
			e := strings.TrimSpace(strings.ToLower(ext))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			m[e] = true
		}
	}
	return m
}

// depth is the number of directories between the root and rel.
func depth(rel string) int {
	return strings.Count(path.Clean(rel), "/")
}
