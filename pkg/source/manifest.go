package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest is an exported album: a list of media items with their recorded
// creation times. JSON exports decode as well, JSON being YAML.
//
//	album: Geogames
//	items:
//	  - id: AF1Qip...
//	    filename: PXL_20230730_173000123.jpg
//	    creation_time: "2023-07-31T00:30:00Z"
type Manifest struct {
	Album   string
	Records []Record
}

type manifestFile struct {
	Album string         `yaml:"album"`
	Items []manifestItem `yaml:"items"`
}

type manifestItem struct {
	ID           string `yaml:"id"`
	Filename     string `yaml:"filename"`
	CreationTime string `yaml:"creation_time"`
}

// ReadManifest decodes a manifest from r.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var file manifestFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	m := &Manifest{Album: file.Album, Records: make([]Record, 0, len(file.Items))}
	for i, item := range file.Items {
		if item.Filename == "" {
			return nil, fmt.Errorf("decode manifest: item %d has no filename", i)
		}
		createdAt, err := time.Parse(time.RFC3339Nano, item.CreationTime)
		if err != nil {
			return nil, fmt.Errorf("decode manifest: item %d (%s): creation_time: %w", i, item.Filename, err)
		}

		id := item.ID
		if id == "" {
			id = item.Filename
		}
		m.Records = append(m.Records, Record{ID: id, Filename: item.Filename, CreatedAt: createdAt})
	}
	return m, nil
}

// LoadManifest reads the manifest file at path.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	return ReadManifest(f)
}

func (m *Manifest) List(ctx context.Context, pageToken string, pageSize int) (Page, error) {
	return paginate(m.Records, pageToken, pageSize)
}
