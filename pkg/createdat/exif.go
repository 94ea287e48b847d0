package createdat

import (
	"io"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// exifLayout is the EXIF DateTime format.
const exifLayout = "2006:01:02 15:04:05"

type exifExtractor struct {
	loc *time.Location
}

// NewExifExtractor returns the default MetadataExtractor. EXIF timestamps
// without an offset are read in loc.
func NewExifExtractor(loc *time.Location) MetadataExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return exifExtractor{loc: loc}
}

func (e exifExtractor) CreatedAt(path string, r io.Reader) (time.Time, bool, error) {
	x, err := exif.Decode(r)
	if err != nil {
		// Not an image with EXIF, or a damaged block. Either way there is no
		// usable timestamp.
		return time.Time{}, false, nil
	}

	// Prefer DateTimeOriginal, then DateTimeDigitized, then DateTime.
	for _, tag := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized, exif.DateTime} {
		if tm, ok := e.timeFromTag(x, tag); ok {
			return tm, true, nil
		}
	}
	if t, err := x.DateTime(); err == nil {
		return t, true, nil
	}

	return time.Time{}, false, nil
}

func (e exifExtractor) timeFromTag(x *exif.Exif, tag exif.FieldName) (time.Time, bool) {
	f, err := x.Get(tag)
	if err != nil {
		return time.Time{}, false
	}

	s, err := f.StringVal()
	if err != nil {
		return time.Time{}, false
	}

	loc := e.loc
	if loc == nil {
		loc = time.UTC
	}
	tm, err := time.ParseInLocation(exifLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}

	return tm, true
}
