// Package namestamp finds a capture timestamp embedded in a media filename.
//
// Only one layout is recognized: YYYYMMDD, a '-' or '_' separator, then HHMMSS,
// found anywhere in the name. Digits that follow the seconds (milliseconds in
// Pixel names) are ignored. The result carries no timezone.
package namestamp

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// DefaultPattern is the filename layout understood by Default.
const DefaultPattern = `([0-9]{4})([0-9]{2})([0-9]{2})[-_]([0-9]{2})([0-9]{2})([0-9]{2})`

// ErrPatternGroups is returned by NewExtractor for patterns that do not capture
// exactly year, month, day, hour, minute and second.
var ErrPatternGroups = errors.New("pattern must have exactly 6 capture groups")

var groupNames = [6]string{"year", "month", "day", "hour", "minute", "second"}

var defaultExtractor = &Extractor{re: regexp.MustCompile(DefaultPattern)}

// Candidate is a naive date and time of day, valid on the calendar.
type Candidate struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int
}

// NewCandidate returns a Candidate if the fields form a real date and time.
// Values such as month 13, February 30 or hour 24 are rejected, not normalized.
func NewCandidate(year, month, day, hour, minute, second int) (Candidate, bool) {
	c := Candidate{Year: year, Month: month, Day: day, Hour: hour, Minute: minute, Second: second}
	if month < 1 || month > 12 || hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return Candidate{}, false
	}

	t := c.In(time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Candidate{}, false
	}
	return c, true
}

// In interprets the candidate as a wall clock time in loc.
//
// Wall clock times that do not exist in loc (a DST gap) are normalized by
// time.Date; ambiguous ones resolve to the first occurrence.
func (c Candidate) In(loc *time.Location) time.Time {
	return time.Date(c.Year, time.Month(c.Month), c.Day, c.Hour, c.Minute, c.Second, 0, loc)
}

// IsZero reports whether c is the zero Candidate.
func (c Candidate) IsZero() bool {
	return c == Candidate{}
}

func (c Candidate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", c.Year, c.Month, c.Day, c.Hour, c.Minute, c.Second)
}

// MalformedError reports a captured group that is not an integer.
type MalformedError struct {
	Filename string
	Group    string
	Value    string
	Err      error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s %q in %q: %v", e.Group, e.Value, e.Filename, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Extractor matches filenames against a single compiled pattern.
// It is immutable and safe for concurrent use.
type Extractor struct {
	re *regexp.Regexp
}

// NewExtractor compiles pattern. The six capture groups are read in order as
// year, month, day, hour, minute and second.
func NewExtractor(pattern string) (*Extractor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	if re.NumSubexp() != len(groupNames) {
		return nil, fmt.Errorf("%w: %q has %d", ErrPatternGroups, pattern, re.NumSubexp())
	}
	return &Extractor{re: re}, nil
}

// Default returns the extractor for DefaultPattern.
func Default() *Extractor {
	return defaultExtractor
}

// Extract returns the first timestamp in filename.
//
// A filename without a match, or whose digits are not a valid date and time,
// gives (Candidate{}, false, nil). A captured group that does not parse as an
// integer gives a *MalformedError.
func (x *Extractor) Extract(filename string) (Candidate, bool, error) {
	m := x.re.FindStringSubmatch(filename)
	if m == nil {
		return Candidate{}, false, nil
	}

	var v [6]int
	for i, name := range groupNames {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Candidate{}, false, &MalformedError{Filename: filename, Group: name, Value: m[i+1], Err: err}
		}
		v[i] = n
	}

	c, ok := NewCandidate(v[0], v[1], v[2], v[3], v[4], v[5])
	return c, ok, nil
}

// String returns the pattern source.
func (x *Extractor) String() string {
	return x.re.String()
}

// Extract uses the default extractor.
func Extract(filename string) (Candidate, bool) {
	c, ok, _ := defaultExtractor.Extract(filename)
	return c, ok
}
