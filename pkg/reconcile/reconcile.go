// Package reconcile decides whether a recorded creation timestamp can be trusted,
// using the timestamp embedded in the filename and the valid range of the batch.
package reconcile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quidome/media-timefix/pkg/namestamp"
	"github.com/quidome/media-timefix/pkg/timerange"
)

// UnknownGlyph is printed for records whose correct time cannot be determined.
const UnknownGlyph = `¯\_(ツ)_/¯`

// Kind classifies a record.
type Kind string

const (
	KindOK        Kind = "ok"
	KindSuggest   Kind = "suggest"
	KindUnknown   Kind = "unknown"
	KindMalformed Kind = "malformed"
)

// Outcome is the result of classifying one record.
type Outcome struct {
	Kind Kind

	// Suggested is set for KindSuggest, always in UTC.
	Suggested time.Time

	// Err is set for KindMalformed.
	Err error
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindOK:
		return "OK"
	case KindSuggest:
		return fmt.Sprintf("change to %s", o.Suggested)
	case KindMalformed:
		if o.Err == nil {
			return "malformed"
		}
		return o.Err.Error()
	default:
		return UnknownGlyph
	}
}

// Interpretation names a timezone assumed for a filename timestamp.
type Interpretation string

const (
	// InterpretUTC reads the filename timestamp as UTC.
	InterpretUTC Interpretation = "utc"
	// InterpretLocal reads the filename timestamp in the range's timezone.
	InterpretLocal Interpretation = "local"
)

// ErrUnknownInterpretation is returned by ParseInterpretations.
var ErrUnknownInterpretation = errors.New("unknown interpretation")

// DefaultOrder tries UTC before the range's timezone.
var DefaultOrder = []Interpretation{InterpretUTC, InterpretLocal}

// ParseInterpretations parses names such as "utc" and "local".
func ParseInterpretations(names []string) ([]Interpretation, error) {
	order := make([]Interpretation, 0, len(names))
	seen := make(map[Interpretation]bool, len(names))
	for _, name := range names {
		in := Interpretation(strings.ToLower(strings.TrimSpace(name)))
		if in != InterpretUTC && in != InterpretLocal {
			return nil, fmt.Errorf("%w: %q", ErrUnknownInterpretation, name)
		}
		if seen[in] {
			continue
		}
		seen[in] = true
		order = append(order, in)
	}
	return order, nil
}

// Options configures a Reconciler.
type Options struct {
	// Extractor finds the filename timestamp. If nil, namestamp.Default is used.
	Extractor *namestamp.Extractor

	// Order is the sequence of interpretations tried when looking for a
	// correction. If empty, DefaultOrder is used.
	Order []Interpretation

	// Resolution is the precision at which a recorded timestamp must agree with
	// the filename. If zero, one minute is used.
	Resolution time.Duration
}

// Reconciler classifies records. It holds no mutable state and is safe for
// concurrent use.
type Reconciler struct {
	extractor  *namestamp.Extractor
	order      []Interpretation
	resolution time.Duration
}

// New returns a Reconciler configured by opts.
func New(opts Options) *Reconciler {
	r := &Reconciler{
		extractor:  opts.Extractor,
		order:      append([]Interpretation(nil), opts.Order...),
		resolution: opts.Resolution,
	}
	if r.extractor == nil {
		r.extractor = namestamp.Default()
	}
	if len(r.order) == 0 {
		r.order = append(r.order, DefaultOrder...)
	}
	if r.resolution <= 0 {
		r.resolution = time.Minute
	}
	return r
}

var defaultReconciler = New(Options{})

// Classify uses the default Reconciler.
func Classify(filename string, recorded time.Time, rng timerange.Range) Outcome {
	return defaultReconciler.Classify(filename, recorded, rng)
}

// Classify decides what to do with a record.
//
// An in-range recorded time is accepted when the filename has no timestamp, or
// when it agrees with the filename (read as UTC or as the range's timezone) at
// the configured resolution. Otherwise the first interpretation of the filename
// timestamp that falls in range is suggested.
func (r *Reconciler) Classify(filename string, recorded time.Time, rng timerange.Range) Outcome {
	c, found, err := r.extractor.Extract(filename)
	if err != nil {
		return Outcome{Kind: KindMalformed, Err: err}
	}

	if rng.Contains(recorded) {
		if !found {
			return Outcome{Kind: KindOK}
		}

		rec := recorded.Truncate(r.resolution)
		for _, in := range []Interpretation{InterpretUTC, InterpretLocal} {
			if rec.Equal(r.interpret(c, in, rng).Truncate(r.resolution)) {
				return Outcome{Kind: KindOK}
			}
		}
	}

	if !found {
		return Outcome{Kind: KindUnknown}
	}

	for _, in := range r.order {
		d := r.interpret(c, in, rng)
		if rng.Contains(d) {
			return Outcome{Kind: KindSuggest, Suggested: d.UTC()}
		}
	}

	return Outcome{Kind: KindUnknown}
}

func (r *Reconciler) interpret(c namestamp.Candidate, in Interpretation, rng timerange.Range) time.Time {
	if in == InterpretLocal {
		return c.In(rng.Location())
	}
	return c.In(time.UTC)
}
