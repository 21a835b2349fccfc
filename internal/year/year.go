// Package year infers a missing publication year from heterogeneous signals:
// an existing field, free-text extraction, arXiv identifier decoding, and a
// metadata-API lookup, tried in that order.
package year

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"citefill/internal/record"
)

// Default validity bounds for an inferred year. Years outside the bounds are
// treated as noise (page numbers, grant ids, typos).
const (
	DefaultMinYear = 1900
	DefaultMaxYear = 2030
)

// DefaultLookupPause is the politeness delay after a metadata-API call.
const DefaultLookupPause = 500 * time.Millisecond

var (
	yearPattern  = regexp.MustCompile(`(19|20)\d\d`)
	arxivPattern = regexp.MustCompile(`(?i)arxiv[:/ ]?(\d{4})\.\d+`)
)

// Lookup resolves a title to a publication year via an external metadata API.
// A zero year with nil error means "not found".
type Lookup interface {
	LookupYear(ctx context.Context, title string) (int, error)
}

// Engine runs the year-inference fallback chain. The zero value is not
// usable; construct with New.
type Engine struct {
	lookup      Lookup // nil disables the lookup stage
	minYear     int
	maxYear     int
	lookupPause time.Duration
	sleep       func(time.Duration)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLookup enables the metadata-API fallback stage.
func WithLookup(l Lookup) Option {
	return func(e *Engine) {
		e.lookup = l
	}
}

// WithBounds overrides the year validity bounds.
func WithBounds(min, max int) Option {
	return func(e *Engine) {
		e.minYear, e.maxYear = min, max
	}
}

// WithLookupPause overrides the politeness delay after a lookup call.
func WithLookupPause(d time.Duration) Option {
	return func(e *Engine) {
		e.lookupPause = d
	}
}

// withSleep replaces the sleep function, for tests.
func withSleep(fn func(time.Duration)) Option {
	return func(e *Engine) {
		e.sleep = fn
	}
}

// New creates an Engine with default bounds and pacing.
func New(opts ...Option) *Engine {
	e := &Engine{
		minYear:     DefaultMinYear,
		maxYear:     DefaultMaxYear,
		lookupPause: DefaultLookupPause,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// valid reports whether y is within the engine's validity bounds.
func (e *Engine) valid(y int) bool {
	return y >= e.minYear && y <= e.maxYear
}

// extractYear returns the first in-range four-digit year token in text.
func (e *Engine) extractYear(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	for _, tok := range yearPattern.FindAllString(text, -1) {
		y, err := strconv.Atoi(tok)
		if err == nil && e.valid(y) {
			return y, true
		}
	}
	return 0, false
}

// extractArxivYear decodes the year from an arXiv identifier in text.
// Identifiers of the form YYMM.NNNN date from 2007 on, so the two-digit
// prefix always decodes as 20YY.
func (e *Engine) extractArxivYear(text string) (int, bool) {
	if text == "" {
		return 0, false
	}
	m := arxivPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	y, err := strconv.Atoi("20" + m[1][:2])
	if err != nil || !e.valid(y) {
		return 0, false
	}
	return y, true
}

// Infer returns the publication year for the record, or false when no stage
// produced an in-range answer. An already-populated year is returned
// unchanged; it is never overwritten. Stages are mutually exclusive and
// short-circuit in order: existing field, free-text extraction, arXiv
// identifier, metadata-API lookup. Lookup failures of any kind degrade to
// "no answer" rather than aborting.
func (e *Engine) Infer(ctx context.Context, rec *record.Record) (int, bool) {
	if rec.Year != 0 {
		return rec.Year, true
	}

	fields := []string{rec.Venue, rec.URL, rec.Title}
	for _, f := range fields {
		if y, ok := e.extractYear(f); ok {
			return y, true
		}
	}

	for _, f := range fields {
		if y, ok := e.extractArxivYear(f); ok {
			return y, true
		}
	}

	if e.lookup != nil && rec.Title != "" {
		y, err := e.lookup.LookupYear(ctx, rec.Title)
		e.sleep(e.lookupPause)
		if err == nil && e.valid(y) {
			return y, true
		}
	}

	return 0, false
}

// Fill infers years for every record missing one, setting the field in place,
// and returns how many records gained a year.
func (e *Engine) Fill(ctx context.Context, recs []*record.Record) int {
	updated := 0
	for _, rec := range recs {
		if rec.Year != 0 {
			continue
		}
		if y, ok := e.Infer(ctx, rec); ok {
			rec.Year = y
			updated++
		}
	}
	return updated
}
