// Package enrich drives the resumable enrichment loop: it diffs the input
// title list against the cache, searches for each missing title, selects the
// best candidate, and writes through the cache store one record at a time.
package enrich

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"citefill/internal/cache"
	"citefill/internal/record"
	"citefill/internal/scholar"
	"citefill/internal/title"
)

// Default politeness window between external search calls.
const (
	DefaultMinDelay = 5 * time.Second
	DefaultMaxDelay = 10 * time.Second
)

// Searcher is the external bibliographic search capability.
type Searcher interface {
	// Search returns a lazy candidate stream for the query.
	Search(ctx context.Context, query string) scholar.CandidateSource

	// SourceTag identifies the search system for record provenance.
	SourceTag() string
}

// Report summarizes one orchestrator pass.
type Report struct {
	UniqueTitles int `json:"unique_titles"`
	Cached       int `json:"cached"`
	Pruned       int `json:"pruned"`
	Remaining    int `json:"remaining"`
	Enriched     int `json:"enriched"`
	NoResult     int `json:"no_result"`
}

// Orchestrator runs enrichment passes. Construct with New.
type Orchestrator struct {
	store    *cache.Store
	search   Searcher
	probe    int
	minDelay time.Duration
	maxDelay time.Duration
	limit    int       // max titles per pass, 0 = unlimited
	progress io.Writer // nil disables progress lines
	sleep    func(time.Duration)
	randFn   func() float64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProbeWindow sets how many candidates are examined per title.
func WithProbeWindow(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.probe = n
		}
	}
}

// WithDelayWindow sets the randomized politeness window between searches.
func WithDelayWindow(min, max time.Duration) Option {
	return func(o *Orchestrator) {
		o.minDelay, o.maxDelay = min, max
	}
}

// WithLimit caps how many titles one pass will process.
func WithLimit(n int) Option {
	return func(o *Orchestrator) {
		o.limit = n
	}
}

// WithProgress directs per-title progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) {
		o.progress = w
	}
}

// withSleep replaces the sleep function, for tests.
func withSleep(fn func(time.Duration)) Option {
	return func(o *Orchestrator) {
		o.sleep = fn
	}
}

// New creates an Orchestrator over the given store and search capability.
func New(store *cache.Store, search Searcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:    store,
		search:   search,
		probe:    scholar.DefaultProbeWindow,
		minDelay: DefaultMinDelay,
		maxDelay: DefaultMaxDelay,
		sleep:    time.Sleep,
		randFn:   rand.Float64,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DedupeTitles removes duplicate titles by normalized key, preserving
// first-seen order. Titles that normalize to the empty key are dropped.
func DedupeTitles(titles []string) []string {
	out := make([]string, 0, len(titles))
	seen := make(map[string]bool, len(titles))
	for _, t := range titles {
		k := title.Normalize(t)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

// Run performs one enrichment pass over the title list. Every resolved or
// no-result outcome is persisted immediately, so an interrupted run loses at
// most the in-flight title. Any search failure other than clean exhaustion
// aborts the pass: the unresolved title stays absent from the cache and is
// retried on the next run.
func (o *Orchestrator) Run(ctx context.Context, titles []string) (*Report, error) {
	unique := DedupeTitles(titles)

	valid := make(map[string]bool, len(unique))
	for _, t := range unique {
		valid[title.Normalize(t)] = true
	}

	report := &Report{UniqueTitles: len(unique)}

	report.Pruned = o.store.Prune(valid)
	if report.Pruned > 0 {
		if err := o.store.Persist(); err != nil {
			return report, fmt.Errorf("persisting pruned cache: %w", err)
		}
	}
	report.Cached = o.store.Len()

	var remaining []string
	for _, t := range unique {
		if !o.store.Has(title.Normalize(t)) {
			remaining = append(remaining, t)
		}
	}
	report.Remaining = len(remaining)

	if o.limit > 0 && len(remaining) > o.limit {
		remaining = remaining[:o.limit]
	}

	for i, t := range remaining {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		key := title.Normalize(t)
		if o.progress != nil {
			fmt.Fprintf(o.progress, "[%d/%d] %s\n", i+1, len(remaining), t)
		}

		// Quote the title so the source treats it as a phrase.
		src := o.search.Search(ctx, `"`+t+`"`)
		cand, err := scholar.SelectBest(ctx, key, src, o.probe)
		if err != nil {
			return report, fmt.Errorf("enriching %q: %w", t, err)
		}

		var rec *record.Record
		if cand == nil {
			rec = record.NoResult(t, key, o.search.SourceTag())
			report.NoResult++
		} else {
			rec = recordFromCandidate(t, key, cand, o.search.SourceTag())
			report.Enriched++
		}

		o.store.Put(rec)
		if err := o.store.Persist(); err != nil {
			return report, fmt.Errorf("persisting %q: %w", t, err)
		}

		o.pause()
	}

	return report, nil
}

// recordFromCandidate builds the cache record for an accepted candidate.
func recordFromCandidate(inputTitle, key string, cand *scholar.Candidate, source string) *record.Record {
	rec := &record.Record{
		InputTitle: inputTitle,
		CacheKey:   key,
		Title:      cand.Title,
		Authors:    []string(cand.Authors),
		Year:       cand.Year,
		Venue:      cand.Venue,
		URL:        cand.URL,
		Source:     source,
	}
	if rec.Authors == nil {
		rec.Authors = []string{}
	}
	if cand.Citations.Valid {
		n := cand.Citations.Value
		rec.Citations = &n
	}
	return rec
}

// pause sleeps a random duration within the politeness window.
func (o *Orchestrator) pause() {
	if o.maxDelay <= 0 {
		return
	}
	d := o.minDelay
	if o.maxDelay > o.minDelay {
		d += time.Duration(o.randFn() * float64(o.maxDelay-o.minDelay))
	}
	if d > 0 {
		o.sleep(d)
	}
}
