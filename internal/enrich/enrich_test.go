package enrich

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"citefill/internal/cache"
	"citefill/internal/record"
	"citefill/internal/scholar"
)

// sliceSource yields candidates from a slice, then finishErr or ErrExhausted.
type sliceSource struct {
	cands     []scholar.Candidate
	pos       int
	finishErr error
}

func (s *sliceSource) Next(ctx context.Context) (*scholar.Candidate, error) {
	if s.pos >= len(s.cands) {
		if s.finishErr != nil {
			return nil, s.finishErr
		}
		return nil, scholar.ErrExhausted
	}
	c := &s.cands[s.pos]
	s.pos++
	return c, nil
}

// stubSearcher serves canned results per unquoted title and counts queries.
type stubSearcher struct {
	results map[string][]scholar.Candidate
	failOn  string // unquoted title that triggers a transport error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string) scholar.CandidateSource {
	title := strings.Trim(query, `"`)
	s.queries = append(s.queries, title)
	if title == s.failOn {
		return &sliceSource{finishErr: scholar.ErrNetworkError}
	}
	return &sliceSource{cands: s.results[title]}
}

func (s *stubSearcher) SourceTag() string {
	return "stub"
}

// exact returns a one-candidate result set whose title matches exactly.
func exact(title string) []scholar.Candidate {
	return []scholar.Candidate{{Title: title, Year: 2020}}
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.Load(filepath.Join(t.TempDir(), "enriched.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return store
}

func TestDedupeTitles(t *testing.T) {
	got := DedupeTitles([]string{"Deep Learning", "deep learning", "Transformers", "", "??", "DEEP   LEARNING"})
	want := []string{"Deep Learning", "Transformers"}
	if len(got) != len(want) {
		t.Fatalf("DedupeTitles() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DedupeTitles()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRun_EnrichesDedupedTitles(t *testing.T) {
	store := newTestStore(t)
	searcher := &stubSearcher{results: map[string][]scholar.Candidate{
		"Deep Learning": exact("Deep Learning"),
		"Transformers":  exact("Transformers"),
	}}

	orch := New(store, searcher, WithDelayWindow(0, 0))
	report, err := orch.Run(context.Background(), []string{"Deep Learning", "deep learning", "Transformers"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.UniqueTitles != 2 || report.Enriched != 2 || report.NoResult != 0 {
		t.Errorf("report = %+v, want 2 unique, 2 enriched", report)
	}
	if store.Len() != 2 {
		t.Fatalf("store has %d records, want 2", store.Len())
	}
	for _, key := range []string{"deep learning", "transformers"} {
		rec, ok := store.Get(key)
		if !ok {
			t.Fatalf("missing record for %q", key)
		}
		if rec.CacheKey != key {
			t.Errorf("CacheKey = %q, want %q", rec.CacheKey, key)
		}
		if rec.Source != "stub" {
			t.Errorf("Source = %q, want stub", rec.Source)
		}
	}

	// Persisted state matches in-memory state.
	reloaded, err := cache.Load(store.Path())
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("persisted store has %d records, want 2", reloaded.Len())
	}
}

func TestRun_SecondPassQueriesNothing(t *testing.T) {
	store := newTestStore(t)
	searcher := &stubSearcher{results: map[string][]scholar.Candidate{
		"Deep Learning": exact("Deep Learning"),
		"No Such Paper": nil, // yields a terminal no_result record
	}}
	titles := []string{"Deep Learning", "No Such Paper"}

	orch := New(store, searcher, WithDelayWindow(0, 0))
	if _, err := orch.Run(context.Background(), titles); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if len(searcher.queries) != 2 {
		t.Fatalf("first pass made %d queries, want 2", len(searcher.queries))
	}

	report, err := orch.Run(context.Background(), titles)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if len(searcher.queries) != 2 {
		t.Errorf("second pass made %d extra queries, want 0", len(searcher.queries)-2)
	}
	if report.Remaining != 0 || report.Cached != 2 {
		t.Errorf("second pass report = %+v, want all cached", report)
	}
}

func TestRun_NoResultRecordIsTerminal(t *testing.T) {
	store := newTestStore(t)
	searcher := &stubSearcher{results: map[string][]scholar.Candidate{}}

	orch := New(store, searcher, WithDelayWindow(0, 0))
	report, err := orch.Run(context.Background(), []string{"Ghost Paper"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.NoResult != 1 {
		t.Errorf("NoResult = %d, want 1", report.NoResult)
	}

	rec, ok := store.Get("ghost paper")
	if !ok {
		t.Fatal("no_result record not stored")
	}
	if !rec.Terminal() || rec.Error != record.ErrorNoResult {
		t.Errorf("record = %+v, want terminal no_result", rec)
	}
}

func TestRun_TransportErrorAbortsBatch(t *testing.T) {
	store := newTestStore(t)
	searcher := &stubSearcher{
		results: map[string][]scholar.Candidate{
			"First":  exact("First"),
			"Third":  exact("Third"),
			"Second": exact("Second"),
		},
		failOn: "Second",
	}

	orch := New(store, searcher, WithDelayWindow(0, 0))
	_, err := orch.Run(context.Background(), []string{"First", "Second", "Third"})
	if err == nil {
		t.Fatal("Run() should fail when a query hits a transport error")
	}
	if !strings.Contains(err.Error(), "Second") {
		t.Errorf("error %q should name the failing title", err)
	}

	// Completed work is kept; the failing and later titles stay unresolved.
	if !store.Has("first") {
		t.Error("completed record for 'First' should be persisted")
	}
	if store.Has("second") || store.Has("third") {
		t.Error("failed/unreached titles must stay absent so the next run retries them")
	}
}

func TestRun_PrunesStaleEntries(t *testing.T) {
	store := newTestStore(t)
	searcher := &stubSearcher{results: map[string][]scholar.Candidate{
		"Kept":    exact("Kept"),
		"Removed": exact("Removed"),
	}}

	orch := New(store, searcher, WithDelayWindow(0, 0))
	if _, err := orch.Run(context.Background(), []string{"Kept", "Removed"}); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	report, err := orch.Run(context.Background(), []string{"Kept"})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if report.Pruned != 1 {
		t.Errorf("Pruned = %d, want 1", report.Pruned)
	}
	if store.Has("removed") {
		t.Error("stale entry should be pruned")
	}

	reloaded, err := cache.Load(store.Path())
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if reloaded.Has("removed") {
		t.Error("prune should be persisted immediately")
	}
}

func TestRun_RespectsLimit(t *testing.T) {
	store := newTestStore(t)
	searcher := &stubSearcher{results: map[string][]scholar.Candidate{
		"A": exact("A"), "B": exact("B"), "C": exact("C"),
	}}

	orch := New(store, searcher, WithDelayWindow(0, 0), WithLimit(2))
	report, err := orch.Run(context.Background(), []string{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Enriched != 2 {
		t.Errorf("Enriched = %d, want 2 with limit", report.Enriched)
	}
	if len(searcher.queries) != 2 {
		t.Errorf("made %d queries, want 2", len(searcher.queries))
	}
}

func TestRun_SleepsBetweenTitles(t *testing.T) {
	store := newTestStore(t)
	searcher := &stubSearcher{results: map[string][]scholar.Candidate{
		"A": exact("A"), "B": exact("B"),
	}}

	sleeps := 0
	orch := New(store, searcher, withSleep(func(time.Duration) {
		sleeps++
	}))
	if _, err := orch.Run(context.Background(), []string{"A", "B"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if sleeps != 2 {
		t.Errorf("slept %d times, want one politeness pause per processed title", sleeps)
	}
}

func TestRun_CitationCoercionAndSingleAuthor(t *testing.T) {
	store := newTestStore(t)

	var cand scholar.Candidate
	cand.Title = "Solo Work"
	cand.Authors = scholar.FlexibleAuthors{"Only Author"}
	cand.Citations = scholar.FlexibleInt{Value: 7, Valid: true}
	searcher := &stubSearcher{results: map[string][]scholar.Candidate{
		"Solo Work": {cand},
	}}

	orch := New(store, searcher, WithDelayWindow(0, 0))
	if _, err := orch.Run(context.Background(), []string{"Solo Work"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	rec, _ := store.Get("solo work")
	if rec == nil {
		t.Fatal("record not stored")
	}
	if len(rec.Authors) != 1 || rec.Authors[0] != "Only Author" {
		t.Errorf("Authors = %v, want one-element sequence", rec.Authors)
	}
	if rec.Citations == nil || *rec.Citations != 7 {
		t.Errorf("Citations = %v, want 7", rec.Citations)
	}
}
