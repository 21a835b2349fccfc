// Package record defines the enrichment record persisted for each input title.
package record

// ErrorNoResult marks a record whose enrichment found no candidates. Records
// carrying an error are terminal: later runs never retry them.
const ErrorNoResult = "no_result"

// Record holds the bibliographic metadata collected for one input title.
//
// InputTitle and CacheKey are identity and immutable once cached. CacheKey is
// always the normalized form of InputTitle, never of Title. A record is written
// exactly once; the hands-off fields stay zero for terminal records.
type Record struct {
	InputTitle string   `json:"input_title"`
	CacheKey   string   `json:"cache_key"`
	Title      string   `json:"title,omitempty"` // title as reported by the source
	Authors    []string `json:"authors"`
	Year       int      `json:"year,omitempty"`
	Venue      string   `json:"venue,omitempty"`
	Citations  *int     `json:"citations,omitempty"` // nil when unknown, never negative
	URL        string   `json:"url,omitempty"`
	Source     string   `json:"source"` // provenance tag of the producing system
	Error      string   `json:"error,omitempty"`
}

// NoResult builds the terminal record persisted when a search produced no
// candidates for the title.
func NoResult(inputTitle, cacheKey, source string) *Record {
	return &Record{
		InputTitle: inputTitle,
		CacheKey:   cacheKey,
		Authors:    []string{},
		Source:     source,
		Error:      ErrorNoResult,
	}
}

// Terminal reports whether this record represents a failed enrichment attempt
// that should never be retried.
func (r *Record) Terminal() bool {
	return r.Error != ""
}

// Resolved reports whether the record carries source metadata.
func (r *Record) Resolved() bool {
	return r.Error == "" && r.Title != ""
}
