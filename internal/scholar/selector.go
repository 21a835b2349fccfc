package scholar

import (
	"context"
	"errors"

	"citefill/internal/title"
)

// DefaultProbeWindow is how many candidates SelectBest examines before
// settling for the fallback.
const DefaultProbeWindow = 5

// SelectBest probes up to maxProbe candidates from the source, returning the
// first whose normalized title equals queryKey. If no candidate matches
// exactly within the window, it falls back to the first candidate seen: ranked
// results are usually still relevant even without a literal title match.
//
// Result is tri-state: (cand, nil) for a match or fallback, (nil, nil) when
// the source yielded no candidates at all, and (nil, err) for any failure
// other than normal exhaustion.
func SelectBest(ctx context.Context, queryKey string, src CandidateSource, maxProbe int) (*Candidate, error) {
	if maxProbe <= 0 {
		maxProbe = DefaultProbeWindow
	}

	var first *Candidate
	for i := 0; i < maxProbe; i++ {
		cand, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrExhausted) {
				break
			}
			return nil, err
		}

		// A title-less candidate can never match exactly, but may still
		// become the fallback if it was first.
		if queryKey != "" && cand.Title != "" && title.Normalize(cand.Title) == queryKey {
			return cand, nil
		}
		if first == nil {
			first = cand
		}
	}

	return first, nil
}
