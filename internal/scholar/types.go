package scholar

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Candidate is a single search result, prior to being accepted as
// authoritative for a query.
type Candidate struct {
	PaperID   string          `json:"paperId,omitempty"`
	Title     string          `json:"title"`
	Authors   FlexibleAuthors `json:"authors"`
	Year      int             `json:"year,omitempty"`
	Venue     string          `json:"venue,omitempty"`
	Citations FlexibleInt     `json:"citationCount"`
	URL       string          `json:"url,omitempty"`
}

// FlexibleInt can unmarshal from a JSON number or a numeric string. A null,
// malformed, or negative value leaves it invalid rather than failing the
// whole payload.
type FlexibleInt struct {
	Value int
	Valid bool
}

func (f *FlexibleInt) UnmarshalJSON(data []byte) error {
	f.Value, f.Valid = 0, false

	if string(data) == "null" {
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n >= 0 {
			f.Value, f.Valid = n, true
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil && n >= 0 {
			f.Value, f.Valid = n, true
		}
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleInt", string(data))
}

func (f FlexibleInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// FlexibleAuthors can unmarshal from a single string, an array of strings, or
// an array of {name} objects. Sources disagree on the author field shape; a
// lone author string becomes a one-element list.
type FlexibleAuthors []string

func (f *FlexibleAuthors) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = nil
		} else {
			*f = FlexibleAuthors{s}
		}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = FlexibleAuthors(list)
		return nil
	}

	var objs []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &objs); err == nil {
		names := make(FlexibleAuthors, 0, len(objs))
		for _, o := range objs {
			if o.Name != "" {
				names = append(names, o.Name)
			}
		}
		*f = names
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into FlexibleAuthors", string(data))
}
