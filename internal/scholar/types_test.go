package scholar

import (
	"encoding/json"
	"testing"
)

func TestFlexibleInt_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValue int
		wantValid bool
	}{
		{"number", `17`, 17, true},
		{"zero", `0`, 0, true},
		{"numeric string", `"123"`, 123, true},
		{"padded string", `" 7 "`, 7, true},
		{"null", `null`, 0, false},
		{"garbage string", `"many"`, 0, false},
		{"negative number", `-3`, 0, false},
		{"negative string", `"-3"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleInt
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if f.Value != tt.wantValue || f.Valid != tt.wantValid {
				t.Errorf("Unmarshal(%s) = {%d %v}, want {%d %v}",
					tt.input, f.Value, f.Valid, tt.wantValue, tt.wantValid)
			}
		})
	}
}

func TestFlexibleAuthors_Unmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single string", `"A Single Author"`, []string{"A Single Author"}},
		{"string array", `["A One", "B Two"]`, []string{"A One", "B Two"}},
		{"object array", `[{"authorId": "1", "name": "C Three"}, {"name": "D Four"}]`, []string{"C Three", "D Four"}},
		{"null", `null`, nil},
		{"empty string", `""`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexibleAuthors
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.input, err)
			}
			if len(f) != len(tt.want) {
				t.Fatalf("Unmarshal(%s) = %v, want %v", tt.input, f, tt.want)
			}
			for i := range f {
				if f[i] != tt.want[i] {
					t.Errorf("Unmarshal(%s)[%d] = %q, want %q", tt.input, i, f[i], tt.want[i])
				}
			}
		})
	}
}

func TestCandidate_UnmarshalSearchResult(t *testing.T) {
	payload := `{
		"paperId": "abc123",
		"title": "Deep learning",
		"authors": [{"authorId": "1", "name": "Y LeCun"}],
		"year": 2015,
		"venue": "Nature",
		"citationCount": "60000",
		"url": "https://example.org/dl"
	}`

	var c Candidate
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if c.Title != "Deep learning" || c.Year != 2015 || c.Venue != "Nature" {
		t.Errorf("fields = %+v", c)
	}
	if len(c.Authors) != 1 || c.Authors[0] != "Y LeCun" {
		t.Errorf("Authors = %v, want [Y LeCun]", c.Authors)
	}
	if !c.Citations.Valid || c.Citations.Value != 60000 {
		t.Errorf("Citations = %+v, want coerced 60000", c.Citations)
	}
}
