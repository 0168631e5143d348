package citation

import (
	"regexp"
	"strconv"
	"strings"
)

// Record is one parsed citation marker from a model answer.
// Source is the raw token as written by the model; DocId and URL are
// filled in during validation against the policy registry.
type Record struct {
	Source string `json:"source"`
	DocId  string `json:"doc_id,omitempty"`
	Page   int    `json:"page"`
	Valid  bool   `json:"valid"`
	URL    string `json:"url,omitempty"`
}

// Label returns the display form of the citation, "doc | PAGE n".
func (r Record) Label() string {
	id := r.DocId
	if id == "" {
		id = r.Source
	}
	return id + " | PAGE " + strconv.Itoa(r.Page)
}

// The marker is matched case-sensitively and bit-exactly on the phrase
// "Where I found this:". The source token may optionally be wrapped in
// angle brackets.
var citeRe = regexp.MustCompile(`Where I found this:\s*<?([^\s|>]+)>?\s*\|\s*PAGE\s*(\d+)`)

var (
	citeLineRe      = regexp.MustCompile(`(?m)^\s*Where I found this:\s*<?[^\s|>]+>?\s*\|\s*PAGE\s*\d+\s*$`)
	sourcesHeaderRe = regexp.MustCompile(`(?m)^\s*Sources\s*$`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// Parse extracts every citation marker from text, in order of appearance.
// Duplicates are preserved. Only Source and Page are filled; validation
// is a separate step.
func Parse(text string) []Record {
	matches := citeRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	records := make([]Record, 0, len(matches))
	for _, m := range matches {
		page, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		records = append(records, Record{Source: m[1], Page: page})
	}
	return records
}

// StripLines removes citation marker lines and bare "Sources" headers
// from text, then collapses runs of blank lines left behind.
func StripLines(text string) string {
	out := citeLineRe.ReplaceAllString(text, "")
	out = sourcesHeaderRe.ReplaceAllString(out, "")
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
