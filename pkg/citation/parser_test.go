package citation

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantCount  int
		wantSource string
		wantPage   int
	}{
		{
			name:       "plain marker",
			text:       "The copay is $25.\nWhere I found this: asu_ship_certificate.pdf | PAGE 12",
			wantCount:  1,
			wantSource: "asu_ship_certificate.pdf",
			wantPage:   12,
		},
		{
			name:       "angle bracketed source",
			text:       "Where I found this: <asu_ship_short_plan.pdf> | PAGE 3",
			wantCount:  1,
			wantSource: "asu_ship_short_plan.pdf",
			wantPage:   3,
		},
		{
			name:       "marker inline mid sentence",
			text:       "Covered. Where I found this: cert.pdf | PAGE 7 and that's it.",
			wantCount:  1,
			wantSource: "cert.pdf",
			wantPage:   7,
		},
		{
			name:      "multiple markers preserved in order",
			text:      "A\nWhere I found this: a.pdf | PAGE 1\nB\nWhere I found this: b.pdf | PAGE 2",
			wantCount: 2,
		},
		{
			name:      "lowercase phrase does not match",
			text:      "where i found this: a.pdf | PAGE 1",
			wantCount: 0,
		},
		{
			name:      "missing page does not match",
			text:      "Where I found this: a.pdf | PAGE",
			wantCount: 0,
		},
		{
			name:      "no marker",
			text:      "Just a normal answer about deductibles.",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if len(got) != tt.wantCount {
				t.Fatalf("Parse() count = %d, want %d", len(got), tt.wantCount)
			}
			if tt.wantCount == 1 {
				if got[0].Source != tt.wantSource {
					t.Errorf("Source = %q, want %q", got[0].Source, tt.wantSource)
				}
				if got[0].Page != tt.wantPage {
					t.Errorf("Page = %d, want %d", got[0].Page, tt.wantPage)
				}
			}
		})
	}
}

func TestParseDuplicates(t *testing.T) {
	text := "Where I found this: a.pdf | PAGE 5\nWhere I found this: a.pdf | PAGE 5"
	got := Parse(text)
	if len(got) != 2 {
		t.Fatalf("Parse() count = %d, want 2 (duplicates preserved)", len(got))
	}
}

func TestStripLines(t *testing.T) {
	in := "The ER copay is $200.\nWhere I found this: asu_ship_certificate.pdf | PAGE 31\n\n\nSources\nMore text."
	want := "The ER copay is $200.\n\nMore text."
	if got := StripLines(in); got != want {
		t.Errorf("StripLines() = %q, want %q", got, want)
	}
}

func TestStripLinesKeepsInlineMarkers(t *testing.T) {
	// Only whole marker lines are removed; inline markers stay in the body.
	in := "Covered. Where I found this: a.pdf | PAGE 1 end."
	if got := StripLines(in); got != in {
		t.Errorf("StripLines() = %q, want unchanged", got)
	}
}

func TestRecordLabel(t *testing.T) {
	r := Record{Source: "raw.pdf", Page: 4}
	if got := r.Label(); got != "raw.pdf | PAGE 4" {
		t.Errorf("Label() = %q", got)
	}
	r.DocId = "canonical.pdf"
	if got := r.Label(); got != "canonical.pdf | PAGE 4" {
		t.Errorf("Label() with DocId = %q", got)
	}
}
