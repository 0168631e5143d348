package citation

import (
	"testing"

	"aided-be/pkg/policy"

	"github.com/stretchr/testify/assert"
)

func TestParseAndValidate(t *testing.T) {
	v := NewValidator(policy.Default())

	tests := []struct {
		name      string
		text      string
		wantDocId string
		wantValid bool
		wantURL   string
	}{
		{
			name:      "exact certificate id",
			text:      "Where I found this: asu_ship_certificate.pdf | PAGE 31",
			wantDocId: "asu_ship_certificate.pdf",
			wantValid: true,
			wantURL:   "https://www.uhcsr.com/asu#page=31",
		},
		{
			name:      "exact id case insensitive",
			text:      "Where I found this: ASU_SHIP_Certificate.PDF | PAGE 2",
			wantDocId: "asu_ship_certificate.pdf",
			wantValid: true,
			wantURL:   "https://www.uhcsr.com/asu#page=2",
		},
		{
			name:      "short keyword maps to summary",
			text:      "Where I found this: asu_ship_short_plan.txt | PAGE 4",
			wantDocId: "asu_ship_short_plan.pdf",
			wantValid: true,
			wantURL:   "https://eoss.asu.edu/health/billing-insurance/coverage-options#page=4",
		},
		{
			name:      "extracted text artifact defaults to certificate",
			text:      "Where I found this: asu_ship_extracted.txt | PAGE 3",
			wantDocId: "asu_ship_certificate.pdf",
			wantValid: true,
			wantURL:   "https://www.uhcsr.com/asu#page=3",
		},
		{
			name:      "unknown token defaults to certificate",
			text:      "Where I found this: some_random_doc.pdf | PAGE 9",
			wantDocId: "asu_ship_certificate.pdf",
			wantValid: true,
			wantURL:   "https://www.uhcsr.com/asu#page=9",
		},
		{
			name:      "page zero is invalid",
			text:      "Where I found this: asu_ship_certificate.pdf | PAGE 0",
			wantDocId: "asu_ship_certificate.pdf",
			wantValid: false,
			wantURL:   "https://www.uhcsr.com/asu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.ParseAndValidate(tt.text)
			assert.Len(t, got, 1)
			assert.Equal(t, tt.wantDocId, got[0].DocId)
			assert.Equal(t, tt.wantValid, got[0].Valid)
			assert.Equal(t, tt.wantURL, got[0].URL)
		})
	}
}

func TestCanonicalEmptySource(t *testing.T) {
	v := NewValidator(policy.Default())
	_, ok := v.Canonical("   ")
	assert.False(t, ok)
}
