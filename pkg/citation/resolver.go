package citation

import (
	"fmt"
	"strings"

	"aided-be/pkg/policy"
)

// Validator resolves raw citation tokens against the policy registry and
// builds deep links into the registered documents.
type Validator struct {
	registry *policy.Registry
}

func NewValidator(registry *policy.Registry) *Validator {
	return &Validator{registry: registry}
}

// ParseAndValidate parses all citation markers in text and validates each
// one against the registry.
func (v *Validator) ParseAndValidate(text string) []Record {
	records := Parse(text)
	for i := range records {
		v.validate(&records[i])
	}
	return records
}

func (v *Validator) validate(rec *Record) {
	doc, ok := v.Canonical(rec.Source)
	if ok {
		rec.DocId = doc.Id
	}
	baseOk := ok && doc.URL != ""
	pageOk := rec.Page > 0
	rec.Valid = baseOk && pageOk
	if !baseOk {
		return
	}
	if pageOk {
		rec.URL = fmt.Sprintf("%s#page=%d", doc.URL, rec.Page)
	} else {
		rec.URL = doc.URL
	}
}

// Canonical maps a raw source token to a registered document. Exact ids
// resolve directly; anything else goes through the keyword heuristic.
func (v *Validator) Canonical(source string) (policy.Document, bool) {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "" {
		return policy.Document{}, false
	}
	if doc, ok := v.registry.Document(s); ok {
		return doc, true
	}
	// Applies equally to .txt artifacts and unknown tokens; the default
	// is the certificate document.
	return v.byKeyword(s)
}

func (v *Validator) byKeyword(s string) (policy.Document, bool) {
	if strings.Contains(s, "short") {
		return v.registry.DocumentByCategory(policy.CategorySummary)
	}
	return v.registry.DocumentByCategory(policy.CategoryCertificate)
}
