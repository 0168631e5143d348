package policy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document categories as they appear in the registry CSV.
const (
	CategorySummary     = "summary"
	CategoryCertificate = "full-certificate"
)

// Document is one source file describing a plan's terms.
// Id is the canonical filename-like token used by citations.
type Document struct {
	Id       string `json:"id"`
	Category string `json:"category"`
	Label    string `json:"label"`
	URL      string `json:"url"`
}

// Policy is one selectable insurance plan with its ordered documents.
type Policy struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	Documents []Document `json:"documents"`
}

// Registry is the immutable policy/document catalog, loaded once at startup.
type Registry struct {
	policies []Policy
	byPolicy map[string]*Policy
	byDocId  map[string]Document
}

func NewRegistry(policies []Policy) *Registry {
	r := &Registry{
		policies: policies,
		byPolicy: make(map[string]*Policy),
		byDocId:  make(map[string]Document),
	}
	for i := range r.policies {
		p := &r.policies[i]
		r.byPolicy[strings.ToLower(p.Id)] = p
		for _, d := range p.Documents {
			r.byDocId[strings.ToLower(d.Id)] = d
		}
	}
	return r
}

// Default returns the registry for the reference deployment (ASU SHIP, two documents).
func Default() *Registry {
	return NewRegistry([]Policy{
		{
			Id:   "asu-ship",
			Name: "ASU SHIP",
			Documents: []Document{
				{
					Id:       "asu_ship_short_plan.pdf",
					Category: CategorySummary,
					Label:    "ASU Plan Summary",
					URL:      "https://eoss.asu.edu/health/billing-insurance/coverage-options",
				},
				{
					Id:       "asu_ship_certificate.pdf",
					Category: CategoryCertificate,
					Label:    "Certificate / Full Policy",
					URL:      "https://www.uhcsr.com/asu",
				},
			},
		},
	})
}

// LoadCSV reads a registry from a CSV file with the header
// policy_id,policy_name,doc_id,category,label,url. Rows for the same
// policy_id accumulate documents in file order.
func LoadCSV(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry file: %w", err)
	}
	defer f.Close()

	return parseCSV(f)
}

func parseCSV(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read registry header: %w", err)
	}
	if len(header) < 6 {
		return nil, fmt.Errorf("registry header has %d columns, want 6", len(header))
	}

	var ordered []string
	grouped := make(map[string]*Policy)

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read registry row %d: %w", line, err)
		}
		if len(row) < 6 {
			return nil, fmt.Errorf("registry row %d has %d columns, want 6", line, len(row))
		}

		policyId := strings.TrimSpace(row[0])
		if policyId == "" {
			return nil, fmt.Errorf("registry row %d: empty policy_id", line)
		}

		p, ok := grouped[policyId]
		if !ok {
			p = &Policy{Id: policyId, Name: strings.TrimSpace(row[1])}
			grouped[policyId] = p
			ordered = append(ordered, policyId)
		}
		p.Documents = append(p.Documents, Document{
			Id:       strings.TrimSpace(row[2]),
			Category: strings.TrimSpace(row[3]),
			Label:    strings.TrimSpace(row[4]),
			URL:      strings.TrimSpace(row[5]),
		})
	}

	if len(ordered) == 0 {
		return nil, fmt.Errorf("registry contains no policies")
	}

	policies := make([]Policy, 0, len(ordered))
	for _, id := range ordered {
		policies = append(policies, *grouped[id])
	}
	return NewRegistry(policies), nil
}

// Policies returns all policies in declaration order.
func (r *Registry) Policies() []Policy {
	return r.policies
}

// Policy looks up a policy by id (case-insensitive).
func (r *Registry) Policy(id string) (*Policy, bool) {
	p, ok := r.byPolicy[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// Document looks up a document by its canonical id (case-insensitive exact match).
func (r *Registry) Document(id string) (Document, bool) {
	d, ok := r.byDocId[strings.ToLower(strings.TrimSpace(id))]
	return d, ok
}

// DocumentByCategory returns the first document declared with the given
// category, across all policies. Used by the citation heuristic.
func (r *Registry) DocumentByCategory(category string) (Document, bool) {
	for _, p := range r.policies {
		for _, d := range p.Documents {
			if d.Category == category {
				return d, true
			}
		}
	}
	return Document{}, false
}
