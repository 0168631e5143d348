package service

import (
	"context"
	"fmt"

	"aided-be/internal/dto"
	"aided-be/pkg/policy"
)

type IPolicyService interface {
	GetPolicies(ctx context.Context) ([]dto.PolicyDTO, error)
	GetDocuments(ctx context.Context, policyId string) ([]dto.PolicyDocumentDTO, error)
}

type policyService struct {
	registry *policy.Registry
}

func NewPolicyService(registry *policy.Registry) IPolicyService {
	return &policyService{registry: registry}
}

func (ps *policyService) GetPolicies(_ context.Context) ([]dto.PolicyDTO, error) {
	policies := ps.registry.Policies()
	out := make([]dto.PolicyDTO, 0, len(policies))
	for _, p := range policies {
		out = append(out, toPolicyDTO(p))
	}
	return out, nil
}

func (ps *policyService) GetDocuments(_ context.Context, policyId string) ([]dto.PolicyDocumentDTO, error) {
	p, ok := ps.registry.Policy(policyId)
	if !ok {
		return nil, fmt.Errorf("unknown policy: %s", policyId)
	}
	out := make([]dto.PolicyDocumentDTO, 0, len(p.Documents))
	for _, d := range p.Documents {
		out = append(out, toDocumentDTO(d))
	}
	return out, nil
}

func toPolicyDTO(p policy.Policy) dto.PolicyDTO {
	docs := make([]dto.PolicyDocumentDTO, 0, len(p.Documents))
	for _, d := range p.Documents {
		docs = append(docs, toDocumentDTO(d))
	}
	return dto.PolicyDTO{Id: p.Id, Name: p.Name, Documents: docs}
}

func toDocumentDTO(d policy.Document) dto.PolicyDocumentDTO {
	return dto.PolicyDocumentDTO{Id: d.Id, Category: d.Category, Label: d.Label, URL: d.URL}
}
