package dto

import (
	"time"

	"aided-be/pkg/citation"
)

type CreateSessionRequest struct {
	PolicyId string `json:"policy_id,omitempty"`
}

type CreateSessionResponse struct {
	Id       string `json:"id"`
	PolicyId string `json:"policy_id"`
}

type ChoiceDTO struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type MessageDTO struct {
	Id        string            `json:"id"`
	Role      string            `json:"role"`
	Text      string            `json:"text"`
	HTML      string            `json:"html,omitempty"`
	Citations []citation.Record `json:"citations,omitempty"`
	Choices   []ChoiceDTO       `json:"choices,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type SendChatRequest struct {
	Text string `json:"text"`
}

type SendChatResponse struct {
	SessionId string       `json:"session_id"`
	Sent      *MessageDTO  `json:"sent,omitempty"`
	Replies   []MessageDTO `json:"replies"`
	Verified  *bool        `json:"verified,omitempty"`
}

type ChoiceRequest struct {
	Value string `json:"value"`
}

type SelectPolicyRequest struct {
	PolicyId string `json:"policy_id"`
}

type GlossaryRequest struct {
	Term string `json:"term"`
}

type GlossaryResponse struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

type TranscriptResponse struct {
	SessionId string       `json:"session_id"`
	PolicyId  string       `json:"policy_id"`
	Messages  []MessageDTO `json:"messages"`
}

type PolicyDocumentDTO struct {
	Id       string `json:"id"`
	Category string `json:"category"`
	Label    string `json:"label"`
	URL      string `json:"url"`
}

type PolicyDTO struct {
	Id        string              `json:"id"`
	Name      string              `json:"name"`
	Documents []PolicyDocumentDTO `json:"documents"`
}
