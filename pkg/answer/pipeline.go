// Package answer runs the citation-checked question pipeline: ask the
// model, validate the citations it produced, and retry once with a
// stricter instruction when none check out.
package answer

import (
	"context"
	"strings"

	"aided-be/pkg/citation"
	"aided-be/pkg/llm"
)

// strictReminder is appended as an extra instruction on the retry pass.
const strictReminder = "Your previous answer was missing the required source line. " +
	"You MUST end your answer with a line in exactly this format: " +
	"Where I found this: <document file name> | PAGE <number>. " +
	"Use only the plan documents you were given. Answer the question again."

// Result is the outcome of one question through the pipeline.
type Result struct {
	Text      string
	Citations []citation.Record
	Verified  bool
	Retried   bool
}

type Pipeline struct {
	provider  llm.Provider
	validator *citation.Validator
}

func NewPipeline(provider llm.Provider, validator *citation.Validator) *Pipeline {
	return &Pipeline{provider: provider, validator: validator}
}

// Ask sends history to the model and verifies the citations in the reply.
// When no citation validates and the question has not been retried before
// (per the ledger), it asks once more with a stricter instruction. A
// failed retry falls back to the first answer rather than erroring; only
// a failed first call propagates.
func (p *Pipeline) Ask(ctx context.Context, history []llm.Message, question string, ledger map[string]int) (Result, error) {
	first, err := p.provider.Chat(ctx, history)
	if err != nil {
		return Result{}, err
	}

	res := p.evaluate(first)
	if res.Verified {
		return res, nil
	}

	key := ledgerKey(question)
	if ledger[key] > 0 {
		return res, nil
	}
	ledger[key]++

	retryHistory := append(append([]llm.Message{}, history...),
		llm.Message{Role: "model", Content: first},
		llm.Message{Role: "user", Content: strictReminder},
	)
	second, err := p.provider.Chat(ctx, retryHistory)
	if err != nil {
		// Keep the unverified first answer; a retry failure should not
		// cost the user the answer they already have.
		res.Retried = true
		return res, nil
	}

	retried := p.evaluate(second)
	retried.Retried = true
	return retried, nil
}

func (p *Pipeline) evaluate(text string) Result {
	records := p.validator.ParseAndValidate(text)
	verified := false
	for _, r := range records {
		if r.Valid {
			verified = true
			break
		}
	}
	return Result{Text: text, Citations: records, Verified: verified}
}

func ledgerKey(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}
