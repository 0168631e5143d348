package answer

import (
	"context"
	"errors"
	"testing"

	"aided-be/pkg/citation"
	"aided-be/pkg/llm"
	"aided-be/pkg/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected call")
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

const (
	citedAnswer  = "The copay is $25.\nWhere I found this: asu_ship_certificate.pdf | PAGE 12"
	bareAnswer   = "The copay is $25, I think."
	questionText = "what is the urgent care copay"
)

func newPipeline(p llm.Provider) *Pipeline {
	return NewPipeline(p, citation.NewValidator(policy.Default()))
}

func ask(t *testing.T, p *Pipeline, question string, ledger map[string]int) Result {
	t.Helper()
	res, err := p.Ask(context.Background(), []llm.Message{{Role: "user", Content: question}}, question, ledger)
	require.NoError(t, err)
	return res
}

func TestAskVerifiedFirstPass(t *testing.T) {
	provider := &fakeProvider{responses: []string{citedAnswer}}
	p := newPipeline(provider)

	res := ask(t, p, questionText, map[string]int{})
	assert.True(t, res.Verified)
	assert.False(t, res.Retried)
	assert.Equal(t, 1, provider.calls)
	require.Len(t, res.Citations, 1)
	assert.True(t, res.Citations[0].Valid)
}

func TestAskRetriesOnceWhenUnverified(t *testing.T) {
	provider := &fakeProvider{responses: []string{bareAnswer, citedAnswer}}
	p := newPipeline(provider)

	res := ask(t, p, questionText, map[string]int{})
	assert.True(t, res.Verified)
	assert.True(t, res.Retried)
	assert.Equal(t, 2, provider.calls)
}

func TestAskRetryBudgetIsPerQuestion(t *testing.T) {
	provider := &fakeProvider{responses: []string{bareAnswer, bareAnswer, bareAnswer}}
	p := newPipeline(provider)
	ledger := map[string]int{}

	res := ask(t, p, questionText, ledger)
	assert.False(t, res.Verified)
	assert.True(t, res.Retried)
	assert.Equal(t, 2, provider.calls)

	// Same question again: the budget is spent, no second retry.
	res = ask(t, p, questionText, ledger)
	assert.False(t, res.Verified)
	assert.False(t, res.Retried)
	assert.Equal(t, 3, provider.calls)
}

func TestAskLedgerKeyNormalizesWhitespaceAndCase(t *testing.T) {
	provider := &fakeProvider{responses: []string{bareAnswer, bareAnswer, bareAnswer}}
	p := newPipeline(provider)
	ledger := map[string]int{}

	ask(t, p, "What IS the   copay", ledger)
	res := ask(t, p, "what is the copay", ledger)
	assert.False(t, res.Retried)
}

func TestAskRetryFailureFallsBackToFirstAnswer(t *testing.T) {
	provider := &fakeProvider{
		responses: []string{bareAnswer, ""},
		errs:      []error{nil, errors.New("boom")},
	}
	p := newPipeline(provider)

	res := ask(t, p, questionText, map[string]int{})
	assert.Equal(t, bareAnswer, res.Text)
	assert.False(t, res.Verified)
	assert.True(t, res.Retried)
}

func TestAskFirstCallErrorPropagates(t *testing.T) {
	provider := &fakeProvider{errs: []error{llm.ErrRateLimited}}
	p := newPipeline(provider)

	_, err := p.Ask(context.Background(), nil, questionText, map[string]int{})
	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}
