package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"aided-be/internal/constant"
	"aided-be/internal/dto"
	"aided-be/internal/repository/memory"
	"aided-be/pkg/answer"
	"aided-be/pkg/citation"
	"aided-be/pkg/events"
	"aided-be/pkg/flow"
	"aided-be/pkg/llm"
	"aided-be/pkg/policy"
	"aided-be/pkg/render"

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
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected call")
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.published = append(p.published, evt)
	return nil
}

const citedAnswer = "Urgent care has a $25 copay.\nWhere I found this: asu_ship_certificate.pdf | PAGE 12"

type fixture struct {
	service   IChatService
	provider  *fakeProvider
	publisher *capturingPublisher
	sessionId string
}

func newFixture(t *testing.T, provider *fakeProvider, cooldown time.Duration) *fixture {
	t.Helper()

	registry := policy.Default()
	publisher := &capturingPublisher{}
	svc := NewChatService(
		registry,
		memory.NewSessionRepository(),
		answer.NewPipeline(provider, citation.NewValidator(registry)),
		flow.NewEngine(),
		render.NewRenderer(),
		publisher,
		nopLogger{},
		cooldown,
	)

	created, err := svc.CreateSession(context.Background(), &dto.CreateSessionRequest{})
	require.NoError(t, err)

	return &fixture{
		service:   svc,
		provider:  provider,
		publisher: publisher,
		sessionId: created.Id,
	}
}

func TestCreateSessionDefaultsToFirstPolicy(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)
	assert.NotEmpty(t, f.sessionId)

	created, err := f.service.CreateSession(context.Background(), &dto.CreateSessionRequest{PolicyId: "asu-ship"})
	require.NoError(t, err)
	assert.Equal(t, "asu-ship", created.PolicyId)

	_, err = f.service.CreateSession(context.Background(), &dto.CreateSessionRequest{PolicyId: "nope"})
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestSendChatRejectsEmptyText(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Equal(t, 0, f.provider.calls, "validation failures never reach the model")
}

func TestSendChatUnknownSession(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), "missing", &dto.SendChatRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendChatAnswersWithCitations(t *testing.T) {
	f := newFixture(t, &fakeProvider{responses: []string{citedAnswer}}, time.Nanosecond)

	res, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what is the urgent care copay"})
	require.NoError(t, err)

	require.NotNil(t, res.Verified)
	assert.True(t, *res.Verified)
	require.NotNil(t, res.Sent)
	assert.Equal(t, "what is the urgent care copay", res.Sent.Text)

	// First turn announces the policy before the answer.
	require.GreaterOrEqual(t, len(res.Replies), 2)
	assert.Contains(t, res.Replies[0].Text, "ASU SHIP")

	var answerReply *dto.MessageDTO
	for i := range res.Replies {
		if len(res.Replies[i].Citations) > 0 {
			answerReply = &res.Replies[i]
		}
	}
	require.NotNil(t, answerReply)
	assert.True(t, answerReply.Citations[0].Valid)
	assert.NotContains(t, answerReply.HTML, "Where I found this")

	// Turn event published.
	require.NotEmpty(t, f.publisher.published)
	assert.Equal(t, events.TypeChatTurnCompleted, f.publisher.published[0].EventType())
}

func TestSendChatUnverifiedAddsAdvisoryAndEvent(t *testing.T) {
	bare := "It's probably covered."
	f := newFixture(t, &fakeProvider{responses: []string{bare, bare}}, time.Nanosecond)

	res, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "is acupuncture covered"})
	require.NoError(t, err)

	require.NotNil(t, res.Verified)
	assert.False(t, *res.Verified)

	// The uncited answer is withheld and the fallback shown in its place.
	var foundAdvisory bool
	for _, r := range res.Replies {
		if r.Text == constant.AdvisoryUnverified {
			foundAdvisory = true
		}
		assert.NotEqual(t, bare, r.Text)
	}
	assert.True(t, foundAdvisory)

	var foundEvent bool
	for _, evt := range f.publisher.published {
		if evt.EventType() == events.TypeCitationUnverified {
			foundEvent = true
		}
	}
	assert.True(t, foundEvent)
}

func TestSendChatCooldownGatesDoubleSend(t *testing.T) {
	f := newFixture(t, &fakeProvider{responses: []string{citedAnswer}}, time.Minute)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "first question"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.calls)

	res, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "second question"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.calls, "gated submission never reaches the model")
	require.Len(t, res.Replies, 1)
	assert.Equal(t, constant.AdvisorySlowDown, res.Replies[0].Text)
	assert.Nil(t, res.Sent, "gated submission leaves no transcript entry")
}

func TestSendChatBookingIntentStartsFlow(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	res, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "help me book an appointment"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.provider.calls, "flow start bypasses the model")

	last := res.Replies[len(res.Replies)-1]
	assert.Contains(t, last.Text, "Where do you want to go for care?")
	assert.Len(t, last.Choices, 3)
}

func TestSendChatWhileFlowActiveReturnsAdvisory(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "help me book an appointment"})
	require.NoError(t, err)

	res, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what about my deductible"})
	require.NoError(t, err)
	assert.Equal(t, 0, f.provider.calls)
	require.Len(t, res.Replies, 1)
	assert.Equal(t, constant.AdvisoryFlowActive, res.Replies[0].Text)
}

func TestSendChoiceWalksFlowToCompletion(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "help me book an appointment"})
	require.NoError(t, err)

	res, err := f.service.SendChoice(context.Background(), f.sessionId, &dto.ChoiceRequest{Value: "shc"})
	require.NoError(t, err)
	assert.Contains(t, res.Replies[0].Text, "Student Health Center")

	_, err = f.service.SendChoice(context.Background(), f.sessionId, &dto.ChoiceRequest{Value: "script"})
	require.NoError(t, err)

	res, err = f.service.SendChoice(context.Background(), f.sessionId, &dto.ChoiceRequest{Value: "insurance"})
	require.NoError(t, err)
	assert.Contains(t, res.Replies[0].Text, "insurance card")

	// Terminal step resets the flow; free text reaches the model again.
	f.provider.responses = append(f.provider.responses, citedAnswer)
	time.Sleep(2 * time.Nanosecond)
	_, err = f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what is the urgent care copay"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.calls)
}

func TestSendChoiceRejectsUnknownValue(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "help me book an appointment"})
	require.NoError(t, err)

	_, err = f.service.SendChoice(context.Background(), f.sessionId, &dto.ChoiceRequest{Value: "teleport"})
	assert.ErrorIs(t, err, ErrUnknownChoice)
}

func TestSendChoiceStartFlowCTA(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	res, err := f.service.SendChoice(context.Background(), f.sessionId, &dto.ChoiceRequest{Value: StartFlowChoice})
	require.NoError(t, err)
	last := res.Replies[len(res.Replies)-1]
	assert.Contains(t, last.Text, "Where do you want to go for care?")
}

func TestSendChatRateLimitedSurfaces(t *testing.T) {
	f := newFixture(t, &fakeProvider{errs: []error{llm.ErrRateLimited}}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what is my copay"})
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestSendChatUpstreamFailure(t *testing.T) {
	f := newFixture(t, &fakeProvider{errs: []error{errors.New("connection refused")}}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what is my copay"})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGlossaryClick(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	res, err := f.service.GlossaryClick(context.Background(), f.sessionId, &dto.GlossaryRequest{Term: "Copay!"})
	require.NoError(t, err)
	assert.Equal(t, "copay", res.Term)
	assert.Contains(t, res.Definition, "fixed amount")

	_, err = f.service.GlossaryClick(context.Background(), f.sessionId, &dto.GlossaryRequest{Term: "warp drive"})
	assert.ErrorIs(t, err, ErrUnknownTerm)
}

func TestSelectPolicyReannounces(t *testing.T) {
	f := newFixture(t, &fakeProvider{}, time.Nanosecond)

	res, err := f.service.SelectPolicy(context.Background(), f.sessionId, &dto.SelectPolicyRequest{PolicyId: "asu-ship"})
	require.NoError(t, err)
	require.Len(t, res.Replies, 1)
	assert.Contains(t, res.Replies[0].Text, "ASU SHIP")

	_, err = f.service.SelectPolicy(context.Background(), f.sessionId, &dto.SelectPolicyRequest{PolicyId: "nope"})
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestSelectPolicyResetsFlow(t *testing.T) {
	f := newFixture(t, &fakeProvider{responses: []string{citedAnswer}}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "help me book an appointment"})
	require.NoError(t, err)

	_, err = f.service.SelectPolicy(context.Background(), f.sessionId, &dto.SelectPolicyRequest{PolicyId: "asu-ship"})
	require.NoError(t, err)

	// The guided task was abandoned, so free text reaches the model.
	time.Sleep(2 * time.Nanosecond)
	_, err = f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what is the urgent care copay"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.calls)
}

func TestResetClearsFlow(t *testing.T) {
	f := newFixture(t, &fakeProvider{responses: []string{citedAnswer}}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "help me book an appointment"})
	require.NoError(t, err)

	_, err = f.service.Reset(context.Background(), f.sessionId)
	require.NoError(t, err)

	// Flow is idle again, so a question goes to the model.
	time.Sleep(2 * time.Nanosecond)
	_, err = f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what is the urgent care copay"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.provider.calls)
}

func TestGetTranscript(t *testing.T) {
	f := newFixture(t, &fakeProvider{responses: []string{citedAnswer}}, time.Nanosecond)

	_, err := f.service.SendChat(context.Background(), f.sessionId, &dto.SendChatRequest{Text: "what is the urgent care copay"})
	require.NoError(t, err)

	transcript, err := f.service.GetTranscript(context.Background(), f.sessionId)
	require.NoError(t, err)
	assert.Equal(t, "asu-ship", transcript.PolicyId)
	// Announcement, question, answer at minimum.
	assert.GreaterOrEqual(t, len(transcript.Messages), 3)
}
