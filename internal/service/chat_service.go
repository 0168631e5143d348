package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aided-be/internal/constant"
	"aided-be/internal/dto"
	"aided-be/internal/pkg/logger"
	"aided-be/internal/repository/memory"
	"aided-be/pkg/answer"
	"aided-be/pkg/events"
	"aided-be/pkg/flow"
	"aided-be/pkg/glossary"
	"aided-be/pkg/llm"
	"aided-be/pkg/policy"
	"aided-be/pkg/render"
	"aided-be/pkg/store"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message text is required")
	ErrUnknownPolicy   = errors.New("unknown policy")
	ErrUnknownTerm     = errors.New("term not in glossary")
	ErrUnknownChoice   = errors.New("choice not available at this step")
	ErrUpstream        = errors.New("answer service unreachable")
)

// StartFlowChoice is the CTA button value that starts the guided task.
const StartFlowChoice = "start_flow"

type IChatService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	SendChoice(ctx context.Context, sessionId string, request *dto.ChoiceRequest) (*dto.SendChatResponse, error)
	SelectPolicy(ctx context.Context, sessionId string, request *dto.SelectPolicyRequest) (*dto.SendChatResponse, error)
	GlossaryClick(ctx context.Context, sessionId string, request *dto.GlossaryRequest) (*dto.GlossaryResponse, error)
	Reset(ctx context.Context, sessionId string) (*dto.SendChatResponse, error)
	GetTranscript(ctx context.Context, sessionId string) (*dto.TranscriptResponse, error)
}

type chatService struct {
	registry    *policy.Registry
	sessionRepo *memory.SessionRepository
	pipeline    *answer.Pipeline
	flowEngine  *flow.Engine
	renderer    *render.Renderer
	publisher   IPublisherService
	log         logger.ILogger
	cooldown    time.Duration
}

func NewChatService(
	registry *policy.Registry,
	sessionRepo *memory.SessionRepository,
	pipeline *answer.Pipeline,
	flowEngine *flow.Engine,
	renderer *render.Renderer,
	publisher IPublisherService,
	log logger.ILogger,
	cooldown time.Duration,
) IChatService {
	if cooldown <= 0 {
		cooldown = constant.SubmitCooldown
	}
	return &chatService{
		registry:    registry,
		sessionRepo: sessionRepo,
		pipeline:    pipeline,
		flowEngine:  flowEngine,
		renderer:    renderer,
		publisher:   publisher,
		log:         log,
		cooldown:    cooldown,
	}
}

func (cs *chatService) CreateSession(_ context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	policyId := request.PolicyId
	if policyId == "" {
		policies := cs.registry.Policies()
		if len(policies) == 0 {
			return nil, fmt.Errorf("policy registry is empty")
		}
		policyId = policies[0].Id
	}
	if _, ok := cs.registry.Policy(policyId); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, policyId)
	}

	session := store.NewSession(uuid.New().String(), policyId)
	cs.sessionRepo.Save(session)

	cs.log.Info("chat", "Session created", map[string]interface{}{
		"session_id": session.ID,
		"policy_id":  policyId,
	})

	return &dto.CreateSessionResponse{Id: session.ID, PolicyId: policyId}, nil
}

func (cs *chatService) SendChat(ctx context.Context, sessionId string, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	text := strings.TrimSpace(request.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	session, ok := cs.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Lock()
	defer session.Unlock()

	// Gate double-sends before touching the transcript or the model.
	now := time.Now()
	if session.InFlight {
		return cs.advisoryResponse(session, constant.AdvisorySlowDown), nil
	}
	if !session.LastSubmitAt.IsZero() && now.Sub(session.LastSubmitAt) < cs.cooldown {
		return cs.advisoryResponse(session, constant.AdvisorySlowDown), nil
	}
	session.LastSubmitAt = now

	// While the guided task is running, buttons drive the conversation.
	if session.Flow.Active() {
		return cs.advisoryResponse(session, constant.AdvisoryFlowActive), nil
	}

	sent := session.Append(store.Message{
		Id:   uuid.New().String(),
		Role: store.RoleUser,
		Text: text,
	})

	var replies []store.Message

	if !session.AnnouncedPolicy {
		replies = append(replies, cs.announce(session))
	}

	if flow.LooksLikeBookingIntent(text) {
		turn, started := cs.flowEngine.Start(&session.Flow)
		if started {
			replies = append(replies, cs.appendFlowTurn(session, turn)...)
			cs.sessionRepo.Touch(session)
			return cs.buildResponse(session, &sent, replies, nil), nil
		}
	}

	session.InFlight = true
	result, err := cs.pipeline.Ask(ctx, cs.buildHistory(session), text, session.RetryLedger)
	session.InFlight = false

	if err != nil {
		// The failed question stays in the transcript so a retry reads
		// naturally, but no reply is recorded.
		cs.sessionRepo.Touch(session)
		if errors.Is(err, llm.ErrRateLimited) {
			return nil, err
		}
		cs.log.Error("chat", "Answer pipeline failed", map[string]interface{}{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if result.Verified {
		rendered := cs.renderer.Render(result.Text, result.Citations)
		reply := session.Append(store.Message{
			Id:        uuid.New().String(),
			Role:      store.RoleModel,
			Text:      result.Text,
			HTML:      rendered.HTML,
			Citations: rendered.Citations,
		})
		replies = append(replies, reply)
		replies = append(replies, cs.appendFollowUp(session, text)...)
	} else {
		// An answer that can't be tied to the documents is withheld, not
		// shown with a warning. Any guided task in progress is abandoned.
		session.Flow.Reset()
		replies = append(replies, cs.appendAdvisory(session, constant.AdvisoryUnverified))
	}

	cs.publishTurn(ctx, session, text, result)
	cs.sessionRepo.Touch(session)

	verified := result.Verified
	return cs.buildResponse(session, &sent, replies, &verified), nil
}

func (cs *chatService) SendChoice(ctx context.Context, sessionId string, request *dto.ChoiceRequest) (*dto.SendChatResponse, error) {
	value := strings.TrimSpace(request.Value)
	if value == "" {
		return nil, ErrEmptyMessage
	}

	session, ok := cs.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Lock()
	defer session.Unlock()

	if value == StartFlowChoice {
		turn, started := cs.flowEngine.Start(&session.Flow)
		if !started {
			return cs.advisoryResponse(session, constant.AdvisoryFlowActive), nil
		}
		replies := cs.appendFlowTurn(session, turn)
		cs.sessionRepo.Touch(session)
		return cs.buildResponse(session, nil, replies, nil), nil
	}

	turn, ok := cs.flowEngine.Advance(&session.Flow, value)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChoice, value)
	}

	// Echo the picked option so the transcript reads like a conversation.
	sent := session.Append(store.Message{
		Id:   uuid.New().String(),
		Role: store.RoleUser,
		Text: value,
	})

	replies := cs.appendFlowTurn(session, turn)
	cs.sessionRepo.Touch(session)
	return cs.buildResponse(session, &sent, replies, nil), nil
}

func (cs *chatService) SelectPolicy(_ context.Context, sessionId string, request *dto.SelectPolicyRequest) (*dto.SendChatResponse, error) {
	session, ok := cs.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	if _, found := cs.registry.Policy(request.PolicyId); !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, request.PolicyId)
	}

	session.Lock()
	defer session.Unlock()

	session.PolicyId = request.PolicyId
	session.AnnouncedPolicy = false
	// Switching plans invalidates any in-progress guided task.
	session.Flow.Reset()
	announcement := cs.announce(session)
	cs.sessionRepo.Touch(session)

	return cs.buildResponse(session, nil, []store.Message{announcement}, nil), nil
}

func (cs *chatService) GlossaryClick(_ context.Context, sessionId string, request *dto.GlossaryRequest) (*dto.GlossaryResponse, error) {
	session, ok := cs.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	term := glossary.NormalizeKey(request.Term)
	definition, found := glossary.Lookup(term)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTerm, request.Term)
	}

	session.Lock()
	session.Append(store.Message{
		Id:   uuid.New().String(),
		Role: store.RoleModel,
		Text: definition,
		HTML: render.EscapeHTML(definition),
	})
	session.Unlock()
	cs.sessionRepo.Touch(session)

	return &dto.GlossaryResponse{Term: term, Definition: definition}, nil
}

func (cs *chatService) Reset(_ context.Context, sessionId string) (*dto.SendChatResponse, error) {
	session, ok := cs.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Lock()
	defer session.Unlock()

	session.Flow.Reset()
	confirmation := cs.appendAdvisory(session, "Okay, starting fresh. Ask me anything about your coverage.")
	cs.sessionRepo.Touch(session)

	return cs.buildResponse(session, nil, []store.Message{confirmation}, nil), nil
}

func (cs *chatService) GetTranscript(_ context.Context, sessionId string) (*dto.TranscriptResponse, error) {
	session, ok := cs.sessionRepo.Get(sessionId)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session.Lock()
	defer session.Unlock()

	messages := make([]dto.MessageDTO, 0, len(session.Transcript))
	for _, m := range session.Transcript {
		messages = append(messages, toMessageDTO(m))
	}
	return &dto.TranscriptResponse{
		SessionId: session.ID,
		PolicyId:  session.PolicyId,
		Messages:  messages,
	}, nil
}

// --- helpers ---

// buildHistory assembles the model prompt: the system instruction with
// the session's document list, then the plain question/answer transcript.
// Flow prompts and CTA messages carry choices and stay out of the prompt.
func (cs *chatService) buildHistory(session *store.Session) []llm.Message {
	p, _ := cs.registry.Policy(session.PolicyId)

	var docs strings.Builder
	if p != nil {
		for _, d := range p.Documents {
			fmt.Fprintf(&docs, "\n- %s (%s)", d.Id, d.Label)
		}
	}
	system := constant.ChatSystemPromptV1 + "\n\nPlan documents:" + docs.String()

	history := []llm.Message{{Role: constant.ChatMessageRoleSystem, Content: system}}
	for _, m := range session.Transcript {
		if m.Text == "" || len(m.Choices) > 0 {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Text})
	}
	// The question was already appended to the transcript, so the
	// history ends with it.
	return history
}

func (cs *chatService) announce(session *store.Session) store.Message {
	session.AnnouncedPolicy = true

	p, ok := cs.registry.Policy(session.PolicyId)
	name := session.PolicyId
	var labels []string
	if ok {
		name = p.Name
		for _, d := range p.Documents {
			labels = append(labels, d.Label)
		}
	}
	text := fmt.Sprintf(constant.PolicyAnnouncementFormat, name, strings.Join(labels, ", "))
	return session.Append(store.Message{
		Id:   uuid.New().String(),
		Role: store.RoleModel,
		Text: text,
		HTML: cs.renderFlowHTML(text),
	})
}

func (cs *chatService) appendAdvisory(session *store.Session, text string) store.Message {
	return session.Append(store.Message{
		Id:   uuid.New().String(),
		Role: store.RoleModel,
		Text: text,
		HTML: render.EscapeHTML(text),
	})
}

// advisoryResponse returns an advisory without touching the transcript.
// Gated submissions leave no trace so a clean retry is possible.
func (cs *chatService) advisoryResponse(session *store.Session, text string) *dto.SendChatResponse {
	reply := dto.MessageDTO{
		Id:        uuid.New().String(),
		Role:      store.RoleModel,
		Text:      text,
		HTML:      render.EscapeHTML(text),
		CreatedAt: time.Now(),
	}
	return &dto.SendChatResponse{SessionId: session.ID, Replies: []dto.MessageDTO{reply}}
}

func (cs *chatService) appendFlowTurn(session *store.Session, turn flow.Turn) []store.Message {
	out := make([]store.Message, 0, len(turn.Messages))
	for i, text := range turn.Messages {
		msg := store.Message{
			Id:   uuid.New().String(),
			Role: store.RoleModel,
			Text: text,
			HTML: cs.renderFlowHTML(text),
		}
		// Choices belong on the last message of the turn.
		if i == len(turn.Messages)-1 {
			for _, c := range turn.Choices {
				msg.Choices = append(msg.Choices, store.Choice{Value: c.Value, Label: c.Label})
			}
		}
		out = append(out, session.Append(msg))
	}
	return out
}

// renderFlowHTML runs curated text through the same safety and
// highlighting passes as model output. The intentional <b> and <a> tags
// survive, everything else is escaped.
func (cs *chatService) renderFlowHTML(text string) string {
	return cs.renderer.Render(text, nil).HTML
}

func (cs *chatService) appendFollowUp(session *store.Session, question string) []store.Message {
	var text string
	switch {
	case flow.LooksLikeCostQuestion(question):
		text = constant.CTACostFollowUp
	case flow.MentionsCareTask(question):
		text = constant.CTATaskFollowUp
	default:
		return nil
	}

	msg := session.Append(store.Message{
		Id:      uuid.New().String(),
		Role:    store.RoleModel,
		Text:    text,
		HTML:    render.EscapeHTML(text),
		Choices: []store.Choice{{Value: StartFlowChoice, Label: "Walk me through booking"}},
	})
	return []store.Message{msg}
}

func (cs *chatService) publishTurn(ctx context.Context, session *store.Session, question string, result answer.Result) {
	if cs.publisher == nil {
		return
	}
	evt := events.NewChatTurnCompleted(session.ID, result.Verified, result.Retried, len(result.Citations))
	if err := cs.publisher.Publish(ctx, evt); err != nil {
		cs.log.Warn("chat", "Failed to publish turn event", map[string]interface{}{"error": err.Error()})
	}
	if !result.Verified {
		if err := cs.publisher.Publish(ctx, events.NewCitationUnverified(session.ID, question)); err != nil {
			cs.log.Warn("chat", "Failed to publish unverified event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (cs *chatService) buildResponse(session *store.Session, sent *store.Message, replies []store.Message, verified *bool) *dto.SendChatResponse {
	resp := &dto.SendChatResponse{
		SessionId: session.ID,
		Replies:   make([]dto.MessageDTO, 0, len(replies)),
		Verified:  verified,
	}
	if sent != nil {
		m := toMessageDTO(*sent)
		resp.Sent = &m
	}
	for _, r := range replies {
		resp.Replies = append(resp.Replies, toMessageDTO(r))
	}
	return resp
}

func toMessageDTO(m store.Message) dto.MessageDTO {
	choices := make([]dto.ChoiceDTO, 0, len(m.Choices))
	for _, c := range m.Choices {
		choices = append(choices, dto.ChoiceDTO{Value: c.Value, Label: c.Label})
	}
	if len(choices) == 0 {
		choices = nil
	}
	return dto.MessageDTO{
		Id:        m.Id,
		Role:      m.Role,
		Text:      m.Text,
		HTML:      m.HTML,
		Citations: m.Citations,
		Choices:   choices,
		CreatedAt: m.CreatedAt,
	}
}
