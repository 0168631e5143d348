// Package flow implements the deterministic guided dialogue for getting
// care: a small step graph walked by button choices, with trigger
// detection for starting it from free text.
package flow

import "regexp"

type StepId string

const (
	StepWhere     StepId = "where"
	StepEmergency StepId = "emergency"
	StepUrgent    StepId = "urgent"
	StepSHC       StepId = "shc"
	StepScript    StepId = "script"
	StepPrep      StepId = "prep"
	StepInsurance StepId = "insurance"
)

// TaskAppointment is the only guided task currently defined.
const TaskAppointment = "appointment"

// Choice is one button offered at a step. Next is internal routing and
// never serialized.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Next  StepId `json:"-"`
}

// Step is one node of the dialogue graph.
type Step struct {
	Id       StepId
	Prompt   string
	Choices  []Choice
	Terminal bool
}

// State is the per-session flow position. Zero value means idle.
type State struct {
	ActiveTask string            `json:"active_task,omitempty"`
	Step       StepId            `json:"step,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
}

func (s *State) Active() bool {
	return s.ActiveTask != ""
}

func (s *State) Reset() {
	s.ActiveTask = ""
	s.Step = ""
	s.Data = nil
}

// Turn is what the engine emits after starting or advancing: one or more
// assistant messages plus the choices for the next step.
type Turn struct {
	Messages []string `json:"messages"`
	Choices  []Choice `json:"choices,omitempty"`
	Step     StepId   `json:"step,omitempty"`
	Done     bool     `json:"done,omitempty"`
}

type Engine struct {
	steps map[StepId]Step
}

func NewEngine() *Engine {
	return &Engine{steps: buildSteps()}
}

// Start begins the appointment task. Returns false if a task is already
// active; starting is not re-entrant.
func (e *Engine) Start(s *State) (Turn, bool) {
	if s.Active() {
		return Turn{}, false
	}
	s.ActiveTask = TaskAppointment
	s.Step = StepWhere
	s.Data = make(map[string]string)

	root := e.steps[StepWhere]
	return Turn{Messages: []string{root.Prompt}, Choices: root.Choices, Step: root.Id}, true
}

// Advance applies a choice to the current step. Returns false when no
// task is active or the choice is not one of the current step's options.
func (e *Engine) Advance(s *State, choiceValue string) (Turn, bool) {
	if !s.Active() {
		return Turn{}, false
	}
	current, ok := e.steps[s.Step]
	if !ok {
		return Turn{}, false
	}

	var picked *Choice
	for i := range current.Choices {
		if current.Choices[i].Value == choiceValue {
			picked = &current.Choices[i]
			break
		}
	}
	if picked == nil {
		return Turn{}, false
	}

	if current.Id == StepWhere {
		s.Data["where"] = picked.Value
	}
	return e.enter(s, picked.Next), true
}

func (e *Engine) enter(s *State, id StepId) Turn {
	step := e.steps[id]

	// The emergency advisory is not a resting point: show it, then move
	// straight to the prep checklist.
	if id == StepEmergency {
		prep := e.steps[StepPrep]
		s.Step = StepPrep
		return Turn{
			Messages: []string{step.Prompt, prep.Prompt},
			Choices:  prep.Choices,
			Step:     StepPrep,
		}
	}

	if step.Terminal {
		s.Reset()
		return Turn{Messages: []string{step.Prompt}, Step: step.Id, Done: true}
	}

	s.Step = id
	return Turn{Messages: []string{step.Prompt}, Choices: step.Choices, Step: step.Id}
}

// Step returns a step definition by id.
func (e *Engine) Step(id StepId) (Step, bool) {
	s, ok := e.steps[id]
	return s, ok
}

// Steps returns all steps in graph order, for tooling.
func (e *Engine) Steps() []Step {
	order := []StepId{StepWhere, StepEmergency, StepUrgent, StepSHC, StepScript, StepPrep, StepInsurance}
	out := make([]Step, 0, len(order))
	for _, id := range order {
		out = append(out, e.steps[id])
	}
	return out
}

// Trigger vocabularies are matched on word boundaries so that short
// tokens like "er" or "pay" don't fire inside other words.
var (
	bookingRe = regexp.MustCompile(`(?i)\b(book|schedule|make an appointment|set up an appointment|call to book|help me book|help me schedule)\b`)

	moneyRe = regexp.MustCompile(`(?i)\b(cost|costs|price|how much|copay|co-pay|deductible|coinsurance|bill|charge|charges|pay|money|expensive)\b`)

	careContextRe = regexp.MustCompile(`(?i)\b(doctor|appointment|urgent care|er|emergency room|clinic|specialist|telehealth|primary care)\b`)

	followUpRe = regexp.MustCompile(`(?i)\b(appointment|referral|urgent care|doctor|clinic|telehealth)\b`)
)

// LooksLikeBookingIntent reports whether free text reads like a request
// to book or schedule care.
func LooksLikeBookingIntent(text string) bool {
	return bookingRe.MatchString(text)
}

// LooksLikeCostQuestion reports whether free text asks about the cost of
// care. Both a money word and a care-context word must appear.
func LooksLikeCostQuestion(text string) bool {
	return moneyRe.MatchString(text) && careContextRe.MatchString(text)
}

// MentionsCareTask reports whether free text mentions something the
// guided task could help with, used to offer the flow as a follow-up.
func MentionsCareTask(text string) bool {
	return followUpRe.MatchString(text)
}
