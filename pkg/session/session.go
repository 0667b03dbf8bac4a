// Package session provides the keyed, time-expiring store of per-conversation
// state. All mutations go through the store's atomic update primitive; the
// session map is never exposed for direct mutation.
package session

import (
	"time"
)

// Step is the primary state-machine position of a session.
type Step string

const (
	StepInitial             Step = "initial"
	StepModeSelection       Step = "mode_selection"
	StepCollectingName      Step = "collecting_name"
	StepCollectingLocation  Step = "collecting_location"
	StepCollectingInterests Step = "collecting_interests"
	StepAskingBudget        Step = "asking_budget"
	StepReadyToGenerate     Step = "ready_to_generate"
	StepQuestionMode        Step = "question_mode"
	StepLocationAnalysis    Step = "location_analysis_mode"
)

// Mode tags which top-level journey was chosen. Independent of Step.
type Mode string

const (
	ModeNone             Mode = ""
	ModeGenerateBusiness Mode = "generate_business"
	ModeAskQuestion      Mode = "ask_question"
	ModeLocationAnalysis Mode = "location_analysis"
)

// ModalFlags are orthogonal booleans that intercept numeric input ahead
// of step-based routing. At most one code path handles a given turn.
type ModalFlags struct {
	DetailedPlanMode     bool `json:"detailed_plan_mode"`
	DetailedResourceMode bool `json:"detailed_resource_mode"`
}

// TurnKind distinguishes how a turn's input arrived.
type TurnKind string

const (
	TurnMessage   TurnKind = "message"
	TurnButton    TurnKind = "button"
	TurnSelection TurnKind = "selection"
)

// Turn is one history record. History is append-only and never read by
// the dialogue machine; it exists for audit.
type Turn struct {
	ID        string            `json:"id"`
	Kind      TurnKind          `json:"kind"`
	Input     string            `json:"input"`
	Intent    string            `json:"intent,omitempty"`
	Entities  map[string]string `json:"entities,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Session is the per-conversation record. The ID never changes after
// creation; the caller supplies it and the store keys on it.
type Session struct {
	ID           string     `json:"id"`
	Step         Step       `json:"step"`
	Mode         Mode       `json:"mode"`
	ModalFlags   ModalFlags `json:"modal_flags"`
	Context      Context    `json:"context"`
	History      []Turn     `json:"history"`
	Language     string     `json:"language"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
}

// newDefault builds a fresh session for an id.
func newDefault(id, language string, now time.Time) *Session {
	return &Session{
		ID:           id,
		Step:         StepInitial,
		Mode:         ModeNone,
		Language:     language,
		CreatedAt:    now,
		LastActivity: now,
	}
}

// Restart resets step, mode, modal flags, and context while keeping the
// id, history, language, and creation time. This is the one operation
// permitted to destructively reset context.
func (s *Session) Restart() {
	s.Step = StepInitial
	s.Mode = ModeNone
	s.ModalFlags = ModalFlags{}
	s.Context = Context{}
}

// Clone returns a deep copy safe to hand outside the store's locks.
func (s *Session) Clone() *Session {
	out := *s
	out.Context = s.Context.Clone()
	if s.History != nil {
		out.History = make([]Turn, len(s.History))
		copy(out.History, s.History)
	}
	return &out
}
