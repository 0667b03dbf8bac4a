// Package dialogue implements the per-session conversational state
// machine: given the session's current step, accumulated context, and
// the latest input, it decides which transition to apply, how to merge
// new facts, and what response envelope to emit.
package dialogue

import (
	"advisor/pkg/session"
)

// ResponseType tags the envelope so a presentation layer can render it
// appropriately. It carries no behavior.
type ResponseType string

const (
	TypeText     ResponseType = "text"
	TypeButtons  ResponseType = "buttons"
	TypeIdeas    ResponseType = "ideas"
	TypePlan     ResponseType = "plan"
	TypeSchemes  ResponseType = "schemes"
	TypeAnalysis ResponseType = "analysis"
	TypeResource ResponseType = "resource"
	TypeFarewell ResponseType = "farewell"
	TypeError    ResponseType = "error"
)

// Button is one discrete choice offered to the user.
type Button struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Response is the outward envelope for one turn. Context is always the
// freshly read, post-mutation snapshot; callers can treat each response
// as authoritative current state.
type Response struct {
	Reply   string          `json:"reply"`
	Type    ResponseType    `json:"type"`
	Buttons []Button        `json:"buttons,omitempty"`
	Payload any             `json:"payload,omitempty"`
	Context session.Context `json:"context"`
}
