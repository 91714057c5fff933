// README: Interview outcome, decision and travel-profile types.
package interview

import (
	"errors"

	"wayfarer/internal/modules/preference"
)

var (
	// ErrServiceUnavailable marks a failed call to the text-generation
	// service on the mandatory first turn (terminal session-start failure).
	ErrServiceUnavailable = errors.New("text-generation service unavailable")
	// ErrServiceTimeout marks a call abandoned at the caller-imposed deadline.
	ErrServiceTimeout = errors.New("text-generation service timed out")
	// ErrFinalized is returned when a turn is attempted on a finished interview.
	ErrFinalized = errors.New("interview already finalized")
)

// OutcomeKind tags the result of one interview turn.
type OutcomeKind int

const (
	AskQuestion OutcomeKind = iota
	Finalize
)

// Outcome is the result of one interview turn: either a follow-up question
// or the finalized travel profile.
type Outcome struct {
	Kind     OutcomeKind
	Question string
	Profile  *TravelProfile
}

// TripParams are the parameters confirmed before the interview starts;
// the interviewer never asks about them again.
type TripParams struct {
	Budget float64
	People int
	Days   int
}

// Constraints are the structured trip constraints assembled at finalization.
type Constraints struct {
	WithChildren *bool   `json:"with_children"`
	WithDisabled *bool   `json:"with_disabled"`
	Budget       float64 `json:"budget"`
	People       int     `json:"people"`
}

// TravelProfile is the finalized output of the interview, handed to the
// planning pipeline and to profile consumers as plain nested data.
type TravelProfile struct {
	Summary           string                       `json:"summary"`
	Destination       string                       `json:"destination"`
	Constraints       Constraints                  `json:"constraints"`
	Slots             map[preference.SlotID]string `json:"slots"`
	InterestEmbedding []float64                    `json:"interest_embedding,omitempty"`
	QuestionsAsked    int                          `json:"questions_asked"`
}

// decision is the validated shape of one service response.
// Raw service output never leaves this package untyped.
type decision struct {
	Action            string
	Question          string
	ChosenDestination string
	ProfileSummary    string
	Constraints       Constraints
}

// decisionFields are the keys expected in the service's JSON reply.
var decisionFields = []string{"action", "question", "chosen_destination", "profile_summary", "constraints"}
