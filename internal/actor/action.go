package actor

import (
	"github.com/chronicle-rpg/chronicle/internal/consequence"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// ActionType is the kind of action a character declares for a round.
type ActionType string

const (
	// ActionTalk is in-character speech with no mechanical effect.
	ActionTalk ActionType = "TALK"
	// ActionAct is a substantive attempt to change the world; it goes
	// through judgement.
	ActionAct ActionType = "ACT"
	// ActionWait passes the round. Also the degraded fallback when a
	// decision-maker fails.
	ActionWait ActionType = "WAIT"
)

// IsSubstantive reports whether the action type counts as activity for the
// narration cadence and goes through judgement.
func (t ActionType) IsSubstantive() bool {
	return t == ActionAct
}

// DeclaredAction is one character's declared intent for the round.
// SideEffects carries consequences produced while the decision was being
// made (a self-assessment, a note update); they are queued into the
// round's update batch, never applied mid-decision.
type DeclaredAction struct {
	CharacterID string                    `json:"character_id"`
	Type        ActionType                `json:"type"`
	Content     string                    `json:"content"`
	Target      string                    `json:"target,omitempty"`
	Notes       string                    `json:"notes,omitempty"`
	SideEffects []consequence.Consequence `json:"side_effects,omitempty"`
}

// WaitAction is the fallback declaration for a character whose
// decision-maker failed or timed out.
func WaitAction(characterID string) DeclaredAction {
	return DeclaredAction{CharacterID: characterID, Type: ActionWait, Content: "waits and observes"}
}

// Record converts the declaration into its audit form.
func (a DeclaredAction) Record() state.ActionRecord {
	return state.ActionRecord{
		CharacterID: a.CharacterID,
		Type:        string(a.Type),
		Content:     a.Content,
		Target:      a.Target,
	}
}

// ActionOption is one suggested action presented to the player.
type ActionOption struct {
	ID          string     `json:"id"`
	Type        ActionType `json:"type"`
	Description string     `json:"description"`
	Target      string     `json:"target,omitempty"`
}

// ActionResult is the judge's verdict on one substantive action.
type ActionResult struct {
	CharacterID  string                    `json:"character_id"`
	Action       DeclaredAction            `json:"-"`
	Success      bool                      `json:"success"`
	Narrative    string                    `json:"narrative"`
	Consequences []consequence.Consequence `json:"consequences,omitempty"`
}

// EventTrigger is the judge's claim that a scenario event fired with a
// given outcome. Pairs are validated against the active event set and the
// event's declared outcomes before anything is applied.
type EventTrigger struct {
	EventID   string `json:"event_id"`
	OutcomeID string `json:"outcome_id"`
}
