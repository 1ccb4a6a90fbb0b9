package actor

import (
	"context"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// The engine treats every decision-maker as an external collaborator
// behind a narrow interface: it hands over a deep snapshot plus the
// history visible to the character and gets a structured answer back.
// Implementations may take arbitrarily long; callers bound them with the
// context.

// Decider declares an action for a non-player character.
type Decider interface {
	DecideAction(ctx context.Context, characterID string, snapshot *state.GameState, history []chat.Message) (DeclaredAction, error)
}

// OptionGenerator proposes candidate actions for the player character.
type OptionGenerator interface {
	GenerateOptions(ctx context.Context, characterID string, snapshot *state.GameState, history []chat.Message) ([]ActionOption, error)
}

// Chooser resolves the player's pick among generated options.
type Chooser interface {
	Choose(ctx context.Context, characterID string, options []ActionOption) (DeclaredAction, error)
}

// Judge resolves substantive actions and decides which scenario events
// fired this round.
type Judge interface {
	JudgeAction(ctx context.Context, action DeclaredAction, snapshot *state.GameState, history []chat.Message) (ActionResult, error)
	DetermineTriggeredEvents(ctx context.Context, results []ActionResult, snapshot *state.GameState) ([]EventTrigger, error)
}

// Narrator produces scene-setting text. An empty narrative is a valid
// answer meaning the narrator has nothing to add.
type Narrator interface {
	Narrate(ctx context.Context, snapshot *state.GameState, history []chat.Message) (string, error)
}
