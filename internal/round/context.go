package round

import (
	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/actor"
	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/store"
)

const (
	// DefaultNarrationThreshold is how many quiet rounds pass before the
	// narrator is asked to stir the scene again.
	DefaultNarrationThreshold = 3
	// DefaultHistoryWindow is how many past rounds of conversation are
	// handed to decision-makers.
	DefaultHistoryWindow = 5
)

// Context bundles everything the phase executors share. It is assembled
// once per session and read-only during a round; all mutation goes through
// the store and the dispatcher.
type Context struct {
	Store      *store.Store
	Scenario   *scenario.Scenario
	Dispatcher *chat.Dispatcher
	History    *chat.History

	Narrator actor.Narrator
	Decider  actor.Decider
	Options  actor.OptionGenerator
	Chooser  actor.Chooser
	Judge    actor.Judge

	Logger *zap.Logger

	NarrationThreshold int
	HistoryWindow      int
}

// Executor runs the four phases of a round against a shared context.
type Executor struct {
	ctx *Context
}

// NewExecutor validates and wraps the context.
func NewExecutor(c *Context) *Executor {
	if c.NarrationThreshold <= 0 {
		c.NarrationThreshold = DefaultNarrationThreshold
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = DefaultHistoryWindow
	}
	return &Executor{ctx: c}
}

// historyWindow returns the conversation visible to a reader over the
// trailing window ending at the given round.
func (e *Executor) historyWindow(round int, readerID string) []chat.Message {
	from := round - e.ctx.HistoryWindow
	if from < 0 {
		from = 0
	}
	return e.ctx.History.VisibleRange(from, round, readerID)
}

// declarers returns the characters that declare actions this round: every
// playable character still standing, player first.
func (e *Executor) declarers(snapshotHealth func(string) int) []scenario.CharacterTemplate {
	var player, others []scenario.CharacterTemplate
	for _, t := range e.ctx.Scenario.Characters {
		if !t.Playable && !t.PlayerControlled {
			continue
		}
		if snapshotHealth(t.ID) <= 0 {
			continue
		}
		if t.PlayerControlled {
			player = append(player, t)
		} else {
			others = append(others, t)
		}
	}
	return append(player, others...)
}
