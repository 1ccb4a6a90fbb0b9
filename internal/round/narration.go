package round

import (
	"context"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/actor"
	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// runNarration asks the narrator to open the round when the pacing rule
// says so: exactly one round after activity (to react to it), or when the
// table has been quiet for the threshold number of rounds (to stir it).
// Rounds in between stay silent so the narrator does not drown the players.
func (e *Executor) runNarration(ctx context.Context, round int) error {
	since := e.roundsSinceActive(round)
	if since != 1 && since < e.ctx.NarrationThreshold {
		e.ctx.Logger.Debug("skipping narration",
			zap.Int("round", round),
			zap.Int("rounds_since_active", since),
		)
		return nil
	}

	// The narrator reacts to the previous round, so it gets that round's
	// snapshot with its action and consequence records intact. On the
	// first round there is none yet; the opening state stands in.
	snapshot := e.ctx.Store.Snapshot(round - 1)
	if snapshot == nil {
		snapshot = e.ctx.Store.CreateSnapshot()
	}
	history := e.historyWindow(round-1, "")

	narrative, err := e.ctx.Narrator.Narrate(ctx, snapshot, history)
	if err != nil {
		// A silent narrator is not worth stopping the round over.
		e.ctx.Logger.Warn("narration failed, continuing without it",
			zap.Int("round", round),
			zap.Error(err),
		)
		return nil
	}
	if narrative == "" {
		return nil
	}

	e.ctx.Dispatcher.Broadcast(chat.NewMessage(chat.TypeNarration, "narrator", "", narrative, round))
	return nil
}

// roundsSinceActive walks stored snapshots backwards looking for the most
// recent round that saw real activity. When no snapshot shows any, it
// falls back to the live state's last-active marker.
func (e *Executor) roundsSinceActive(round int) int {
	for r := round - 1; r >= 1; r-- {
		snap := e.ctx.Store.Snapshot(r)
		if snap == nil {
			break
		}
		if roundWasActive(snap) {
			return round - r
		}
	}
	return round - e.ctx.Store.CreateSnapshot().LastActiveRound
}

// roundWasActive reports whether a round snapshot shows substantive
// actions, successfully applied consequences, or triggered events.
func roundWasActive(snap *state.GameState) bool {
	for _, a := range snap.CurrentRoundActions {
		if a.Type == string(actor.ActionAct) {
			return true
		}
	}
	for _, c := range snap.CurrentRoundAppliedConsequences {
		if c.Success {
			return true
		}
	}
	return len(snap.CurrentRoundTriggeredEvents) > 0
}
