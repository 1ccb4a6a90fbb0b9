package round

import (
	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/actor"
	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/consequence"
)

// runUpdate is the only phase that changes the world. It applies the
// round's consequences in a fixed order — judged action consequences,
// then decision side effects, then triggered event outcomes — broadcasts
// what actually happened, and advances the story.
func (e *Executor) runUpdate(round int, actions []actor.DeclaredAction, outcome judgementOutcome) {
	var batch []consequence.Consequence
	for _, r := range outcome.results {
		batch = append(batch, r.Consequences...)
	}
	for _, a := range actions {
		batch = append(batch, a.SideEffects...)
	}
	for _, t := range outcome.triggers {
		if event := e.ctx.Scenario.Event(t.EventID); event != nil {
			if o := event.Outcome(t.OutcomeID); o != nil {
				batch = append(batch, o.Consequences...)
			}
		}
	}

	descriptions := e.ctx.Store.ApplyConsequences(batch)
	for _, desc := range descriptions {
		e.ctx.Dispatcher.Broadcast(chat.NewMessage(chat.TypeSystemResult, "system", "", desc, round))
	}

	for _, t := range outcome.triggers {
		e.ctx.Store.RecordTriggeredEvent(t.EventID, t.OutcomeID, "judge")
		if event := e.ctx.Scenario.Event(t.EventID); event != nil {
			e.ctx.Dispatcher.Broadcast(chat.NewMessage(chat.TypeEventNotification, "system", "",
				event.Name+" has come to pass.", round))
		}
	}

	// Messages queued by send-message consequences go out after the whole
	// batch so they describe a settled world.
	for _, pm := range e.ctx.Store.DrainPendingMessages() {
		if pm.Recipient != "" {
			e.ctx.Dispatcher.Broadcast(chat.NewPrivateMessage(chat.TypeSystem, "system", "", pm.Content, round, pm.Recipient))
		} else {
			e.ctx.Dispatcher.Broadcast(chat.NewMessage(chat.TypeSystem, "system", "", pm.Content, round))
		}
	}

	if roundHadActivity(actions, outcome) {
		e.ctx.Store.MarkActive()
	}

	e.ctx.Store.UpdateActiveEvents()
	if e.ctx.Store.AdvanceStage() {
		e.ctx.Logger.Info("stage advanced", zap.Int("round", round))
	}
}

// roundHadActivity mirrors the narration pacing rule: a round counts as
// active when someone attempted something substantive or an event fired.
func roundHadActivity(actions []actor.DeclaredAction, outcome judgementOutcome) bool {
	if len(outcome.triggers) > 0 {
		return true
	}
	for _, a := range actions {
		if a.Type.IsSubstantive() {
			return true
		}
	}
	return false
}
