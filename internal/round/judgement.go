package round

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/actor"
	"github.com/chronicle-rpg/chronicle/internal/chat"
)

// judgementOutcome is what the judgement phase hands to the update phase.
type judgementOutcome struct {
	results  []actor.ActionResult
	triggers []actor.EventTrigger
}

// runJudgement resolves the round's substantive actions against a single
// snapshot taken at phase entry, then asks the judge which events fired.
// Talk and wait actions skip judgement entirely. Invalid trigger pairs are
// discarded with a log line rather than failing the round.
func (e *Executor) runJudgement(ctx context.Context, round int, actions []actor.DeclaredAction) (judgementOutcome, error) {
	snapshot := e.ctx.Store.CreateSnapshot()

	var substantive []actor.DeclaredAction
	for _, a := range actions {
		if a.Type.IsSubstantive() {
			substantive = append(substantive, a)
		}
	}

	results := make([]actor.ActionResult, len(substantive))
	var wg sync.WaitGroup
	for i, action := range substantive {
		wg.Add(1)
		go func(i int, action actor.DeclaredAction) {
			defer wg.Done()
			history := e.historyWindow(round, "")
			result, err := e.ctx.Judge.JudgeAction(ctx, action, snapshot, history)
			if err != nil {
				e.ctx.Logger.Warn("judgement failed, action fizzles",
					zap.String("character_id", action.CharacterID),
					zap.Error(err),
				)
				result = actor.ActionResult{
					CharacterID: action.CharacterID,
					Action:      action,
					Success:     false,
					Narrative:   "Nothing comes of it.",
				}
			}
			results[i] = result
		}(i, action)
	}
	wg.Wait()

	for _, r := range results {
		verdict := "fails"
		if r.Success {
			verdict = "succeeds"
		}
		content := fmt.Sprintf("%s %s: %s", r.CharacterID, verdict, r.Narrative)
		e.ctx.Dispatcher.Broadcast(chat.NewMessage(chat.TypeSystemResult, "judge", "", content, round))
	}

	triggers, err := e.ctx.Judge.DetermineTriggeredEvents(ctx, results, snapshot)
	if err != nil {
		e.ctx.Logger.Warn("event determination failed, assuming no events fired",
			zap.Int("round", round),
			zap.Error(err),
		)
		triggers = nil
	}

	return judgementOutcome{
		results:  results,
		triggers: e.validateTriggers(snapshot.ActiveEventIDs, triggers),
	}, nil
}

// validateTriggers keeps only pairs naming an active event and one of its
// declared outcomes.
func (e *Executor) validateTriggers(activeIDs []string, triggers []actor.EventTrigger) []actor.EventTrigger {
	active := make(map[string]bool, len(activeIDs))
	for _, id := range activeIDs {
		active[id] = true
	}

	var valid []actor.EventTrigger
	for _, t := range triggers {
		if !active[t.EventID] {
			e.ctx.Logger.Warn("judge triggered an inactive event, discarding",
				zap.String("event_id", t.EventID),
			)
			continue
		}
		event := e.ctx.Scenario.Event(t.EventID)
		if event == nil || event.Outcome(t.OutcomeID) == nil {
			e.ctx.Logger.Warn("judge picked an unknown outcome, discarding",
				zap.String("event_id", t.EventID),
				zap.String("outcome_id", t.OutcomeID),
			)
			continue
		}
		valid = append(valid, t)
	}
	return valid
}
