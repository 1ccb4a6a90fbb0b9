package round

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/actor"
	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// runDeclaration collects one declared action per standing playable
// character. Decision-makers run concurrently against the same snapshot;
// a failing one degrades that character to a wait, never the whole round.
// Every action is broadcast the moment it arrives so slow deciders do not
// hide faster ones from spectators.
func (e *Executor) runDeclaration(ctx context.Context, round int) ([]actor.DeclaredAction, error) {
	snapshot := e.ctx.Store.CreateSnapshot()
	declarers := e.declarers(func(id string) int {
		if ch := snapshot.Character(id); ch != nil {
			return ch.Health
		}
		return 0
	})
	if len(declarers) == 0 {
		e.ctx.Logger.Warn("no standing characters to declare actions", zap.Int("round", round))
		return nil, nil
	}

	results := make([]actor.DeclaredAction, len(declarers))
	var wg sync.WaitGroup
	for i, tmpl := range declarers {
		wg.Add(1)
		go func(i int, characterID string, playerControlled bool) {
			defer wg.Done()
			action := e.declareOne(ctx, round, characterID, playerControlled)
			results[i] = action
			e.broadcastAction(round, action)
		}(i, tmpl.ID, tmpl.PlayerControlled)
	}
	wg.Wait()

	records := make([]state.ActionRecord, len(results))
	for i, a := range results {
		records[i] = a.Record()
	}
	e.ctx.Store.RecordDeclaredActions(records)
	return results, nil
}

func (e *Executor) declareOne(ctx context.Context, round int, characterID string, playerControlled bool) actor.DeclaredAction {
	snapshot := e.ctx.Store.CreateSnapshot()
	history := e.historyWindow(round, characterID)

	if playerControlled {
		options, err := e.ctx.Options.GenerateOptions(ctx, characterID, snapshot, history)
		if err != nil {
			e.ctx.Logger.Warn("option generation failed, character waits",
				zap.String("character_id", characterID),
				zap.Error(err),
			)
			return actor.WaitAction(characterID)
		}
		action, err := e.ctx.Chooser.Choose(ctx, characterID, options)
		if err != nil {
			e.ctx.Logger.Warn("player choice failed, character waits",
				zap.String("character_id", characterID),
				zap.Error(err),
			)
			return actor.WaitAction(characterID)
		}
		action.CharacterID = characterID
		return action
	}

	action, err := e.ctx.Decider.DecideAction(ctx, characterID, snapshot, history)
	if err != nil {
		e.ctx.Logger.Warn("action decision failed, character waits",
			zap.String("character_id", characterID),
			zap.Error(err),
		)
		return actor.WaitAction(characterID)
	}
	action.CharacterID = characterID
	return action
}

func (e *Executor) broadcastAction(round int, action actor.DeclaredAction) {
	msgType := chat.TypeAction
	if action.Type == actor.ActionTalk {
		msgType = chat.TypePlayer
	}
	e.ctx.Dispatcher.Broadcast(chat.NewMessage(msgType, "character", action.CharacterID, action.Content, round))
}
