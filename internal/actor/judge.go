package actor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/consequence"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

const judgeSystemPrompt = `You are the impartial referee of a tabletop RPG session.
Given one declared action and the world state, decide whether it succeeds and what it changes.
Answer with a single JSON object and nothing else:
{"success": true|false, "narrative": "what happens", "consequences": [
  {"type": "UPDATE_ATTRIBUTE"|"UPDATE_SKILL"|"ADD_ITEM"|"REMOVE_ITEM"|"CHANGE_RELATIONSHIP"|"CHANGE_LOCATION"|"SET_FLAG"|"TRIGGER_EVENT"|"SEND_MESSAGE",
   "target_entity_id": "...", "secondary_entity_id": "...", "attribute_name": "...",
   "skill_name": "...", "item_id": "...", "event_id": "...", "outcome_id": "...",
   "flag_name": "...", "value": ..., "message_content": "...", "message_recipient": "..."}
]}
Only include fields relevant to each consequence. Be conservative: small, concrete changes.`

const eventSystemPrompt = `You are the impartial referee of a tabletop RPG session.
Given the judged results of this round and the active scenario events, decide which events fired.
Answer with a JSON array and nothing else, empty if no event fired:
[{"event_id": "...", "outcome_id": "..."}]
Only use event and outcome ids listed as active.`

// RefereeAgent resolves actions and event triggers via the completion API.
// A malformed verdict degrades to a failed action with the raw text as
// narrative; a malformed trigger list degrades to no triggers. Either way
// the round continues.
type RefereeAgent struct {
	llm    Completer
	scn    *scenario.Scenario
	logger *zap.Logger
}

// NewRefereeAgent creates a judge.
func NewRefereeAgent(llm Completer, scn *scenario.Scenario, logger *zap.Logger) *RefereeAgent {
	return &RefereeAgent{llm: llm, scn: scn, logger: logger}
}

// JudgeAction implements Judge.
func (a *RefereeAgent) JudgeAction(ctx context.Context, action DeclaredAction, snapshot *state.GameState, history []chat.Message) (ActionResult, error) {
	actor := snapshot.Character(action.CharacterID)
	name := action.CharacterID
	if actor != nil {
		name = actor.Name
	}

	var b strings.Builder
	b.WriteString(describeState(a.scn, snapshot))
	b.WriteString("\nRecent conversation:\n")
	b.WriteString(describeHistory(history))
	fmt.Fprintf(&b, "\nDeclared action by %s (%s): [%s] %s",
		name, action.CharacterID, action.Type, action.Content)
	if action.Target != "" {
		fmt.Fprintf(&b, " (target: %s)", action.Target)
	}
	b.WriteString("\nJudge this action.")

	raw, err := a.llm.Complete(ctx, judgeSystemPrompt, b.String())
	if err != nil {
		return ActionResult{}, err
	}

	var parsed struct {
		Success      bool                      `json:"success"`
		Narrative    string                    `json:"narrative"`
		Consequences []consequence.Consequence `json:"consequences"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		a.logger.Warn("judge returned malformed verdict, treating action as failed",
			zap.String("character_id", action.CharacterID),
			zap.Error(err),
		)
		return ActionResult{
			CharacterID: action.CharacterID,
			Action:      action,
			Success:     false,
			Narrative:   raw,
		}, nil
	}

	return ActionResult{
		CharacterID:  action.CharacterID,
		Action:       action,
		Success:      parsed.Success,
		Narrative:    parsed.Narrative,
		Consequences: parsed.Consequences,
	}, nil
}

// DetermineTriggeredEvents implements Judge.
func (a *RefereeAgent) DetermineTriggeredEvents(ctx context.Context, results []ActionResult, snapshot *state.GameState) ([]EventTrigger, error) {
	if len(snapshot.ActiveEventIDs) == 0 {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString(describeState(a.scn, snapshot))
	b.WriteString("\nJudged results this round:\n")
	for _, r := range results {
		verdict := "failed"
		if r.Success {
			verdict = "succeeded"
		}
		fmt.Fprintf(&b, "- %s %s: %s\n", r.CharacterID, verdict, r.Narrative)
	}
	b.WriteString("\nWhich active events fired this round?")

	raw, err := a.llm.Complete(ctx, eventSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var triggers []EventTrigger
	if err := json.Unmarshal([]byte(extractJSON(raw)), &triggers); err != nil {
		a.logger.Warn("judge returned malformed trigger list, assuming no events fired",
			zap.Error(err),
		)
		return nil, nil
	}
	return triggers, nil
}
