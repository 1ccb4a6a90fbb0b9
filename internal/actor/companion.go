package actor

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/consequence"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

const (
	companionSystemPrompt = `You play one character in a tabletop RPG session.
Stay in character. Answer with a single JSON object and nothing else:
{"type": "TALK"|"ACT"|"WAIT", "content": "...", "target": "optional entity id",
 "notes": "optional private reasoning",
 "relationship_change": optional integer between -10 and 10}
TALK is speech, ACT is an attempt to change the world, WAIT passes the round.
relationship_change is how the latest events shifted your feelings toward the
protagonist; omit it or use 0 when nothing changed.`

	// Self-assessed relationship shifts stay small; anything larger comes
	// from judged consequences, not the companion's own mood.
	maxSelfAssessedShift = 10
)

// CompanionAgent decides actions for non-player characters via the
// completion API. Malformed output degrades to a WAIT action, so a
// rambling model costs the character its round but never injects
// unparseable text into play.
type CompanionAgent struct {
	llm    Completer
	scn    *scenario.Scenario
	logger *zap.Logger
}

// NewCompanionAgent creates a decider for NPC characters.
func NewCompanionAgent(llm Completer, scn *scenario.Scenario, logger *zap.Logger) *CompanionAgent {
	return &CompanionAgent{llm: llm, scn: scn, logger: logger}
}

// DecideAction implements Decider.
func (a *CompanionAgent) DecideAction(ctx context.Context, characterID string, snapshot *state.GameState, history []chat.Message) (DeclaredAction, error) {
	ch := snapshot.Character(characterID)
	if ch == nil {
		return DeclaredAction{}, fmt.Errorf("character %q not in snapshot", characterID)
	}

	user := describeCharacter(a.scn, ch) + "\n" +
		describeState(a.scn, snapshot) + "\nRecent conversation:\n" +
		describeHistory(history) + "\nDeclare your action for this round."

	raw, err := a.llm.Complete(ctx, companionSystemPrompt, user)
	if err != nil {
		return DeclaredAction{}, err
	}

	var parsed struct {
		Type               string `json:"type"`
		Content            string `json:"content"`
		Target             string `json:"target"`
		Notes              string `json:"notes"`
		RelationshipChange int    `json:"relationship_change"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil || parsed.Content == "" {
		a.logger.Warn("companion returned malformed action, waiting this round",
			zap.String("character_id", characterID),
		)
		return WaitAction(characterID), nil
	}

	action := DeclaredAction{
		CharacterID: characterID,
		Type:        normalizeActionType(parsed.Type),
		Content:     parsed.Content,
		Target:      parsed.Target,
		Notes:       parsed.Notes,
	}
	if effect, ok := a.selfAssessment(characterID, snapshot, parsed.RelationshipChange); ok {
		action.SideEffects = append(action.SideEffects, effect)
	}
	return action, nil
}

// selfAssessment turns the companion's declared disposition shift toward
// the protagonist into a relationship consequence. The shift is clamped
// and never applies to the protagonist itself.
func (a *CompanionAgent) selfAssessment(characterID string, snapshot *state.GameState, delta int) (consequence.Consequence, bool) {
	if delta == 0 || snapshot.PlayerCharacterID == "" || characterID == snapshot.PlayerCharacterID {
		return consequence.Consequence{}, false
	}
	if delta > maxSelfAssessedShift {
		delta = maxSelfAssessedShift
	} else if delta < -maxSelfAssessedShift {
		delta = -maxSelfAssessedShift
	}
	a.logger.Debug("companion relationship self-assessment",
		zap.String("character_id", characterID),
		zap.Int("delta", delta),
	)
	return consequence.Consequence{
		Type:        consequence.TypeChangeRelationship,
		TargetID:    characterID,
		SecondaryID: snapshot.PlayerCharacterID,
		Value:       delta,
	}, true
}

func normalizeActionType(s string) ActionType {
	switch ActionType(s) {
	case ActionTalk, ActionAct, ActionWait:
		return ActionType(s)
	default:
		return ActionTalk
	}
}
