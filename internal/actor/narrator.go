package actor

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

const narratorSystemPrompt = `You are the narrator of a tabletop RPG session.
Write a short scene-setting paragraph in the scenario's narrative style:
atmosphere, what changed, loose threads worth pulling on. Plain prose only.
If the scene genuinely needs no narration, answer with an empty string.`

// NarratorAgent produces scene-setting prose via the completion API.
type NarratorAgent struct {
	llm    Completer
	scn    *scenario.Scenario
	logger *zap.Logger
}

// NewNarratorAgent creates a narrator.
func NewNarratorAgent(llm Completer, scn *scenario.Scenario, logger *zap.Logger) *NarratorAgent {
	return &NarratorAgent{llm: llm, scn: scn, logger: logger}
}

// Narrate implements Narrator. An empty return with nil error means the
// narrator chose silence.
func (a *NarratorAgent) Narrate(ctx context.Context, snapshot *state.GameState, history []chat.Message) (string, error) {
	var b strings.Builder
	b.WriteString(describeState(a.scn, snapshot))
	if a.scn.NarrativeStyle != "" {
		b.WriteString("\nNarrative style: " + a.scn.NarrativeStyle + "\n")
	}
	b.WriteString("\nRecent conversation:\n")
	b.WriteString(describeHistory(history))
	b.WriteString("\nNarrate the scene as the round opens.")

	raw, err := a.llm.Complete(ctx, narratorSystemPrompt, b.String())
	if err != nil {
		return "", err
	}

	narrative := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if narrative == "" {
		a.logger.Debug("narrator chose silence")
	}
	return narrative, nil
}
