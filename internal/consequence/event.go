package consequence

import (
	"fmt"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// applyTriggerEvent records that an active scenario event fired with a given
// outcome. Only events currently active in the world can be triggered; the
// outcome's own consequences are resolved by the caller, not here.
func applyTriggerEvent(c Consequence, gs *state.GameState) (string, error) {
	if c.EventID == "" {
		return "", fmt.Errorf("TRIGGER_EVENT has no event id")
	}
	if !gs.EventActive(c.EventID) {
		return "", fmt.Errorf("TRIGGER_EVENT event %q is not active", c.EventID)
	}
	gs.CurrentRoundTriggeredEvents = append(gs.CurrentRoundTriggeredEvents, state.TriggeredEventRecord{
		Round:     gs.RoundNumber,
		EventID:   c.EventID,
		OutcomeID: c.OutcomeID,
		Source:    "consequence",
	})
	if gs.CompletedEventIDs == nil {
		gs.CompletedEventIDs = make(map[string]bool)
	}
	gs.CompletedEventIDs[c.EventID] = true
	return fmt.Sprintf("event %q triggered with outcome %q", c.EventID, c.OutcomeID), nil
}
