package consequence

import (
	"fmt"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// applyChangeRelationship shifts a character's disposition toward the
// protagonist by a numeric delta, clamped into the relationship bounds.
// One side of the pair must be the protagonist; the engine does not track
// relationships between two non-player characters.
func applyChangeRelationship(c Consequence, gs *state.GameState) (string, error) {
	target := gs.Character(c.TargetID)
	if target == nil {
		return "", fmt.Errorf("CHANGE_RELATIONSHIP target character %q not found", c.TargetID)
	}
	secondary := gs.Character(c.SecondaryID)
	if secondary == nil {
		return "", fmt.Errorf("CHANGE_RELATIONSHIP secondary character %q not found", c.SecondaryID)
	}
	delta, ok := asNumber(c.Value)
	if !ok {
		return "", fmt.Errorf("CHANGE_RELATIONSHIP value between %q and %q is not numeric", c.TargetID, c.SecondaryID)
	}

	// The tracked value always lives on the non-player side of the pair.
	var subject *state.CharacterInstance
	switch gs.PlayerCharacterID {
	case c.SecondaryID:
		subject = target
	case c.TargetID:
		subject = secondary
	default:
		return "", fmt.Errorf("CHANGE_RELATIONSHIP between %q and %q involves no protagonist", c.TargetID, c.SecondaryID)
	}

	old := subject.RelationshipToPlayer
	subject.RelationshipToPlayer = clampRelationship(old + int(delta))
	return fmt.Sprintf("%s's disposition toward the protagonist changed from %d to %d (%+d)",
		subject.Name, old, subject.RelationshipToPlayer, int(delta)), nil
}

func clampRelationship(v int) int {
	if v < state.RelationshipMin {
		return state.RelationshipMin
	}
	if v > state.RelationshipMax {
		return state.RelationshipMax
	}
	return v
}
