package consequence

import (
	"fmt"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// applyUpdateAttribute changes a named attribute on a character. Numeric
// values are treated as deltas against a numeric current value; anything
// else replaces the attribute outright. The attribute name "health" maps to
// the character's health field.
func applyUpdateAttribute(c Consequence, gs *state.GameState) (string, error) {
	if c.AttributeName == "" {
		return "", fmt.Errorf("UPDATE_ATTRIBUTE missing attribute name for target %q", c.TargetID)
	}
	char := gs.Character(c.TargetID)
	if char == nil {
		return "", fmt.Errorf("UPDATE_ATTRIBUTE target character %q not found", c.TargetID)
	}

	if c.AttributeName == "health" {
		delta, ok := asNumber(c.Value)
		if !ok {
			return "", fmt.Errorf("UPDATE_ATTRIBUTE health value for %q is not numeric", c.TargetID)
		}
		old := char.Health
		char.Health += int(delta)
		return fmt.Sprintf("%s health changed from %d to %d (%+d)", char.Name, old, char.Health, int(delta)), nil
	}

	if char.Attributes == nil {
		char.Attributes = make(map[string]any)
	}
	current, exists := char.Attributes[c.AttributeName]

	if delta, numericNew := asNumber(c.Value); numericNew && exists {
		if base, numericOld := asNumber(current); numericOld {
			updated := base + delta
			char.Attributes[c.AttributeName] = updated
			return fmt.Sprintf("%s attribute %q changed from %v to %v (%+g)",
				char.Name, c.AttributeName, base, updated, delta), nil
		}
	}

	char.Attributes[c.AttributeName] = c.Value
	if exists {
		return fmt.Sprintf("%s attribute %q set from %v to %v", char.Name, c.AttributeName, current, c.Value), nil
	}
	return fmt.Sprintf("%s attribute %q set to %v", char.Name, c.AttributeName, c.Value), nil
}

// applyUpdateSkill applies an integer delta to a character skill. Missing
// skills start from zero.
func applyUpdateSkill(c Consequence, gs *state.GameState) (string, error) {
	if c.SkillName == "" {
		return "", fmt.Errorf("UPDATE_SKILL missing skill name for target %q", c.TargetID)
	}
	char := gs.Character(c.TargetID)
	if char == nil {
		return "", fmt.Errorf("UPDATE_SKILL target character %q not found", c.TargetID)
	}
	delta, ok := asNumber(c.Value)
	if !ok {
		return "", fmt.Errorf("UPDATE_SKILL value for %q skill %q is not numeric", c.TargetID, c.SkillName)
	}

	if char.Skills == nil {
		char.Skills = make(map[string]int)
	}
	old := char.Skills[c.SkillName]
	char.Skills[c.SkillName] = old + int(delta)
	return fmt.Sprintf("%s skill %q changed from %d to %d (%+d)",
		char.Name, c.SkillName, old, char.Skills[c.SkillName], int(delta)), nil
}
