package consequence

import (
	"fmt"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// applyChangeLocation moves a character to another location, keeping the
// present-character rosters of both ends consistent and recording a first
// visit on the character.
func applyChangeLocation(c Consequence, gs *state.GameState) (string, error) {
	ch := gs.Character(c.TargetID)
	if ch == nil {
		return "", fmt.Errorf("CHANGE_LOCATION target character %q not found", c.TargetID)
	}
	destID, ok := asString(c.Value)
	if !ok || destID == "" {
		return "", fmt.Errorf("CHANGE_LOCATION for %q has no destination", c.TargetID)
	}
	dest := gs.Location(destID)
	if dest == nil {
		return "", fmt.Errorf("CHANGE_LOCATION destination %q not found", destID)
	}

	if prev := gs.Location(ch.Location); prev != nil {
		prev.PresentCharacters = removeString(prev.PresentCharacters, ch.ID)
	}
	if !containsString(dest.PresentCharacters, ch.ID) {
		dest.PresentCharacters = append(dest.PresentCharacters, ch.ID)
	}
	from := ch.Location
	ch.Location = destID
	if !containsString(ch.VisitedLocations, destID) {
		ch.VisitedLocations = append(ch.VisitedLocations, destID)
	}
	return fmt.Sprintf("%s moved from %s to %s", ch.Name, from, destID), nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
