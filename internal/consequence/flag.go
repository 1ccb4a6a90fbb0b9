package consequence

import (
	"fmt"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// applySetFlag sets a named boolean flag on the world state. Non-boolean
// values are rejected rather than coerced.
func applySetFlag(c Consequence, gs *state.GameState) (string, error) {
	if c.FlagName == "" {
		return "", fmt.Errorf("SET_FLAG has no flag name")
	}
	v, ok := c.Value.(bool)
	if !ok {
		return "", fmt.Errorf("SET_FLAG %q value is not a boolean", c.FlagName)
	}
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	gs.Flags[c.FlagName] = v
	return fmt.Sprintf("flag %q set to %t", c.FlagName, v), nil
}
