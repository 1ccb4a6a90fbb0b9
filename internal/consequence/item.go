package consequence

import (
	"fmt"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// itemTarget resolves the inventory the item consequence operates on:
// either a character's inventory or a location's item list.
func itemTarget(c Consequence, gs *state.GameState) (*[]state.ItemStack, string, error) {
	if char := gs.Character(c.TargetID); char != nil {
		return &char.Inventory, char.Name, nil
	}
	if loc := gs.Location(c.TargetID); loc != nil {
		return &loc.Items, "location " + loc.ID, nil
	}
	return nil, "", fmt.Errorf("%s target %q is neither a character nor a location", c.Type, c.TargetID)
}

func itemQuantity(c Consequence) (int, error) {
	n, ok := asNumber(c.Value)
	if !ok || n != float64(int(n)) || int(n) <= 0 {
		return 0, fmt.Errorf("%s quantity for item %q must be a positive integer, got %v", c.Type, c.ItemID, c.Value)
	}
	return int(n), nil
}

// applyAddItem merges the quantity into an existing inventory line or
// creates a new one.
func applyAddItem(c Consequence, gs *state.GameState) (string, error) {
	if c.ItemID == "" {
		return "", fmt.Errorf("ADD_ITEM missing item ID for target %q", c.TargetID)
	}
	qty, err := itemQuantity(c)
	if err != nil {
		return "", err
	}
	inv, owner, err := itemTarget(c, gs)
	if err != nil {
		return "", err
	}

	for i := range *inv {
		if (*inv)[i].ItemID == c.ItemID {
			(*inv)[i].Quantity += qty
			return fmt.Sprintf("%s gained %d %q (now %d)", owner, qty, c.ItemID, (*inv)[i].Quantity), nil
		}
	}
	*inv = append(*inv, state.ItemStack{ItemID: c.ItemID, Quantity: qty})
	return fmt.Sprintf("%s gained %d %q", owner, qty, c.ItemID), nil
}

// applyRemoveItem decrements an inventory line, deleting it when the
// quantity reaches zero. Removing more than is held fails and leaves the
// inventory unchanged.
func applyRemoveItem(c Consequence, gs *state.GameState) (string, error) {
	if c.ItemID == "" {
		return "", fmt.Errorf("REMOVE_ITEM missing item ID for target %q", c.TargetID)
	}
	qty, err := itemQuantity(c)
	if err != nil {
		return "", err
	}
	inv, owner, err := itemTarget(c, gs)
	if err != nil {
		return "", err
	}

	for i := range *inv {
		line := &(*inv)[i]
		if line.ItemID != c.ItemID {
			continue
		}
		if line.Quantity < qty {
			return "", fmt.Errorf("REMOVE_ITEM: %s holds %d %q, cannot remove %d", owner, line.Quantity, c.ItemID, qty)
		}
		line.Quantity -= qty
		if line.Quantity == 0 {
			*inv = append((*inv)[:i], (*inv)[i+1:]...)
			return fmt.Sprintf("%s lost the last %d %q", owner, qty, c.ItemID), nil
		}
		return fmt.Sprintf("%s lost %d %q (%d left)", owner, qty, c.ItemID, line.Quantity), nil
	}
	return "", fmt.Errorf("REMOVE_ITEM: %s holds no %q", owner, c.ItemID)
}
