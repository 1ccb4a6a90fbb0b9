package scenario

import (
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// NewGameState builds the starting game state for a scenario: characters
// instantiated from their templates, location rosters derived from
// starting positions, and the first stage's events active.
func NewGameState(s *Scenario, maxRounds int) *state.GameState {
	gs := &state.GameState{
		ScenarioID:        s.ID,
		PlayerCharacterID: s.PlayerCharacterID(),
		RoundNumber:       0,
		MaxRounds:         maxRounds,
		Characters:        make(map[string]*state.CharacterInstance, len(s.Characters)),
		LocationStates:    make(map[string]*state.LocationState, len(s.Locations)),
		CompletedEventIDs: make(map[string]bool),
		Flags:             make(map[string]bool),
	}

	if len(s.Stages) > 0 {
		gs.Progress = state.Progress{StageIndex: 0, StageID: s.Stages[0].ID}
	}

	for _, l := range s.Locations {
		loc := &state.LocationState{ID: l.ID}
		for _, it := range l.Items {
			loc.Items = append(loc.Items, state.ItemStack{ItemID: it.ItemID, Quantity: it.Quantity})
		}
		if len(l.Attributes) > 0 {
			loc.Attributes = make(map[string]any, len(l.Attributes))
			for k, v := range l.Attributes {
				loc.Attributes[k] = v
			}
		}
		gs.LocationStates[l.ID] = loc
	}

	for _, t := range s.Characters {
		ch := &state.CharacterInstance{
			ID:                   t.ID,
			Name:                 t.Name,
			PlayerControlled:     t.PlayerControlled,
			Location:             t.StartingLocation,
			Health:               t.Health,
			RelationshipToPlayer: t.Relationship,
		}
		if len(t.Attributes) > 0 {
			ch.Attributes = make(map[string]any, len(t.Attributes))
			for k, v := range t.Attributes {
				ch.Attributes[k] = v
			}
		}
		if len(t.Skills) > 0 {
			ch.Skills = make(map[string]int, len(t.Skills))
			for k, v := range t.Skills {
				ch.Skills[k] = v
			}
		}
		for _, it := range t.StartingItems {
			ch.Inventory = append(ch.Inventory, state.ItemStack{ItemID: it.ItemID, Quantity: it.Quantity})
		}
		if t.StartingLocation != "" {
			ch.VisitedLocations = []string{t.StartingLocation}
			if loc := gs.LocationStates[t.StartingLocation]; loc != nil {
				loc.PresentCharacters = append(loc.PresentCharacters, t.ID)
			}
		}
		gs.Characters[t.ID] = ch
	}

	// Activate the opening stage's events in declaration order.
	for _, e := range s.Events {
		if e.ActivationStage == gs.Progress.StageID {
			gs.ActiveEventIDs = append(gs.ActiveEventIDs, e.ID)
		}
	}

	return gs
}
