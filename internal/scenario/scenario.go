package scenario

import (
	"github.com/chronicle-rpg/chronicle/internal/consequence"
)

// Scenario is the static content a game runs on: who exists, where they
// are, what can happen, and how the story progresses. It is loaded once
// and never mutated; all per-game mutable state lives in state.GameState.
type Scenario struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Background     string `json:"background"`
	NarrativeStyle string `json:"narrative_style,omitempty"`

	Characters []CharacterTemplate `json:"characters"`
	Locations  []Location          `json:"locations"`
	Items      []Item              `json:"items,omitempty"`
	Events     []Event             `json:"events,omitempty"`
	Stages     []Stage             `json:"stages"`
}

// CharacterTemplate is the authored starting definition of a character.
type CharacterTemplate struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Goals            []string       `json:"goals,omitempty"`
	Playable         bool           `json:"playable"`
	PlayerControlled bool           `json:"player_controlled"`
	StartingLocation string         `json:"starting_location"`
	Health           int            `json:"health"`
	Attributes       map[string]any `json:"attributes,omitempty"`
	Skills           map[string]int `json:"skills,omitempty"`
	StartingItems    []StartingItem `json:"starting_items,omitempty"`
	// Relationship is the initial disposition toward the protagonist.
	Relationship int `json:"relationship,omitempty"`
}

// StartingItem is one authored inventory line on a character template.
type StartingItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Location is an authored place characters can occupy.
type Location struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	Items       []StartingItem `json:"items,omitempty"`
}

// Item is an authored item definition, referenced by ID from inventories.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Event is an authored happening that becomes active when the story
// reaches its activation stage. A non-repeatable event leaves the active
// set permanently once triggered.
type Event struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	ActivationStage string    `json:"activation_stage"`
	Repeatable      bool      `json:"repeatable,omitempty"`
	Outcomes        []Outcome `json:"outcomes"`
}

// Outcome is one authored way an event can resolve, carrying the
// consequences the engine applies when the judge picks it.
type Outcome struct {
	ID           string                    `json:"id"`
	Description  string                    `json:"description,omitempty"`
	Consequences []consequence.Consequence `json:"consequences,omitempty"`
}

// Outcome returns the outcome with the given ID, or nil.
func (e *Event) Outcome(id string) *Outcome {
	for i := range e.Outcomes {
		if e.Outcomes[i].ID == id {
			return &e.Outcomes[i]
		}
	}
	return nil
}

// Criterion kinds for stage completion.
const (
	CriterionFlag = "flag"
	CriterionItem = "item"
)

// Criterion is one structured condition a stage requires. Kind "flag"
// compares a world flag against a boolean; kind "item" requires a
// character to hold at least MinQuantity of an item.
type Criterion struct {
	Kind        string `json:"kind"`
	Flag        string `json:"flag,omitempty"`
	Value       bool   `json:"value,omitempty"`
	CharacterID string `json:"character_id,omitempty"`
	ItemID      string `json:"item_id,omitempty"`
	MinQuantity int    `json:"min_quantity,omitempty"`
}

// Stage is one node of the scripted story progression. A stage is complete
// only when every criterion holds; a stage with no criteria never
// completes on its own.
type Stage struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Description        string      `json:"description,omitempty"`
	CompletionCriteria []Criterion `json:"completion_criteria,omitempty"`
}

// Event returns the event with the given ID, or nil.
func (s *Scenario) Event(id string) *Event {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return &s.Events[i]
		}
	}
	return nil
}

// Stage returns the stage at the given index, or nil when out of range.
func (s *Scenario) Stage(index int) *Stage {
	if index < 0 || index >= len(s.Stages) {
		return nil
	}
	return &s.Stages[index]
}

// PlayerCharacterID returns the ID of the player-controlled template, or
// the first playable one when none is marked player-controlled.
func (s *Scenario) PlayerCharacterID() string {
	for _, c := range s.Characters {
		if c.PlayerControlled {
			return c.ID
		}
	}
	for _, c := range s.Characters {
		if c.Playable {
			return c.ID
		}
	}
	return ""
}
