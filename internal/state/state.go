package state

import "time"

// Relationship values toward the protagonist are clamped to this range.
const (
	RelationshipMin = -100
	RelationshipMax = 100
)

// ItemStack is one inventory line: an item ID and how many of it are held.
// Lines are merged by item ID; a line never exists with quantity zero.
type ItemStack struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// CharacterNotes holds a character's free-form internal state, written by
// its decision collaborator and never interpreted by the engine.
type CharacterNotes struct {
	ShortTermGoals   []string `json:"short_term_goals,omitempty"`
	LastUpdatedRound int      `json:"last_updated_round"`
}

// CharacterInstance is the mutable, per-game state of one character.
// Instances are created once at game initialization from scenario templates
// and mutated only through consequence handlers.
type CharacterInstance struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	PlayerControlled bool           `json:"player_controlled"`
	Location         string         `json:"location"`
	Health           int            `json:"health"`
	Attributes       map[string]any `json:"attributes,omitempty"`
	Skills           map[string]int `json:"skills,omitempty"`
	Inventory        []ItemStack    `json:"inventory,omitempty"`
	// RelationshipToPlayer is this character's disposition toward the
	// protagonist, always within [RelationshipMin, RelationshipMax].
	RelationshipToPlayer int            `json:"relationship_to_player"`
	Notes                CharacterNotes `json:"notes"`
	VisitedLocations     []string       `json:"visited_locations,omitempty"`
}

// LocationState is the mutable state of one scenario location.
// PresentCharacters is derived from character locations and is maintained
// by the location-change handler, never mutated directly.
type LocationState struct {
	ID                string         `json:"id"`
	PresentCharacters []string       `json:"present_characters,omitempty"`
	Items             []ItemStack    `json:"items,omitempty"`
	Attributes        map[string]any `json:"attributes,omitempty"`
}

// Progress points at the current node of the scripted story progression.
type Progress struct {
	StageIndex int    `json:"stage_index"`
	StageID    string `json:"stage_id"`
}

// AppliedConsequenceRecord is one append-only audit entry covering a single
// consequence application attempt, successful or not.
type AppliedConsequenceRecord struct {
	RecordID    string         `json:"record_id"`
	Round       int            `json:"round"`
	Type        string         `json:"type"`
	TargetID    string         `json:"target_id"`
	Success     bool           `json:"success"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// TriggeredEventRecord is one append-only audit entry for a scenario event
// that fired this round.
type TriggeredEventRecord struct {
	Round     int    `json:"round"`
	EventID   string `json:"event_id"`
	OutcomeID string `json:"outcome_id"`
	Source    string `json:"source"`
}

// ActionRecord summarizes one declared action for the round. The narration
// phase walks these on past snapshots to decide whether a round was active.
type ActionRecord struct {
	CharacterID string `json:"character_id"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Target      string `json:"target,omitempty"`
}

// PendingMessage is a message queued by a send-message consequence, to be
// dispatched by the update phase rather than from inside a handler.
type PendingMessage struct {
	Content   string `json:"content"`
	Recipient string `json:"recipient,omitempty"`
}

// GameState is the aggregate root of a running game. Exactly one writer
// mutates it per round; external collaborators only ever see deep-copied
// snapshots of it.
type GameState struct {
	ScenarioID        string `json:"scenario_id"`
	PlayerCharacterID string `json:"player_character_id"`

	RoundNumber     int `json:"round_number"`
	MaxRounds       int `json:"max_rounds"`
	LastActiveRound int `json:"last_active_round"`

	Progress Progress `json:"progress"`

	Characters     map[string]*CharacterInstance `json:"characters"`
	LocationStates map[string]*LocationState     `json:"location_states"`

	// ActiveEventIDs is recomputed from scratch by the store on every
	// stage change, preserving scenario declaration order.
	ActiveEventIDs    []string        `json:"active_event_ids,omitempty"`
	CompletedEventIDs map[string]bool `json:"completed_event_ids,omitempty"`

	Flags map[string]bool `json:"flags,omitempty"`

	CurrentRoundActions             []ActionRecord             `json:"current_round_actions,omitempty"`
	CurrentRoundAppliedConsequences []AppliedConsequenceRecord `json:"current_round_applied_consequences,omitempty"`
	CurrentRoundTriggeredEvents     []TriggeredEventRecord     `json:"current_round_triggered_events,omitempty"`
	PendingMessages                 []PendingMessage           `json:"pending_messages,omitempty"`
}

// Character returns the character with the given ID, or nil.
func (gs *GameState) Character(id string) *CharacterInstance {
	return gs.Characters[id]
}

// Location returns the location state with the given ID, or nil.
func (gs *GameState) Location(id string) *LocationState {
	return gs.LocationStates[id]
}

// EventActive reports whether the event ID is in the active set.
func (gs *GameState) EventActive(eventID string) bool {
	for _, id := range gs.ActiveEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// AllCharactersDown reports whether every character's health is at or
// below zero. An empty character map counts as nobody being down.
func (gs *GameState) AllCharactersDown() bool {
	if len(gs.Characters) == 0 {
		return false
	}
	for _, c := range gs.Characters {
		if c.Health > 0 {
			return false
		}
	}
	return true
}

// ItemQuantity returns how many of the item the character currently holds.
func (c *CharacterInstance) ItemQuantity(itemID string) int {
	for _, line := range c.Inventory {
		if line.ItemID == itemID {
			return line.Quantity
		}
	}
	return 0
}
