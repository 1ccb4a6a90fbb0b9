package scenario

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads and validates a scenario definition from a JSON file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario definition.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.ID, err)
	}
	return &s, nil
}

// Validate checks the structural integrity of the scenario. A scenario
// with no playable character or no stages cannot start a game.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("missing scenario id")
	}
	if len(s.Stages) == 0 {
		return fmt.Errorf("no stages defined")
	}
	if s.PlayerCharacterID() == "" {
		return fmt.Errorf("no playable character defined")
	}

	locations := make(map[string]bool, len(s.Locations))
	for _, l := range s.Locations {
		if l.ID == "" {
			return fmt.Errorf("location with empty id")
		}
		if locations[l.ID] {
			return fmt.Errorf("duplicate location id %q", l.ID)
		}
		locations[l.ID] = true
	}

	characters := make(map[string]bool, len(s.Characters))
	for _, c := range s.Characters {
		if c.ID == "" {
			return fmt.Errorf("character with empty id")
		}
		if characters[c.ID] {
			return fmt.Errorf("duplicate character id %q", c.ID)
		}
		characters[c.ID] = true
		if c.StartingLocation != "" && !locations[c.StartingLocation] {
			return fmt.Errorf("character %q starts in unknown location %q", c.ID, c.StartingLocation)
		}
	}

	stages := make(map[string]bool, len(s.Stages))
	for _, st := range s.Stages {
		if st.ID == "" {
			return fmt.Errorf("stage with empty id")
		}
		if stages[st.ID] {
			return fmt.Errorf("duplicate stage id %q", st.ID)
		}
		stages[st.ID] = true
		for _, cr := range st.CompletionCriteria {
			switch cr.Kind {
			case CriterionFlag:
				if cr.Flag == "" {
					return fmt.Errorf("stage %q: flag criterion with empty flag name", st.ID)
				}
			case CriterionItem:
				if cr.ItemID == "" || cr.CharacterID == "" || cr.MinQuantity <= 0 {
					return fmt.Errorf("stage %q: item criterion needs character, item and positive quantity", st.ID)
				}
			default:
				return fmt.Errorf("stage %q: unknown criterion kind %q", st.ID, cr.Kind)
			}
		}
	}

	for _, e := range s.Events {
		if e.ID == "" {
			return fmt.Errorf("event with empty id")
		}
		if !stages[e.ActivationStage] {
			return fmt.Errorf("event %q activates on unknown stage %q", e.ID, e.ActivationStage)
		}
		if len(e.Outcomes) == 0 {
			return fmt.Errorf("event %q has no outcomes", e.ID)
		}
		seen := make(map[string]bool, len(e.Outcomes))
		for _, o := range e.Outcomes {
			if o.ID == "" {
				return fmt.Errorf("event %q: outcome with empty id", e.ID)
			}
			if seen[o.ID] {
				return fmt.Errorf("event %q: duplicate outcome id %q", e.ID, o.ID)
			}
			seen[o.ID] = true
		}
	}

	return nil
}
