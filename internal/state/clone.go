package state

// Clone returns a fully detached deep copy of the game state. The copy
// shares no mutable memory with the receiver, so the live state may keep
// changing after a snapshot is taken without affecting it.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	out := &GameState{
		ScenarioID:        gs.ScenarioID,
		PlayerCharacterID: gs.PlayerCharacterID,
		RoundNumber:       gs.RoundNumber,
		MaxRounds:         gs.MaxRounds,
		LastActiveRound:   gs.LastActiveRound,
		Progress:          gs.Progress,
	}

	if gs.Characters != nil {
		out.Characters = make(map[string]*CharacterInstance, len(gs.Characters))
		for id, c := range gs.Characters {
			out.Characters[id] = c.Clone()
		}
	}
	if gs.LocationStates != nil {
		out.LocationStates = make(map[string]*LocationState, len(gs.LocationStates))
		for id, l := range gs.LocationStates {
			out.LocationStates[id] = l.Clone()
		}
	}

	out.ActiveEventIDs = cloneStrings(gs.ActiveEventIDs)
	out.CompletedEventIDs = cloneBoolMap(gs.CompletedEventIDs)
	out.Flags = cloneBoolMap(gs.Flags)

	if gs.CurrentRoundActions != nil {
		out.CurrentRoundActions = make([]ActionRecord, len(gs.CurrentRoundActions))
		copy(out.CurrentRoundActions, gs.CurrentRoundActions)
	}
	if gs.CurrentRoundAppliedConsequences != nil {
		out.CurrentRoundAppliedConsequences = make([]AppliedConsequenceRecord, len(gs.CurrentRoundAppliedConsequences))
		for i, rec := range gs.CurrentRoundAppliedConsequences {
			rec.Details = cloneAnyMap(rec.Details)
			out.CurrentRoundAppliedConsequences[i] = rec
		}
	}
	if gs.CurrentRoundTriggeredEvents != nil {
		out.CurrentRoundTriggeredEvents = make([]TriggeredEventRecord, len(gs.CurrentRoundTriggeredEvents))
		copy(out.CurrentRoundTriggeredEvents, gs.CurrentRoundTriggeredEvents)
	}
	if gs.PendingMessages != nil {
		out.PendingMessages = make([]PendingMessage, len(gs.PendingMessages))
		copy(out.PendingMessages, gs.PendingMessages)
	}
	return out
}

// Clone returns a deep copy of the character instance.
func (c *CharacterInstance) Clone() *CharacterInstance {
	if c == nil {
		return nil
	}
	out := *c
	out.Attributes = cloneAnyMap(c.Attributes)
	out.Skills = cloneIntMap(c.Skills)
	out.Inventory = cloneItems(c.Inventory)
	out.Notes.ShortTermGoals = cloneStrings(c.Notes.ShortTermGoals)
	out.VisitedLocations = cloneStrings(c.VisitedLocations)
	return &out
}

// Clone returns a deep copy of the location state.
func (l *LocationState) Clone() *LocationState {
	if l == nil {
		return nil
	}
	out := *l
	out.PresentCharacters = cloneStrings(l.PresentCharacters)
	out.Items = cloneItems(l.Items)
	out.Attributes = cloneAnyMap(l.Attributes)
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneItems(in []ItemStack) []ItemStack {
	if in == nil {
		return nil
	}
	out := make([]ItemStack, len(in))
	copy(out, in)
	return out
}

func cloneBoolMap(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneIntMap(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies the JSON-shaped values that appear in open
// attribute maps: scalars, string-keyed maps and slices.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneAnyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	case []string:
		return cloneStrings(val)
	default:
		return val
	}
}
