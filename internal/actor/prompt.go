package actor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// describeState renders the parts of a snapshot a decision-maker needs
// into prompt text. Map-backed collections are listed in sorted order so
// prompts are stable across runs.
func describeState(scn *scenario.Scenario, gs *state.GameState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scenario: %s\n%s\n", scn.Title, scn.Background)
	if stage := scn.Stage(gs.Progress.StageIndex); stage != nil {
		fmt.Fprintf(&b, "Current story stage: %s — %s\n", stage.Name, stage.Description)
	}
	fmt.Fprintf(&b, "Round %d of %d.\n\n", gs.RoundNumber, gs.MaxRounds)

	ids := make([]string, 0, len(gs.Characters))
	for id := range gs.Characters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	b.WriteString("Characters:\n")
	for _, id := range ids {
		ch := gs.Characters[id]
		fmt.Fprintf(&b, "- %s (%s): health %d, at %s", ch.Name, ch.ID, ch.Health, ch.Location)
		if !ch.PlayerControlled {
			fmt.Fprintf(&b, ", disposition toward protagonist %d", ch.RelationshipToPlayer)
		}
		if len(ch.Inventory) > 0 {
			items := make([]string, 0, len(ch.Inventory))
			for _, line := range ch.Inventory {
				items = append(items, fmt.Sprintf("%s x%d", line.ItemID, line.Quantity))
			}
			fmt.Fprintf(&b, ", carrying %s", strings.Join(items, ", "))
		}
		b.WriteString("\n")
	}

	if len(gs.ActiveEventIDs) > 0 {
		b.WriteString("\nActive events:\n")
		for _, id := range gs.ActiveEventIDs {
			if e := scn.Event(id); e != nil {
				fmt.Fprintf(&b, "- %s (%s): %s\n", e.Name, e.ID, e.Description)
				for _, o := range e.Outcomes {
					fmt.Fprintf(&b, "  outcome %s: %s\n", o.ID, o.Description)
				}
			}
		}
	}

	return b.String()
}

// describeHistory renders recent messages as a transcript.
func describeHistory(history []chat.Message) string {
	if len(history) == 0 {
		return "No conversation so far.\n"
	}
	var b strings.Builder
	for _, m := range history {
		who := m.Source
		if m.SourceID != "" {
			who = m.SourceID
		}
		fmt.Fprintf(&b, "[round %d] %s: %s\n", m.RoundID, who, m.Content)
	}
	return b.String()
}

// describeCharacter renders one character's private view for its own
// decision prompt.
func describeCharacter(scn *scenario.Scenario, ch *state.CharacterInstance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s (%s).\n", ch.Name, ch.ID)
	for _, t := range scn.Characters {
		if t.ID == ch.ID {
			if t.Description != "" {
				fmt.Fprintf(&b, "%s\n", t.Description)
			}
			if len(t.Goals) > 0 {
				fmt.Fprintf(&b, "Your goals: %s\n", strings.Join(t.Goals, "; "))
			}
			break
		}
	}
	if len(ch.Notes.ShortTermGoals) > 0 {
		fmt.Fprintf(&b, "Your current short-term goals: %s\n", strings.Join(ch.Notes.ShortTermGoals, "; "))
	}
	return b.String()
}
