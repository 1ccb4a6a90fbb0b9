package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func harborScenario() *Scenario {
	return &Scenario{
		ID:         "harbor-mystery",
		Title:      "The Harbor Mystery",
		Background: "Smugglers operate out of the old docks.",
		Characters: []CharacterTemplate{
			{
				ID:               "char-aldric",
				Name:             "Aldric",
				Playable:         true,
				PlayerControlled: true,
				StartingLocation: "loc-docks",
				Health:           80,
				Skills:           map[string]int{"persuasion": 3},
				StartingItems:    []StartingItem{{ItemID: "item-rope", Quantity: 2}},
			},
			{
				ID:               "char-mira",
				Name:             "Mira",
				Playable:         true,
				StartingLocation: "loc-docks",
				Health:           60,
				Relationship:     20,
			},
		},
		Locations: []Location{
			{ID: "loc-docks", Name: "The Docks"},
			{ID: "loc-warehouse", Name: "Old Warehouse", Items: []StartingItem{{ItemID: "item-crowbar", Quantity: 1}}},
		},
		Events: []Event{
			{
				ID:              "evt-smugglers",
				Name:            "Smugglers at work",
				ActivationStage: "stage-1",
				Outcomes:        []Outcome{{ID: "out-caught"}, {ID: "out-escaped"}},
			},
			{
				ID:              "evt-fire",
				Name:            "Warehouse fire",
				ActivationStage: "stage-2",
				Outcomes:        []Outcome{{ID: "out-burned"}},
			},
		},
		Stages: []Stage{
			{
				ID:   "stage-1",
				Name: "Investigation",
				CompletionCriteria: []Criterion{
					{Kind: CriterionFlag, Flag: "met_harbormaster", Value: true},
				},
			},
			{ID: "stage-2", Name: "Confrontation"},
		},
	}
}

func TestValidateAcceptsWellFormedScenario(t *testing.T) {
	require.NoError(t, harborScenario().Validate())
}

func TestValidateRejectsFatalGaps(t *testing.T) {
	noStages := harborScenario()
	noStages.Stages = nil
	assert.ErrorContains(t, noStages.Validate(), "no stages")

	noPlayable := harborScenario()
	for i := range noPlayable.Characters {
		noPlayable.Characters[i].Playable = false
		noPlayable.Characters[i].PlayerControlled = false
	}
	assert.ErrorContains(t, noPlayable.Validate(), "no playable character")

	badLocation := harborScenario()
	badLocation.Characters[0].StartingLocation = "loc-void"
	assert.ErrorContains(t, badLocation.Validate(), "unknown location")

	badEventStage := harborScenario()
	badEventStage.Events[0].ActivationStage = "stage-99"
	assert.ErrorContains(t, badEventStage.Validate(), "unknown stage")

	badCriterion := harborScenario()
	badCriterion.Stages[0].CompletionCriteria = []Criterion{{Kind: "weather"}}
	assert.ErrorContains(t, badCriterion.Validate(), "unknown criterion kind")

	noOutcomes := harborScenario()
	noOutcomes.Events[0].Outcomes = nil
	assert.ErrorContains(t, noOutcomes.Validate(), "no outcomes")
}

func TestParseRoundTrip(t *testing.T) {
	raw := []byte(`{
		"id": "tiny",
		"title": "Tiny",
		"characters": [
			{"id": "c1", "name": "One", "playable": true, "player_controlled": true,
			 "starting_location": "l1", "health": 10}
		],
		"locations": [{"id": "l1", "name": "Spot"}],
		"stages": [{"id": "s1", "name": "Only"}]
	}`)
	s, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "tiny", s.ID)
	assert.Equal(t, "c1", s.PlayerCharacterID())

	_, err = Parse([]byte(`{"id": "broken"`))
	assert.Error(t, err)
}

func TestNewGameStateInitialization(t *testing.T) {
	s := harborScenario()
	gs := NewGameState(s, 50)

	assert.Equal(t, "harbor-mystery", gs.ScenarioID)
	assert.Equal(t, "char-aldric", gs.PlayerCharacterID)
	assert.Equal(t, 0, gs.RoundNumber)
	assert.Equal(t, 50, gs.MaxRounds)
	assert.Equal(t, "stage-1", gs.Progress.StageID)

	aldric := gs.Character("char-aldric")
	require.NotNil(t, aldric)
	assert.Equal(t, 80, aldric.Health)
	assert.Equal(t, 2, aldric.ItemQuantity("item-rope"))
	assert.Equal(t, []string{"loc-docks"}, aldric.VisitedLocations)

	mira := gs.Character("char-mira")
	require.NotNil(t, mira)
	assert.Equal(t, 20, mira.RelationshipToPlayer)

	docks := gs.Location("loc-docks")
	require.NotNil(t, docks)
	assert.ElementsMatch(t, []string{"char-aldric", "char-mira"}, docks.PresentCharacters)
	assert.Equal(t, 1, len(gs.Location("loc-warehouse").Items))

	// Only the opening stage's events are active.
	assert.Equal(t, []string{"evt-smugglers"}, gs.ActiveEventIDs)
}

func TestTemplateStateIsIndependentOfScenario(t *testing.T) {
	s := harborScenario()
	gs := NewGameState(s, 10)
	gs.Character("char-aldric").Skills["persuasion"] = 99
	gs.Character("char-aldric").Inventory[0].Quantity = 99

	assert.Equal(t, 3, s.Characters[0].Skills["persuasion"])
	assert.Equal(t, 2, s.Characters[0].StartingItems[0].Quantity)
}
