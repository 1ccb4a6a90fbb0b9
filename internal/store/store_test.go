package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/consequence"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

func testScenario() *scenario.Scenario {
	return &scenario.Scenario{
		ID:    "harbor-mystery",
		Title: "The Harbor Mystery",
		Characters: []scenario.CharacterTemplate{
			{
				ID: "char-aldric", Name: "Aldric", Playable: true, PlayerControlled: true,
				StartingLocation: "loc-docks", Health: 80,
				StartingItems: []scenario.StartingItem{{ItemID: "item-rope", Quantity: 2}},
			},
			{
				ID: "char-mira", Name: "Mira", Playable: true,
				StartingLocation: "loc-docks", Health: 60,
			},
		},
		Locations: []scenario.Location{
			{ID: "loc-docks", Name: "The Docks"},
			{ID: "loc-warehouse", Name: "Old Warehouse"},
		},
		Events: []scenario.Event{
			{
				ID: "evt-smugglers", Name: "Smugglers", ActivationStage: "stage-1",
				Outcomes: []scenario.Outcome{{ID: "out-caught"}},
			},
			{
				ID: "evt-patrol", Name: "Patrol", ActivationStage: "stage-1", Repeatable: true,
				Outcomes: []scenario.Outcome{{ID: "out-spotted"}},
			},
			{
				ID: "evt-fire", Name: "Fire", ActivationStage: "stage-2",
				Outcomes: []scenario.Outcome{{ID: "out-burned"}},
			},
		},
		Stages: []scenario.Stage{
			{
				ID: "stage-1", Name: "Investigation",
				CompletionCriteria: []scenario.Criterion{
					{Kind: scenario.CriterionFlag, Flag: "met_harbormaster", Value: true},
					{Kind: scenario.CriterionItem, CharacterID: "char-aldric", ItemID: "item-rope", MinQuantity: 2},
				},
			},
			{ID: "stage-2", Name: "Confrontation"},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	scn := testScenario()
	require.NoError(t, scn.Validate())
	gs := scenario.NewGameState(scn, 50)
	return New(scn, gs, consequence.NewRegistry(zap.NewNop()), zap.NewNop())
}

func TestApplyConsequencesIsSequentialAndAggregates(t *testing.T) {
	s := newTestStore(t)
	s.BeginRound(1)

	descs := s.ApplyConsequences([]consequence.Consequence{
		{Type: consequence.TypeUpdateAttribute, TargetID: "char-aldric", AttributeName: "health", Value: -10},
		{Type: consequence.TypeUpdateAttribute, TargetID: "char-ghost", AttributeName: "health", Value: -10},
		{Type: consequence.TypeUpdateAttribute, TargetID: "char-aldric", AttributeName: "health", Value: -5},
	})
	assert.Len(t, descs, 2, "failed entry skipped, batch continues")

	snap := s.CreateSnapshot()
	assert.Equal(t, 65, snap.Character("char-aldric").Health)
	require.Len(t, snap.CurrentRoundAppliedConsequences, 3)
	assert.False(t, snap.CurrentRoundAppliedConsequences[1].Success)
}

func TestSnapshotsShareNoState(t *testing.T) {
	s := newTestStore(t)
	snap := s.CreateSnapshot()
	snap.Character("char-aldric").Health = -999
	snap.Flags["poisoned"] = true

	fresh := s.CreateSnapshot()
	assert.Equal(t, 80, fresh.Character("char-aldric").Health)
	assert.False(t, fresh.Flags["poisoned"])
}

func TestStoreSnapshotArchivesByRound(t *testing.T) {
	s := newTestStore(t)
	s.BeginRound(1)
	s.StoreSnapshot(1)
	s.ApplyConsequences([]consequence.Consequence{
		{Type: consequence.TypeUpdateAttribute, TargetID: "char-aldric", AttributeName: "health", Value: -30},
	})
	s.StoreSnapshot(2)

	assert.Equal(t, 80, s.Snapshot(1).Character("char-aldric").Health)
	assert.Equal(t, 50, s.Snapshot(2).Character("char-aldric").Health)
	assert.Nil(t, s.Snapshot(3))
}

func TestBeginRoundClearsWorkingRecords(t *testing.T) {
	s := newTestStore(t)
	s.BeginRound(1)
	s.RecordDeclaredActions([]state.ActionRecord{{CharacterID: "char-aldric", Type: "ACT", Content: "searches"}})
	s.ApplyConsequences([]consequence.Consequence{
		{Type: consequence.TypeSendMessage, MessageContent: "a gull cries"},
	})
	s.RecordTriggeredEvent("evt-smugglers", "out-caught", "judge")

	s.BeginRound(2)
	snap := s.CreateSnapshot()
	assert.Equal(t, 2, snap.RoundNumber)
	assert.Empty(t, snap.CurrentRoundActions)
	assert.Empty(t, snap.CurrentRoundAppliedConsequences)
	assert.Empty(t, snap.CurrentRoundTriggeredEvents)
	assert.Empty(t, snap.PendingMessages)
	// Cross-round facts survive.
	assert.True(t, snap.CompletedEventIDs["evt-smugglers"])
}

func TestStageCompletionRequiresAllCriteria(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.CheckStageCompletion())

	// Flag alone is not enough while the item criterion holds by default.
	s.ApplyConsequences([]consequence.Consequence{
		{Type: consequence.TypeRemoveItem, TargetID: "char-aldric", ItemID: "item-rope", Value: 1},
		{Type: consequence.TypeSetFlag, FlagName: "met_harbormaster", Value: true},
	})
	assert.False(t, s.CheckStageCompletion(), "item criterion no longer met")

	s.ApplyConsequences([]consequence.Consequence{
		{Type: consequence.TypeAddItem, TargetID: "char-aldric", ItemID: "item-rope", Value: 1},
	})
	assert.True(t, s.CheckStageCompletion())
}

func TestAdvanceStageOnlyWhenComplete(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.AdvanceStage())
	assert.Equal(t, "stage-1", s.CreateSnapshot().Progress.StageID)

	s.ApplyConsequences([]consequence.Consequence{
		{Type: consequence.TypeSetFlag, FlagName: "met_harbormaster", Value: true},
	})
	assert.True(t, s.AdvanceStage())

	snap := s.CreateSnapshot()
	assert.Equal(t, "stage-2", snap.Progress.StageID)
	assert.Equal(t, 1, snap.Progress.StageIndex)
	assert.Equal(t, []string{"evt-fire"}, snap.ActiveEventIDs)

	// Final stage has no criteria and never advances.
	assert.False(t, s.AdvanceStage())
}

func TestUpdateActiveEventsRespectsCompletionAndRepeatability(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, []string{"evt-smugglers", "evt-patrol"}, s.CreateSnapshot().ActiveEventIDs)

	s.RecordTriggeredEvent("evt-smugglers", "out-caught", "judge")
	s.RecordTriggeredEvent("evt-patrol", "out-spotted", "judge")
	s.UpdateActiveEvents()

	// Non-repeatable leaves the set; repeatable stays.
	assert.Equal(t, []string{"evt-patrol"}, s.CreateSnapshot().ActiveEventIDs)

	// Recompute is idempotent.
	s.UpdateActiveEvents()
	assert.Equal(t, []string{"evt-patrol"}, s.CreateSnapshot().ActiveEventIDs)
}

func TestApplySingleImmediatelySharesAuditTrail(t *testing.T) {
	s := newTestStore(t)
	s.BeginRound(1)
	desc, ok := s.ApplySingleImmediately(consequence.Consequence{
		Type: consequence.TypeSetFlag, FlagName: "alarm_raised", Value: true,
	})
	require.True(t, ok)
	assert.NotEmpty(t, desc)

	snap := s.CreateSnapshot()
	assert.True(t, snap.Flags["alarm_raised"])
	require.Len(t, snap.CurrentRoundAppliedConsequences, 1)
}

func TestDrainPendingMessages(t *testing.T) {
	s := newTestStore(t)
	s.BeginRound(1)
	s.ApplyConsequences([]consequence.Consequence{
		{Type: consequence.TypeSendMessage, MessageContent: "the tide turns"},
	})
	msgs := s.DrainPendingMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "the tide turns", msgs[0].Content)
	assert.Empty(t, s.DrainPendingMessages())
}

func TestRestoreStateToleratesScenarioMismatch(t *testing.T) {
	s := newTestStore(t)
	loaded := scenario.NewGameState(testScenario(), 50)
	loaded.ScenarioID = "some-other-scenario"
	loaded.RoundNumber = 7

	s.RestoreState(loaded)
	assert.Equal(t, 7, s.RoundNumber())

	// The store keeps its own copy.
	loaded.Character("char-aldric").Health = -1
	assert.Equal(t, 80, s.CreateSnapshot().Character("char-aldric").Health)
}

func TestRestoreSnapshots(t *testing.T) {
	s := newTestStore(t)
	snap := scenario.NewGameState(testScenario(), 50)
	snap.RoundNumber = 3
	s.RestoreSnapshots(map[int]*state.GameState{3: snap})

	got := s.Snapshot(3)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.RoundNumber)
	snap.Character("char-mira").Health = -1
	assert.Equal(t, 60, s.Snapshot(3).Character("char-mira").Health)
}

func TestMarkActive(t *testing.T) {
	s := newTestStore(t)
	s.BeginRound(4)
	s.MarkActive()
	assert.Equal(t, 4, s.CreateSnapshot().LastActiveRound)
}
