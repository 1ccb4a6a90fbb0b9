package actor

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/consequence"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// scriptedCompleter returns a canned completion, letting tests drive the
// agents' parsing paths without a live endpoint.
type scriptedCompleter struct {
	reply string
	err   error
}

func (s scriptedCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return s.reply, s.err
}

func companionScenario() *scenario.Scenario {
	return &scenario.Scenario{
		ID:         "scn-harbor",
		Title:      "Harbor Mystery",
		Background: "Something is wrong at the docks.",
		Characters: []scenario.CharacterTemplate{
			{ID: "char-aldric", Name: "Aldric", Playable: true, PlayerControlled: true},
			{ID: "char-mira", Name: "Mira", Playable: true, Goals: []string{"protect Aldric"}},
		},
	}
}

func companionState() *state.GameState {
	return &state.GameState{
		ScenarioID:        "scn-harbor",
		PlayerCharacterID: "char-aldric",
		RoundNumber:       2,
		MaxRounds:         10,
		Characters: map[string]*state.CharacterInstance{
			"char-aldric": {ID: "char-aldric", Name: "Aldric", PlayerControlled: true, Health: 100, Location: "loc-docks"},
			"char-mira":   {ID: "char-mira", Name: "Mira", Health: 100, Location: "loc-docks", RelationshipToPlayer: 40},
		},
	}
}

func TestActionTypeSubstantive(t *testing.T) {
	assert.True(t, ActionAct.IsSubstantive())
	assert.False(t, ActionTalk.IsSubstantive())
	assert.False(t, ActionWait.IsSubstantive())
}

func TestNormalizeActionType(t *testing.T) {
	assert.Equal(t, ActionAct, normalizeActionType("ACT"))
	assert.Equal(t, ActionWait, normalizeActionType("WAIT"))
	assert.Equal(t, ActionTalk, normalizeActionType("shrug"))
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		`{"type":"ACT"}`:                                   `{"type":"ACT"}`,
		"Sure! Here you go:\n```json\n{\"a\": 1}\n```":     `{"a": 1}`,
		`The answer is [{"event_id":"e1"}] as requested.`:  `[{"event_id":"e1"}]`,
		`{"nested": {"deep": "}"}, "after": true}`:         `{"nested": {"deep": "}"}, "after": true}`,
		"```\n[1, 2, 3]\n```":                              `[1, 2, 3]`,
	}
	for input, want := range cases {
		assert.Equal(t, want, extractJSON(input), "input: %s", input)
	}
}

func TestWaitActionRecord(t *testing.T) {
	a := WaitAction("char-mira")
	assert.Equal(t, ActionWait, a.Type)
	rec := a.Record()
	assert.Equal(t, "char-mira", rec.CharacterID)
	assert.Equal(t, "WAIT", rec.Type)
}

func TestCompanionDecidesAction(t *testing.T) {
	agent := NewCompanionAgent(scriptedCompleter{
		reply: `{"type": "ACT", "content": "search the crates", "target": "loc-docks"}`,
	}, companionScenario(), zap.NewNop())

	action, err := agent.DecideAction(context.Background(), "char-mira", companionState(), nil)
	require.NoError(t, err)
	assert.Equal(t, ActionAct, action.Type)
	assert.Equal(t, "search the crates", action.Content)
	assert.Equal(t, "loc-docks", action.Target)
	assert.Empty(t, action.SideEffects)
}

func TestCompanionMalformedOutputWaits(t *testing.T) {
	agent := NewCompanionAgent(scriptedCompleter{
		reply: "Mira shrugs and mutters something about the tide.",
	}, companionScenario(), zap.NewNop())

	action, err := agent.DecideAction(context.Background(), "char-mira", companionState(), nil)
	require.NoError(t, err)
	assert.Equal(t, WaitAction("char-mira"), action)
}

func TestCompanionSelfAssessmentBecomesSideEffect(t *testing.T) {
	agent := NewCompanionAgent(scriptedCompleter{
		reply: `{"type": "TALK", "content": "You saved my life back there.", "relationship_change": 5}`,
	}, companionScenario(), zap.NewNop())

	action, err := agent.DecideAction(context.Background(), "char-mira", companionState(), nil)
	require.NoError(t, err)
	require.Len(t, action.SideEffects, 1)
	effect := action.SideEffects[0]
	assert.Equal(t, consequence.TypeChangeRelationship, effect.Type)
	assert.Equal(t, "char-mira", effect.TargetID)
	assert.Equal(t, "char-aldric", effect.SecondaryID)
	assert.Equal(t, 5, effect.Value)
}

func TestCompanionSelfAssessmentClamped(t *testing.T) {
	agent := NewCompanionAgent(scriptedCompleter{
		reply: `{"type": "TALK", "content": "I will never forgive this.", "relationship_change": -40}`,
	}, companionScenario(), zap.NewNop())

	action, err := agent.DecideAction(context.Background(), "char-mira", companionState(), nil)
	require.NoError(t, err)
	require.Len(t, action.SideEffects, 1)
	assert.Equal(t, -10, action.SideEffects[0].Value)
}

func TestCLIChooserPicksNumberedOption(t *testing.T) {
	in := strings.NewReader("2\n")
	var out bytes.Buffer
	chooser := NewCLIChooser(in, &out)

	action, err := chooser.Choose(context.Background(), "char-aldric", fallbackOptions())
	require.NoError(t, err)
	assert.Equal(t, ActionTalk, action.Type)
	assert.Equal(t, "Speak with someone present", action.Content)
	assert.Contains(t, out.String(), "Your options:")
}

func TestCLIChooserFreeTextAndBangAct(t *testing.T) {
	chooser := NewCLIChooser(strings.NewReader("hello there\n"), &bytes.Buffer{})
	action, err := chooser.Choose(context.Background(), "char-aldric", fallbackOptions())
	require.NoError(t, err)
	assert.Equal(t, ActionTalk, action.Type)
	assert.Equal(t, "hello there", action.Content)

	chooser = NewCLIChooser(strings.NewReader("! kick the door\n"), &bytes.Buffer{})
	action, err = chooser.Choose(context.Background(), "char-aldric", fallbackOptions())
	require.NoError(t, err)
	assert.Equal(t, ActionAct, action.Type)
	assert.Equal(t, "kick the door", action.Content)
}

func TestCLIChooserEmptyInputWaits(t *testing.T) {
	chooser := NewCLIChooser(strings.NewReader("\n"), &bytes.Buffer{})
	action, err := chooser.Choose(context.Background(), "char-aldric", fallbackOptions())
	require.NoError(t, err)
	assert.Equal(t, ActionWait, action.Type)
}

func TestCLIChooserOutOfRangeNumberIsFreeText(t *testing.T) {
	chooser := NewCLIChooser(strings.NewReader("9\n"), &bytes.Buffer{})
	action, err := chooser.Choose(context.Background(), "char-aldric", fallbackOptions())
	require.NoError(t, err)
	assert.Equal(t, ActionTalk, action.Type)
	assert.Equal(t, "9", action.Content)
}
