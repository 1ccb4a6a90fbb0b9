package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

func roundSnapshot(round, health int) *state.GameState {
	return &state.GameState{
		ScenarioID:  "harbor-mystery",
		RoundNumber: round,
		MaxRounds:   50,
		Characters: map[string]*state.CharacterInstance{
			"char-aldric": {ID: "char-aldric", Name: "Aldric", Health: health},
		},
	}
}

func TestRecordChecksumDetectsTampering(t *testing.T) {
	rec, err := NewRecord("harbor-mystery",
		map[int]*state.GameState{1: roundSnapshot(1, 80)},
		map[int][]chat.Message{1: {chat.NewMessage(chat.TypeNarration, "narrator", "", "opening", 1)}},
	)
	require.NoError(t, err)
	require.NoError(t, rec.Verify())

	rec.StateByRound[1].Characters["char-aldric"].Health = 9999
	assert.Error(t, rec.Verify())
}

func TestRecordChecksumIsDeterministic(t *testing.T) {
	states := map[int]*state.GameState{
		1: roundSnapshot(1, 80),
		2: roundSnapshot(2, 70),
	}
	a, err := NewRecord("harbor-mystery", states, nil)
	require.NoError(t, err)
	b, err := NewRecord("harbor-mystery", states, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Checksum, b.Checksum)
}

func TestRecordTruncate(t *testing.T) {
	rec, err := NewRecord("harbor-mystery",
		map[int]*state.GameState{1: roundSnapshot(1, 80), 2: roundSnapshot(2, 70), 3: roundSnapshot(3, 60)},
		map[int][]chat.Message{
			1: {chat.NewMessage(chat.TypeAction, "character", "char-aldric", "one", 1)},
			3: {chat.NewMessage(chat.TypeAction, "character", "char-aldric", "three", 3)},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.LatestRound())

	trunc, err := rec.Truncate(2)
	require.NoError(t, err)
	assert.Equal(t, 2, trunc.LatestRound())
	assert.Contains(t, trunc.StateByRound, 1)
	assert.NotContains(t, trunc.StateByRound, 3)
	assert.NotContains(t, trunc.ChatByRound, 3)
	require.NoError(t, trunc.Verify())
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	msgs1 := []chat.Message{chat.NewMessage(chat.TypeNarration, "narrator", "", "the fog rolls in", 1)}
	require.NoError(t, fs.SaveRound(ctx, "game-1", "harbor-mystery", 1, roundSnapshot(1, 80), msgs1))
	require.NoError(t, fs.SaveRound(ctx, "game-1", "harbor-mystery", 2, roundSnapshot(2, 65), nil))

	res, err := fs.Load(ctx, "game-1", "harbor-mystery", -1)
	require.NoError(t, err)
	assert.False(t, res.ScenarioMismatch)
	assert.Equal(t, 2, res.Record.LatestRound())
	assert.Equal(t, 80, res.Record.StateByRound[1].Characters["char-aldric"].Health)
	require.Len(t, res.Record.ChatByRound[1], 1)
	assert.Equal(t, "the fog rolls in", res.Record.ChatByRound[1][0].Content)
}

func TestFileStoreLoadTruncatesToTargetRound(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	for round := 1; round <= 5; round++ {
		require.NoError(t, fs.SaveRound(ctx, "game-1", "harbor-mystery", round, roundSnapshot(round, 100-round), nil))
	}

	res, err := fs.Load(ctx, "game-1", "harbor-mystery", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Record.LatestRound())
	assert.NotContains(t, res.Record.StateByRound, 4)
	require.NoError(t, res.Record.Verify())
}

func TestFileStoreFlagsScenarioMismatch(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, fs.SaveRound(ctx, "game-1", "harbor-mystery", 1, roundSnapshot(1, 80), nil))
	res, err := fs.Load(ctx, "game-1", "different-scenario", -1)
	require.NoError(t, err)
	assert.True(t, res.ScenarioMismatch)
}

func TestFileStoreLoadMissingGameFails(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	_, err = fs.Load(context.Background(), "nope", "harbor-mystery", -1)
	assert.Error(t, err)
}

func TestFileStoreFailedSaveKeepsPreviousData(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, fs.SaveRound(ctx, "game-1", "harbor-mystery", 1, roundSnapshot(1, 80), nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, fs.SaveRound(cancelled, "game-1", "harbor-mystery", 2, roundSnapshot(2, 70), nil))

	res, err := fs.Load(ctx, "game-1", "harbor-mystery", -1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Record.LatestRound())
}
