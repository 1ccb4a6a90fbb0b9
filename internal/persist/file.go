package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// Saver persists the rounds of a running session. Implementations must
// tolerate being called once per round; a failed save must leave any
// previously saved data intact.
type Saver interface {
	SaveRound(ctx context.Context, gameID, scenarioID string, round int, snapshot *state.GameState, msgs []chat.Message) error
}

// LoadResult carries a restored session plus load-time diagnostics.
type LoadResult struct {
	Record *Record
	// ScenarioMismatch is set when the save was produced for a different
	// scenario ID than the caller asked about. Loading still succeeds.
	ScenarioMismatch bool
}

// FileStore persists session records as JSON files, one per game, written
// atomically via a temp file and rename so a crash mid-write never
// clobbers the previous save.
type FileStore struct {
	dir    string
	logger *zap.Logger

	records map[string]*Record
}

// NewFileStore creates the save directory if needed.
func NewFileStore(dir string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, logger: logger, records: make(map[string]*Record)}, nil
}

func (f *FileStore) path(gameID string) string {
	return filepath.Join(f.dir, gameID+".json")
}

// SaveRound folds the round into the game's record and rewrites the file.
func (f *FileStore) SaveRound(ctx context.Context, gameID, scenarioID string, round int, snapshot *state.GameState, msgs []chat.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rec := f.records[gameID]
	states := map[int]*state.GameState{}
	chats := map[int][]chat.Message{}
	if rec != nil {
		for r, gs := range rec.StateByRound {
			states[r] = gs
		}
		for r, mm := range rec.ChatByRound {
			chats[r] = mm
		}
	}
	states[round] = snapshot
	chats[round] = msgs

	rec, err := NewRecord(scenarioID, states, chats)
	if err != nil {
		return err
	}
	if err := f.write(gameID, rec); err != nil {
		return err
	}
	f.records[gameID] = rec
	f.logger.Debug("round saved",
		zap.String("game_id", gameID),
		zap.Int("round", round),
		zap.String("path", f.path(gameID)),
	)
	return nil
}

func (f *FileStore) write(gameID string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding save record: %w", err)
	}

	tmp, err := os.CreateTemp(f.dir, gameID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp save file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing save record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp save file: %w", err)
	}
	if err := os.Rename(tmpName, f.path(gameID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing save file: %w", err)
	}
	return nil
}

// Load reads a game's record, verifies its checksum, and truncates it to
// rounds <= target. A negative target loads everything.
func (f *FileStore) Load(ctx context.Context, gameID, scenarioID string, target int) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(gameID))
	if err != nil {
		return nil, fmt.Errorf("reading save file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding save file: %w", err)
	}
	if err := rec.Verify(); err != nil {
		return nil, fmt.Errorf("save file %s: %w", f.path(gameID), err)
	}

	result := &LoadResult{Record: &rec}
	if scenarioID != "" && rec.ScenarioID != scenarioID {
		result.ScenarioMismatch = true
		f.logger.Warn("save was produced for a different scenario",
			zap.String("game_id", gameID),
			zap.String("saved_scenario_id", rec.ScenarioID),
			zap.String("scenario_id", scenarioID),
		)
	}

	if target >= 0 && target < rec.LatestRound() {
		truncated, err := rec.Truncate(target)
		if err != nil {
			return nil, err
		}
		result.Record = truncated
	}
	f.records[gameID] = result.Record
	return result, nil
}
