package persist

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// Record is the on-disk shape of a saved session: the per-round state
// snapshots plus the chat history, guarded by a checksum so divergent or
// truncated saves are detected on load instead of resuming silently
// corrupted games.
type Record struct {
	Version      int                      `json:"version"`
	ScenarioID   string                   `json:"scenario_id"`
	SavedAt      time.Time                `json:"saved_at"`
	StateByRound map[int]*state.GameState `json:"state_by_round"`
	ChatByRound  map[int][]chat.Message   `json:"chat_by_round"`
	Checksum     string                   `json:"checksum"`
}

const recordVersion = 1

// NewRecord builds a sealed record over the given rounds.
func NewRecord(scenarioID string, states map[int]*state.GameState, msgs map[int][]chat.Message) (*Record, error) {
	r := &Record{
		Version:      recordVersion,
		ScenarioID:   scenarioID,
		SavedAt:      time.Now().UTC(),
		StateByRound: states,
		ChatByRound:  msgs,
	}
	sum, err := r.computeChecksum()
	if err != nil {
		return nil, err
	}
	r.Checksum = sum
	return r, nil
}

// computeChecksum hashes a canonical JSON rendering of the record's
// deterministic content. encoding/json writes map keys in sorted order, so
// the rendering is independent of map iteration order. SavedAt and the
// checksum itself are excluded.
func (r *Record) computeChecksum() (string, error) {
	payload := struct {
		Version      int                      `json:"version"`
		ScenarioID   string                   `json:"scenario_id"`
		StateByRound map[int]*state.GameState `json:"state_by_round"`
		ChatByRound  map[int][]chat.Message   `json:"chat_by_round"`
	}{r.Version, r.ScenarioID, r.StateByRound, r.ChatByRound}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("rendering record for checksum: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the checksum and compares it against the stored one.
func (r *Record) Verify() error {
	sum, err := r.computeChecksum()
	if err != nil {
		return err
	}
	if sum != r.Checksum {
		return fmt.Errorf("record checksum mismatch: stored %s, computed %s", r.Checksum, sum)
	}
	return nil
}

// Truncate drops all rounds above target, returning a record covering only
// the rounds a resume at target needs. The result is re-sealed.
func (r *Record) Truncate(target int) (*Record, error) {
	states := make(map[int]*state.GameState)
	for round, gs := range r.StateByRound {
		if round <= target {
			states[round] = gs
		}
	}
	msgs := make(map[int][]chat.Message)
	for round, mm := range r.ChatByRound {
		if round <= target {
			msgs[round] = mm
		}
	}
	return NewRecord(r.ScenarioID, states, msgs)
}

// LatestRound returns the highest round number present in the record, or
// -1 when it holds no rounds.
func (r *Record) LatestRound() int {
	latest := -1
	for round := range r.StateByRound {
		if round > latest {
			latest = round
		}
	}
	return latest
}
