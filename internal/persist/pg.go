package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/chat"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// PGStore persists one row per saved round in PostgreSQL. Rows are
// append-or-replace per (game_id, round), so re-running a round after a
// resume overwrites only that round.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS game_saves (
	game_id     TEXT        NOT NULL,
	scenario_id TEXT        NOT NULL,
	round       INTEGER     NOT NULL,
	game_state  JSONB       NOT NULL,
	messages    JSONB       NOT NULL,
	checksum    TEXT        NOT NULL,
	saved_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, round)
)`

// NewPGStore connects to the database and ensures the schema exists.
func NewPGStore(ctx context.Context, databaseURL string, logger *zap.Logger) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating game_saves table: %w", err)
	}
	return &PGStore{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (p *PGStore) Close() {
	p.pool.Close()
}

// SaveRound upserts the round's snapshot and messages.
func (p *PGStore) SaveRound(ctx context.Context, gameID, scenarioID string, round int, snapshot *state.GameState, msgs []chat.Message) error {
	stateJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding game state: %w", err)
	}
	msgsJSON, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}

	rec, err := NewRecord(scenarioID,
		map[int]*state.GameState{round: snapshot},
		map[int][]chat.Message{round: msgs})
	if err != nil {
		return err
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO game_saves (game_id, scenario_id, round, game_state, messages, checksum)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, round) DO UPDATE
		SET scenario_id = EXCLUDED.scenario_id,
		    game_state  = EXCLUDED.game_state,
		    messages    = EXCLUDED.messages,
		    checksum    = EXCLUDED.checksum,
		    saved_at    = now()`,
		gameID, scenarioID, round, stateJSON, msgsJSON, rec.Checksum,
	)
	if err != nil {
		return fmt.Errorf("saving round %d: %w", round, err)
	}
	p.logger.Debug("round saved to database",
		zap.String("game_id", gameID),
		zap.Int("round", round),
	)
	return nil
}

// Load assembles a record from the saved rows of a game, restoring only
// rounds <= target (negative target loads everything). Every row's
// checksum is verified before the record is assembled.
func (p *PGStore) Load(ctx context.Context, gameID, scenarioID string, target int) (*LoadResult, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT scenario_id, round, game_state, messages, checksum
		FROM game_saves
		WHERE game_id = $1
		ORDER BY round`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying saves for %s: %w", gameID, err)
	}
	defer rows.Close()

	states := make(map[int]*state.GameState)
	chats := make(map[int][]chat.Message)
	savedScenarioID := ""

	for rows.Next() {
		var (
			rowScenarioID string
			round         int
			stateJSON     []byte
			msgsJSON      []byte
			checksum      string
		)
		if err := rows.Scan(&rowScenarioID, &round, &stateJSON, &msgsJSON, &checksum); err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		if target >= 0 && round > target {
			continue
		}

		var gs state.GameState
		if err := json.Unmarshal(stateJSON, &gs); err != nil {
			return nil, fmt.Errorf("decoding game state for round %d: %w", round, err)
		}
		var msgs []chat.Message
		if err := json.Unmarshal(msgsJSON, &msgs); err != nil {
			return nil, fmt.Errorf("decoding messages for round %d: %w", round, err)
		}

		rowRec, err := NewRecord(rowScenarioID,
			map[int]*state.GameState{round: &gs},
			map[int][]chat.Message{round: msgs})
		if err != nil {
			return nil, err
		}
		if rowRec.Checksum != checksum {
			return nil, fmt.Errorf("round %d checksum mismatch: stored %s, computed %s", round, checksum, rowRec.Checksum)
		}

		states[round] = &gs
		chats[round] = msgs
		savedScenarioID = rowScenarioID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading save rows: %w", err)
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("no saved rounds for game %s: %w", gameID, pgx.ErrNoRows)
	}

	rec, err := NewRecord(savedScenarioID, states, chats)
	if err != nil {
		return nil, err
	}
	result := &LoadResult{Record: rec}
	if scenarioID != "" && savedScenarioID != scenarioID {
		result.ScenarioMismatch = true
		p.logger.Warn("save was produced for a different scenario",
			zap.String("game_id", gameID),
			zap.String("saved_scenario_id", savedScenarioID),
			zap.String("scenario_id", scenarioID),
		)
	}
	return result, nil
}

// IsNotFound reports whether the error means the game has no saved rounds.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
