package store

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/consequence"
	"github.com/chronicle-rpg/chronicle/internal/scenario"
	"github.com/chronicle-rpg/chronicle/internal/state"
)

// Store owns the live game state. A single mutex guards every mutation, so
// consequence application is strictly sequential even when phase executors
// fan work out to goroutines; collaborators only ever receive deep-copied
// snapshots and can never reach the live state.
type Store struct {
	mu sync.Mutex

	logger   *zap.Logger
	registry *consequence.Registry
	scn      *scenario.Scenario

	current   *state.GameState
	snapshots map[int]*state.GameState
}

// New creates a store over a freshly initialized game state.
func New(scn *scenario.Scenario, gs *state.GameState, registry *consequence.Registry, logger *zap.Logger) *Store {
	return &Store{
		logger:    logger,
		registry:  registry,
		scn:       scn,
		current:   gs,
		snapshots: make(map[int]*state.GameState),
	}
}

// Scenario returns the static scenario content the store runs on.
func (s *Store) Scenario() *scenario.Scenario { return s.scn }

// CreateSnapshot returns a deep copy of the live state sharing no
// references with it.
func (s *Store) CreateSnapshot() *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// StoreSnapshot deep-copies the live state and files it under the given
// round number, returning the stored copy.
func (s *Store) StoreSnapshot(round int) *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.current.Clone()
	s.snapshots[round] = snap
	return snap
}

// Snapshot returns the snapshot stored for a round, or nil.
func (s *Store) Snapshot(round int) *state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshots[round]
}

// RoundNumber returns the current round number.
func (s *Store) RoundNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.RoundNumber
}

// BeginRound advances the live state to a new round and clears the
// per-round working records.
func (s *Store) BeginRound(round int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.RoundNumber = round
	s.current.CurrentRoundActions = nil
	s.current.CurrentRoundAppliedConsequences = nil
	s.current.CurrentRoundTriggeredEvents = nil
	s.current.PendingMessages = nil
}

// ApplyConsequences applies the batch strictly in order under the store
// lock and returns the descriptions of the successful applications. A
// failing entry is recorded in the audit trail and skipped; it never stops
// the rest of the batch.
func (s *Store) ApplyConsequences(batch []consequence.Consequence) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var descriptions []string
	for _, c := range batch {
		if desc, ok := s.registry.Apply(c, s.current); ok {
			descriptions = append(descriptions, desc)
		}
	}
	return descriptions
}

// ApplySingleImmediately applies one consequence under the store lock,
// outside any batch. It exists for callers that need an effect visible
// before the update phase; it goes through the same registry and audit
// trail as a batch entry.
func (s *Store) ApplySingleImmediately(c consequence.Consequence) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Apply(c, s.current)
}

// DrainPendingMessages removes and returns the messages queued by
// send-message consequences since the round began.
func (s *Store) DrainPendingMessages() []state.PendingMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.current.PendingMessages
	s.current.PendingMessages = nil
	return msgs
}

// RecordDeclaredActions appends the round's declared actions to the live
// state so they survive into the round snapshot.
func (s *Store) RecordDeclaredActions(records []state.ActionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.CurrentRoundActions = append(s.current.CurrentRoundActions, records...)
}

// RecordTriggeredEvent appends a triggered-event record and marks the
// event completed so a non-repeatable event leaves the active set on the
// next recompute.
func (s *Store) RecordTriggeredEvent(eventID, outcomeID, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.CurrentRoundTriggeredEvents = append(s.current.CurrentRoundTriggeredEvents, state.TriggeredEventRecord{
		Round:     s.current.RoundNumber,
		EventID:   eventID,
		OutcomeID: outcomeID,
		Source:    source,
	})
	if s.current.CompletedEventIDs == nil {
		s.current.CompletedEventIDs = make(map[string]bool)
	}
	s.current.CompletedEventIDs[eventID] = true
}

// MarkActive records that the current round saw substantive activity.
func (s *Store) MarkActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.LastActiveRound = s.current.RoundNumber
}

// RestoreState replaces the live state with a loaded one. A scenario-ID
// mismatch is tolerated with a warning so an operator can inspect a save
// against edited content.
func (s *Store) RestoreState(gs *state.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gs.ScenarioID != s.scn.ID {
		s.logger.Warn("restored state was saved for a different scenario",
			zap.String("state_scenario_id", gs.ScenarioID),
			zap.String("scenario_id", s.scn.ID),
		)
	}
	s.current = gs.Clone()
}

// RestoreSnapshots replaces the snapshot archive with loaded copies.
func (s *Store) RestoreSnapshots(snapshots map[int]*state.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make(map[int]*state.GameState, len(snapshots))
	for round, snap := range snapshots {
		s.snapshots[round] = snap.Clone()
	}
}

// CheckStageCompletion reports whether every criterion of the current
// stage holds. A stage with no criteria never completes on its own.
func (s *Store) CheckStageCompletion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stageComplete()
}

func (s *Store) stageComplete() bool {
	stage := s.scn.Stage(s.current.Progress.StageIndex)
	if stage == nil || len(stage.CompletionCriteria) == 0 {
		return false
	}
	for _, cr := range stage.CompletionCriteria {
		if !s.criterionMet(cr) {
			return false
		}
	}
	return true
}

func (s *Store) criterionMet(cr scenario.Criterion) bool {
	switch cr.Kind {
	case scenario.CriterionFlag:
		return s.current.Flags[cr.Flag] == cr.Value
	case scenario.CriterionItem:
		ch := s.current.Character(cr.CharacterID)
		return ch != nil && ch.ItemQuantity(cr.ItemID) >= cr.MinQuantity
	default:
		return false
	}
}

// AdvanceStage moves progress to the next stage when the current one is
// complete, then recomputes the active event set. It reports whether a
// transition happened; completion of the final stage does not advance.
func (s *Store) AdvanceStage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stageComplete() {
		return false
	}
	next := s.current.Progress.StageIndex + 1
	stage := s.scn.Stage(next)
	if stage == nil {
		return false
	}
	s.current.Progress = state.Progress{StageIndex: next, StageID: stage.ID}
	s.logger.Info("story advanced to next stage",
		zap.Int("stage_index", next),
		zap.String("stage_id", stage.ID),
	)
	s.recomputeActiveEvents()
	return true
}

// UpdateActiveEvents recomputes the active event set from scratch. It is
// idempotent and never mutates anything but ActiveEventIDs.
func (s *Store) UpdateActiveEvents() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputeActiveEvents()
}

func (s *Store) recomputeActiveEvents() {
	var active []string
	for _, e := range s.scn.Events {
		if e.ActivationStage != s.current.Progress.StageID {
			continue
		}
		if s.current.CompletedEventIDs[e.ID] && !e.Repeatable {
			continue
		}
		active = append(active, e.ID)
	}
	s.current.ActiveEventIDs = active
}

// Summary returns a short human-readable description of the live state
// for logs.
func (s *Store) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("round %d/%d, stage %q, %d active events",
		s.current.RoundNumber, s.current.MaxRounds,
		s.current.Progress.StageID, len(s.current.ActiveEventIDs))
}
