package round

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/persist"
)

// Scheduler drives the round loop: begin, run the four phases in order,
// snapshot, persist. Persistence failures are logged and skipped; the
// in-memory session stays valid and play continues.
type Scheduler struct {
	exec   *Executor
	saver  persist.Saver
	gameID string
	logger *zap.Logger
}

// NewScheduler creates a scheduler. saver may be nil to play without
// persistence.
func NewScheduler(exec *Executor, saver persist.Saver, gameID string, logger *zap.Logger) *Scheduler {
	return &Scheduler{exec: exec, saver: saver, gameID: gameID, logger: logger}
}

// ShouldTerminate reports whether the session is over: the round budget is
// spent or nobody is left standing.
func (s *Scheduler) ShouldTerminate() bool {
	snap := s.exec.ctx.Store.CreateSnapshot()
	if snap.RoundNumber >= snap.MaxRounds {
		return true
	}
	return snap.AllCharactersDown()
}

// ExecuteRound runs one full round.
func (s *Scheduler) ExecuteRound(ctx context.Context, round int) error {
	s.logger.Info("round begins", zap.Int("round", round))
	s.exec.ctx.Store.BeginRound(round)

	if err := s.exec.runNarration(ctx, round); err != nil {
		return fmt.Errorf("narration phase: %w", err)
	}
	actions, err := s.exec.runDeclaration(ctx, round)
	if err != nil {
		return fmt.Errorf("action declaration phase: %w", err)
	}
	outcome, err := s.exec.runJudgement(ctx, round, actions)
	if err != nil {
		return fmt.Errorf("judgement phase: %w", err)
	}
	s.exec.runUpdate(round, actions, outcome)

	snapshot := s.exec.ctx.Store.StoreSnapshot(round)

	if s.saver != nil {
		msgs := s.exec.ctx.History.Round(round)
		if err := s.saver.SaveRound(ctx, s.gameID, snapshot.ScenarioID, round, snapshot, msgs); err != nil {
			s.logger.Error("failed to persist round, continuing",
				zap.Int("round", round),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("round complete",
		zap.Int("round", round),
		zap.String("state", s.exec.ctx.Store.Summary()),
	)
	return nil
}

// Run executes rounds until the session terminates or the context is
// cancelled. It resumes from the store's current round, so a restored
// session picks up where the save left off.
func (s *Scheduler) Run(ctx context.Context) error {
	for !s.ShouldTerminate() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		round := s.exec.ctx.Store.RoundNumber() + 1
		if err := s.ExecuteRound(ctx, round); err != nil {
			return err
		}
	}
	s.logger.Info("session over", zap.String("state", s.exec.ctx.Store.Summary()))
	return nil
}
