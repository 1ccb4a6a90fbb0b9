package consequence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chronicle-rpg/chronicle/internal/state"
)

// Handler applies a single consequence variant to the game state. It
// returns a human-readable description of the change on success, or an
// error describing why the consequence could not be applied. Handlers
// mutate exactly the entities named by the consequence and nothing else.
type Handler interface {
	Apply(c Consequence, gs *state.GameState) (string, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(c Consequence, gs *state.GameState) (string, error)

// Apply implements Handler.
func (f HandlerFunc) Apply(c Consequence, gs *state.GameState) (string, error) {
	return f(c, gs)
}

// Registry maps consequence type tags to their handlers. Every application
// attempt, successful or not, is recorded in the game state's audit trail;
// an unregistered type is logged and skipped so one bad effect cannot
// poison the rest of a batch.
type Registry struct {
	handlers map[Type]Handler
	logger   *zap.Logger
}

// NewRegistry creates a registry with all built-in handlers registered.
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		handlers: make(map[Type]Handler),
		logger:   logger,
	}
	r.handlers[TypeUpdateAttribute] = HandlerFunc(applyUpdateAttribute)
	r.handlers[TypeUpdateSkill] = HandlerFunc(applyUpdateSkill)
	r.handlers[TypeAddItem] = HandlerFunc(applyAddItem)
	r.handlers[TypeRemoveItem] = HandlerFunc(applyRemoveItem)
	r.handlers[TypeChangeRelationship] = HandlerFunc(applyChangeRelationship)
	r.handlers[TypeChangeLocation] = HandlerFunc(applyChangeLocation)
	r.handlers[TypeSetFlag] = HandlerFunc(applySetFlag)
	r.handlers[TypeTriggerEvent] = HandlerFunc(applyTriggerEvent)
	r.handlers[TypeSendMessage] = HandlerFunc(applySendMessage)
	return r
}

// Apply dispatches the consequence to its handler and appends an audit
// record to the game state. It returns the change description and whether
// the application succeeded. Failures are never silent: they produce a
// failed record with a diagnostic description.
func (r *Registry) Apply(c Consequence, gs *state.GameState) (string, bool) {
	handler, ok := r.handlers[c.Type]
	if !ok {
		desc := fmt.Sprintf("no handler registered for consequence type %q", c.Type)
		r.logger.Warn("skipping unregistered consequence type",
			zap.String("type", string(c.Type)),
			zap.String("target_id", c.TargetID),
		)
		r.record(c, gs, false, desc)
		return "", false
	}

	desc, err := handler.Apply(c, gs)
	if err != nil {
		r.logger.Warn("consequence application failed",
			zap.String("type", string(c.Type)),
			zap.String("target_id", c.TargetID),
			zap.Error(err),
		)
		r.record(c, gs, false, err.Error())
		return "", false
	}

	r.logger.Debug("consequence applied",
		zap.String("type", string(c.Type)),
		zap.String("target_id", c.TargetID),
		zap.String("description", desc),
	)
	r.record(c, gs, true, desc)
	return desc, true
}

func (r *Registry) record(c Consequence, gs *state.GameState, success bool, description string) {
	gs.CurrentRoundAppliedConsequences = append(gs.CurrentRoundAppliedConsequences, state.AppliedConsequenceRecord{
		RecordID:    uuid.NewString(),
		Round:       gs.RoundNumber,
		Type:        string(c.Type),
		TargetID:    c.TargetID,
		Success:     success,
		Description: description,
		Details:     c.details(),
		Timestamp:   time.Now(),
	})
}
