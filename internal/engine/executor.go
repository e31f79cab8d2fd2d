package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-helpdesk/internal/common/models"
)

// MutationSurface is the engine's outbound interface: one method per ticket
// mutation an action can perform. Implementations must be idempotent; setting
// a value the ticket already has succeeds as a no-op.
type MutationSurface interface {
	AssignAgent(ctx context.Context, ticketID, agentRef string) error
	AssignTeam(ctx context.Context, ticketID, teamRef string) error
	SetPriority(ctx context.Context, ticketID, priority string) error
	SetStatus(ctx context.Context, ticketID, status string) error
	SetCategory(ctx context.Context, ticketID, category string) error
}

// Notifier delivers ALSO_NOTIFY side-channel notifications. Delivery failures
// never fail the owning rule.
type Notifier interface {
	Notify(ctx context.Context, ticketID, channel, recipient, message string) error
}

// ActionOutcome records one action's result inside an ExecutionReport.
type ActionOutcome struct {
	Type     models.ActionType `json:"action_type" bson:"action_type"`
	OK       bool              `json:"ok" bson:"ok"`
	Detail   string            `json:"detail,omitempty" bson:"detail,omitempty"`
	Attempts int               `json:"attempts" bson:"attempts"`
}

// ActionHandler executes one action type against a ticket.
type ActionHandler func(ctx context.Context, ticketID string, action models.Action) error

const (
	mutationTimeout = 5 * time.Second
	maxAttempts     = 2 // one bounded retry on transient errors
)

// Executor runs a fired rule's ordered actions under its AND/OR policy.
// Handlers are a registry keyed by action type; new action types register a
// handler and a catalog entry without touching the execution loop.
type Executor struct {
	surface  MutationSurface
	notifier Notifier
	catalog  map[models.ActionType]models.ActionSpec
	handlers map[models.ActionType]ActionHandler
	logger   *zap.Logger
}

func NewExecutor(surface MutationSurface, notifier Notifier, logger *zap.Logger) *Executor {
	e := &Executor{
		surface:  surface,
		notifier: notifier,
		catalog:  models.DefaultActionCatalog(),
		handlers: make(map[models.ActionType]ActionHandler),
		logger:   logger,
	}

	e.handlers[models.ActionSetAgent] = func(ctx context.Context, ticketID string, a models.Action) error {
		return surface.AssignAgent(ctx, ticketID, a.Value)
	}
	e.handlers[models.ActionSetTeam] = func(ctx context.Context, ticketID string, a models.Action) error {
		return surface.AssignTeam(ctx, ticketID, a.Value)
	}
	e.handlers[models.ActionSetPriority] = func(ctx context.Context, ticketID string, a models.Action) error {
		return surface.SetPriority(ctx, ticketID, models.Canonical(a.Value))
	}
	e.handlers[models.ActionSetStatus] = func(ctx context.Context, ticketID string, a models.Action) error {
		return surface.SetStatus(ctx, ticketID, models.Canonical(a.Value))
	}
	e.handlers[models.ActionSetCategory] = func(ctx context.Context, ticketID string, a models.Action) error {
		return surface.SetCategory(ctx, ticketID, a.Value)
	}

	return e
}

// Register adds or replaces the handler and spec for an action type.
func (e *Executor) Register(spec models.ActionSpec, handler ActionHandler) {
	e.catalog[spec.Type] = spec
	e.handlers[spec.Type] = handler
}

// Execute runs the actions in order under the given policy. AND runs every
// action and continues past failures; OR stops at the first success. The
// returned flags are (failed, partial): failed means no action succeeded,
// partial means the AND policy saw at least one failure among successes.
func (e *Executor) Execute(ctx context.Context, ticketID string, actions []models.Action, operator models.LogicalOperator) ([]ActionOutcome, bool, bool) {
	outcomes := make([]ActionOutcome, 0, len(actions))
	successes, failures := 0, 0

	for _, action := range actions {
		outcome := e.runAction(ctx, ticketID, action)
		outcomes = append(outcomes, outcome)

		if outcome.OK {
			successes++
			if operator == models.LogicalOr {
				// first success wins, remaining actions are never invoked
				break
			}
		} else {
			failures++
		}
	}

	failed := successes == 0
	partial := operator != models.LogicalOr && failures > 0 && successes > 0
	return outcomes, failed, partial
}

func (e *Executor) runAction(ctx context.Context, ticketID string, action models.Action) ActionOutcome {
	outcome := ActionOutcome{Type: action.Type}

	spec, known := e.catalog[action.Type]
	handler, hasHandler := e.handlers[action.Type]
	if action.Type == models.ActionAlsoNotify {
		return e.runNotify(ctx, ticketID, action)
	}
	if !known || !hasHandler {
		outcome.Detail = fmt.Sprintf("unknown action type %q", action.Type)
		e.logger.Error("unknown action type, skipping",
			zap.String("ticket_id", ticketID),
			zap.String("action_type", string(action.Type)))
		return outcome
	}

	// Validation failures are terminal: no mutation call, no retry.
	if err := validateAgainstSpec(spec, action); err != nil {
		outcome.Detail = err.Error()
		return outcome
	}

	attempts, err := e.runMutation(ctx, func(cctx context.Context) error {
		return handler(cctx, ticketID, action)
	})
	outcome.Attempts = attempts
	if err != nil {
		outcome.Detail = err.Error()
		e.logger.Warn("action execution failed",
			zap.String("ticket_id", ticketID),
			zap.String("action_type", string(action.Type)),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return outcome
	}

	outcome.OK = true
	return outcome
}

// runNotify delegates to the notifier. A failed notify is logged and the
// outcome still reads success so the owning rule is unaffected.
func (e *Executor) runNotify(ctx context.Context, ticketID string, action models.Action) ActionOutcome {
	outcome := ActionOutcome{Type: action.Type, OK: true, Attempts: 1}

	channel, _ := action.Config["channel"].(string)
	recipient, _ := action.Config["recipient"].(string)
	message, _ := action.Config["message"].(string)
	if message == "" {
		message = fmt.Sprintf("Automation fired for ticket %s", ticketID)
	}

	if e.notifier == nil {
		outcome.Detail = "no notifier configured"
		return outcome
	}

	if err := e.notifier.Notify(ctx, ticketID, channel, recipient, message); err != nil {
		outcome.Detail = fmt.Sprintf("notify failed: %v", err)
		e.logger.Warn("notification delivery failed",
			zap.String("ticket_id", ticketID),
			zap.String("channel", channel),
			zap.Error(err))
	}
	return outcome
}

// runMutation wraps a surface call with a per-attempt timeout and a single
// retry. Retries stop when the parent context is done.
func (e *Executor) runMutation(ctx context.Context, fn func(context.Context) error) (int, error) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		cctx, cancel := context.WithTimeout(ctx, mutationTimeout)
		err = fn(cctx)
		cancel()
		if err == nil {
			return attempt, nil
		}
		if ctx.Err() != nil {
			return attempt, err
		}
	}
	return maxAttempts, err
}

func validateAgainstSpec(spec models.ActionSpec, action models.Action) error {
	if spec.RequiresValue && action.Value == "" {
		return fmt.Errorf("action %s requires a value", action.Type)
	}
	if len(spec.ValueOptions) > 0 {
		canon := models.Canonical(action.Value)
		for _, opt := range spec.ValueOptions {
			if canon == opt {
				return nil
			}
		}
		return fmt.Errorf("action %s value %q is not a valid option", action.Type, action.Value)
	}
	return nil
}
