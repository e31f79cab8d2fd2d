package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-helpdesk/internal/analysis"
	"go-helpdesk/internal/common/models"
	"go-helpdesk/pkg/chain"
)

// RuleSource lists candidate rules for an event. Implemented by the rule
// repository.
type RuleSource interface {
	ListEnabledByTrigger(ctx context.Context, workspaceID, trigger string) ([]models.Rule, error)
}

// TicketChecker answers whether a ticket still exists; used for the staleness
// check before the action stage.
type TicketChecker interface {
	Exists(ctx context.Context, ticketID string) (bool, error)
}

// ReportSink receives every execution report the dispatcher produces.
type ReportSink interface {
	Record(ctx context.Context, report ExecutionReport)
}

// ExecutionReport is the engine's record of one rule's processing of one event.
type ExecutionReport struct {
	ID             string           `json:"id" bson:"report_id"`
	EventID        string           `json:"event_id" bson:"event_id"`
	Trigger        string           `json:"trigger" bson:"trigger"`
	WorkspaceID    string           `json:"workspace_id" bson:"workspace_id"`
	TicketID       string           `json:"ticket_id" bson:"ticket_id"`
	RuleID         string           `json:"rule_id" bson:"rule_id"`
	RuleName       string           `json:"rule_name" bson:"rule_name"`
	Fired          bool             `json:"fired" bson:"fired"`
	SkipReason     string           `json:"skip_reason,omitempty" bson:"skip_reason,omitempty"`
	Failed         bool             `json:"failed" bson:"failed"`
	PartialFailure bool             `json:"partial_failure" bson:"partial_failure"`
	Actions        []ActionOutcome  `json:"actions,omitempty" bson:"actions,omitempty"`
	Analysis       *analysis.Result `json:"analysis,omitempty" bson:"analysis,omitempty"`
	ExecutedAt     time.Time        `json:"executed_at" bson:"executed_at"`
}

// Dispatcher runs the full pipeline for one domain event: trigger matching,
// content analysis, condition evaluation, action execution. It is stateless
// per call except for the per-ticket locks that serialize action lists.
type Dispatcher struct {
	rules    RuleSource
	tickets  TicketChecker
	analyzer analysis.Analyzer
	executor *Executor
	sink     ReportSink
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*ticketLock
}

// ticketLock is a refcounted mutex entry so the lock map shrinks back to
// empty once a ticket has no waiters, instead of growing per ticket id.
type ticketLock struct {
	mu   sync.Mutex
	refs int
}

func NewDispatcher(rules RuleSource, tickets TicketChecker, analyzer analysis.Analyzer, executor *Executor, sink ReportSink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		rules:    rules,
		tickets:  tickets,
		analyzer: analyzer,
		executor: executor,
		sink:     sink,
		logger:   logger,
		locks:    make(map[string]*ticketLock),
	}
}

type verdict struct {
	rule     models.Rule
	fired    bool
	skip     string
	analysis *analysis.Result
}

// Dispatch processes one event. Rule evaluation runs in parallel over the
// immutable fact set; action lists then serialize per ticket so one rule's
// mutations apply as a unit. Failures stay isolated per rule.
func (d *Dispatcher) Dispatch(ctx context.Context, event DomainEvent) ([]ExecutionReport, error) {
	candidates, err := d.candidates(ctx, event)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	verdicts := make([]verdict, len(candidates))
	var wg sync.WaitGroup
	for i, rule := range candidates {
		wg.Add(1)
		go func(i int, rule models.Rule) {
			defer wg.Done()
			verdicts[i] = d.evaluate(ctx, event, rule)
		}(i, rule)
	}
	wg.Wait()

	reports := make([]ExecutionReport, 0, len(verdicts))
	for _, v := range verdicts {
		report := d.execute(ctx, event, v)
		if d.sink != nil {
			d.sink.Record(ctx, report)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// DispatchRule runs exactly one rule against an event, bypassing candidate
// selection. The scheduler uses this so each scheduled rule fires on its own
// cron cadence instead of on every peer's tick.
func (d *Dispatcher) DispatchRule(ctx context.Context, event DomainEvent, rule models.Rule) ExecutionReport {
	report := d.execute(ctx, event, d.evaluate(ctx, event, rule))
	if d.sink != nil {
		d.sink.Record(ctx, report)
	}
	return report
}

func (d *Dispatcher) candidates(ctx context.Context, event DomainEvent) ([]models.Rule, error) {
	rules, err := d.rules.ListEnabledByTrigger(ctx, event.WorkspaceID, event.Trigger)
	if err != nil {
		return nil, err
	}
	return Match(event, rules), nil
}

// evaluate is pure with respect to ticket state: content gate first, then the
// condition chain. Evaluation faults skip this rule only.
func (d *Dispatcher) evaluate(ctx context.Context, event DomainEvent, rule models.Rule) verdict {
	v := verdict{rule: rule}

	if models.IsContentTrigger(rule.Trigger) {
		res, err := d.analyzer.Analyze(ctx, event.MessageBody, *rule.MessageAnalysis)
		if err != nil {
			d.logger.Error("content analysis failed, skipping rule",
				zap.String("rule_id", rule.ID.Hex()),
				zap.String("event_id", event.ID),
				zap.Error(err))
			v.skip = "analysis error: " + err.Error()
			return v
		}
		v.analysis = &res
		if !analysis.Passes(res, *rule.MessageAnalysis) {
			if res.Vetoed {
				v.skip = "excluded keyword matched"
			} else {
				v.skip = "confidence below threshold"
			}
			return v
		}
	}

	conditions := chain.Normalize(rule.Conditions, rule.ConditionsOperator)
	ok, err := chain.Evaluate(conditions, event.Fields)
	if err != nil {
		d.logger.Error("condition evaluation fault, skipping rule",
			zap.String("rule_id", rule.ID.Hex()),
			zap.String("event_id", event.ID),
			zap.Error(err))
		v.skip = "evaluation fault: " + err.Error()
		return v
	}
	if !ok {
		v.skip = "conditions not met"
		return v
	}

	v.fired = true
	return v
}

func (d *Dispatcher) execute(ctx context.Context, event DomainEvent, v verdict) ExecutionReport {
	report := ExecutionReport{
		ID:          uuid.NewString(),
		EventID:     event.ID,
		Trigger:     event.Trigger,
		WorkspaceID: event.WorkspaceID,
		TicketID:    event.TicketID,
		RuleID:      v.rule.ID.Hex(),
		RuleName:    v.rule.Name,
		Fired:       v.fired,
		SkipReason:  v.skip,
		Analysis:    v.analysis,
		ExecutedAt:  time.Now().UTC(),
	}
	if !v.fired {
		return report
	}

	lock := d.lockTicket(event.TicketID)
	defer d.unlockTicket(event.TicketID, lock)

	// Staleness check: the ticket may be gone by the time actions run.
	// Already-applied actions of earlier rules are not rolled back.
	if ctx.Err() != nil {
		report.Fired = false
		report.SkipReason = "event cancelled before execution"
		return report
	}
	if d.tickets != nil {
		exists, err := d.tickets.Exists(ctx, event.TicketID)
		if err == nil && !exists {
			report.Fired = false
			report.SkipReason = "ticket no longer exists"
			return report
		}
	}

	operator := v.rule.ActionsOperator
	if operator == "" {
		operator = models.LogicalAnd
	}
	report.Actions, report.Failed, report.PartialFailure = d.executor.Execute(ctx, event.TicketID, v.rule.Actions, operator)

	d.logger.Info("rule executed",
		zap.String("rule_id", report.RuleID),
		zap.String("rule_name", report.RuleName),
		zap.String("ticket_id", report.TicketID),
		zap.String("workspace_id", report.WorkspaceID),
		zap.Bool("failed", report.Failed),
		zap.Bool("partial_failure", report.PartialFailure))

	return report
}

func (d *Dispatcher) lockTicket(ticketID string) *ticketLock {
	d.mu.Lock()
	lock, ok := d.locks[ticketID]
	if !ok {
		lock = &ticketLock{}
		d.locks[ticketID] = lock
	}
	lock.refs++
	d.mu.Unlock()

	lock.mu.Lock()
	return lock
}

func (d *Dispatcher) unlockTicket(ticketID string, lock *ticketLock) {
	lock.mu.Unlock()

	d.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(d.locks, ticketID)
	}
	d.mu.Unlock()
}
