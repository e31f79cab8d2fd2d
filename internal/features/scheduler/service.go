package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"go-helpdesk/internal/common/models"
	"go-helpdesk/internal/engine"
	"go-helpdesk/internal/features/rule"
	"go-helpdesk/internal/features/ticket"
)

// Service owns one cron entry per enabled scheduled rule. Each tick sweeps
// the rule's workspace for open tickets and runs that rule alone against
// each of them.
type Service interface {
	Start(ctx context.Context) error
	Stop()
	Refresh(ctx context.Context)
}

type ServiceImpl struct {
	RuleRepo   rule.Repository
	TicketRepo ticket.Repository
	Dispatcher *engine.Dispatcher
	Logger     *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

func NewService(ruleRepo rule.Repository, ticketRepo ticket.Repository, dispatcher *engine.Dispatcher, logger *zap.Logger) Service {
	return &ServiceImpl{
		RuleRepo:   ruleRepo,
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
		entries:    make(map[string]cron.EntryID),
	}
}

func (s *ServiceImpl) Start(ctx context.Context) error {
	s.mu.Lock()
	s.cron = cron.New()
	s.mu.Unlock()

	s.Refresh(ctx)

	s.mu.Lock()
	s.cron.Start()
	s.mu.Unlock()

	s.Logger.Info("rule scheduler started")
	return nil
}

func (s *ServiceImpl) Stop() {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

// Refresh reconciles cron entries with the stored scheduled rules. Called on
// startup and after every rule mutation, so edits take effect without a
// restart.
func (s *ServiceImpl) Refresh(ctx context.Context) {
	rules, err := s.RuleRepo.ListScheduled(ctx)
	if err != nil {
		s.Logger.Error("load scheduled rules", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}

	for id, entry := range s.entries {
		s.cron.Remove(entry)
		delete(s.entries, id)
	}

	for i := range rules {
		r := rules[i]
		if !r.IsEnabled {
			continue
		}
		ruleID := r.ID.Hex()
		entry, err := s.cron.AddFunc(r.Schedule, func() {
			s.tick(context.Background(), ruleID)
		})
		if err != nil {
			s.Logger.Error("register scheduled rule",
				zap.String("rule_id", ruleID),
				zap.String("schedule", r.Schedule),
				zap.Error(err),
			)
			continue
		}
		s.entries[ruleID] = entry
	}

	s.Logger.Info("scheduler refreshed", zap.Int("scheduled_rules", len(s.entries)))
}

// tick re-reads the rule so a disable or edit between refreshes wins, then
// sweeps the workspace's open tickets.
func (s *ServiceImpl) tick(ctx context.Context, ruleID string) {
	r, err := s.findScheduled(ctx, ruleID)
	if err != nil {
		s.Logger.Error("load scheduled rule", zap.String("rule_id", ruleID), zap.Error(err))
		return
	}
	if r == nil {
		return
	}

	tickets, err := s.TicketRepo.ListOpen(ctx, r.WorkspaceID.Hex())
	if err != nil {
		s.Logger.Error("sweep open tickets",
			zap.String("rule_id", ruleID),
			zap.Error(err),
		)
		return
	}

	for i := range tickets {
		t := tickets[i]
		event := engine.NewEvent(models.TriggerTicketScheduled, t.WorkspaceID.Hex(), t.ID.Hex(), t.Facts())
		report := s.Dispatcher.DispatchRule(ctx, event, *r)
		if report.Failed {
			s.Logger.Warn("scheduled rule failed",
				zap.String("rule_id", ruleID),
				zap.String("ticket_id", t.ID.Hex()),
			)
		}
	}
}

func (s *ServiceImpl) findScheduled(ctx context.Context, ruleID string) (*models.Rule, error) {
	rules, err := s.RuleRepo.ListScheduled(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rules {
		if rules[i].ID.Hex() == ruleID && rules[i].IsEnabled {
			return &rules[i], nil
		}
	}
	return nil, nil
}
