package rule

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"go-helpdesk/internal/common/models"
)

var ErrRuleNotFound = errors.New("rule not found")

// Refresher re-syncs the scheduler's cron entries after rule changes.
// Implemented by the scheduler feature; wired through fx.
type Refresher interface {
	Refresh(ctx context.Context)
}

type Service interface {
	CreateRule(ctx context.Context, rule *models.Rule) error
	GetRule(ctx context.Context, workspaceID, id string) (*models.Rule, error)
	ListRules(ctx context.Context, workspaceID string, enabledOnly bool) ([]models.Rule, error)
	UpdateRule(ctx context.Context, rule *models.Rule) error
	ToggleRule(ctx context.Context, workspaceID, id string, enabled bool) error
	DuplicateRule(ctx context.Context, workspaceID, id string) (*models.Rule, error)
	DeleteRule(ctx context.Context, workspaceID, id string) error

	// Catalogs exposes the trigger/action registry the configuration UI renders.
	Catalogs() (map[string]models.TriggerSpec, map[models.ActionType]models.ActionSpec)
}

type ServiceImpl struct {
	Repo      Repository
	Scheduler Refresher
	Logger    *zap.Logger
}

func NewService(repo Repository, scheduler Refresher, logger *zap.Logger) Service {
	return &ServiceImpl{
		Repo:      repo,
		Scheduler: scheduler,
		Logger:    logger,
	}
}

func (s *ServiceImpl) CreateRule(ctx context.Context, rule *models.Rule) error {
	if err := Validate(rule); err != nil {
		return err
	}
	if rule.ActionsOperator == "" {
		rule.ActionsOperator = models.LogicalAnd
	}
	if err := s.Repo.Create(ctx, rule); err != nil {
		return err
	}
	s.Logger.Info("automation rule created",
		zap.String("rule_id", rule.ID.Hex()),
		zap.String("workspace_id", rule.WorkspaceID.Hex()),
		zap.String("trigger", rule.Trigger))
	s.refresh(ctx)
	return nil
}

func (s *ServiceImpl) GetRule(ctx context.Context, workspaceID, id string) (*models.Rule, error) {
	return s.Repo.GetByID(ctx, workspaceID, id)
}

func (s *ServiceImpl) ListRules(ctx context.Context, workspaceID string, enabledOnly bool) ([]models.Rule, error) {
	return s.Repo.List(ctx, workspaceID, enabledOnly)
}

// UpdateRule replaces the rule body wholesale; condition and action lists have
// no partial-patch semantics.
func (s *ServiceImpl) UpdateRule(ctx context.Context, rule *models.Rule) error {
	if err := Validate(rule); err != nil {
		return err
	}
	if rule.ActionsOperator == "" {
		rule.ActionsOperator = models.LogicalAnd
	}
	if err := s.Repo.Update(ctx, rule); err != nil {
		return err
	}
	s.Logger.Info("automation rule updated",
		zap.String("rule_id", rule.ID.Hex()),
		zap.String("workspace_id", rule.WorkspaceID.Hex()))
	s.refresh(ctx)
	return nil
}

func (s *ServiceImpl) ToggleRule(ctx context.Context, workspaceID, id string, enabled bool) error {
	if err := s.Repo.Toggle(ctx, workspaceID, id, enabled); err != nil {
		return err
	}
	s.Logger.Info("automation rule toggled",
		zap.String("rule_id", id),
		zap.String("workspace_id", workspaceID),
		zap.Bool("enabled", enabled))
	s.refresh(ctx)
	return nil
}

// DuplicateRule copies a rule under a new identity in the same workspace. The
// copy is created disabled with a " (copy)" name suffix.
func (s *ServiceImpl) DuplicateRule(ctx context.Context, workspaceID, id string) (*models.Rule, error) {
	original, err := s.Repo.GetByID(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, ErrRuleNotFound
	}

	dup := *original
	dup.Name = fmt.Sprintf("%s (copy)", original.Name)
	dup.IsEnabled = false
	if err := s.Repo.Create(ctx, &dup); err != nil {
		return nil, err
	}

	s.Logger.Info("automation rule duplicated",
		zap.String("source_rule_id", id),
		zap.String("rule_id", dup.ID.Hex()),
		zap.String("workspace_id", workspaceID))
	return &dup, nil
}

func (s *ServiceImpl) DeleteRule(ctx context.Context, workspaceID, id string) error {
	if err := s.Repo.Delete(ctx, workspaceID, id); err != nil {
		return err
	}
	s.Logger.Info("automation rule deleted",
		zap.String("rule_id", id),
		zap.String("workspace_id", workspaceID))
	s.refresh(ctx)
	return nil
}

func (s *ServiceImpl) Catalogs() (map[string]models.TriggerSpec, map[models.ActionType]models.ActionSpec) {
	return models.DefaultTriggerCatalog(), models.DefaultActionCatalog()
}

func (s *ServiceImpl) refresh(ctx context.Context) {
	if s.Scheduler != nil {
		s.Scheduler.Refresh(ctx)
	}
}
