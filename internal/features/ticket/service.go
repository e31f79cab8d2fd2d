package ticket

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"go-helpdesk/internal/common/models"
	"go-helpdesk/internal/engine"
)

var ErrTicketNotFound = errors.New("ticket not found")

// Automation is the slice of the rule engine the ticket service drives:
// every lifecycle change becomes one dispatched event.
type Automation interface {
	Dispatch(ctx context.Context, event engine.DomainEvent) ([]engine.ExecutionReport, error)
}

// Service defines the interface for ticket business logic
type Service interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	GetTicket(ctx context.Context, id string) (*Ticket, error)
	ListTickets(ctx context.Context, workspaceID, status string) ([]Ticket, error)

	UpdateStatus(ctx context.Context, id string, status TicketStatus) error
	UpdatePriority(ctx context.Context, id string, priority TicketPriority) error
	AssignTicket(ctx context.Context, id, agent string) error

	AddMessage(ctx context.Context, ticketID string, msg *Message) error
	ListMessages(ctx context.Context, ticketID string) ([]Message, error)
}

type ServiceImpl struct {
	Repo       Repository
	Automation Automation
	Logger     *zap.Logger
}

func NewService(repo Repository, automation Automation, logger *zap.Logger) Service {
	return &ServiceImpl{
		Repo:       repo,
		Automation: automation,
		Logger:     logger,
	}
}

// CreateTicket persists the ticket and runs the ticket.created rules against
// it. Rule failures are reported through the activity feed, never to the
// caller.
func (s *ServiceImpl) CreateTicket(ctx context.Context, t *Ticket) error {
	if t.Subject == "" {
		return errors.New("ticket subject is required")
	}
	if t.WorkspaceID.IsZero() {
		return errors.New("workspace_id is required")
	}
	if t.Status == "" {
		t.Status = TicketStatusNew
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}

	if err := s.Repo.Create(ctx, t); err != nil {
		return err
	}

	s.Logger.Info("ticket created",
		zap.String("ticket_id", t.ID.Hex()),
		zap.String("subject", t.Subject),
	)

	s.dispatch(ctx, models.TriggerTicketCreated, t)
	return nil
}

func (s *ServiceImpl) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *ServiceImpl) ListTickets(ctx context.Context, workspaceID, status string) ([]Ticket, error) {
	return s.Repo.List(ctx, workspaceID, status)
}

func (s *ServiceImpl) UpdateStatus(ctx context.Context, id string, status TicketStatus) error {
	canon := models.Canonical(string(status))
	if !validLabel(models.StatusLabels, canon) {
		return fmt.Errorf("unknown status %q", status)
	}

	t, err := s.loadExisting(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.UpdateFields(ctx, id, bson.M{"status": TicketStatus(canon)}); err != nil {
		return err
	}
	t.Status = TicketStatus(canon)

	s.dispatch(ctx, models.TriggerTicketStatusChanged, t)
	return nil
}

func (s *ServiceImpl) UpdatePriority(ctx context.Context, id string, priority TicketPriority) error {
	canon := models.Canonical(string(priority))
	if !validLabel(models.PriorityLabels, canon) {
		return fmt.Errorf("unknown priority %q", priority)
	}

	t, err := s.loadExisting(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.UpdateFields(ctx, id, bson.M{"priority": TicketPriority(canon)}); err != nil {
		return err
	}
	t.Priority = TicketPriority(canon)

	s.dispatch(ctx, models.TriggerTicketPriorityChanged, t)
	return nil
}

func (s *ServiceImpl) AssignTicket(ctx context.Context, id, agent string) error {
	if agent == "" {
		return errors.New("agent is required")
	}

	t, err := s.loadExisting(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.UpdateFields(ctx, id, bson.M{"assigned_agent": agent}); err != nil {
		return err
	}
	t.AssignedAgent = agent

	s.dispatch(ctx, models.TriggerTicketAssigned, t)
	return nil
}

// AddMessage stores the message and runs the message.received rules with the
// message body as the analysis input.
func (s *ServiceImpl) AddMessage(ctx context.Context, ticketID string, msg *Message) error {
	if msg.Body == "" {
		return errors.New("message body is required")
	}

	t, err := s.loadExisting(ctx, ticketID)
	if err != nil {
		return err
	}
	msg.TicketID = t.ID

	if err := s.Repo.AddMessage(ctx, msg); err != nil {
		return err
	}

	s.dispatchMessage(ctx, t, msg)
	return nil
}

func (s *ServiceImpl) ListMessages(ctx context.Context, ticketID string) ([]Message, error) {
	return s.Repo.ListMessages(ctx, ticketID)
}

func (s *ServiceImpl) loadExisting(ctx context.Context, id string) (*Ticket, error) {
	t, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTicketNotFound
	}
	return t, nil
}

func (s *ServiceImpl) dispatch(ctx context.Context, trigger string, t *Ticket) {
	s.send(ctx, engine.NewEvent(trigger, t.WorkspaceID.Hex(), t.ID.Hex(), t.Facts()))
}

func (s *ServiceImpl) dispatchMessage(ctx context.Context, t *Ticket, msg *Message) {
	event := engine.NewEvent(models.TriggerMessageReceived, t.WorkspaceID.Hex(), t.ID.Hex(), t.Facts())
	event.MessageBody = msg.Body
	if msg.IsNote {
		event.Fields[models.ConditionNote] = msg.Body
	}
	s.send(ctx, event)
}

func (s *ServiceImpl) send(ctx context.Context, event engine.DomainEvent) {
	if _, err := s.Automation.Dispatch(ctx, event); err != nil {
		s.Logger.Error("automation dispatch failed",
			zap.String("trigger", event.Trigger),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err),
		)
	}
}
