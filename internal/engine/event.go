package engine

import (
	"time"

	"github.com/google/uuid"

	"go-helpdesk/internal/common/models"
)

// DomainEvent is the engine's inbound call shape: a trigger key plus the
// flattened ticket/message facts the rules evaluate against.
type DomainEvent struct {
	ID          string         `json:"id"`
	Trigger     string         `json:"trigger"`
	TicketID    string         `json:"ticket_id"`
	WorkspaceID string         `json:"workspace_id"`
	Fields      models.FactMap `json:"fields"`
	MessageBody string         `json:"message_body,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

func NewEvent(trigger, workspaceID, ticketID string, fields models.FactMap) DomainEvent {
	return DomainEvent{
		ID:          uuid.NewString(),
		Trigger:     trigger,
		TicketID:    ticketID,
		WorkspaceID: workspaceID,
		Fields:      fields,
		OccurredAt:  time.Now().UTC(),
	}
}
