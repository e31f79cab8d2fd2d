package ticket

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/common/models"
)

// TicketStatus represents the status of a ticket
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "new"
	TicketStatusOpen     TicketStatus = "open"
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusResolved TicketStatus = "resolved"
	TicketStatusClosed   TicketStatus = "closed"
)

// TicketPriority represents the priority level of a ticket
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Ticket represents a customer support ticket
type Ticket struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	WorkspaceID primitive.ObjectID `json:"workspace_id" bson:"workspace_id"`
	Subject     string             `json:"subject" bson:"subject"`
	Description string             `json:"description" bson:"description"`

	Priority TicketPriority `json:"priority" bson:"priority"`
	Status   TicketStatus   `json:"status" bson:"status"`
	Category string         `json:"category,omitempty" bson:"category,omitempty"`
	Inbox    string         `json:"inbox,omitempty" bson:"inbox,omitempty"`

	// Customer Information
	CustomerName  string `json:"customer_name" bson:"customer_name"`
	CustomerEmail string `json:"customer_email" bson:"customer_email"`
	Company       string `json:"company,omitempty" bson:"company,omitempty"`

	// Assignment
	AssignedAgent string `json:"assigned_agent,omitempty" bson:"assigned_agent,omitempty"`
	AssignedTeam  string `json:"assigned_team,omitempty" bson:"assigned_team,omitempty"`

	// Timestamps
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}

// Message represents one customer or agent message on a ticket. Internal
// notes are messages with IsNote set.
type Message struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TicketID primitive.ObjectID `json:"ticket_id" bson:"ticket_id"`
	Author   string             `json:"author" bson:"author"`
	Body     string             `json:"body" bson:"body"`
	IsNote   bool               `json:"is_note" bson:"is_note"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Facts flattens the ticket into the field map rule conditions read. Absent
// fields stay absent; the evaluator treats them as empty strings.
func (t *Ticket) Facts() models.FactMap {
	facts := models.FactMap{
		models.ConditionSubject:     t.Subject,
		models.ConditionDescription: t.Description,
		models.ConditionTicketBody:  t.Subject + "\n" + t.Description,
		models.ConditionPriority:    string(t.Priority),
		models.ConditionStatus:      string(t.Status),
	}
	if t.Category != "" {
		facts[models.ConditionCategory] = t.Category
	}
	if t.Inbox != "" {
		facts[models.ConditionInbox] = t.Inbox
	}
	if t.CustomerName != "" {
		facts[models.ConditionUser] = t.CustomerName
	}
	if domain := emailDomain(t.CustomerEmail); domain != "" {
		facts[models.ConditionUserEmailDomain] = domain
	}
	if t.Company != "" {
		facts[models.ConditionCompany] = t.Company
	}
	if t.AssignedAgent != "" {
		facts[models.ConditionAgent] = t.AssignedAgent
	}
	return facts
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
