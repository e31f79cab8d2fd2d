package ticket

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"go-helpdesk/internal/common/models"
)

// Mutator adapts the ticket repository to the action surface the rule engine
// drives. Every mutation is a plain $set, so reapplying a value the ticket
// already holds is a no-op rather than an error.
type Mutator struct {
	Repo Repository
}

func NewMutator(repo Repository) *Mutator {
	return &Mutator{Repo: repo}
}

func (m *Mutator) AssignAgent(ctx context.Context, ticketID, agentRef string) error {
	return m.Repo.UpdateFields(ctx, ticketID, bson.M{"assigned_agent": agentRef})
}

func (m *Mutator) AssignTeam(ctx context.Context, ticketID, teamRef string) error {
	return m.Repo.UpdateFields(ctx, ticketID, bson.M{"assigned_team": teamRef})
}

func (m *Mutator) SetPriority(ctx context.Context, ticketID, priority string) error {
	canon := models.Canonical(priority)
	if !validLabel(models.PriorityLabels, canon) {
		return fmt.Errorf("unknown priority %q", priority)
	}
	return m.Repo.UpdateFields(ctx, ticketID, bson.M{"priority": TicketPriority(canon)})
}

func (m *Mutator) SetStatus(ctx context.Context, ticketID, status string) error {
	canon := models.Canonical(status)
	if !validLabel(models.StatusLabels, canon) {
		return fmt.Errorf("unknown status %q", status)
	}
	return m.Repo.UpdateFields(ctx, ticketID, bson.M{"status": TicketStatus(canon)})
}

func (m *Mutator) SetCategory(ctx context.Context, ticketID, category string) error {
	return m.Repo.UpdateFields(ctx, ticketID, bson.M{"category": category})
}

// Exists implements the staleness check the dispatcher runs before actions.
func (m *Mutator) Exists(ctx context.Context, ticketID string) (bool, error) {
	return m.Repo.Exists(ctx, ticketID)
}

func validLabel(labels []string, canon string) bool {
	for _, l := range labels {
		if canon == l {
			return true
		}
	}
	return false
}
