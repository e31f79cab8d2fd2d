package engine

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/common/models"
)

func TestMatch(t *testing.T) {
	analysisRules := &models.MessageAnalysisRule{MinConfidence: 0.5}

	rules := []models.Rule{
		{ID: primitive.NewObjectID(), Name: "created, enabled", IsEnabled: true, Trigger: models.TriggerTicketCreated},
		{ID: primitive.NewObjectID(), Name: "created, disabled", IsEnabled: false, Trigger: models.TriggerTicketCreated},
		{ID: primitive.NewObjectID(), Name: "status changed", IsEnabled: true, Trigger: models.TriggerTicketStatusChanged},
		{ID: primitive.NewObjectID(), Name: "message with analysis", IsEnabled: true, Trigger: models.TriggerMessageReceived, MessageAnalysis: analysisRules},
		{ID: primitive.NewObjectID(), Name: "message without analysis", IsEnabled: true, Trigger: models.TriggerMessageReceived},
	}

	tests := []struct {
		name      string
		trigger   string
		wantNames []string
	}{
		{"ticket created matches enabled only", models.TriggerTicketCreated, []string{"created, enabled"}},
		{"status changed", models.TriggerTicketStatusChanged, []string{"status changed"}},
		{"content trigger requires analysis rules", models.TriggerMessageReceived, []string{"message with analysis"}},
		{"unknown trigger matches nothing", "ticket.merged", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewEvent(tt.trigger, "ws1", "t1", models.FactMap{})
			got := Match(event, rules)

			var names []string
			for _, r := range got {
				names = append(names, r.Name)
			}
			if len(names) != len(tt.wantNames) {
				t.Fatalf("Match() = %v, want %v", names, tt.wantNames)
			}
			for i := range names {
				if names[i] != tt.wantNames[i] {
					t.Errorf("Match()[%d] = %q, want %q", i, names[i], tt.wantNames[i])
				}
			}
		})
	}
}
