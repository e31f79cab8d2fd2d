package engine

import (
	"go-helpdesk/internal/common/models"
)

// Match returns the enabled rules whose trigger equals the event's key.
// Content-based rules additionally need analysis rules present; a content rule
// without them is invalid and rejected at save time, so the check here is
// defensive only. No inter-rule ordering exists: all matching rules execute
// independently and conflicting action effects are the executor's concern.
func Match(event DomainEvent, rules []models.Rule) []models.Rule {
	var matched []models.Rule
	for _, r := range rules {
		if !r.IsEnabled || r.Trigger != event.Trigger {
			continue
		}
		if models.IsContentTrigger(r.Trigger) && r.MessageAnalysis == nil {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}
