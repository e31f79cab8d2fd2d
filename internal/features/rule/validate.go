package rule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"go-helpdesk/internal/common/models"
)

// ErrInvalidRule wraps every save-time validation failure. Rules rejected here
// never reach evaluation.
var ErrInvalidRule = errors.New("invalid rule definition")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRule, fmt.Sprintf(format, args...))
}

var conditionTypes = map[models.ConditionType]bool{
	models.ConditionSubject:         true,
	models.ConditionDescription:     true,
	models.ConditionTicketBody:      true,
	models.ConditionUser:            true,
	models.ConditionUserEmailDomain: true,
	models.ConditionInbox:           true,
	models.ConditionAgent:           true,
	models.ConditionCompany:         true,
	models.ConditionPriority:        true,
	models.ConditionStatus:          true,
	models.ConditionCategory:        true,
	models.ConditionNote:            true,
}

var conditionValueOptions = map[models.ConditionType][]string{
	models.ConditionPriority: models.PriorityLabels,
	models.ConditionStatus:   models.StatusLabels,
}

// Validate enforces the rule definition contracts: non-empty condition and
// action lists, non-blank condition values, schema-valid action configs,
// analysis rules on content triggers, and a cron schedule on (and only on)
// scheduled triggers.
func Validate(r *models.Rule) error {
	if strings.TrimSpace(r.Name) == "" {
		return invalidf("rule name is required")
	}

	triggers := models.DefaultTriggerCatalog()
	spec, ok := triggers[r.Trigger]
	if !ok {
		return invalidf("unknown trigger %q", r.Trigger)
	}
	if spec.ContentBased && r.MessageAnalysis == nil {
		return invalidf("trigger %q requires message analysis rules", r.Trigger)
	}
	if spec.Scheduled {
		if r.Schedule == "" {
			return invalidf("trigger %q requires a cron schedule", r.Trigger)
		}
		if _, err := cron.ParseStandard(r.Schedule); err != nil {
			return invalidf("invalid cron schedule %q: %v", r.Schedule, err)
		}
	} else if r.Schedule != "" {
		return invalidf("trigger %q does not accept a schedule", r.Trigger)
	}

	if r.MessageAnalysis != nil {
		if err := validateAnalysis(r.MessageAnalysis); err != nil {
			return err
		}
	}

	if len(r.Conditions) == 0 {
		return invalidf("at least one condition is required")
	}
	for i, cond := range r.Conditions {
		if err := validateCondition(i, cond, i == len(r.Conditions)-1); err != nil {
			return err
		}
	}

	if len(r.Actions) == 0 {
		return invalidf("at least one action is required")
	}
	catalog := models.DefaultActionCatalog()
	for i, action := range r.Actions {
		if err := validateAction(i, action, catalog); err != nil {
			return err
		}
	}

	switch r.ActionsOperator {
	case models.LogicalAnd, models.LogicalOr, "":
	default:
		return invalidf("unknown actions operator %q", r.ActionsOperator)
	}
	switch r.ConditionsOperator {
	case models.LogicalAnd, models.LogicalOr, "":
	default:
		return invalidf("unknown conditions operator %q", r.ConditionsOperator)
	}

	return nil
}

func validateAnalysis(a *models.MessageAnalysisRule) error {
	if a.MinConfidence < 0 || a.MinConfidence > 1 {
		return invalidf("min_confidence %v out of range [0,1]", a.MinConfidence)
	}
	if a.SentimentThreshold != nil && (*a.SentimentThreshold < -1 || *a.SentimentThreshold > 1) {
		return invalidf("sentiment_threshold %v out of range [-1,1]", *a.SentimentThreshold)
	}
	return nil
}

func validateCondition(i int, cond models.Condition, last bool) error {
	if !conditionTypes[cond.Type] {
		return invalidf("condition %d: unknown type %q", i, cond.Type)
	}

	switch cond.Operator {
	case models.OperatorEql, models.OperatorNeql, models.OperatorCon, models.OperatorNcon:
	default:
		return invalidf("condition %d: unknown operator %q", i, cond.Operator)
	}

	// A blank value is always a definition error; an empty CON/NCON needle is
	// never "matches everything".
	if strings.TrimSpace(cond.Value) == "" {
		return invalidf("condition %d: value is required", i)
	}

	if options, closed := conditionValueOptions[cond.Type]; closed && (cond.Operator == models.OperatorEql || cond.Operator == models.OperatorNeql) {
		if !containsOption(options, cond.Value) {
			return invalidf("condition %d: %q is not a valid %s label", i, cond.Value, cond.Type)
		}
	}

	switch cond.Logical {
	case models.LogicalAnd, models.LogicalOr:
		if last {
			return invalidf("condition %d: last condition cannot carry a logical operator", i)
		}
	case "":
	default:
		return invalidf("condition %d: unknown logical operator %q", i, cond.Logical)
	}

	return nil
}

func validateAction(i int, action models.Action, catalog map[models.ActionType]models.ActionSpec) error {
	spec, ok := catalog[action.Type]
	if !ok {
		return invalidf("action %d: unknown type %q", i, action.Type)
	}

	if spec.RequiresValue && strings.TrimSpace(action.Value) == "" {
		return invalidf("action %d: %s requires a value", i, action.Type)
	}
	if len(spec.ValueOptions) > 0 && !containsOption(spec.ValueOptions, action.Value) {
		return invalidf("action %d: %q is not a valid %s option", i, action.Value, action.Type)
	}

	for _, field := range spec.Config {
		raw, present := action.Config[field.Name]
		if !present {
			if field.Required {
				return invalidf("action %d: missing config field %q", i, field.Name)
			}
			continue
		}
		if err := checkConfigKind(field, raw); err != nil {
			return invalidf("action %d: config field %q: %v", i, field.Name, err)
		}
	}

	return nil
}

func checkConfigKind(field models.ConfigField, raw interface{}) error {
	switch field.Kind {
	case models.FieldKindString:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", raw)
		}
		if field.Required && strings.TrimSpace(s) == "" {
			return fmt.Errorf("must not be blank")
		}
	case models.FieldKindEnum:
		s, ok := raw.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", raw)
		}
		if !containsOption(field.Options, s) {
			return fmt.Errorf("%q is not one of %v", s, field.Options)
		}
	case models.FieldKindNumber:
		switch raw.(type) {
		case float64, float32, int, int32, int64:
		default:
			return fmt.Errorf("expected number, got %T", raw)
		}
	}
	return nil
}

func containsOption(options []string, value string) bool {
	canon := models.Canonical(value)
	for _, opt := range options {
		if canon == models.Canonical(opt) {
			return true
		}
	}
	return false
}
