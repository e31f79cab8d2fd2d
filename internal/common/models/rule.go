package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConditionType identifies the ticket/message field a condition reads.
type ConditionType string

const (
	ConditionSubject         ConditionType = "subject"
	ConditionDescription     ConditionType = "description"
	ConditionTicketBody      ConditionType = "ticket_body"
	ConditionUser            ConditionType = "user"
	ConditionUserEmailDomain ConditionType = "user_email_domain"
	ConditionInbox           ConditionType = "inbox"
	ConditionAgent           ConditionType = "agent"
	ConditionCompany         ConditionType = "company"
	ConditionPriority        ConditionType = "priority"
	ConditionStatus          ConditionType = "status"
	ConditionCategory        ConditionType = "category"
	ConditionNote            ConditionType = "note"
)

// ClosedSet reports whether the field's value domain is a fixed option set.
// Closed-set fields compare canonicalized (lower-cased, trimmed) on equality.
func (t ConditionType) ClosedSet() bool {
	switch t {
	case ConditionPriority, ConditionStatus, ConditionCategory, ConditionInbox:
		return true
	}
	return false
}

type ConditionOperator string

const (
	OperatorEql  ConditionOperator = "EQL"
	OperatorNeql ConditionOperator = "NEQL"
	OperatorCon  ConditionOperator = "CON"
	OperatorNcon ConditionOperator = "NCON"
)

type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Condition is a single field/operator/value predicate. Logical connects this
// condition to the next one in the chain and is empty on the last condition.
type Condition struct {
	Type     ConditionType     `json:"condition_type" bson:"condition_type"`
	Operator ConditionOperator `json:"condition_operator" bson:"condition_operator"`
	Value    string            `json:"condition_value" bson:"condition_value"`
	Logical  LogicalOperator   `json:"logical_operator,omitempty" bson:"logical_operator,omitempty"`
}

type ActionType string

const (
	ActionSetAgent    ActionType = "set_agent"
	ActionSetTeam     ActionType = "set_team"
	ActionSetPriority ActionType = "set_priority"
	ActionSetStatus   ActionType = "set_status"
	ActionSetCategory ActionType = "set_category"
	ActionAlsoNotify  ActionType = "also_notify"
)

type Action struct {
	Type   ActionType             `json:"action_type" bson:"action_type"`
	Value  string                 `json:"action_value,omitempty" bson:"action_value,omitempty"`
	Config map[string]interface{} `json:"config,omitempty" bson:"config,omitempty"`
}

// MessageAnalysisRule configures the content-analysis gate of message-triggered
// rules. MinConfidence is the hard firing gate; an ExcludeKeywords hit anywhere
// in the message vetoes the rule outright.
type MessageAnalysisRule struct {
	Keywords           []string `json:"keywords,omitempty" bson:"keywords,omitempty"`
	ExcludeKeywords    []string `json:"exclude_keywords,omitempty" bson:"exclude_keywords,omitempty"`
	SentimentThreshold *float64 `json:"sentiment_threshold,omitempty" bson:"sentiment_threshold,omitempty"`
	UrgencyKeywords    []string `json:"urgency_keywords,omitempty" bson:"urgency_keywords,omitempty"`
	Language           string   `json:"language,omitempty" bson:"language,omitempty"`
	MinConfidence      float64  `json:"min_confidence" bson:"min_confidence"`
}

// Rule is a workspace-scoped automation/workflow definition. Conditions and
// actions are owned value objects with no identity outside the rule.
type Rule struct {
	ID                 primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	WorkspaceID        primitive.ObjectID   `json:"workspace_id" bson:"workspace_id"`
	Name               string               `json:"name" bson:"name"`
	IsEnabled          bool                 `json:"is_enabled" bson:"is_enabled"`
	Trigger            string               `json:"trigger" bson:"trigger"`
	Conditions         []Condition          `json:"conditions" bson:"conditions"`
	Actions            []Action             `json:"actions" bson:"actions"`
	ConditionsOperator LogicalOperator      `json:"conditions_operator,omitempty" bson:"conditions_operator,omitempty"`
	ActionsOperator    LogicalOperator      `json:"actions_operator" bson:"actions_operator"`
	MessageAnalysis    *MessageAnalysisRule `json:"message_analysis_rules,omitempty" bson:"message_analysis_rules,omitempty"`
	Schedule           string               `json:"schedule,omitempty" bson:"schedule,omitempty"`
	CreatedAt          time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at" bson:"updated_at"`
}

// FactMap carries the flattened ticket/message fields a domain event exposes.
// A missing entry reads as the empty string during evaluation.
type FactMap map[ConditionType]string

// Trigger keys. Keys prefixed "message." are content-based and require
// message analysis rules on the owning rule.
const (
	TriggerTicketCreated         = "ticket.created"
	TriggerTicketStatusChanged   = "ticket.status_changed"
	TriggerTicketPriorityChanged = "ticket.priority_changed"
	TriggerTicketAssigned        = "ticket.assigned"
	TriggerTicketScheduled       = "ticket.scheduled"
	TriggerMessageReceived       = "message.received"
)

const contentTriggerPrefix = "message."

func IsContentTrigger(trigger string) bool {
	return strings.HasPrefix(trigger, contentTriggerPrefix)
}

// Canonical normalizes a closed-set field value for comparison.
func Canonical(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
