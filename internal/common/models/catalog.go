package models

// The trigger and action catalogs are configuration data the engine consumes.
// Adding an action type means adding a catalog entry and an executor handler;
// the evaluator itself never branches on concrete types.

type ConfigFieldKind string

const (
	FieldKindString ConfigFieldKind = "string"
	FieldKindEnum   ConfigFieldKind = "enum"
	FieldKindNumber ConfigFieldKind = "number"
)

// ConfigField describes one entry of an action's config schema.
type ConfigField struct {
	Name     string          `json:"name"`
	Kind     ConfigFieldKind `json:"kind"`
	Required bool            `json:"required"`
	Options  []string        `json:"options,omitempty"`
}

// ActionSpec declares an action type: whether it takes a primary value, the
// option set constraining that value (closed-set actions), and its config schema.
type ActionSpec struct {
	Type          ActionType    `json:"type"`
	Label         string        `json:"label"`
	RequiresValue bool          `json:"requires_value"`
	ValueOptions  []string      `json:"value_options,omitempty"`
	Config        []ConfigField `json:"config,omitempty"`
}

// TriggerSpec declares a trigger key and how rules bound to it behave.
type TriggerSpec struct {
	Key          string `json:"key"`
	Label        string `json:"label"`
	ContentBased bool   `json:"content_based"`
	Scheduled    bool   `json:"scheduled"`
}

// Fixed option sets for closed-set ticket fields.
var (
	PriorityLabels = []string{"low", "medium", "high", "urgent"}
	StatusLabels   = []string{"new", "open", "pending", "resolved", "closed"}
)

// NotifyChannels are the side channels ALSO_NOTIFY may deliver through.
var NotifyChannels = []string{"email", "teams"}

// DefaultActionCatalog returns the built-in action specs keyed by type.
func DefaultActionCatalog() map[ActionType]ActionSpec {
	return map[ActionType]ActionSpec{
		ActionSetAgent: {
			Type:          ActionSetAgent,
			Label:         "Assign agent",
			RequiresValue: true,
		},
		ActionSetTeam: {
			Type:          ActionSetTeam,
			Label:         "Assign team",
			RequiresValue: true,
		},
		ActionSetPriority: {
			Type:          ActionSetPriority,
			Label:         "Set priority",
			RequiresValue: true,
			ValueOptions:  PriorityLabels,
		},
		ActionSetStatus: {
			Type:          ActionSetStatus,
			Label:         "Set status",
			RequiresValue: true,
			ValueOptions:  StatusLabels,
		},
		ActionSetCategory: {
			Type:          ActionSetCategory,
			Label:         "Set category",
			RequiresValue: true,
		},
		ActionAlsoNotify: {
			Type:  ActionAlsoNotify,
			Label: "Also notify",
			Config: []ConfigField{
				{Name: "channel", Kind: FieldKindEnum, Required: true, Options: NotifyChannels},
				{Name: "recipient", Kind: FieldKindString, Required: true},
				{Name: "message", Kind: FieldKindString, Required: false},
			},
		},
	}
}

// DefaultTriggerCatalog returns the built-in trigger specs keyed by trigger key.
func DefaultTriggerCatalog() map[string]TriggerSpec {
	return map[string]TriggerSpec{
		TriggerTicketCreated:         {Key: TriggerTicketCreated, Label: "Ticket created"},
		TriggerTicketStatusChanged:   {Key: TriggerTicketStatusChanged, Label: "Ticket status changed"},
		TriggerTicketPriorityChanged: {Key: TriggerTicketPriorityChanged, Label: "Ticket priority changed"},
		TriggerTicketAssigned:        {Key: TriggerTicketAssigned, Label: "Ticket assigned"},
		TriggerTicketScheduled:       {Key: TriggerTicketScheduled, Label: "Scheduled sweep", Scheduled: true},
		TriggerMessageReceived:       {Key: TriggerMessageReceived, Label: "Message received", ContentBased: true},
	}
}
