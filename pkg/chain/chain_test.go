package chain

import (
	"testing"

	"go-helpdesk/internal/common/models"
)

func cond(t models.ConditionType, op models.ConditionOperator, value string, logical models.LogicalOperator) models.Condition {
	return models.Condition{Type: t, Operator: op, Value: value, Logical: logical}
}

func TestEvaluateGrouping(t *testing.T) {
	facts := models.FactMap{
		models.ConditionPriority: "high",
		models.ConditionCompany:  "Acme",
		models.ConditionSubject:  "Printer down",
	}

	tests := []struct {
		name       string
		conditions []models.Condition
		want       bool
	}{
		{
			name: "single true condition",
			conditions: []models.Condition{
				cond(models.ConditionCompany, models.OperatorEql, "Acme", ""),
			},
			want: true,
		},
		{
			name: "and run all true",
			conditions: []models.Condition{
				cond(models.ConditionPriority, models.OperatorEql, "High", models.LogicalAnd),
				cond(models.ConditionCompany, models.OperatorEql, "Acme", ""),
			},
			want: true,
		},
		{
			name: "and run one false",
			conditions: []models.Condition{
				cond(models.ConditionPriority, models.OperatorEql, "High", models.LogicalAnd),
				cond(models.ConditionCompany, models.OperatorEql, "Other", ""),
			},
			want: false,
		},
		{
			name: "failed and run rescued by or group",
			conditions: []models.Condition{
				cond(models.ConditionPriority, models.OperatorEql, "low", models.LogicalAnd),
				cond(models.ConditionCompany, models.OperatorEql, "Acme", models.LogicalOr),
				cond(models.ConditionSubject, models.OperatorCon, "printer", ""),
			},
			want: true,
		},
		{
			name: "mixed chain equals parenthesized and-runs",
			// (priority=low ∧ company=Acme) ∨ (subject CON printer ∧ company=Acme)
			conditions: []models.Condition{
				cond(models.ConditionPriority, models.OperatorEql, "low", models.LogicalAnd),
				cond(models.ConditionCompany, models.OperatorEql, "Acme", models.LogicalOr),
				cond(models.ConditionSubject, models.OperatorCon, "printer", models.LogicalAnd),
				cond(models.ConditionCompany, models.OperatorEql, "Acme", ""),
			},
			want: true,
		},
		{
			name: "all groups false",
			conditions: []models.Condition{
				cond(models.ConditionPriority, models.OperatorEql, "low", models.LogicalOr),
				cond(models.ConditionCompany, models.OperatorEql, "Globex", ""),
			},
			want: false,
		},
		{
			name: "true group short-circuits before later groups",
			conditions: []models.Condition{
				cond(models.ConditionCompany, models.OperatorEql, "Acme", models.LogicalOr),
				// invalid operator after the deciding OR boundary is never reached
				cond(models.ConditionCompany, "BOGUS", "x", ""),
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.conditions, facts)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateCaseSensitivity(t *testing.T) {
	facts := models.FactMap{
		models.ConditionSubject:  "Server ON FIRE",
		models.ConditionPriority: "High",
	}

	tests := []struct {
		name string
		c    models.Condition
		want bool
	}{
		{"contains is case-insensitive", cond(models.ConditionSubject, models.OperatorCon, "on fire", ""), true},
		{"not-contains is case-insensitive", cond(models.ConditionSubject, models.OperatorNcon, "ON fire", ""), false},
		{"free-text equality is case-sensitive", cond(models.ConditionSubject, models.OperatorEql, "server on fire", ""), false},
		{"closed-set equality canonicalizes", cond(models.ConditionPriority, models.OperatorEql, "hIgH", ""), true},
		{"closed-set inequality canonicalizes", cond(models.ConditionPriority, models.OperatorNeql, "HIGH", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate([]models.Condition{tt.c}, facts)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateMissingFact(t *testing.T) {
	facts := models.FactMap{models.ConditionSubject: "hello"}

	tests := []struct {
		name string
		c    models.Condition
		want bool
	}{
		{"EQL on missing fact is false", cond(models.ConditionCompany, models.OperatorEql, "Acme", ""), false},
		{"CON on missing fact is false", cond(models.ConditionCompany, models.OperatorCon, "Acme", ""), false},
		{"NEQL on missing fact is true", cond(models.ConditionCompany, models.OperatorNeql, "Acme", ""), true},
		{"NCON on missing fact is true", cond(models.ConditionCompany, models.OperatorNcon, "Acme", ""), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate([]models.Condition{tt.c}, facts)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	if _, err := Evaluate(nil, models.FactMap{}); err == nil {
		t.Error("expected error for empty chain")
	}

	bad := []models.Condition{cond(models.ConditionSubject, "LIKE", "x", "")}
	if _, err := Evaluate(bad, models.FactMap{}); err == nil {
		t.Error("expected error for unknown operator")
	}

	badConnector := []models.Condition{
		cond(models.ConditionSubject, models.OperatorNcon, "x", "XOR"),
		cond(models.ConditionSubject, models.OperatorNcon, "y", ""),
	}
	if _, err := Evaluate(badConnector, models.FactMap{}); err == nil {
		t.Error("expected error for unknown logical operator")
	}
}

func TestNormalize(t *testing.T) {
	conds := []models.Condition{
		cond(models.ConditionSubject, models.OperatorCon, "a", ""),
		cond(models.ConditionSubject, models.OperatorCon, "b", models.LogicalOr),
		cond(models.ConditionSubject, models.OperatorCon, "c", models.LogicalAnd), // trailing connector cleared
	}

	got := Normalize(conds, models.LogicalOr)
	if got[0].Logical != models.LogicalOr {
		t.Errorf("missing connector filled with %q, want OR fallback", got[0].Logical)
	}
	if got[1].Logical != models.LogicalOr {
		t.Errorf("explicit connector changed to %q", got[1].Logical)
	}
	if got[2].Logical != "" {
		t.Errorf("last condition connector = %q, want empty", got[2].Logical)
	}

	// default fallback is AND
	got = Normalize(conds[:2], "")
	if got[0].Logical != models.LogicalAnd {
		t.Errorf("default fallback = %q, want AND", got[0].Logical)
	}
	// input untouched
	if conds[0].Logical != "" {
		t.Error("Normalize mutated its input")
	}
}
