package chain

import (
	"errors"
	"fmt"
	"strings"

	"go-helpdesk/internal/common/models"
)

// The condition editor produces a flat list with one connector per node, not a
// nested expression tree. Evaluation therefore normalizes the list into an OR
// of maximal AND-runs: `c1 AND c2 OR c3 AND c4` reads as `(c1∧c2)∨(c3∧c4)`.
// This is a product constraint of the flat chain model, not an approximation
// of full boolean-expression support.

var ErrEmptyChain = errors.New("condition chain is empty")

// Normalize fills missing connectors (every condition but the last) with the
// chain-level fallback operator, defaulting to AND.
func Normalize(conditions []models.Condition, fallback models.LogicalOperator) []models.Condition {
	if fallback != models.LogicalOr {
		fallback = models.LogicalAnd
	}
	out := make([]models.Condition, len(conditions))
	copy(out, conditions)
	for i := range out {
		if i == len(out)-1 {
			out[i].Logical = ""
			continue
		}
		if out[i].Logical == "" {
			out[i].Logical = fallback
		}
	}
	return out
}

// Evaluate resolves the ordered condition list against the fact map. The chain
// is true when any maximal AND-run of conditions is fully true. A missing fact
// reads as the empty string, so EQL/CON against an absent field is false while
// NEQL/NCON is true.
func Evaluate(conditions []models.Condition, facts models.FactMap) (bool, error) {
	if len(conditions) == 0 {
		return false, ErrEmptyChain
	}

	groupOK := true
	for i, cond := range conditions {
		if groupOK {
			ok, err := evalLeaf(cond, facts)
			if err != nil {
				return false, err
			}
			groupOK = ok
		}

		last := i == len(conditions)-1
		if last {
			return groupOK, nil
		}

		switch cond.Logical {
		case models.LogicalAnd:
			// stay in the current AND-run
		case models.LogicalOr:
			if groupOK {
				return true, nil
			}
			groupOK = true // next group starts fresh
		default:
			return false, fmt.Errorf("unknown logical operator %q at position %d", cond.Logical, i)
		}
	}
	return groupOK, nil
}

func evalLeaf(cond models.Condition, facts models.FactMap) (bool, error) {
	fact := facts[cond.Type]

	switch cond.Operator {
	case models.OperatorEql:
		return equals(cond.Type, fact, cond.Value), nil
	case models.OperatorNeql:
		return !equals(cond.Type, fact, cond.Value), nil
	case models.OperatorCon:
		return contains(fact, cond.Value), nil
	case models.OperatorNcon:
		return !contains(fact, cond.Value), nil
	default:
		return false, fmt.Errorf("unknown condition operator %q", cond.Operator)
	}
}

// equals is case-sensitive on free-text fields and canonicalized on
// closed-set fields (priority, status, category, inbox).
func equals(t models.ConditionType, fact, value string) bool {
	if t.ClosedSet() {
		return models.Canonical(fact) == models.Canonical(value)
	}
	return fact == value
}

func contains(fact, needle string) bool {
	return strings.Contains(strings.ToLower(fact), strings.ToLower(needle))
}
