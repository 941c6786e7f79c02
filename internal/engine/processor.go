package engine

import (
	"sort"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
)

// Outcome is the result of running an event's rule set against one purchase.
// Ineligibility is a business outcome, not an error: it travels as a value
// with a human-readable reason.
type Outcome struct {
	Eligible bool   `json:"eligible"`
	Turns    int    `json:"turns"`
	Reason   string `json:"reason,omitempty"`
}

// ProcessRules evaluates the full rule list of an event for one purchase.
//
// Rules are ordered by priority descending (ties broken by id so the order is
// reproducible). Every active eligibility rule must pass; the first failure
// stops evaluation. If eligible, the highest-priority active turn calculation
// rule decides the spin count; with no such rule the purchase earns 1 turn.
// The function is pure — same inputs, same outcome, every time.
func ProcessRules(rules []models.EventRule, purchase *models.Purchase, branchCode string) Outcome {
	ordered := make([]models.EventRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return ordered[i].ID.Hex() < ordered[j].ID.Hex()
	})

	for _, rule := range ordered {
		if !rule.IsActive || rule.RuleType != models.RuleTypeEligibility {
			continue
		}
		ok, reason := EvaluateConditions(rule.Conditions, purchase, branchCode)
		if !ok {
			return Outcome{Eligible: false, Turns: 0, Reason: reason}
		}
	}

	for _, rule := range ordered {
		if !rule.IsActive || rule.RuleType != models.RuleTypeTurnCalculation {
			continue
		}
		return Outcome{Eligible: true, Turns: CalculateTurns(rule.Formula, purchase.Total)}
	}

	// No turn rule configured: a qualifying purchase earns one spin.
	return Outcome{Eligible: true, Turns: 1}
}
