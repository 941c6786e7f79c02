package models

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RuleType discriminates what an EventRule's payload describes
type RuleType string

const (
	RuleTypeEligibility     RuleType = "ELIGIBILITY"
	RuleTypeTurnCalculation RuleType = "TURN_CALCULATION"
)

// FormulaType discriminates the TurnFormula tagged union
type FormulaType string

const (
	FormulaTypeFixed   FormulaType = "FIXED"
	FormulaTypeStep    FormulaType = "STEP"
	FormulaTypeFormula FormulaType = "FORMULA"
)

// EligibilityConditions is the payload of an ELIGIBILITY rule. All present
// conditions are AND-ed; a nil/empty field places no constraint.
type EligibilityConditions struct {
	MinInvoiceTotal  *int64   `bson:"minInvoiceTotal,omitempty" json:"minInvoiceTotal,omitempty"`
	MaxInvoiceTotal  *int64   `bson:"maxInvoiceTotal,omitempty" json:"maxInvoiceTotal,omitempty"`
	AllowedBranches  []string `bson:"allowedBranches,omitempty" json:"allowedBranches,omitempty"`
	DeniedBranches   []string `bson:"deniedBranches,omitempty" json:"deniedBranches,omitempty"`
	RequiredProducts []string `bson:"requiredProducts,omitempty" json:"requiredProducts,omitempty"`
	ExcludedProducts []string `bson:"excludedProducts,omitempty" json:"excludedProducts,omitempty"`
}

// StepBand is one band of a STEP formula. Max == nil means unbounded above;
// Max is inclusive. Bands are evaluated in declared order, first match wins.
type StepBand struct {
	Min   int64  `bson:"min" json:"min"`
	Max   *int64 `bson:"max,omitempty" json:"max,omitempty"`
	Turns int    `bson:"turns" json:"turns"`
}

// TurnFormula is the payload of a TURN_CALCULATION rule, a tagged union on Type:
//
//	FIXED:   Turns per qualifying purchase, verbatim (0 allowed)
//	STEP:    first matching band of Steps decides the turn count
//	FORMULA: floor(invoice total / PerAmount)
type TurnFormula struct {
	Type      FormulaType `bson:"type" json:"type"`
	Turns     int         `bson:"turns,omitempty" json:"turns,omitempty"`
	Steps     []StepBand  `bson:"steps,omitempty" json:"steps,omitempty"`
	PerAmount int64       `bson:"perAmount,omitempty" json:"perAmount,omitempty"`
}

// EventRule is one prioritized rule of an event. Exactly one payload must be
// populated, matching RuleType. All active ELIGIBILITY rules must pass; only
// the highest-priority active TURN_CALCULATION rule is applied.
type EventRule struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	EventID    primitive.ObjectID     `bson:"eventId" json:"eventId"`
	Name       string                 `bson:"name" json:"name"`
	RuleType   RuleType               `bson:"ruleType" json:"ruleType"`
	Priority   int                    `bson:"priority" json:"priority"` // higher evaluated first
	IsActive   bool                   `bson:"isActive" json:"isActive"`
	Conditions *EligibilityConditions `bson:"conditions,omitempty" json:"conditions,omitempty"`
	Formula    *TurnFormula           `bson:"formula,omitempty" json:"formula,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// Validate rejects malformed rules at authoring time, before they are saved.
// Runtime evaluation assumes a rule that passed Validate.
func (r *EventRule) Validate() error {
	switch r.RuleType {
	case RuleTypeEligibility:
		if r.Conditions == nil {
			return errors.New("eligibility rule requires a conditions payload")
		}
		if r.Formula != nil {
			return errors.New("eligibility rule must not carry a turn formula")
		}
		if r.Conditions.MinInvoiceTotal != nil && r.Conditions.MaxInvoiceTotal != nil &&
			*r.Conditions.MinInvoiceTotal > *r.Conditions.MaxInvoiceTotal {
			return errors.New("minInvoiceTotal exceeds maxInvoiceTotal")
		}
	case RuleTypeTurnCalculation:
		if r.Formula == nil {
			return errors.New("turn calculation rule requires a formula payload")
		}
		if r.Conditions != nil {
			return errors.New("turn calculation rule must not carry eligibility conditions")
		}
		return r.Formula.Validate()
	default:
		return fmt.Errorf("unknown rule type %q", r.RuleType)
	}
	return nil
}

// Validate checks formula configuration. A PerAmount of zero would mean a
// division by zero at spin time, so it is refused here.
func (f *TurnFormula) Validate() error {
	switch f.Type {
	case FormulaTypeFixed:
		if f.Turns < 0 {
			return errors.New("fixed formula turns must not be negative")
		}
	case FormulaTypeStep:
		if len(f.Steps) == 0 {
			return errors.New("step formula requires at least one band")
		}
		for i, band := range f.Steps {
			if band.Min < 0 {
				return fmt.Errorf("step band %d: min must not be negative", i)
			}
			if band.Max != nil && *band.Max < band.Min {
				return fmt.Errorf("step band %d: max is below min", i)
			}
			if band.Turns < 0 {
				return fmt.Errorf("step band %d: turns must not be negative", i)
			}
		}
	case FormulaTypeFormula:
		if f.PerAmount <= 0 {
			return errors.New("formula perAmount must be positive")
		}
	default:
		return fmt.Errorf("unknown formula type %q", f.Type)
	}
	return nil
}
