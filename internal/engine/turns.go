package engine

import "github.com/congdat192/LuckySpin-sub000/internal/models"

// CalculateTurns resolves a turn formula against an invoice total.
//
// FIXED returns the configured count verbatim, including 0. STEP walks the
// bands in declared order and returns the first band containing the total
// (max inclusive, nil max unbounded); overlapping bands resolve to the first
// listed, and no match means 0 turns. FORMULA is floor(total / perAmount).
// A non-positive perAmount is a configuration error caught at rule save time;
// the guard here only keeps a corrupt document from panicking the spin path.
func CalculateTurns(formula *models.TurnFormula, total int64) int {
	if formula == nil {
		return 0
	}
	switch formula.Type {
	case models.FormulaTypeFixed:
		if formula.Turns < 0 {
			return 0
		}
		return formula.Turns
	case models.FormulaTypeStep:
		for _, band := range formula.Steps {
			if total < band.Min {
				continue
			}
			if band.Max != nil && total > *band.Max {
				continue
			}
			if band.Turns < 0 {
				return 0
			}
			return band.Turns
		}
		return 0
	case models.FormulaTypeFormula:
		if formula.PerAmount <= 0 || total < 0 {
			return 0
		}
		return int(total / formula.PerAmount)
	default:
		return 0
	}
}
