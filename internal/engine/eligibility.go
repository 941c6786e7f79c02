// Package engine holds the pure rule evaluation and prize selection core.
// Everything here is deterministic: the same inputs always produce the same
// outputs, which is what makes the wheel auditable and testable. Persistence
// and randomness live with the callers in internal/services.
package engine

import (
	"fmt"

	"github.com/congdat192/LuckySpin-sub000/internal/models"
)

// EvaluateConditions checks one eligibility condition bundle against a
// purchase at a branch. All present conditions are AND-ed. The first failing
// condition short-circuits and names itself in the returned reason. Absent
// fields are vacuously satisfied; an empty allow-list means "no branch
// restriction", not "no branch allowed".
func EvaluateConditions(conds *models.EligibilityConditions, purchase *models.Purchase, branchCode string) (bool, string) {
	if conds == nil {
		return true, ""
	}

	if conds.MinInvoiceTotal != nil && purchase.Total < *conds.MinInvoiceTotal {
		return false, fmt.Sprintf("invoice total %d is below the minimum of %d", purchase.Total, *conds.MinInvoiceTotal)
	}
	if conds.MaxInvoiceTotal != nil && purchase.Total > *conds.MaxInvoiceTotal {
		return false, fmt.Sprintf("invoice total %d is above the maximum of %d", purchase.Total, *conds.MaxInvoiceTotal)
	}

	if len(conds.AllowedBranches) > 0 && !containsString(conds.AllowedBranches, branchCode) {
		return false, fmt.Sprintf("branch %s is not part of this promotion", branchCode)
	}
	if containsString(conds.DeniedBranches, branchCode) {
		return false, fmt.Sprintf("branch %s is excluded from this promotion", branchCode)
	}

	if len(conds.RequiredProducts) > 0 && !purchaseHasAnyProduct(purchase, conds.RequiredProducts) {
		return false, "invoice does not contain a qualifying product"
	}
	if purchaseHasAnyProduct(purchase, conds.ExcludedProducts) {
		return false, "invoice contains an excluded product"
	}

	return true, ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func purchaseHasAnyProduct(purchase *models.Purchase, codes []string) bool {
	if len(codes) == 0 {
		return false
	}
	for _, item := range purchase.Items {
		if containsString(codes, item.ProductCode) {
			return true
		}
	}
	return false
}
