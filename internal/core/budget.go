package core

import "github.com/shopspring/decimal"

// PlanTotal sums the estimated budget of every line item across all sections.
// Decimal arithmetic throughout: currency fields never touch binary floats.
func PlanTotal(sections []PlanSection) decimal.Decimal {
	total := decimal.Zero
	for _, sec := range sections {
		for _, item := range sec.Items {
			total = total.Add(item.EstimatedBudget)
		}
	}
	return total
}

// ItemTotal computes the denormalized total cost of a purchase request item.
func ItemTotal(quantity, unitCost decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitCost)
}

// RequestTotal sums the total cost over a purchase request's items.
func RequestTotal(items []PurchaseRequestItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalCost)
	}
	return total
}

// DeriveBudgetStatus classifies a plan's budget position.
// Exhausted wins over partially-used when remaining has hit zero.
func DeriveBudgetStatus(used, remaining decimal.Decimal) BudgetStatus {
	switch {
	case remaining.LessThanOrEqual(decimal.Zero):
		return BudgetStatusExhausted
	case used.IsPositive():
		return BudgetStatusPartiallyUsed
	default:
		return BudgetStatusAvailable
	}
}
