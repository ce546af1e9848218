package core_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"procurement-tracker/internal/core"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPlanTotal(t *testing.T) {
	sections := []core.PlanSection{
		{Items: []core.LineItem{
			{EstimatedBudget: d("1000")},
			{EstimatedBudget: d("2000")},
		}},
		{Items: []core.LineItem{
			{EstimatedBudget: d("500")},
			{EstimatedBudget: d("1500")},
		}},
	}
	assert.True(t, core.PlanTotal(sections).Equal(d("5000")),
		"expected 5000.00, got %s", core.PlanTotal(sections).StringFixed(2))

	assert.True(t, core.PlanTotal(nil).IsZero())
}

func TestItemTotal(t *testing.T) {
	got := core.ItemTotal(d("3"), d("150.50"))
	assert.Equal(t, "451.50", got.StringFixed(2))

	// Fractional quantities keep exact decimal results.
	got = core.ItemTotal(d("2.5"), d("10.10"))
	assert.Equal(t, "25.25", got.StringFixed(2))
}

func TestRequestTotal(t *testing.T) {
	items := []core.PurchaseRequestItem{
		{TotalCost: d("451.50")},
		{TotalCost: d("48.50")},
	}
	assert.Equal(t, "500.00", core.RequestTotal(items).StringFixed(2))
}

func TestDeriveBudgetStatus(t *testing.T) {
	cases := []struct {
		name            string
		used, remaining string
		want            core.BudgetStatus
	}{
		{"untouched", "0", "5000", core.BudgetStatusAvailable},
		{"partial", "1000", "4000", core.BudgetStatusPartiallyUsed},
		{"exhausted", "5000", "0", core.BudgetStatusExhausted},
		{"overdrawn", "5001", "-1", core.BudgetStatusExhausted},
		{"zero allocation", "0", "0", core.BudgetStatusExhausted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, core.DeriveBudgetStatus(d(tc.used), d(tc.remaining)))
		})
	}
}
