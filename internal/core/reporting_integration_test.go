package core_test

import (
	"context"
	"testing"
	"time"

	"procurement-tracker/internal/core"
)

func TestReportingService_GetUtilization(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	requests := core.NewPurchaseRequestService(pool, seq)
	reporting := core.NewReportingService(pool)

	plan := createFundedPlan(t, plans, "5000")

	if _, err := requests.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Report fixture",
		Items:   requestItems("3", "150.50"),
	}); err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	cancelled, err := requests.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Cancelled fixture",
		Items:   requestItems("1", "100"),
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if _, err := requests.CancelRequest(ctx, cancelled.ID); err != nil {
		t.Fatalf("CancelRequest failed: %v", err)
	}

	report, err := reporting.GetUtilization(ctx, "", 0)
	if err != nil {
		t.Fatalf("GetUtilization failed: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report))
	}

	row := report[0]
	if row.PlanNumber != plan.PlanNumber {
		t.Errorf("expected plan %s, got %s", plan.PlanNumber, row.PlanNumber)
	}
	if !row.UsedBudget.Equal(d("451.50")) || !row.RemainingBudget.Equal(d("4548.50")) {
		t.Errorf("expected used 451.50 / remaining 4548.50, got %s / %s",
			row.UsedBudget.StringFixed(2), row.RemainingBudget.StringFixed(2))
	}
	// The cross-check total ignores cancelled requests, so it must agree with
	// the stored running balance.
	if !row.LinkedRequestTotal.Equal(row.UsedBudget) {
		t.Errorf("cross-check drift: linked total %s vs used %s",
			row.LinkedRequestTotal.StringFixed(2), row.UsedBudget.StringFixed(2))
	}
	if row.RequestCount != 2 {
		t.Errorf("expected 2 linked requests counted, got %d", row.RequestCount)
	}

	t.Run("division filter", func(t *testing.T) {
		report, err := reporting.GetUtilization(ctx, "No Such Division", 0)
		if err != nil {
			t.Fatalf("GetUtilization failed: %v", err)
		}
		if len(report) != 0 {
			t.Errorf("expected empty report, got %d rows", len(report))
		}
	})

	t.Run("year filter", func(t *testing.T) {
		report, err := reporting.GetUtilization(ctx, "", time.Now().Year())
		if err != nil {
			t.Fatalf("GetUtilization failed: %v", err)
		}
		if len(report) != 1 {
			t.Errorf("expected 1 row for current year, got %d", len(report))
		}
	})
}
