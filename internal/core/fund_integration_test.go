package core_test

import (
	"context"
	"errors"
	"testing"

	"procurement-tracker/internal/core"
)

func TestFundService_CRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewFundService(pool)

	fund, err := svc.CreateFund(ctx, core.FundInput{
		Division:    "Finance Division",
		Name:        "GAA",
		Description: "General Appropriations Act",
	})
	if err != nil {
		t.Fatalf("CreateFund failed: %v", err)
	}
	if fund.ID == 0 || fund.Name != "GAA" {
		t.Errorf("unexpected fund: %+v", fund)
	}

	if _, err := svc.CreateFund(ctx, core.FundInput{Division: "Finance Division"}); !core.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}

	updated, err := svc.UpdateFund(ctx, fund.ID, core.FundInput{
		Division: "Finance Division",
		Name:     "Trust Fund",
	})
	if err != nil {
		t.Fatalf("UpdateFund failed: %v", err)
	}
	if updated.Name != "Trust Fund" || updated.Description != "" {
		t.Errorf("unexpected updated fund: %+v", updated)
	}

	if _, err := svc.GetFund(ctx, fund.ID); err != nil {
		t.Errorf("GetFund failed: %v", err)
	}

	funds, err := svc.ListFunds(ctx, "Finance Division")
	if err != nil {
		t.Fatalf("ListFunds failed: %v", err)
	}
	if len(funds) != 1 {
		t.Errorf("expected 1 fund, got %d", len(funds))
	}
	if funds, _ := svc.ListFunds(ctx, "Operations Division"); len(funds) != 0 {
		t.Errorf("expected empty list for other division, got %d", len(funds))
	}

	if err := svc.DeleteFund(ctx, fund.ID); err != nil {
		t.Fatalf("DeleteFund failed: %v", err)
	}
	if err := svc.DeleteFund(ctx, fund.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := svc.GetFund(ctx, fund.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
