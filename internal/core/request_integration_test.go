package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"procurement-tracker/internal/core"
)

// createFundedPlan persists a plan whose single line item carries the given
// budget, so requests in the test can consume against it.
func createFundedPlan(t *testing.T, svc core.PlanService, budget string) *core.Plan {
	t.Helper()
	input := testPlanInput()
	input.Sections = input.Sections[:1]
	input.Sections[0].Items = input.Sections[0].Items[:1]
	input.Sections[0].Items[0].EstimatedBudget = d(budget)

	plan, _, err := svc.CreatePlan(context.Background(), 1, input)
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	return plan
}

func requestItems(qty, cost string) []core.RequestItemInput {
	return []core.RequestItemInput{
		{Description: "Bond paper", Quantity: d(qty), Unit: "ream", UnitCost: d(cost)},
	}
}

func TestRequestService_CreateRequest(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	svc := core.NewPurchaseRequestService(pool, seq)

	plan := createFundedPlan(t, plans, "5000")

	req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Office supplies for Q2",
		Items:   requestItems("3", "150.50"),
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	now := time.Now()
	if want := core.FormatRequestNumber(now.Year(), int(now.Month()), 1); req.RequestNumber != want {
		t.Errorf("expected request number %s, got %s", want, req.RequestNumber)
	}
	if !req.Total.Equal(d("451.50")) {
		t.Errorf("expected total 451.50, got %s", req.Total.StringFixed(2))
	}
	if req.Status != core.RequestStatusOngoing || req.RISStatus != core.RISStatusNone {
		t.Errorf("unexpected status: %s/%s", req.Status, req.RISStatus)
	}
	if len(req.Items) != 1 || req.Items[0].StockNumber != 1 {
		t.Fatalf("expected 1 item with stock number 1, got %+v", req.Items)
	}
	if req.PlanNumber == nil || *req.PlanNumber != plan.PlanNumber {
		t.Errorf("expected linked plan number %s, got %v", plan.PlanNumber, req.PlanNumber)
	}

	// The plan's running balance moved with the request.
	updated, err := plans.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if !updated.UsedBudget.Equal(d("451.50")) || !updated.RemainingBudget.Equal(d("4548.50")) {
		t.Errorf("expected used 451.50 / remaining 4548.50, got %s / %s",
			updated.UsedBudget.StringFixed(2), updated.RemainingBudget.StringFixed(2))
	}
	if updated.Status != core.PlanStatusUtilized || updated.BudgetStatus != core.BudgetStatusPartiallyUsed {
		t.Errorf("expected utilized/partially used, got %s/%s", updated.Status, updated.BudgetStatus)
	}

	// Unlinked requests consume nothing.
	unlinked, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		Purpose: "Standalone purchase",
		Items:   requestItems("1", "100"),
	})
	if err != nil {
		t.Fatalf("unlinked CreateRequest failed: %v", err)
	}
	if unlinked.PlanID != nil {
		t.Error("unlinked request should carry no plan")
	}
}

func TestRequestService_PerUserNumbering(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	svc := core.NewPurchaseRequestService(pool, seq)

	input := core.RequestInput{Purpose: "Supplies", Items: requestItems("1", "10")}

	first, err := svc.CreateRequest(ctx, 1, input)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	second, err := svc.CreateRequest(ctx, 1, input)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	other, err := svc.CreateRequest(ctx, 3, input)
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	now := time.Now()
	if want := core.FormatRequestNumber(now.Year(), int(now.Month()), 2); second.RequestNumber != want {
		t.Errorf("expected %s for same user, got %s", want, second.RequestNumber)
	}
	// A different user starts an independent series for the same month.
	if want := core.FormatRequestNumber(now.Year(), int(now.Month()), 1); other.RequestNumber != want {
		t.Errorf("expected %s for other user, got %s", want, other.RequestNumber)
	}
	if first.RequestNumber == other.RequestNumber {
		t.Error("request numbers must be unique across users")
	}
}

func TestRequestService_BudgetExceeded(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	svc := core.NewPurchaseRequestService(pool, seq)

	plan := createFundedPlan(t, plans, "100")

	_, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Too expensive",
		Items:   requestItems("1", "100.01"),
	})
	if !errors.Is(err, core.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}

	// The rejected request left nothing behind.
	var count int
	if err := pool.QueryRow(ctx, "SELECT count(*) FROM purchase_requests").Scan(&count); err != nil {
		t.Fatalf("count requests: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no requests after rejection, got %d", count)
	}
	updated, err := plans.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if !updated.UsedBudget.IsZero() {
		t.Errorf("plan budget must be untouched, used = %s", updated.UsedBudget.StringFixed(2))
	}

	// An exact-remaining request is allowed.
	if _, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Exact fit",
		Items:   requestItems("1", "100.00"),
	}); err != nil {
		t.Fatalf("exact-fit CreateRequest failed: %v", err)
	}
}

func TestRequestService_ConcurrentConsumption(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	svc := core.NewPurchaseRequestService(pool, seq)

	plan := createFundedPlan(t, plans, "1000")

	// Ten concurrent 200.00 requests against a 1000.00 budget: exactly five
	// may win, and the balance must never go negative.
	var wg sync.WaitGroup
	errCh := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateRequest(ctx, 1, core.RequestInput{
				PlanID:  &plan.ID,
				Purpose: "Concurrent purchase",
				Items:   requestItems("1", "200"),
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	succeeded, exceeded := 0, 0
	for err := range errCh {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, core.ErrBudgetExceeded):
			exceeded++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 5 || exceeded != 5 {
		t.Errorf("expected 5 successes and 5 rejections, got %d/%d", succeeded, exceeded)
	}

	updated, err := plans.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if !updated.RemainingBudget.IsZero() || !updated.UsedBudget.Equal(d("1000")) {
		t.Errorf("expected remaining 0.00 / used 1000.00, got %s / %s",
			updated.RemainingBudget.StringFixed(2), updated.UsedBudget.StringFixed(2))
	}
	if updated.BudgetStatus != core.BudgetStatusExhausted {
		t.Errorf("expected exhausted, got %s", updated.BudgetStatus)
	}
}

func TestRequestService_Transitions(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	svc := core.NewPurchaseRequestService(pool, seq)

	req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		Purpose: "Lifecycle test",
		Items:   requestItems("1", "100"),
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	// complete before approve is rejected
	if _, err := svc.CompleteRequest(ctx, req.ID); !errors.Is(err, core.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}

	approved, err := svc.ApproveRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("ApproveRequest failed: %v", err)
	}
	if approved.Status != core.RequestStatusApproved || approved.ApprovedAt == nil {
		t.Errorf("expected approved with timestamp, got %s/%v", approved.Status, approved.ApprovedAt)
	}

	// approve is idempotent
	if _, err := svc.ApproveRequest(ctx, req.ID); err != nil {
		t.Errorf("repeat approve should be a no-op, got %v", err)
	}

	completed, err := svc.CompleteRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("CompleteRequest failed: %v", err)
	}
	if completed.Status != core.RequestStatusCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}

	// terminal requests reject further transitions
	if _, err := svc.CancelRequest(ctx, req.ID); !errors.Is(err, core.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition cancelling completed, got %v", err)
	}
	if _, err := svc.ApproveRequest(ctx, req.ID); !errors.Is(err, core.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition approving completed, got %v", err)
	}
}

func TestRequestService_CancelReversal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	svc := core.NewPurchaseRequestService(pool, seq)

	plan := createFundedPlan(t, plans, "1000")

	req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Will be cancelled",
		Items:   requestItems("2", "100"),
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	cancelled, err := svc.CancelRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("CancelRequest failed: %v", err)
	}
	if cancelled.Status != core.RequestStatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	updated, err := plans.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if !updated.UsedBudget.IsZero() || !updated.RemainingBudget.Equal(d("1000")) {
		t.Errorf("expected full reversal, got used %s / remaining %s",
			updated.UsedBudget.StringFixed(2), updated.RemainingBudget.StringFixed(2))
	}
	// Back to process once nothing is consumed.
	if updated.Status != core.PlanStatusProcess || updated.BudgetStatus != core.BudgetStatusAvailable {
		t.Errorf("expected process/available after reversal, got %s/%s", updated.Status, updated.BudgetStatus)
	}
}

func TestRequestService_ClosedPlanFreezesReversal(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	svc := core.NewPurchaseRequestService(pool, seq)

	plan := createFundedPlan(t, plans, "1000")
	req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Consumes then plan closes",
		Items:   requestItems("1", "300"),
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	if _, err := plans.ClosePlan(ctx, plan.ID); err != nil {
		t.Fatalf("ClosePlan failed: %v", err)
	}

	// Cancellation still succeeds, but the closed plan keeps its balance.
	if _, err := svc.CancelRequest(ctx, req.ID); err != nil {
		t.Fatalf("CancelRequest failed: %v", err)
	}
	updated, err := plans.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if !updated.UsedBudget.Equal(d("300")) {
		t.Errorf("closed plan balance must be frozen, used = %s", updated.UsedBudget.StringFixed(2))
	}

	// New consumption against a closed plan is rejected outright.
	if _, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Against closed plan",
		Items:   requestItems("1", "10"),
	}); !errors.Is(err, core.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestRequestService_SetRIS(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	svc := core.NewPurchaseRequestService(pool, seq)

	req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		Purpose: "RIS test",
		Items:   requestItems("1", "100"),
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}

	with, err := svc.SetRIS(ctx, req.ID, core.RISStatusWith)
	if err != nil {
		t.Fatalf("SetRIS failed: %v", err)
	}
	if with.RISNumber == nil || !core.ValidRISNumber(*with.RISNumber) {
		t.Fatalf("expected a valid RIS number, got %v", with.RISNumber)
	}
	firstNumber := *with.RISNumber

	// Setting the same status again changes nothing.
	same, err := svc.SetRIS(ctx, req.ID, core.RISStatusWith)
	if err != nil {
		t.Fatalf("repeat SetRIS failed: %v", err)
	}
	if same.RISNumber == nil || *same.RISNumber != firstNumber {
		t.Errorf("RIS number must not change on repeat attach: %v", same.RISNumber)
	}

	none, err := svc.SetRIS(ctx, req.ID, core.RISStatusNone)
	if err != nil {
		t.Fatalf("detach SetRIS failed: %v", err)
	}
	if none.RISNumber != nil || none.RISStatus != core.RISStatusNone {
		t.Errorf("expected cleared RIS, got %v/%s", none.RISNumber, none.RISStatus)
	}

	// Re-attaching allocates a fresh number; the old one is not reused.
	again, err := svc.SetRIS(ctx, req.ID, core.RISStatusWith)
	if err != nil {
		t.Fatalf("re-attach SetRIS failed: %v", err)
	}
	if again.RISNumber == nil || *again.RISNumber == firstNumber {
		t.Errorf("expected a fresh RIS number, got %v", again.RISNumber)
	}

	if _, err := svc.SetRIS(ctx, req.ID, core.RISStatus("maybe")); !core.IsValidation(err) {
		t.Errorf("expected validation error for bad status, got %v", err)
	}
}

func TestRequestService_UpdateItem(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	svc := core.NewPurchaseRequestService(pool, seq)

	plan := createFundedPlan(t, plans, "1000")
	req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
		PlanID:  &plan.ID,
		Purpose: "Item edits",
		Items:   requestItems("2", "100"), // total 200
	})
	if err != nil {
		t.Fatalf("CreateRequest failed: %v", err)
	}
	itemID := req.Items[0].ID

	t.Run("growth consumes the delta", func(t *testing.T) {
		qty := d("4")
		updated, err := svc.UpdateItem(ctx, req.ID, itemID, core.ItemUpdateInput{Quantity: &qty})
		if err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		if !updated.Total.Equal(d("400")) {
			t.Errorf("expected request total 400.00, got %s", updated.Total.StringFixed(2))
		}
		p, _ := plans.GetPlan(ctx, plan.ID)
		if !p.UsedBudget.Equal(d("400")) {
			t.Errorf("expected used 400.00, got %s", p.UsedBudget.StringFixed(2))
		}
	})

	t.Run("shrink reverses the delta", func(t *testing.T) {
		qty := d("1")
		updated, err := svc.UpdateItem(ctx, req.ID, itemID, core.ItemUpdateInput{Quantity: &qty})
		if err != nil {
			t.Fatalf("UpdateItem failed: %v", err)
		}
		if !updated.Total.Equal(d("100")) {
			t.Errorf("expected request total 100.00, got %s", updated.Total.StringFixed(2))
		}
		p, _ := plans.GetPlan(ctx, plan.ID)
		if !p.UsedBudget.Equal(d("100")) {
			t.Errorf("expected used 100.00, got %s", p.UsedBudget.StringFixed(2))
		}
	})

	t.Run("growth past remaining is rejected", func(t *testing.T) {
		qty := d("100") // 10000 > 1000 budget
		_, err := svc.UpdateItem(ctx, req.ID, itemID, core.ItemUpdateInput{Quantity: &qty})
		if !errors.Is(err, core.ErrBudgetExceeded) {
			t.Errorf("expected ErrBudgetExceeded, got %v", err)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		qty := d("0")
		if _, err := svc.UpdateItem(ctx, req.ID, itemID, core.ItemUpdateInput{Quantity: &qty}); !core.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("approved request is frozen", func(t *testing.T) {
		if _, err := svc.ApproveRequest(ctx, req.ID); err != nil {
			t.Fatalf("ApproveRequest failed: %v", err)
		}
		qty := d("2")
		if _, err := svc.UpdateItem(ctx, req.ID, itemID, core.ItemUpdateInput{Quantity: &qty}); !errors.Is(err, core.ErrInvalidStateTransition) {
			t.Errorf("expected ErrInvalidStateTransition, got %v", err)
		}
	})
}

func TestRequestService_DeleteRequest(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	seq := core.NewSequenceService(pool)
	plans := core.NewPlanService(pool, seq)
	svc := core.NewPurchaseRequestService(pool, seq)

	plan := createFundedPlan(t, plans, "1000")

	t.Run("owner delete reverses consumption", func(t *testing.T) {
		req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
			PlanID:  &plan.ID,
			Purpose: "To delete",
			Items:   requestItems("1", "250"),
		})
		if err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}
		if err := svc.DeleteRequest(ctx, req.ID, 3, false); !errors.Is(err, core.ErrForbidden) {
			t.Errorf("expected ErrForbidden for non-owner, got %v", err)
		}
		if err := svc.DeleteRequest(ctx, req.ID, 1, false); err != nil {
			t.Fatalf("DeleteRequest failed: %v", err)
		}
		p, _ := plans.GetPlan(ctx, plan.ID)
		if !p.UsedBudget.IsZero() {
			t.Errorf("expected reversal on delete, used = %s", p.UsedBudget.StringFixed(2))
		}
		var items int
		if err := pool.QueryRow(ctx,
			"SELECT count(*) FROM purchase_request_items WHERE request_id = $1", req.ID).Scan(&items); err != nil {
			t.Fatalf("count items: %v", err)
		}
		if items != 0 {
			t.Errorf("expected cascade to remove items, found %d", items)
		}
	})

	t.Run("cancelled request does not reverse twice", func(t *testing.T) {
		req, err := svc.CreateRequest(ctx, 1, core.RequestInput{
			PlanID:  &plan.ID,
			Purpose: "Cancel then delete",
			Items:   requestItems("1", "250"),
		})
		if err != nil {
			t.Fatalf("CreateRequest failed: %v", err)
		}
		if _, err := svc.CancelRequest(ctx, req.ID); err != nil {
			t.Fatalf("CancelRequest failed: %v", err)
		}
		if err := svc.DeleteRequest(ctx, req.ID, 1, false); err != nil {
			t.Fatalf("DeleteRequest failed: %v", err)
		}
		p, _ := plans.GetPlan(ctx, plan.ID)
		if !p.UsedBudget.IsZero() || !p.RemainingBudget.Equal(d("1000")) {
			t.Errorf("double reversal detected: used %s / remaining %s",
				p.UsedBudget.StringFixed(2), p.RemainingBudget.StringFixed(2))
		}
	})
}
