package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type purchaseRequestService struct {
	pool *pgxpool.Pool
	seq  SequenceService
}

// NewPurchaseRequestService constructs a PurchaseRequestService backed by PostgreSQL.
func NewPurchaseRequestService(pool *pgxpool.Pool, seq SequenceService) PurchaseRequestService {
	return &purchaseRequestService{pool: pool, seq: seq}
}

// CreateRequest allocates a request number, computes totals, consumes plan
// budget when linked, and persists the request tree in one transaction.
func (s *purchaseRequestService) CreateRequest(ctx context.Context, userID int, input RequestInput) (*PurchaseRequest, error) {
	if err := validateRequestInput(input); err != nil {
		return nil, err
	}

	requestedDate := input.RequestedDate
	if requestedDate == "" {
		requestedDate = time.Now().Format("2006-01-02")
	}

	var requestID int
	var err error
	for attempt := 0; ; attempt++ {
		requestID, err = s.insertRequestTree(ctx, userID, requestedDate, input)
		if err == nil {
			break
		}
		if isUniqueViolation(err) && attempt < maxSequenceRetries {
			continue
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("request number allocation: %w", ErrSequenceConflict)
		}
		return nil, err
	}

	return s.GetRequest(ctx, requestID)
}

// insertRequestTree performs one transactional attempt at inserting the
// request with a freshly allocated number, its items, and the plan budget
// consumption.
func (s *purchaseRequestService) insertRequestTree(ctx context.Context, userID int, requestedDate string, input RequestInput) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	number, err := s.seq.NextRequestNumber(ctx, tx, userID, now.Year(), int(now.Month()))
	if err != nil {
		return 0, err
	}

	total := decimal.Zero
	for _, item := range input.Items {
		total = total.Add(ItemTotal(item.Quantity, item.UnitCost))
	}

	// Budget check and consumption happen under the plan row lock, before the
	// request is written, so an overdraft attempt leaves nothing behind.
	if input.PlanID != nil {
		if err := consumeBudget(ctx, tx, *input.PlanID, total); err != nil {
			return 0, err
		}
	}

	var requestID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_requests
		            (request_number, plan_id, user_id, purpose, status, ris_status, total, requested_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		number, input.PlanID, userID, input.Purpose, string(RequestStatusOngoing),
		string(RISStatusNone), total, requestedDate,
	).Scan(&requestID); err != nil {
		return 0, fmt.Errorf("insert purchase request %s: %w", number, err)
	}

	for i, item := range input.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_request_items
			            (request_id, stock_number, description, quantity, unit, unit_cost, total_cost)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			requestID, i+1, item.Description, item.Quantity, item.Unit, item.UnitCost,
			ItemTotal(item.Quantity, item.UnitCost),
		); err != nil {
			return 0, fmt.Errorf("insert request item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit purchase request: %w", err)
	}
	return requestID, nil
}

// ApproveRequest transitions an ongoing request to approved. Approving an
// already-approved request is a no-op.
func (s *purchaseRequestService) ApproveRequest(ctx context.Context, requestID int) (*PurchaseRequest, error) {
	err := s.transition(ctx, requestID, func(status RequestStatus) error {
		switch status {
		case RequestStatusApproved:
			return nil // idempotent
		case RequestStatusOngoing:
			return nil
		default:
			return fmt.Errorf("request cannot be approved from %s: %w", status, ErrInvalidStateTransition)
		}
	}, func(ctx context.Context, tx pgx.Tx, status RequestStatus) error {
		if status == RequestStatusApproved {
			return nil
		}
		_, err := tx.Exec(ctx, `
			UPDATE purchase_requests SET status = $1, approved_at = NOW() WHERE id = $2`,
			string(RequestStatusApproved), requestID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, requestID)
}

// CompleteRequest transitions an approved request to completed.
func (s *purchaseRequestService) CompleteRequest(ctx context.Context, requestID int) (*PurchaseRequest, error) {
	err := s.transition(ctx, requestID, func(status RequestStatus) error {
		if status != RequestStatusApproved {
			return fmt.Errorf("request cannot be completed from %s: %w", status, ErrInvalidStateTransition)
		}
		return nil
	}, func(ctx context.Context, tx pgx.Tx, _ RequestStatus) error {
		_, err := tx.Exec(ctx, `
			UPDATE purchase_requests SET status = $1 WHERE id = $2`,
			string(RequestStatusCompleted), requestID,
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetRequest(ctx, requestID)
}

// CancelRequest transitions any non-terminal request to cancelled and
// reverses its budget consumption.
func (s *purchaseRequestService) CancelRequest(ctx context.Context, requestID int) (*PurchaseRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status RequestStatus
	var planID *int
	var total decimal.Decimal
	var number string
	err = tx.QueryRow(ctx, `
		SELECT request_number, status, plan_id, total
		FROM purchase_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	).Scan(&number, &status, &planID, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase request %d: %w", requestID, err)
	}

	if status.Terminal() {
		return nil, fmt.Errorf("request %s cannot be cancelled from %s: %w", number, status, ErrInvalidStateTransition)
	}

	if planID != nil {
		skipped, err := reverseBudget(ctx, tx, *planID, total)
		if err != nil {
			return nil, err
		}
		if skipped {
			log.Printf("request %s cancelled without reversal: plan %d is closed", number, *planID)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_requests SET status = $1 WHERE id = $2`,
		string(RequestStatusCancelled), requestID,
	); err != nil {
		return nil, fmt.Errorf("cancel request %d: %w", requestID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit request cancellation: %w", err)
	}
	return s.GetRequest(ctx, requestID)
}

// SetRIS attaches or detaches a Requisition and Issue Slip number.
func (s *purchaseRequestService) SetRIS(ctx context.Context, requestID int, status RISStatus) (*PurchaseRequest, error) {
	if status != RISStatusNone && status != RISStatusWith {
		return nil, &ValidationError{Fields: []string{fmt.Sprintf("ris_status: must be %q or %q", RISStatusNone, RISStatusWith)}}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current RISStatus
	var risNumber *string
	err = tx.QueryRow(ctx, `
		SELECT ris_status, ris_number FROM purchase_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	).Scan(&current, &risNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase request %d: %w", requestID, err)
	}

	switch {
	case status == current:
		// no-op
	case status == RISStatusWith:
		number, err := s.seq.NextRISNumber(ctx, tx, time.Now().Year())
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, `
			UPDATE purchase_requests SET ris_status = $1, ris_number = $2 WHERE id = $3`,
			string(RISStatusWith), number, requestID,
		); err != nil {
			return nil, fmt.Errorf("attach RIS to request %d: %w", requestID, err)
		}
	default:
		if _, err := tx.Exec(ctx, `
			UPDATE purchase_requests SET ris_status = $1, ris_number = NULL WHERE id = $2`,
			string(RISStatusNone), requestID,
		); err != nil {
			return nil, fmt.Errorf("detach RIS from request %d: %w", requestID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit RIS change: %w", err)
	}
	return s.GetRequest(ctx, requestID)
}

// UpdateItem edits one item, recomputes the stored total cost and the request
// total, and adjusts the linked plan's balance by the difference.
func (s *purchaseRequestService) UpdateItem(ctx context.Context, requestID, itemID int, input ItemUpdateInput) (*PurchaseRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status RequestStatus
	var planID *int
	err = tx.QueryRow(ctx, `
		SELECT status, plan_id FROM purchase_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	).Scan(&status, &planID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch purchase request %d: %w", requestID, err)
	}

	// Items are editable only while the request is still in flight.
	if status != RequestStatusOngoing {
		return nil, fmt.Errorf("items of a %s request cannot be edited: %w", status, ErrInvalidStateTransition)
	}

	item := PurchaseRequestItem{}
	err = tx.QueryRow(ctx, `
		SELECT id, request_id, stock_number, description, quantity, unit, unit_cost, total_cost
		FROM purchase_request_items WHERE id = $1 AND request_id = $2`,
		itemID, requestID,
	).Scan(&item.ID, &item.RequestID, &item.StockNumber, &item.Description,
		&item.Quantity, &item.Unit, &item.UnitCost, &item.TotalCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("item %d of request %d: %w", itemID, requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch request item %d: %w", itemID, err)
	}

	oldTotal := item.TotalCost
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.UnitCost != nil {
		item.UnitCost = *input.UnitCost
	}

	var fields []string
	if strings.TrimSpace(item.Description) == "" {
		fields = append(fields, "description: required")
	}
	if strings.TrimSpace(item.Unit) == "" {
		fields = append(fields, "unit: required")
	}
	if !item.Quantity.IsPositive() {
		fields = append(fields, "quantity: must be positive")
	}
	if item.UnitCost.IsNegative() {
		fields = append(fields, "unit_cost: must not be negative")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	item.TotalCost = ItemTotal(item.Quantity, item.UnitCost)
	delta := item.TotalCost.Sub(oldTotal)

	if planID != nil && !delta.IsZero() {
		if delta.IsPositive() {
			if err := consumeBudget(ctx, tx, *planID, delta); err != nil {
				return nil, err
			}
		} else {
			skipped, err := reverseBudget(ctx, tx, *planID, delta.Neg())
			if err != nil {
				return nil, err
			}
			if skipped {
				return nil, fmt.Errorf("plan %d is closed; its requests cannot be resized: %w", *planID, ErrInvalidStateTransition)
			}
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_request_items
		SET description = $1, quantity = $2, unit = $3, unit_cost = $4, total_cost = $5
		WHERE id = $6`,
		item.Description, item.Quantity, item.Unit, item.UnitCost, item.TotalCost, itemID,
	); err != nil {
		return nil, fmt.Errorf("update request item %d: %w", itemID, err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_requests
		SET total = (SELECT COALESCE(SUM(total_cost), 0) FROM purchase_request_items WHERE request_id = $1)
		WHERE id = $1`,
		requestID,
	); err != nil {
		return nil, fmt.Errorf("recompute request total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit item update: %w", err)
	}
	return s.GetRequest(ctx, requestID)
}

// DeleteRequest removes a request and its items, reversing budget consumption
// for requests that still hold it (cancelled requests already gave it back).
func (s *purchaseRequestService) DeleteRequest(ctx context.Context, requestID, actorID int, actorIsAdmin bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int
	var status RequestStatus
	var planID *int
	var total decimal.Decimal
	var number string
	err = tx.QueryRow(ctx, `
		SELECT request_number, user_id, status, plan_id, total
		FROM purchase_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	).Scan(&number, &ownerID, &status, &planID, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("purchase request %d: %w", requestID, ErrNotFound)
		}
		return fmt.Errorf("fetch purchase request %d: %w", requestID, err)
	}

	if !actorIsAdmin && ownerID != actorID {
		return fmt.Errorf("request %s is not owned by user %d: %w", number, actorID, ErrForbidden)
	}

	if planID != nil && status != RequestStatusCancelled {
		skipped, err := reverseBudget(ctx, tx, *planID, total)
		if err != nil {
			return err
		}
		if skipped {
			log.Printf("request %s deleted without reversal: plan %d is closed", number, *planID)
		}
	}

	// Items go with the request via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, "DELETE FROM purchase_requests WHERE id = $1", requestID); err != nil {
		return fmt.Errorf("delete request %d: %w", requestID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit request delete: %w", err)
	}
	return nil
}

// GetRequest returns a purchase request with its items in stock-number order.
func (s *purchaseRequestService) GetRequest(ctx context.Context, requestID int) (*PurchaseRequest, error) {
	pr := &PurchaseRequest{}
	var status, risStatus string
	err := s.pool.QueryRow(ctx, `
		SELECT pr.id, pr.request_number, pr.plan_id, p.plan_number, pr.user_id, pr.purpose,
		       pr.status, pr.ris_status, pr.ris_number, pr.total, pr.requested_date::text,
		       pr.approved_at, pr.created_at
		FROM purchase_requests pr
		LEFT JOIN plans p ON p.id = pr.plan_id
		WHERE pr.id = $1`,
		requestID,
	).Scan(
		&pr.ID, &pr.RequestNumber, &pr.PlanID, &pr.PlanNumber, &pr.UserID, &pr.Purpose,
		&status, &risStatus, &pr.RISNumber, &pr.Total, &pr.RequestedDate,
		&pr.ApprovedAt, &pr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("purchase request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("get purchase request %d: %w", requestID, err)
	}
	pr.Status = RequestStatus(status)
	pr.RISStatus = RISStatus(risStatus)

	rows, err := s.pool.Query(ctx, `
		SELECT id, request_id, stock_number, description, quantity, unit, unit_cost, total_cost
		FROM purchase_request_items
		WHERE request_id = $1
		ORDER BY stock_number`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch items for request %d: %w", requestID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it PurchaseRequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.StockNumber, &it.Description,
			&it.Quantity, &it.Unit, &it.UnitCost, &it.TotalCost); err != nil {
			return nil, fmt.Errorf("scan request item: %w", err)
		}
		pr.Items = append(pr.Items, it)
	}
	return pr, rows.Err()
}

// ListRequests returns request headers filtered by user and/or status.
func (s *purchaseRequestService) ListRequests(ctx context.Context, userID int, status RequestStatus) ([]PurchaseRequest, error) {
	query := `
		SELECT pr.id, pr.request_number, pr.plan_id, p.plan_number, pr.user_id, pr.purpose,
		       pr.status, pr.ris_status, pr.ris_number, pr.total, pr.requested_date::text,
		       pr.approved_at, pr.created_at
		FROM purchase_requests pr
		LEFT JOIN plans p ON p.id = pr.plan_id`
	var conds []string
	var args []any
	if userID != 0 {
		args = append(args, userID)
		conds = append(conds, fmt.Sprintf("pr.user_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, string(status))
		conds = append(conds, fmt.Sprintf("pr.status = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY pr.request_number"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase requests: %w", err)
	}
	defer rows.Close()

	var requests []PurchaseRequest
	for rows.Next() {
		var pr PurchaseRequest
		var st, ris string
		if err := rows.Scan(
			&pr.ID, &pr.RequestNumber, &pr.PlanID, &pr.PlanNumber, &pr.UserID, &pr.Purpose,
			&st, &ris, &pr.RISNumber, &pr.Total, &pr.RequestedDate,
			&pr.ApprovedAt, &pr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase request: %w", err)
		}
		pr.Status = RequestStatus(st)
		pr.RISStatus = RISStatus(ris)
		requests = append(requests, pr)
	}
	return requests, rows.Err()
}

// transition runs check against the locked request's current status and, if it
// passes, applies the mutation inside the same transaction.
func (s *purchaseRequestService) transition(ctx context.Context, requestID int,
	check func(RequestStatus) error,
	apply func(context.Context, pgx.Tx, RequestStatus) error) error {

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status RequestStatus
	err = tx.QueryRow(ctx,
		"SELECT status FROM purchase_requests WHERE id = $1 FOR UPDATE", requestID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("purchase request %d: %w", requestID, ErrNotFound)
		}
		return fmt.Errorf("fetch purchase request %d: %w", requestID, err)
	}

	if err := check(status); err != nil {
		return err
	}
	if err := apply(ctx, tx, status); err != nil {
		return fmt.Errorf("apply transition on request %d: %w", requestID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

// consumeBudget locks the plan row, verifies the remaining balance covers
// amount, and moves it from remaining to used. The first consumption flips a
// plan from process to utilized.
func consumeBudget(ctx context.Context, tx pgx.Tx, planID int, amount decimal.Decimal) error {
	var status PlanStatus
	var used, remaining decimal.Decimal
	err := tx.QueryRow(ctx, `
		SELECT status, used_budget, remaining_budget
		FROM plans WHERE id = $1 FOR UPDATE`,
		planID,
	).Scan(&status, &used, &remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		return fmt.Errorf("lock plan %d: %w", planID, err)
	}

	if status == PlanStatusClose {
		return fmt.Errorf("plan %d is closed: %w", planID, ErrInvalidStateTransition)
	}
	if amount.GreaterThan(remaining) {
		return fmt.Errorf("requested %s exceeds remaining budget %s of plan %d: %w",
			amount.StringFixed(2), remaining.StringFixed(2), planID, ErrBudgetExceeded)
	}

	used = used.Add(amount)
	remaining = remaining.Sub(amount)
	newStatus := status
	if newStatus == PlanStatusProcess && used.IsPositive() {
		newStatus = PlanStatusUtilized
	}

	if _, err := tx.Exec(ctx, `
		UPDATE plans
		SET used_budget = $1, remaining_budget = $2, budget_status = $3, status = $4, updated_at = NOW()
		WHERE id = $5`,
		used, remaining, string(DeriveBudgetStatus(used, remaining)), string(newStatus), planID,
	); err != nil {
		return fmt.Errorf("consume budget on plan %d: %w", planID, err)
	}
	return nil
}

// reverseBudget gives amount back to the plan's remaining balance. Closed
// plans are frozen: the reversal is skipped and reported to the caller.
func reverseBudget(ctx context.Context, tx pgx.Tx, planID int, amount decimal.Decimal) (skipped bool, err error) {
	var status PlanStatus
	var used, remaining decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT status, used_budget, remaining_budget
		FROM plans WHERE id = $1 FOR UPDATE`,
		planID,
	).Scan(&status, &used, &remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		return false, fmt.Errorf("lock plan %d: %w", planID, err)
	}

	if status == PlanStatusClose {
		return true, nil
	}

	used = used.Sub(amount)
	remaining = remaining.Add(amount)
	newStatus := status
	if newStatus == PlanStatusUtilized && !used.IsPositive() {
		newStatus = PlanStatusProcess
	}

	if _, err := tx.Exec(ctx, `
		UPDATE plans
		SET used_budget = $1, remaining_budget = $2, budget_status = $3, status = $4, updated_at = NOW()
		WHERE id = $5`,
		used, remaining, string(DeriveBudgetStatus(used, remaining)), string(newStatus), planID,
	); err != nil {
		return false, fmt.Errorf("reverse budget on plan %d: %w", planID, err)
	}
	return false, nil
}

// validateRequestInput enforces the structural invariants on a submitted
// purchase request.
func validateRequestInput(input RequestInput) error {
	var fields []string

	if strings.TrimSpace(input.Purpose) == "" {
		fields = append(fields, "purpose: required")
	}
	if len(input.Items) == 0 {
		fields = append(fields, "items: at least one item is required")
	}
	for i, item := range input.Items {
		prefix := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Description) == "" {
			fields = append(fields, prefix+".description: required")
		}
		if strings.TrimSpace(item.Unit) == "" {
			fields = append(fields, prefix+".unit: required")
		}
		if !item.Quantity.IsPositive() {
			fields = append(fields, prefix+".quantity: must be positive")
		}
		if item.UnitCost.IsNegative() {
			fields = append(fields, prefix+".unit_cost: must not be negative")
		}
	}
	if input.RequestedDate != "" {
		if _, err := time.Parse("2006-01-02", input.RequestedDate); err != nil {
			fields = append(fields, "requested_date: must be YYYY-MM-DD")
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
