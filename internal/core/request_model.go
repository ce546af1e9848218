package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRequest is a request to purchase against a plan's budget.
type PurchaseRequest struct {
	ID            int
	RequestNumber string // PR-YYYYMM-NNNN, unique per user/year/month
	PlanID        *int
	PlanNumber    *string
	UserID        int
	Purpose       string
	Status        RequestStatus
	RISStatus     RISStatus
	RISNumber     *string
	Total         decimal.Decimal
	RequestedDate string // YYYY-MM-DD
	ApprovedAt    *time.Time
	CreatedAt     time.Time
	Items         []PurchaseRequestItem
}

// PurchaseRequestItem is one line of a purchase request. StockNumber is
// assigned sequentially from 1 within the request; TotalCost is the stored
// product of quantity and unit cost.
type PurchaseRequestItem struct {
	ID          int
	RequestID   int
	StockNumber int
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
}

// RequestItemInput holds the fields required to create a purchase request item.
type RequestItemInput struct {
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitCost    decimal.Decimal
}

// RequestInput is the input for creating a purchase request. PlanID of nil
// creates an unlinked request that consumes no plan budget.
type RequestInput struct {
	PlanID        *int
	Purpose       string
	RequestedDate string // YYYY-MM-DD; empty means today
	Items         []RequestItemInput
}

// ItemUpdateInput carries the mutable fields of a purchase request item.
// Nil fields are left untouched; any change recomputes the stored total cost.
type ItemUpdateInput struct {
	Description *string
	Quantity    *decimal.Decimal
	Unit        *string
	UnitCost    *decimal.Decimal
}

// PurchaseRequestService provides the purchase request lifecycle, including
// budget consumption against a linked plan.
type PurchaseRequestService interface {
	// CreateRequest allocates the next request number for the user's current
	// month, computes item and request totals, and persists the request with
	// its items in one transaction. When the request is linked to a plan, the
	// plan row is locked, the remaining budget is checked (ErrBudgetExceeded
	// on shortfall, nothing written), and the running balance is consumed.
	CreateRequest(ctx context.Context, userID int, input RequestInput) (*PurchaseRequest, error)

	// ApproveRequest transitions an ongoing request to approved and records
	// the approval date. Terminal requests are rejected.
	ApproveRequest(ctx context.Context, requestID int) (*PurchaseRequest, error)

	// CompleteRequest transitions an approved request to completed.
	CompleteRequest(ctx context.Context, requestID int) (*PurchaseRequest, error)

	// CancelRequest transitions any non-terminal request to cancelled and
	// reverses its budget consumption unless the linked plan is closed.
	CancelRequest(ctx context.Context, requestID int) (*PurchaseRequest, error)

	// SetRIS attaches or detaches a Requisition and Issue Slip. Flagging
	// "with" allocates a unique RIS number in the same transaction; "none"
	// clears it.
	SetRIS(ctx context.Context, requestID int, status RISStatus) (*PurchaseRequest, error)

	// UpdateItem edits one item and recomputes its stored total cost and the
	// request total. The linked plan's balance is adjusted by the delta,
	// subject to the same remaining-budget check as creation.
	UpdateItem(ctx context.Context, requestID, itemID int, input ItemUpdateInput) (*PurchaseRequest, error)

	// DeleteRequest removes a request and cascades to its items, reversing
	// budget consumption unless the linked plan is closed. Only the owning
	// user (or an admin) may delete.
	DeleteRequest(ctx context.Context, requestID, actorID int, actorIsAdmin bool) error

	// GetRequest returns a request with its items in stock-number order.
	GetRequest(ctx context.Context, requestID int) (*PurchaseRequest, error)

	// ListRequests returns requests filtered by user and/or status. Zero
	// values mean "no filter".
	ListRequests(ctx context.Context, userID int, status RequestStatus) ([]PurchaseRequest, error)
}
