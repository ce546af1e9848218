package app

import "context"

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic; implementations contain no
// display logic of any kind.
type ApplicationService interface {
	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// CreatePlan creates a PPMP with its sections and items, allocating the
	// next plan number for the current year.
	CreatePlan(ctx context.Context, userID int, req CreatePlanRequest) (*PlanResult, error)

	// UpdatePlan applies a full-replace update to a plan.
	UpdatePlan(ctx context.Context, planID int, req UpdatePlanRequest) (*PlanResult, error)

	// ApprovePlan records the approval date and fixes the stage to final.
	ApprovePlan(ctx context.Context, planID int) (*PlanResult, error)

	// ClosePlan freezes a plan against further budget movement.
	ClosePlan(ctx context.Context, planID int) (*PlanResult, error)

	// DeletePlan removes a plan and its tree, subject to ownership and
	// reference checks.
	DeletePlan(ctx context.Context, planID, actorID int, actorIsAdmin bool) error

	// GetPlan returns a plan with its full tree.
	GetPlan(ctx context.Context, planID int) (*PlanResult, error)

	// ListPlans returns plans filtered by division and/or year.
	ListPlans(ctx context.Context, division string, year int) (*PlanListResult, error)

	// CreateRequest creates a purchase request, consuming the linked plan's
	// budget when one is named.
	CreateRequest(ctx context.Context, userID int, req CreateRequestRequest) (*RequestResult, error)

	// ApproveRequest transitions an ongoing request to approved.
	ApproveRequest(ctx context.Context, requestID int) (*RequestResult, error)

	// CompleteRequest transitions an approved request to completed.
	CompleteRequest(ctx context.Context, requestID int) (*RequestResult, error)

	// CancelRequest cancels a non-terminal request, reversing consumption.
	CancelRequest(ctx context.Context, requestID int) (*RequestResult, error)

	// SetRIS attaches ("with") or detaches ("none") a RIS number.
	SetRIS(ctx context.Context, requestID int, risStatus string) (*RequestResult, error)

	// UpdateRequestItem edits one item and rebalances totals.
	UpdateRequestItem(ctx context.Context, requestID, itemID int, req UpdateItemRequest) (*RequestResult, error)

	// DeleteRequest removes a request, reversing consumption where due.
	DeleteRequest(ctx context.Context, requestID, actorID int, actorIsAdmin bool) error

	// GetRequest returns a request with its items.
	GetRequest(ctx context.Context, requestID int) (*RequestResult, error)

	// ListRequests returns requests filtered by user and/or status.
	ListRequests(ctx context.Context, userID int, status string) (*RequestListResult, error)

	// CreateFund adds a source-of-fund lookup entry.
	CreateFund(ctx context.Context, req FundRequest) (*FundResult, error)

	// UpdateFund replaces a source-of-fund entry.
	UpdateFund(ctx context.Context, fundID int, req FundRequest) (*FundResult, error)

	// DeleteFund removes a source-of-fund entry.
	DeleteFund(ctx context.Context, fundID int) error

	// GetFund returns one source-of-fund entry by ID.
	GetFund(ctx context.Context, fundID int) (*FundResult, error)

	// ListFunds returns sources of fund, optionally filtered by division.
	ListFunds(ctx context.Context, division string) (*FundListResult, error)

	// GetUtilization returns the per-plan budget utilization report.
	GetUtilization(ctx context.Context, division string, year int) (*UtilizationResult, error)
}
