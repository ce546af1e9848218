package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a Project Procurement Management Plan (PPMP): an annual procurement
// budget plan owning a tree of sections and line items.
type Plan struct {
	ID         int
	PlanNumber string  // YYYY-NNN, unique per year
	RefCode    *string // optional secondary reference
	UserID     int
	Division   string
	Stage      PlanStage
	Status     PlanStatus
	ApprovedAt *time.Time

	// Total is the sum of estimated budgets over all line items.
	// AllocatedBudget tracks the funds the plan may spend; UsedBudget and
	// RemainingBudget form the authoritative running balance consumed by
	// linked purchase requests. remaining == allocated - used always.
	Total           decimal.Decimal
	AllocatedBudget decimal.Decimal
	UsedBudget      decimal.Decimal
	RemainingBudget decimal.Decimal
	BudgetStatus    BudgetStatus

	CreatedAt time.Time
	UpdatedAt time.Time
	Sections  []PlanSection
}

// PlanSection groups line items under one plan with a shared description.
type PlanSection struct {
	ID          int
	PlanID      int
	SectionCode string // derived: plan number + ordinal
	Description string
	Items       []LineItem
}

// LineItem is one procurement need within a section.
type LineItem struct {
	ID                 int
	SectionID          int
	ReferenceCode      string
	ProjectType        string
	QuantitySize       string
	ProcurementMode    string
	PreProcConference  bool
	StartActivity      string // YYYY-MM-DD
	EndActivity        string // YYYY-MM-DD
	DeliverySchedule   string
	SourceOfFund       string
	EstimatedBudget    decimal.Decimal
	SupportingDocument string
	Remarks            string
}

// SectionInput is a submitted section with its items.
type SectionInput struct {
	Description string
	Items       []LineItemInput
}

// LineItemInput holds the fields required to create a line item. Every field
// is required; partial items are rejected.
type LineItemInput struct {
	ReferenceCode      string
	ProjectType        string
	QuantitySize       string
	ProcurementMode    string
	PreProcConference  bool
	StartActivity      string // YYYY-MM-DD
	EndActivity        string // YYYY-MM-DD
	DeliverySchedule   string
	SourceOfFund       string
	EstimatedBudget    decimal.Decimal
	SupportingDocument string
	Remarks            string
}

// PlanInput is the input for creating a plan.
type PlanInput struct {
	Division string
	RefCode  string
	Stage    PlanStage
	Sections []SectionInput
}

// PlanUpdateInput is the input for updating a plan. Nil pointer fields are
// left untouched. A nil Sections slice means "don't touch the children": the
// total is recomputed from the persisted tree. A non-nil Sections slice is a
// full destructive replacement of all sections and items.
type PlanUpdateInput struct {
	Division *string
	RefCode  *string
	Stage    *PlanStage
	Sections []SectionInput
}

// PlanService provides the PPMP lifecycle.
type PlanService interface {
	// CreatePlan validates the submitted tree, allocates the next plan number
	// for the current year, computes the plan total, and persists plan,
	// sections, and items in one transaction. The returned warning is
	// non-empty when any item's activity dates are out of order.
	CreatePlan(ctx context.Context, userID int, input PlanInput) (*Plan, string, error)

	// UpdatePlan applies a full-replace update. Plans whose stage is final
	// are immutable and return ErrInvalidStateTransition.
	UpdatePlan(ctx context.Context, planID int, input PlanUpdateInput) (*Plan, string, error)

	// ApprovePlan records the approval date and fixes the stage to final.
	ApprovePlan(ctx context.Context, planID int) (*Plan, error)

	// ClosePlan transitions a plan to the close status. Closed plans no
	// longer accept budget consumption or reversal.
	ClosePlan(ctx context.Context, planID int) (*Plan, error)

	// DeletePlan removes a plan and cascades to its sections and items.
	// Only the owning user (or an admin) may delete. Final-stage plans and
	// plans referenced by any purchase request are rejected.
	DeletePlan(ctx context.Context, planID, actorID int, actorIsAdmin bool) error

	// GetPlan returns a plan with its full tree, ordered by section ordinal.
	GetPlan(ctx context.Context, planID int) (*Plan, error)

	// ListPlans returns plans filtered by division and/or year. Zero values
	// mean "no filter". Trees are not loaded; totals and budget fields are.
	ListPlans(ctx context.Context, division string, year int) ([]Plan, error)
}
