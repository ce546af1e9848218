package core

// PlanStage distinguishes an indicative (working) plan from a final one.
// A final plan is immutable for edit and delete.
type PlanStage string

const (
	PlanStageIndicative PlanStage = "indicative"
	PlanStageFinal      PlanStage = "final"
)

// PlanStatus is the lifecycle status of a procurement plan.
type PlanStatus string

const (
	PlanStatusProcess  PlanStatus = "process"
	PlanStatusUtilized PlanStatus = "utilized"
	PlanStatusClose    PlanStatus = "close"
)

// BudgetStatus is the derived label summarizing a plan's remaining budget.
type BudgetStatus string

const (
	BudgetStatusAvailable     BudgetStatus = "available"
	BudgetStatusPartiallyUsed BudgetStatus = "partially used"
	BudgetStatusExhausted     BudgetStatus = "exhausted"
)

// RequestStatus is the lifecycle status of a purchase request.
type RequestStatus string

const (
	RequestStatusOngoing   RequestStatus = "ongoing"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusCancelled RequestStatus = "cancelled"
	RequestStatusCompleted RequestStatus = "completed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusCancelled || s == RequestStatusCompleted
}

// RISStatus indicates whether a purchase request carries a Requisition and
// Issue Slip number.
type RISStatus string

const (
	RISStatusNone RISStatus = "none"
	RISStatusWith RISStatus = "with"
)

// SequenceKind identifies a reference-number series.
type SequenceKind string

const (
	SequencePlan SequenceKind = "plan"
	SequencePR   SequenceKind = "pr"
	SequenceRIS  SequenceKind = "ris"
)

// ReferenceSequence is one row of the per-scope counter table backing
// reference-number allocation.
type ReferenceSequence struct {
	Kind       SequenceKind
	Scope      string
	LastNumber int64
}
