package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"procurement-tracker/internal/core"
)

// validate is the shared validator instance for all request DTOs.
var validate = validator.New(validator.WithRequiredStructEnabled())

// CreatePlanRequest is the input for creating a PPMP.
type CreatePlanRequest struct {
	Division string             `json:"division" validate:"required"`
	RefCode  string             `json:"ref_code"`
	Stage    string             `json:"stage" validate:"omitempty,oneof=indicative final"`
	Sections []PlanSectionInput `json:"sections" validate:"required,min=1,dive"`
}

// PlanSectionInput is a submitted plan section.
type PlanSectionInput struct {
	Description string          `json:"description" validate:"required"`
	Items       []LineItemInput `json:"items" validate:"required,min=1,dive"`
}

// LineItemInput is a submitted procurement line item. All metadata fields are
// required; partial items are rejected.
type LineItemInput struct {
	ReferenceCode      string          `json:"reference_code" validate:"required"`
	ProjectType        string          `json:"project_type" validate:"required"`
	QuantitySize       string          `json:"quantity_size" validate:"required"`
	ProcurementMode    string          `json:"procurement_mode" validate:"required"`
	PreProcConference  bool            `json:"pre_proc_conference"`
	StartActivity      string          `json:"start_activity" validate:"required,datetime=2006-01-02"`
	EndActivity        string          `json:"end_activity" validate:"required,datetime=2006-01-02"`
	DeliverySchedule   string          `json:"delivery_schedule" validate:"required"`
	SourceOfFund       string          `json:"source_of_fund" validate:"required"`
	EstimatedBudget    decimal.Decimal `json:"estimated_budget"`
	SupportingDocument string          `json:"supporting_document" validate:"required"`
	Remarks            string          `json:"remarks" validate:"required"`
}

// UpdatePlanRequest is the input for updating a PPMP. Nil fields are left
// untouched; a nil Sections slice leaves the child tree alone.
type UpdatePlanRequest struct {
	Division *string            `json:"division" validate:"omitempty,min=1"`
	RefCode  *string            `json:"ref_code"`
	Stage    *string            `json:"stage" validate:"omitempty,oneof=indicative final"`
	Sections []PlanSectionInput `json:"sections" validate:"omitempty,min=1,dive"`
}

// CreateRequestRequest is the input for creating a purchase request.
type CreateRequestRequest struct {
	PlanID        *int               `json:"plan_id"`
	Purpose       string             `json:"purpose" validate:"required"`
	RequestedDate string             `json:"requested_date" validate:"omitempty,datetime=2006-01-02"`
	Items         []RequestItemInput `json:"items" validate:"required,min=1,dive"`
}

// RequestItemInput is a submitted purchase request item.
type RequestItemInput struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit" validate:"required"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// UpdateItemRequest carries the mutable fields of a purchase request item.
type UpdateItemRequest struct {
	Description *string          `json:"description" validate:"omitempty,min=1"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Unit        *string          `json:"unit" validate:"omitempty,min=1"`
	UnitCost    *decimal.Decimal `json:"unit_cost"`
}

// FundRequest is the input for creating or updating a source of fund.
type FundRequest struct {
	Division    string `json:"division" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// checkStruct runs the validator over v and converts failures into the core
// validation error shape so the web layer maps them uniformly.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s: failed %q rule", fe.Namespace(), fe.Tag()))
	}
	return &core.ValidationError{Fields: fields}
}

// Validate checks field-level constraints before the request reaches the core.
func (r CreatePlanRequest) Validate() error    { return checkStruct(r) }
func (r UpdatePlanRequest) Validate() error    { return checkStruct(r) }
func (r CreateRequestRequest) Validate() error { return checkStruct(r) }
func (r UpdateItemRequest) Validate() error    { return checkStruct(r) }
func (r FundRequest) Validate() error          { return checkStruct(r) }
