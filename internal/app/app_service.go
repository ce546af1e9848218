package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"procurement-tracker/internal/core"
)

// ErrInvalidCredentials is returned by AuthenticateUser for an unknown
// username or a password mismatch. Callers must not distinguish the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

type appService struct {
	users     core.UserService
	plans     core.PlanService
	requests  core.PurchaseRequestService
	funds     core.FundService
	reporting core.ReportingService
}

// NewAppService wires the domain services behind the ApplicationService facade.
func NewAppService(
	users core.UserService,
	plans core.PlanService,
	requests core.PurchaseRequestService,
	funds core.FundService,
	reporting core.ReportingService,
) ApplicationService {
	return &appService{
		users:     users,
		plans:     plans,
		requests:  requests,
		funds:     funds,
		reporting: reporting,
	}
}

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &UserSession{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Division: user.Division,
		Role:     user.Role,
	}, nil
}

func (s *appService) CreatePlan(ctx context.Context, userID int, req CreatePlanRequest) (*PlanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	input := core.PlanInput{
		Division: req.Division,
		RefCode:  req.RefCode,
		Stage:    core.PlanStage(req.Stage),
		Sections: toSectionInputs(req.Sections),
	}
	if input.Stage == "" {
		input.Stage = core.PlanStageIndicative
	}
	plan, warning, err := s.plans.CreatePlan(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan, Warning: warning}, nil
}

func (s *appService) UpdatePlan(ctx context.Context, planID int, req UpdatePlanRequest) (*PlanResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	input := core.PlanUpdateInput{
		Division: req.Division,
		RefCode:  req.RefCode,
	}
	if req.Stage != nil {
		stage := core.PlanStage(*req.Stage)
		input.Stage = &stage
	}
	if req.Sections != nil {
		input.Sections = toSectionInputs(req.Sections)
	}
	plan, warning, err := s.plans.UpdatePlan(ctx, planID, input)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan, Warning: warning}, nil
}

func (s *appService) ApprovePlan(ctx context.Context, planID int) (*PlanResult, error) {
	plan, err := s.plans.ApprovePlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan}, nil
}

func (s *appService) ClosePlan(ctx context.Context, planID int) (*PlanResult, error) {
	plan, err := s.plans.ClosePlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan}, nil
}

func (s *appService) DeletePlan(ctx context.Context, planID, actorID int, actorIsAdmin bool) error {
	return s.plans.DeletePlan(ctx, planID, actorID, actorIsAdmin)
}

func (s *appService) GetPlan(ctx context.Context, planID int) (*PlanResult, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return &PlanResult{Plan: plan}, nil
}

func (s *appService) ListPlans(ctx context.Context, division string, year int) (*PlanListResult, error) {
	plans, err := s.plans.ListPlans(ctx, division, year)
	if err != nil {
		return nil, err
	}
	return &PlanListResult{Plans: plans}, nil
}

func (s *appService) CreateRequest(ctx context.Context, userID int, req CreateRequestRequest) (*RequestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	input := core.RequestInput{
		PlanID:        req.PlanID,
		Purpose:       req.Purpose,
		RequestedDate: req.RequestedDate,
		Items:         toRequestItemInputs(req.Items),
	}
	request, err := s.requests.CreateRequest(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: request}, nil
}

func (s *appService) ApproveRequest(ctx context.Context, requestID int) (*RequestResult, error) {
	request, err := s.requests.ApproveRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: request}, nil
}

func (s *appService) CompleteRequest(ctx context.Context, requestID int) (*RequestResult, error) {
	request, err := s.requests.CompleteRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: request}, nil
}

func (s *appService) CancelRequest(ctx context.Context, requestID int) (*RequestResult, error) {
	request, err := s.requests.CancelRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: request}, nil
}

func (s *appService) SetRIS(ctx context.Context, requestID int, risStatus string) (*RequestResult, error) {
	status := core.RISStatus(risStatus)
	if status != core.RISStatusNone && status != core.RISStatusWith {
		return nil, &core.ValidationError{Fields: []string{
			fmt.Sprintf("ris_status: must be %q or %q", core.RISStatusNone, core.RISStatusWith),
		}}
	}
	request, err := s.requests.SetRIS(ctx, requestID, status)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: request}, nil
}

func (s *appService) UpdateRequestItem(ctx context.Context, requestID, itemID int, req UpdateItemRequest) (*RequestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	input := core.ItemUpdateInput{
		Description: req.Description,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		UnitCost:    req.UnitCost,
	}
	request, err := s.requests.UpdateItem(ctx, requestID, itemID, input)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: request}, nil
}

func (s *appService) DeleteRequest(ctx context.Context, requestID, actorID int, actorIsAdmin bool) error {
	return s.requests.DeleteRequest(ctx, requestID, actorID, actorIsAdmin)
}

func (s *appService) GetRequest(ctx context.Context, requestID int) (*RequestResult, error) {
	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &RequestResult{Request: request}, nil
}

func (s *appService) ListRequests(ctx context.Context, userID int, status string) (*RequestListResult, error) {
	requests, err := s.requests.ListRequests(ctx, userID, core.RequestStatus(status))
	if err != nil {
		return nil, err
	}
	return &RequestListResult{Requests: requests}, nil
}

func (s *appService) CreateFund(ctx context.Context, req FundRequest) (*FundResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	fund, err := s.funds.CreateFund(ctx, toFundInput(req))
	if err != nil {
		return nil, err
	}
	return &FundResult{Fund: fund}, nil
}

func (s *appService) UpdateFund(ctx context.Context, fundID int, req FundRequest) (*FundResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	fund, err := s.funds.UpdateFund(ctx, fundID, toFundInput(req))
	if err != nil {
		return nil, err
	}
	return &FundResult{Fund: fund}, nil
}

func (s *appService) DeleteFund(ctx context.Context, fundID int) error {
	return s.funds.DeleteFund(ctx, fundID)
}

func (s *appService) GetFund(ctx context.Context, fundID int) (*FundResult, error) {
	fund, err := s.funds.GetFund(ctx, fundID)
	if err != nil {
		return nil, err
	}
	return &FundResult{Fund: fund}, nil
}

func (s *appService) ListFunds(ctx context.Context, division string) (*FundListResult, error) {
	funds, err := s.funds.ListFunds(ctx, division)
	if err != nil {
		return nil, err
	}
	return &FundListResult{Funds: funds}, nil
}

func (s *appService) GetUtilization(ctx context.Context, division string, year int) (*UtilizationResult, error) {
	report, err := s.reporting.GetUtilization(ctx, division, year)
	if err != nil {
		return nil, err
	}
	return &UtilizationResult{Plans: report}, nil
}

func toSectionInputs(sections []PlanSectionInput) []core.SectionInput {
	out := make([]core.SectionInput, len(sections))
	for i, sec := range sections {
		items := make([]core.LineItemInput, len(sec.Items))
		for j, item := range sec.Items {
			items[j] = core.LineItemInput{
				ReferenceCode:      item.ReferenceCode,
				ProjectType:        item.ProjectType,
				QuantitySize:       item.QuantitySize,
				ProcurementMode:    item.ProcurementMode,
				PreProcConference:  item.PreProcConference,
				StartActivity:      item.StartActivity,
				EndActivity:        item.EndActivity,
				DeliverySchedule:   item.DeliverySchedule,
				SourceOfFund:       item.SourceOfFund,
				EstimatedBudget:    item.EstimatedBudget,
				SupportingDocument: item.SupportingDocument,
				Remarks:            item.Remarks,
			}
		}
		out[i] = core.SectionInput{Description: sec.Description, Items: items}
	}
	return out
}

func toRequestItemInputs(items []RequestItemInput) []core.RequestItemInput {
	out := make([]core.RequestItemInput, len(items))
	for i, item := range items {
		out[i] = core.RequestItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitCost:    item.UnitCost,
		}
	}
	return out
}

func toFundInput(req FundRequest) core.FundInput {
	return core.FundInput{
		Division:    req.Division,
		Name:        req.Name,
		Description: req.Description,
	}
}
