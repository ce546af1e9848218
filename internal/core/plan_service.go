package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// maxSequenceRetries bounds how often a create is retried after a unique
// violation on the generated reference number before giving up with
// ErrSequenceConflict.
const maxSequenceRetries = 3

type planService struct {
	pool *pgxpool.Pool
	seq  SequenceService
}

// NewPlanService constructs a PlanService backed by PostgreSQL.
func NewPlanService(pool *pgxpool.Pool, seq SequenceService) PlanService {
	return &planService{pool: pool, seq: seq}
}

// CreatePlan validates the submitted tree, allocates the next plan number for
// the current year, aggregates the total, and persists the whole tree in one
// transaction.
func (s *planService) CreatePlan(ctx context.Context, userID int, input PlanInput) (*Plan, string, error) {
	warning, err := validatePlanTree(input.Sections)
	if err != nil {
		return nil, "", err
	}

	stage := input.Stage
	if stage == "" {
		stage = PlanStageIndicative
	}

	year := time.Now().Year()
	total := planInputTotal(input.Sections)

	var planID int
	for attempt := 0; ; attempt++ {
		planID, err = s.insertPlanTree(ctx, userID, year, stage, input, total)
		if err == nil {
			break
		}
		if isUniqueViolation(err) && attempt < maxSequenceRetries {
			continue
		}
		if isUniqueViolation(err) {
			return nil, "", fmt.Errorf("plan number allocation for %d: %w", year, ErrSequenceConflict)
		}
		return nil, "", err
	}

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, "", err
	}
	return plan, warning, nil
}

// insertPlanTree performs one transactional attempt at inserting the plan with
// a freshly allocated number plus all its sections and items.
func (s *planService) insertPlanTree(ctx context.Context, userID, year int, stage PlanStage, input PlanInput, total decimal.Decimal) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	number, err := s.seq.NextPlanNumber(ctx, tx, year)
	if err != nil {
		return 0, err
	}

	var refCode *string
	if input.RefCode != "" {
		refCode = &input.RefCode
	}

	var planID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO plans (plan_number, ref_code, user_id, division, stage, status,
		                   total, allocated_budget, used_budget, remaining_budget, budget_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, 0, $7, $8)
		RETURNING id`,
		number, refCode, userID, input.Division, string(stage), string(PlanStatusProcess),
		total, string(DeriveBudgetStatus(decimal.Zero, total)),
	).Scan(&planID); err != nil {
		return 0, fmt.Errorf("insert plan %s: %w", number, err)
	}

	if err := insertSections(ctx, tx, planID, number, input.Sections); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit plan: %w", err)
	}
	return planID, nil
}

// UpdatePlan applies scalar changes and, when sections are supplied, replaces
// the entire child tree. The plan row is locked for the duration so the total
// and the running balance move together.
func (s *planService) UpdatePlan(ctx context.Context, planID int, input PlanUpdateInput) (*Plan, string, error) {
	var warning string
	if input.Sections != nil {
		var err error
		warning, err = validatePlanTree(input.Sections)
		if err != nil {
			return nil, "", err
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var number string
	var stage PlanStage
	var used decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT plan_number, stage, used_budget
		FROM plans WHERE id = $1 FOR UPDATE`,
		planID,
	).Scan(&number, &stage, &used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		return nil, "", fmt.Errorf("fetch plan %d: %w", planID, err)
	}

	if stage == PlanStageFinal {
		return nil, "", fmt.Errorf("plan %s is final and cannot be edited: %w", number, ErrInvalidStateTransition)
	}

	if input.Division != nil {
		if _, err := tx.Exec(ctx, "UPDATE plans SET division = $1 WHERE id = $2", *input.Division, planID); err != nil {
			return nil, "", fmt.Errorf("update plan division: %w", err)
		}
	}
	if input.RefCode != nil {
		var refCode *string
		if *input.RefCode != "" {
			refCode = input.RefCode
		}
		if _, err := tx.Exec(ctx, "UPDATE plans SET ref_code = $1 WHERE id = $2", refCode, planID); err != nil {
			return nil, "", fmt.Errorf("update plan ref code: %w", err)
		}
	}
	if input.Stage != nil {
		if _, err := tx.Exec(ctx, "UPDATE plans SET stage = $1 WHERE id = $2", string(*input.Stage), planID); err != nil {
			return nil, "", fmt.Errorf("update plan stage: %w", err)
		}
	}

	var total decimal.Decimal
	if input.Sections != nil {
		// Destructive replace: discard the previous tree entirely.
		if _, err := tx.Exec(ctx, "DELETE FROM plan_sections WHERE plan_id = $1", planID); err != nil {
			return nil, "", fmt.Errorf("clear plan sections: %w", err)
		}
		if err := insertSections(ctx, tx, planID, number, input.Sections); err != nil {
			return nil, "", err
		}
		total = planInputTotal(input.Sections)
	} else {
		// No children were sent: recompute the total from what is persisted.
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(li.estimated_budget), 0)
			FROM line_items li
			JOIN plan_sections ps ON ps.id = li.section_id
			WHERE ps.plan_id = $1`,
			planID,
		).Scan(&total); err != nil {
			return nil, "", fmt.Errorf("recompute plan total: %w", err)
		}
	}

	remaining := total.Sub(used)
	if _, err := tx.Exec(ctx, `
		UPDATE plans
		SET total = $1, allocated_budget = $1, remaining_budget = $2,
		    budget_status = $3, updated_at = NOW()
		WHERE id = $4`,
		total, remaining, string(DeriveBudgetStatus(used, remaining)), planID,
	); err != nil {
		return nil, "", fmt.Errorf("update plan totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit plan update: %w", err)
	}

	plan, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, "", err
	}
	return plan, warning, nil
}

// ApprovePlan records the approval date and fixes the stage to final.
// Approving an already-approved plan is a no-op.
func (s *planService) ApprovePlan(ctx context.Context, planID int) (*Plan, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status PlanStatus
	var approvedAt *time.Time
	err = tx.QueryRow(ctx,
		"SELECT status, approved_at FROM plans WHERE id = $1 FOR UPDATE", planID,
	).Scan(&status, &approvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("fetch plan %d: %w", planID, err)
	}

	if status == PlanStatusClose {
		return nil, fmt.Errorf("plan %d is closed: %w", planID, ErrInvalidStateTransition)
	}

	if approvedAt == nil {
		if _, err := tx.Exec(ctx, `
			UPDATE plans SET approved_at = NOW(), stage = $1, updated_at = NOW() WHERE id = $2`,
			string(PlanStageFinal), planID,
		); err != nil {
			return nil, fmt.Errorf("approve plan %d: %w", planID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit plan approval: %w", err)
	}
	return s.GetPlan(ctx, planID)
}

// ClosePlan freezes a plan. Once closed, budget consumption and reversal are
// no longer applied against it.
func (s *planService) ClosePlan(ctx context.Context, planID int) (*Plan, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE plans SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(PlanStatusClose), planID,
	)
	if err != nil {
		return nil, fmt.Errorf("close plan %d: %w", planID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("plan %d: %w", planID, ErrNotFound)
	}
	return s.GetPlan(ctx, planID)
}

// DeletePlan removes a plan and cascades to its sections and items. Plans that
// are final, or that any purchase request references, are rejected.
func (s *planService) DeletePlan(ctx context.Context, planID, actorID int, actorIsAdmin bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int
	var stage PlanStage
	err = tx.QueryRow(ctx,
		"SELECT user_id, stage FROM plans WHERE id = $1 FOR UPDATE", planID,
	).Scan(&ownerID, &stage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		return fmt.Errorf("fetch plan %d: %w", planID, err)
	}

	if !actorIsAdmin && ownerID != actorID {
		return fmt.Errorf("plan %d is not owned by user %d: %w", planID, actorID, ErrForbidden)
	}
	if stage == PlanStageFinal {
		return fmt.Errorf("plan %d is final and cannot be deleted: %w", planID, ErrInvalidStateTransition)
	}

	// Linked purchase requests keep a plan alive. Deleting out from under
	// them would orphan the consumption trail.
	var referenced bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM purchase_requests WHERE plan_id = $1)", planID,
	).Scan(&referenced); err != nil {
		return fmt.Errorf("check plan references: %w", err)
	}
	if referenced {
		return fmt.Errorf("plan %d is referenced by purchase requests: %w", planID, ErrInvalidStateTransition)
	}

	// Sections and items go with the plan via ON DELETE CASCADE.
	if _, err := tx.Exec(ctx, "DELETE FROM plans WHERE id = $1", planID); err != nil {
		return fmt.Errorf("delete plan %d: %w", planID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit plan delete: %w", err)
	}
	return nil
}

// GetPlan returns a plan with its full tree.
func (s *planService) GetPlan(ctx context.Context, planID int) (*Plan, error) {
	p := &Plan{}
	var stage, status, budgetStatus string
	err := s.pool.QueryRow(ctx, `
		SELECT id, plan_number, ref_code, user_id, division, stage, status, approved_at,
		       total, allocated_budget, used_budget, remaining_budget, budget_status,
		       created_at, updated_at
		FROM plans WHERE id = $1`,
		planID,
	).Scan(
		&p.ID, &p.PlanNumber, &p.RefCode, &p.UserID, &p.Division, &stage, &status, &p.ApprovedAt,
		&p.Total, &p.AllocatedBudget, &p.UsedBudget, &p.RemainingBudget, &budgetStatus,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("plan %d: %w", planID, ErrNotFound)
		}
		return nil, fmt.Errorf("get plan %d: %w", planID, err)
	}
	p.Stage = PlanStage(stage)
	p.Status = PlanStatus(status)
	p.BudgetStatus = BudgetStatus(budgetStatus)

	sections, err := s.fetchSections(ctx, planID)
	if err != nil {
		return nil, err
	}
	p.Sections = sections
	return p, nil
}

// ListPlans returns plan headers filtered by division and/or year.
func (s *planService) ListPlans(ctx context.Context, division string, year int) ([]Plan, error) {
	query := `
		SELECT id, plan_number, ref_code, user_id, division, stage, status, approved_at,
		       total, allocated_budget, used_budget, remaining_budget, budget_status,
		       created_at, updated_at
		FROM plans`
	var conds []string
	var args []any
	if division != "" {
		args = append(args, division)
		conds = append(conds, fmt.Sprintf("division = $%d", len(args)))
	}
	if year != 0 {
		args = append(args, fmt.Sprintf("%04d-%%", year))
		conds = append(conds, fmt.Sprintf("plan_number LIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY plan_number"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		var stage, status, budgetStatus string
		if err := rows.Scan(
			&p.ID, &p.PlanNumber, &p.RefCode, &p.UserID, &p.Division, &stage, &status, &p.ApprovedAt,
			&p.Total, &p.AllocatedBudget, &p.UsedBudget, &p.RemainingBudget, &budgetStatus,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		p.Stage = PlanStage(stage)
		p.Status = PlanStatus(status)
		p.BudgetStatus = BudgetStatus(budgetStatus)
		plans = append(plans, p)
	}
	return plans, nil
}

// fetchSections loads all sections with their items, in ordinal order.
func (s *planService) fetchSections(ctx context.Context, planID int) ([]PlanSection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, plan_id, section_code, description
		FROM plan_sections
		WHERE plan_id = $1
		ORDER BY ordinal`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch sections for plan %d: %w", planID, err)
	}
	defer rows.Close()

	var sections []PlanSection
	for rows.Next() {
		var sec PlanSection
		if err := rows.Scan(&sec.ID, &sec.PlanID, &sec.SectionCode, &sec.Description); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sections {
		items, err := s.fetchItems(ctx, sections[i].ID)
		if err != nil {
			return nil, err
		}
		sections[i].Items = items
	}
	return sections, nil
}

func (s *planService) fetchItems(ctx context.Context, sectionID int) ([]LineItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, section_id, reference_code, project_type, quantity_size, procurement_mode,
		       pre_proc_conference, start_activity::text, end_activity::text, delivery_schedule,
		       source_of_fund, estimated_budget, supporting_document, remarks
		FROM line_items
		WHERE section_id = $1
		ORDER BY ordinal`,
		sectionID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch items for section %d: %w", sectionID, err)
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(
			&it.ID, &it.SectionID, &it.ReferenceCode, &it.ProjectType, &it.QuantitySize,
			&it.ProcurementMode, &it.PreProcConference, &it.StartActivity, &it.EndActivity,
			&it.DeliverySchedule, &it.SourceOfFund, &it.EstimatedBudget,
			&it.SupportingDocument, &it.Remarks,
		); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// insertSections writes a full replacement tree of sections and items.
func insertSections(ctx context.Context, tx pgx.Tx, planID int, planNumber string, sections []SectionInput) error {
	for i, sec := range sections {
		var sectionID int
		if err := tx.QueryRow(ctx, `
			INSERT INTO plan_sections (plan_id, section_code, description, ordinal)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			planID, FormatSectionCode(planNumber, i+1), sec.Description, i+1,
		).Scan(&sectionID); err != nil {
			return fmt.Errorf("insert section %d: %w", i+1, err)
		}

		for j, item := range sec.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO line_items
				            (section_id, reference_code, project_type, quantity_size, procurement_mode,
				             pre_proc_conference, start_activity, end_activity, delivery_schedule,
				             source_of_fund, estimated_budget, supporting_document, remarks, ordinal)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
				sectionID, item.ReferenceCode, item.ProjectType, item.QuantitySize,
				item.ProcurementMode, item.PreProcConference, item.StartActivity, item.EndActivity,
				item.DeliverySchedule, item.SourceOfFund, item.EstimatedBudget,
				item.SupportingDocument, item.Remarks, j+1,
			); err != nil {
				return fmt.Errorf("insert item %d of section %d: %w", j+1, i+1, err)
			}
		}
	}
	return nil
}

// planInputTotal aggregates the submitted tree's estimated budgets.
func planInputTotal(sections []SectionInput) decimal.Decimal {
	total := decimal.Zero
	for _, sec := range sections {
		for _, item := range sec.Items {
			total = total.Add(item.EstimatedBudget)
		}
	}
	return total
}

// validatePlanTree enforces the structural invariants on a submitted tree:
// at least one section, at least one item per section, every item complete,
// and non-negative budgets. Out-of-order activity dates are reported as a
// warning rather than a rejection.
func validatePlanTree(sections []SectionInput) (string, error) {
	var fields []string
	var warnings []string

	if len(sections) == 0 {
		fields = append(fields, "sections: at least one section is required")
	}
	for i, sec := range sections {
		if strings.TrimSpace(sec.Description) == "" {
			fields = append(fields, fmt.Sprintf("sections[%d].description: required", i))
		}
		if len(sec.Items) == 0 {
			fields = append(fields, fmt.Sprintf("sections[%d].items: at least one item is required", i))
		}
		for j, item := range sec.Items {
			prefix := fmt.Sprintf("sections[%d].items[%d]", i, j)
			for name, val := range map[string]string{
				"reference_code":      item.ReferenceCode,
				"project_type":        item.ProjectType,
				"quantity_size":       item.QuantitySize,
				"procurement_mode":    item.ProcurementMode,
				"start_activity":      item.StartActivity,
				"end_activity":        item.EndActivity,
				"delivery_schedule":   item.DeliverySchedule,
				"source_of_fund":      item.SourceOfFund,
				"supporting_document": item.SupportingDocument,
				"remarks":             item.Remarks,
			} {
				if strings.TrimSpace(val) == "" {
					fields = append(fields, fmt.Sprintf("%s.%s: required", prefix, name))
				}
			}
			if item.EstimatedBudget.IsNegative() {
				fields = append(fields, fmt.Sprintf("%s.estimated_budget: must not be negative", prefix))
			}
			if dateOutOfOrder(item.StartActivity, item.EndActivity) {
				warnings = append(warnings, fmt.Sprintf("%s: start activity %s is after end activity %s",
					prefix, item.StartActivity, item.EndActivity))
			}
		}
	}

	if len(fields) > 0 {
		return "", &ValidationError{Fields: fields}
	}
	return strings.Join(warnings, "; "), nil
}

// dateOutOfOrder reports start > end for two YYYY-MM-DD strings. Unparseable
// dates are left to the database's date type to reject.
func dateOutOfOrder(start, end string) bool {
	st, err1 := time.Parse("2006-01-02", start)
	en, err2 := time.Parse("2006-01-02", end)
	return err1 == nil && err2 == nil && st.After(en)
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
