package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PlanUtilization is one row of the utilization report. LinkedRequestTotal is
// recomputed from live purchase request rows so any drift between the stored
// running balance and the actual consumption trail is visible.
type PlanUtilization struct {
	PlanID             int
	PlanNumber         string
	Division           string
	AllocatedBudget    decimal.Decimal
	UsedBudget         decimal.Decimal
	RemainingBudget    decimal.Decimal
	BudgetStatus       BudgetStatus
	LinkedRequestTotal decimal.Decimal
	RequestCount       int
}

// ReportingService provides read-side aggregates over plans and requests.
type ReportingService interface {
	// GetUtilization returns per-plan budget utilization, optionally filtered
	// by division and/or year. The stored running balance is authoritative;
	// LinkedRequestTotal exists as a cross-check only.
	GetUtilization(ctx context.Context, division string, year int) ([]PlanUtilization, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by PostgreSQL.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) GetUtilization(ctx context.Context, division string, year int) ([]PlanUtilization, error) {
	query := `
		SELECT p.id, p.plan_number, p.division,
		       p.allocated_budget, p.used_budget, p.remaining_budget, p.budget_status,
		       COALESCE(SUM(pr.total) FILTER (WHERE pr.status <> 'cancelled'), 0),
		       COUNT(pr.id)
		FROM plans p
		LEFT JOIN purchase_requests pr ON pr.plan_id = p.id`
	var args []any
	where := ""
	if division != "" {
		args = append(args, division)
		where = fmt.Sprintf(" WHERE p.division = $%d", len(args))
	}
	if year != 0 {
		args = append(args, fmt.Sprintf("%04d-%%", year))
		if where == "" {
			where = fmt.Sprintf(" WHERE p.plan_number LIKE $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND p.plan_number LIKE $%d", len(args))
		}
	}
	query += where + `
		GROUP BY p.id
		ORDER BY p.plan_number`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("utilization report: %w", err)
	}
	defer rows.Close()

	var report []PlanUtilization
	for rows.Next() {
		var u PlanUtilization
		var budgetStatus string
		if err := rows.Scan(
			&u.PlanID, &u.PlanNumber, &u.Division,
			&u.AllocatedBudget, &u.UsedBudget, &u.RemainingBudget, &budgetStatus,
			&u.LinkedRequestTotal, &u.RequestCount,
		); err != nil {
			return nil, fmt.Errorf("scan utilization row: %w", err)
		}
		u.BudgetStatus = BudgetStatus(budgetStatus)
		report = append(report, u)
	}
	return report, rows.Err()
}
