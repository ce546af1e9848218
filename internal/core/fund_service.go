package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type fundService struct {
	pool *pgxpool.Pool
}

// NewFundService constructs a FundService backed by PostgreSQL.
func NewFundService(pool *pgxpool.Pool) FundService {
	return &fundService{pool: pool}
}

func (s *fundService) CreateFund(ctx context.Context, input FundInput) (*SourceOfFund, error) {
	if err := validateFundInput(input); err != nil {
		return nil, err
	}

	f := &SourceOfFund{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sources_of_fund (division, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, division, name, description, created_at`,
		input.Division, input.Name, input.Description,
	).Scan(&f.ID, &f.Division, &f.Name, &f.Description, &f.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create source of fund %q: %w", input.Name, err)
	}
	return f, nil
}

func (s *fundService) UpdateFund(ctx context.Context, fundID int, input FundInput) (*SourceOfFund, error) {
	if err := validateFundInput(input); err != nil {
		return nil, err
	}

	f := &SourceOfFund{}
	err := s.pool.QueryRow(ctx, `
		UPDATE sources_of_fund
		SET division = $1, name = $2, description = $3
		WHERE id = $4
		RETURNING id, division, name, description, created_at`,
		input.Division, input.Name, input.Description, fundID,
	).Scan(&f.ID, &f.Division, &f.Name, &f.Description, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("source of fund %d: %w", fundID, ErrNotFound)
		}
		return nil, fmt.Errorf("update source of fund %d: %w", fundID, err)
	}
	return f, nil
}

func (s *fundService) DeleteFund(ctx context.Context, fundID int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM sources_of_fund WHERE id = $1", fundID)
	if err != nil {
		return fmt.Errorf("delete source of fund %d: %w", fundID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source of fund %d: %w", fundID, ErrNotFound)
	}
	return nil
}

func (s *fundService) GetFund(ctx context.Context, fundID int) (*SourceOfFund, error) {
	f := &SourceOfFund{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, division, name, description, created_at
		FROM sources_of_fund WHERE id = $1`,
		fundID,
	).Scan(&f.ID, &f.Division, &f.Name, &f.Description, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("source of fund %d: %w", fundID, ErrNotFound)
		}
		return nil, fmt.Errorf("get source of fund %d: %w", fundID, err)
	}
	return f, nil
}

func (s *fundService) ListFunds(ctx context.Context, division string) ([]SourceOfFund, error) {
	query := "SELECT id, division, name, description, created_at FROM sources_of_fund"
	var args []any
	if division != "" {
		query += " WHERE division = $1"
		args = append(args, division)
	}
	query += " ORDER BY division, name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sources of fund: %w", err)
	}
	defer rows.Close()

	var funds []SourceOfFund
	for rows.Next() {
		var f SourceOfFund
		if err := rows.Scan(&f.ID, &f.Division, &f.Name, &f.Description, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan source of fund: %w", err)
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

func validateFundInput(input FundInput) error {
	var fields []string
	if strings.TrimSpace(input.Division) == "" {
		fields = append(fields, "division: required")
	}
	if strings.TrimSpace(input.Name) == "" {
		fields = append(fields, "name: required")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
