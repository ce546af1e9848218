package core

import (
	"context"
	"time"
)

// SourceOfFund is an independent lookup entry naming where a line item's
// money comes from. It has no lifecycle coupling to plans or requests.
type SourceOfFund struct {
	ID          int
	Division    string
	Name        string
	Description string
	CreatedAt   time.Time
}

// FundInput holds the fields required to create or update a source of fund.
type FundInput struct {
	Division    string
	Name        string
	Description string
}

// FundService provides the source-of-fund lookup list.
type FundService interface {
	// CreateFund inserts a new source of fund.
	CreateFund(ctx context.Context, input FundInput) (*SourceOfFund, error)

	// UpdateFund replaces the fields of an existing source of fund.
	UpdateFund(ctx context.Context, fundID int, input FundInput) (*SourceOfFund, error)

	// DeleteFund removes a source of fund from the lookup list.
	DeleteFund(ctx context.Context, fundID int) error

	// GetFund returns one source of fund by ID.
	GetFund(ctx context.Context, fundID int) (*SourceOfFund, error)

	// ListFunds returns sources of fund, optionally filtered by division.
	ListFunds(ctx context.Context, division string) ([]SourceOfFund, error)
}
