package core

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reference number formats.
var (
	planNumberPattern = regexp.MustCompile(`^\d{4}-\d{3}$`)
	prNumberPattern   = regexp.MustCompile(`^PR-\d{6}-\d{4}$`)
	risNumberPattern  = regexp.MustCompile(`^RIS-\d{4}-\d{4}$`)
)

// SequenceService allocates unique, monotonically increasing reference numbers.
// Allocation happens inside the caller's transaction so the counter advance and
// the consuming insert commit or roll back together.
type SequenceService interface {
	// NextPlanNumber returns the next plan number for the given calendar year,
	// formatted as YYYY-NNN (e.g. 2025-001).
	NextPlanNumber(ctx context.Context, tx pgx.Tx, year int) (string, error)

	// NextRequestNumber returns the next purchase request number for the given
	// user, year, and month, formatted as PR-YYYYMM-NNNN (e.g. PR-202503-0001).
	NextRequestNumber(ctx context.Context, tx pgx.Tx, userID, year, month int) (string, error)

	// NextRISNumber returns the next Requisition and Issue Slip number for the
	// given year, formatted as RIS-YYYY-NNNN.
	NextRISNumber(ctx context.Context, tx pgx.Tx, year int) (string, error)

	// Current returns the last allocated number for (kind, scope), or zero if
	// nothing has been allocated in that scope yet.
	Current(ctx context.Context, kind SequenceKind, scope string) (int64, error)
}

type sequenceService struct {
	pool *pgxpool.Pool
}

// NewSequenceService constructs a SequenceService backed by PostgreSQL.
func NewSequenceService(pool *pgxpool.Pool) SequenceService {
	return &sequenceService{pool: pool}
}

// nextNumber advances the counter row for (kind, scope) and returns the new
// value. The upsert takes a row lock, so two transactions allocating in the
// same scope serialize; the loser sees the winner's increment after commit.
func nextNumber(ctx context.Context, tx pgx.Tx, kind SequenceKind, scope string) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		INSERT INTO reference_sequences (kind, scope, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, scope)
		DO UPDATE SET last_number = reference_sequences.last_number + 1
		RETURNING last_number`,
		string(kind), scope,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("advance %s sequence for scope %q: %w", kind, scope, err)
	}
	return n, nil
}

func (s *sequenceService) NextPlanNumber(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	scope := fmt.Sprintf("%04d", year)
	n, err := nextNumber(ctx, tx, SequencePlan, scope)
	if err != nil {
		return "", err
	}
	return FormatPlanNumber(year, n), nil
}

func (s *sequenceService) NextRequestNumber(ctx context.Context, tx pgx.Tx, userID, year, month int) (string, error) {
	// Scope key includes the user: each requester has an independent series
	// per month, matching the per-user numbering of printed PR forms.
	scope := fmt.Sprintf("u%d-%04d%02d", userID, year, month)
	n, err := nextNumber(ctx, tx, SequencePR, scope)
	if err != nil {
		return "", err
	}
	return FormatRequestNumber(year, month, n), nil
}

func (s *sequenceService) NextRISNumber(ctx context.Context, tx pgx.Tx, year int) (string, error) {
	scope := fmt.Sprintf("%04d", year)
	n, err := nextNumber(ctx, tx, SequenceRIS, scope)
	if err != nil {
		return "", err
	}
	return FormatRISNumber(year, n), nil
}

func (s *sequenceService) Current(ctx context.Context, kind SequenceKind, scope string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT last_number FROM reference_sequences WHERE kind = $1 AND scope = $2), 0)`,
		string(kind), scope,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("read %s sequence for scope %q: %w", kind, scope, err)
	}
	return n, nil
}

// FormatPlanNumber renders a plan number as YYYY-NNN.
func FormatPlanNumber(year int, seq int64) string {
	return fmt.Sprintf("%04d-%03d", year, seq)
}

// FormatRequestNumber renders a purchase request number as PR-YYYYMM-NNNN.
func FormatRequestNumber(year, month int, seq int64) string {
	return fmt.Sprintf("PR-%04d%02d-%04d", year, month, seq)
}

// FormatRISNumber renders an RIS number as RIS-YYYY-NNNN.
func FormatRISNumber(year int, seq int64) string {
	return fmt.Sprintf("RIS-%04d-%04d", year, seq)
}

// FormatSectionCode derives a section code from its parent plan number and the
// section's 1-based ordinal (e.g. 2025-001-1). Sections are not sequenced
// independently; the code is recomputed whenever sections are replaced.
func FormatSectionCode(planNumber string, ordinal int) string {
	return fmt.Sprintf("%s-%d", planNumber, ordinal)
}

// ValidPlanNumber reports whether s matches the YYYY-NNN plan number format.
func ValidPlanNumber(s string) bool { return planNumberPattern.MatchString(s) }

// ValidRequestNumber reports whether s matches the PR-YYYYMM-NNNN format.
func ValidRequestNumber(s string) bool { return prNumberPattern.MatchString(s) }

// ValidRISNumber reports whether s matches the RIS-YYYY-NNNN format.
func ValidRISNumber(s string) bool { return risNumberPattern.MatchString(s) }
