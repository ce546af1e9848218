package app

import "procurement-tracker/internal/core"

// UserSession is returned by AuthenticateUser.
type UserSession struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Division string `json:"division"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the session carries the admin flag.
func (s *UserSession) IsAdmin() bool { return s.Role == core.RoleAdmin }

// PlanResult is returned by plan lifecycle operations. Warning is non-empty
// when line-item activity dates were out of order.
type PlanResult struct {
	Plan    *core.Plan `json:"plan"`
	Warning string     `json:"warning,omitempty"`
}

// PlanListResult is returned by ListPlans.
type PlanListResult struct {
	Plans []core.Plan `json:"plans"`
}

// RequestResult is returned by purchase request lifecycle operations.
type RequestResult struct {
	Request *core.PurchaseRequest `json:"request"`
}

// RequestListResult is returned by ListRequests.
type RequestListResult struct {
	Requests []core.PurchaseRequest `json:"requests"`
}

// FundResult is returned by fund operations.
type FundResult struct {
	Fund *core.SourceOfFund `json:"fund"`
}

// FundListResult is returned by ListFunds.
type FundListResult struct {
	Funds []core.SourceOfFund `json:"funds"`
}

// UtilizationResult is returned by GetUtilization.
type UtilizationResult struct {
	Plans []core.PlanUtilization `json:"plans"`
}
