// Package users exposes the platform operator surface: listing accounts,
// changing roles, removing accounts, and the dashboard counters.
package users

// Stats are the dashboard counters shown to platform operators.
type Stats struct {
	TotalUsers      int64            `json:"total_users"`
	TotalBusinesses int64            `json:"total_businesses"`
	TotalCategories int64            `json:"total_categories"`
	TotalItems      int64            `json:"total_items"`
	UsersByRole     map[string]int64 `json:"users_by_role"`
}
