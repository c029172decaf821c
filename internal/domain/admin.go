package domain

import "context"

// DashboardStats holds the aggregate counters shown on the admin dashboard.
// swagger:model DashboardStats
type DashboardStats struct {
	TotalUsers         int `json:"total_users"`
	TotalEvents        int `json:"total_events"`
	PendingEvents      int `json:"pending_events"`
	TotalRegistrations int `json:"total_registrations"`
}

// Dashboard bundles the stats with recent activity.
// swagger:model Dashboard
type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	RecentEvents []*Event       `json:"recent_events"`
	RecentUsers  []*User        `json:"recent_users"`
}

// AdminService defines the moderation gate and user administration. Approve
// and Reject set the event status only; they never touch the capacity
// ledger.
type AdminService interface {
	ListPendingEvents(ctx context.Context, params PaginationParams) ([]*Event, int, error)
	ApproveEvent(ctx context.Context, eventID string) (*Event, error)
	RejectEvent(ctx context.Context, eventID, reason string) (*Event, error)
	ListUsers(ctx context.Context, filter UserFilter, params PaginationParams) ([]*User, int, error)
	UpdateUserRole(ctx context.Context, userID, role string) (*User, error)
	DeactivateUser(ctx context.Context, userID string) (*User, error)
	GetDashboard(ctx context.Context) (*Dashboard, error)
}
