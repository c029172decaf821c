package domain

import (
	"context"
	"time"
)

// Registration statuses. Cancellation is a status change, never a row
// deletion, so the (user, event) uniqueness constraint stays intact.
const (
	RegistrationStatusActive     = "active"
	RegistrationStatusCancelled  = "cancelled"
	RegistrationStatusWaitlisted = "waitlisted"
)

// Payment statuses tracked on a registration. No gateway logic exists;
// these are bookkeeping fields only.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// Attendance statuses tracked on a registration.
const (
	AttendanceStatusPending = "pending"
	AttendanceStatusPresent = "present"
	AttendanceStatusAbsent  = "absent"
)

// Registration represents a user's registration for an event. At most one
// row exists per (user, event) pair regardless of status; the storage layer
// enforces this with a unique constraint.
// swagger:model Registration
type Registration struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	EventID          string    `json:"event_id"`
	RegistrationDate time.Time `json:"registration_date"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	AttendanceStatus string    `json:"attendance_status"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RegistrationWithEvent pairs a registration with its event for list
// responses.
// swagger:model RegistrationWithEvent
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationWithUser pairs a registration with the registered user for
// organizer-facing list responses.
// swagger:model RegistrationWithUser
type RegistrationWithUser struct {
	Registration *Registration `json:"registration"`
	User         *User         `json:"user"`
}

// RegistrationRepository defines the interface for registration storage.
// Create must surface the storage-level (user, event) unique violation as
// ErrAlreadyRegistered.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	// GetByIDForUpdate reads the registration and locks its row for the
	// duration of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	// UpdateStatus sets the registration status. Reactivation (cancelled
	// back to active) also refreshes the registration date and notes.
	UpdateStatus(ctx context.Context, id, status string) error
	Reactivate(ctx context.Context, id, notes string, registrationDate time.Time) (*Registration, error)
	ListByUserID(ctx context.Context, userID, status string, params PaginationParams) ([]*Registration, int, error)
	ListByEventID(ctx context.Context, eventID, status string, params PaginationParams) ([]*Registration, int, error)
	DeleteByEventID(ctx context.Context, eventID string) error
	CountByStatus(ctx context.Context, status string) (int, error)
}

// Transactor runs a function within a storage transaction. Repository calls
// made with the ctx passed to fn join the transaction. If fn returns an
// error the transaction is rolled back and nothing is persisted.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RegistrationService defines the registration business logic. Register and
// Cancel are atomic: the registration row and the event's capacity ledger
// change together or not at all.
type RegistrationService interface {
	Register(ctx context.Context, eventID, userID, notes string) (*Registration, error)
	Cancel(ctx context.Context, registrationID, userID string) error
	ListMine(ctx context.Context, userID, status string, params PaginationParams) ([]*RegistrationWithEvent, int, error)
	ListForEvent(ctx context.Context, eventID, callerID, callerRole, status string, params PaginationParams) ([]*RegistrationWithUser, int, error)
}
