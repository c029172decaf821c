package domain

import (
	"context"
	"time"
)

// Event statuses. New events start as EventStatusPending and become
// registrable only once an admin approves them.
const (
	EventStatusPending   = "pending"
	EventStatusApproved  = "approved"
	EventStatusRejected  = "rejected"
	EventStatusCancelled = "cancelled"
)

// EventCategories is the closed set of accepted event categories.
var EventCategories = []string{
	"conference",
	"workshop",
	"seminar",
	"meetup",
	"webinar",
	"social",
	"sports",
	"cultural",
	"other",
}

// ValidEventCategory reports whether category is one of EventCategories.
func ValidEventCategory(category string) bool {
	for _, c := range EventCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Event represents an event organized by a user. Capacity and
// CurrentRegistrations form the capacity ledger: CurrentRegistrations is
// mutated only through the registration service's transactional repository
// calls, never by event edits.
// swagger:model Event
type Event struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Date                 time.Time `json:"date"`
	Time                 string    `json:"time"`
	Location             string    `json:"location"`
	Capacity             int       `json:"capacity"`
	CurrentRegistrations int       `json:"current_registrations"`
	OrganizerID          string    `json:"organizer_id"`
	Status               string    `json:"status"`
	RejectionReason      string    `json:"rejection_reason,omitempty"`
	Category             string    `json:"category"`
	Price                float64   `json:"price"`
	ImageURL             string    `json:"image_url,omitempty"`
	Tags                 []string  `json:"tags"`
	Requirements         []string  `json:"requirements"`
	IsVirtual            bool      `json:"is_virtual"`
	MeetingLink          string    `json:"meeting_link,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// AvailableSpots returns the remaining capacity.
func (e *Event) AvailableSpots() int {
	return e.Capacity - e.CurrentRegistrations
}

// IsFullyBooked reports whether the event has no remaining capacity.
func (e *Event) IsFullyBooked() bool {
	return e.CurrentRegistrations >= e.Capacity
}

// EventUpdate holds the updatable fields of an event. Nil pointers leave
// the current value unchanged. Capacity ledger fields are deliberately
// absent: only the registration service may touch them.
type EventUpdate struct {
	Title        *string
	Description  *string
	Date         *time.Time
	Time         *string
	Location     *string
	Capacity     *int
	Category     *string
	Price        *float64
	ImageURL     *string
	Tags         []string
	Requirements []string
	IsVirtual    *bool
	MeetingLink  *string
	// Status is set by the service layer: non-admin edits reset it to
	// pending so the event must be re-approved.
	Status *string
}

// EventFilter holds the query filters for listing events. Status defaults
// to approved so public browsing never surfaces pending or rejected events.
type EventFilter struct {
	Status      string
	Category    string
	OrganizerID string
	Location    string
	IsVirtual   *bool
	Date        *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	PriceMin    *float64
	PriceMax    *float64
	Search      string
	SortBy      string
	SortOrder   string
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate reads the event and locks its row for the duration
	// of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListByOrganizerID(ctx context.Context, organizerID, status string, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	UpdateStatus(ctx context.Context, id, status, rejectionReason string) (*Event, error)
	Delete(ctx context.Context, id string) error
	// IncrementRegistrations adds one to the capacity ledger only while it
	// stays within capacity. Returns ErrEventFull when no room is left.
	IncrementRegistrations(ctx context.Context, id string) error
	// DecrementRegistrations subtracts one from the capacity ledger,
	// flooring at zero.
	DecrementRegistrations(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*Event, error)
}

// EventService defines the business logic for event management.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEvent(ctx context.Context, eventID, callerID string) (*Event, *Registration, error)
	ListEvents(ctx context.Context, filter EventFilter, params PaginationParams) ([]*Event, int, error)
	ListMyEvents(ctx context.Context, organizerID, status string, params PaginationParams) ([]*Event, int, error)
	UpdateEvent(ctx context.Context, eventID, callerID, callerRole string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID, callerRole string) error
}
