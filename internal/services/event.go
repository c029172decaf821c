package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type eventService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	contextTimeout time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		tx:             tx,
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OrganizerID == "" {
		return fmt.Errorf("%w: event organizer is required", domain.ErrInvalidInput)
	}
	if !event.Date.After(time.Now()) {
		return fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
	}
	if !domain.ValidEventCategory(event.Category) {
		return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, event.Category)
	}

	event.Status = domain.EventStatusPending
	event.CurrentRegistrations = 0
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

func (s *eventService) GetEvent(ctx context.Context, eventID, callerID string) (*domain.Event, *domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get event: %w", err)
	}

	// Include the caller's active registration when authenticated.
	var reg *domain.Registration
	if callerID != "" {
		existing, err := s.regRepo.GetByEventAndUser(ctx, eventID, callerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("get registration: %w", err)
		}
		if existing != nil && existing.Status == domain.RegistrationStatusActive {
			reg = existing
		}
	}
	return event, reg, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.List(ctx, filter, params)
}

func (s *eventService) ListMyEvents(ctx context.Context, organizerID, status string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOrganizerID(ctx, organizerID, status, params)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID, callerRole string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	caller := domain.Identity{UserID: callerID, Role: callerRole}
	if !caller.CanManage(event.OrganizerID) {
		return nil, domain.ErrForbidden
	}

	if upd.Date != nil && !upd.Date.After(time.Now()) {
		return nil, fmt.Errorf("%w: event date must be in the future", domain.ErrInvalidInput)
	}
	if upd.Category != nil && !domain.ValidEventCategory(*upd.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, *upd.Category)
	}
	if upd.Capacity != nil && *upd.Capacity < event.CurrentRegistrations {
		return nil, fmt.Errorf("%w: capacity cannot be below current registrations", domain.ErrInvalidInput)
	}

	// Content edits by non-admins close the registration window until the
	// event is re-approved.
	if callerRole != domain.RoleAdmin {
		pending := domain.EventStatusPending
		upd.Status = &pending
	}

	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

// DeleteEvent removes the event and all of its registrations in one
// transaction, so a failed delete leaves no orphaned rows either way.
func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID, callerRole string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	caller := domain.Identity{UserID: callerID, Role: callerRole}
	if !caller.CanManage(event.OrganizerID) {
		return domain.ErrForbidden
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.regRepo.DeleteByEventID(ctx, eventID); err != nil {
			return fmt.Errorf("delete registrations: %w", err)
		}
		if err := s.eventRepo.Delete(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
}
