package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

type registrationService struct {
	tx             domain.Transactor
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRegistrationService creates the registration coordinator. Register and
// Cancel run their effects inside a single transaction via tx, so the
// registration row and the event's capacity ledger always change together.
func NewRegistrationService(
	tx domain.Transactor,
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		tx:             tx,
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID, notes string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var reg *domain.Registration
	var event *domain.Event

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Lock the event row so the precondition checks and the ledger
		// increment see a consistent snapshot.
		ev, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		event = ev

		if ev.Status != domain.EventStatusApproved {
			return domain.ErrEventNotApproved
		}
		if ev.Date.Before(time.Now()) {
			return domain.ErrEventInPast
		}

		existing, err := s.regRepo.GetByEventAndUser(ctx, eventID, userID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get registration: %w", err)
		}
		if existing != nil && existing.Status != domain.RegistrationStatusCancelled {
			return domain.ErrAlreadyRegistered
		}

		// Capacity check and increment are one conditional statement; zero
		// rows affected means the event filled up.
		if err := s.eventRepo.IncrementRegistrations(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrEventFull) {
				return domain.ErrEventFull
			}
			return fmt.Errorf("increment registrations: %w", err)
		}

		now := time.Now()
		if existing != nil {
			// A cancelled row already holds the (user, event) slot;
			// reactivate it instead of inserting.
			updated, err := s.regRepo.Reactivate(ctx, existing.ID, notes, now)
			if err != nil {
				return fmt.Errorf("reactivate registration: %w", err)
			}
			reg = updated
			return nil
		}

		created := &domain.Registration{
			UserID:           userID,
			EventID:          eventID,
			RegistrationDate: now,
			Status:           domain.RegistrationStatusActive,
			PaymentStatus:    domain.PaymentStatusPending,
			AttendanceStatus: domain.AttendanceStatusPending,
			Notes:            notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.regRepo.Create(ctx, created); err != nil {
			// The unique index closes the race between the duplicate check
			// and the insert: a concurrent first registration surfaces here.
			if errors.Is(err, domain.ErrAlreadyRegistered) {
				return domain.ErrAlreadyRegistered
			}
			return fmt.Errorf("create registration: %w", err)
		}
		reg = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, event, userID)
	return reg, nil
}

func (s *registrationService) Cancel(ctx context.Context, registrationID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reg, err := s.regRepo.GetByIDForUpdate(ctx, registrationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get registration: %w", err)
		}
		// A registration is cancellable only by its owner and only while
		// active. Both failures look the same to the caller.
		if reg.UserID != userID || reg.Status != domain.RegistrationStatusActive {
			return domain.ErrNotFound
		}

		event, err := s.eventRepo.GetByIDForUpdate(ctx, reg.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		if event.Date.Before(time.Now()) {
			return domain.ErrEventInPast
		}

		if err := s.regRepo.UpdateStatus(ctx, registrationID, domain.RegistrationStatusCancelled); err != nil {
			return fmt.Errorf("cancel registration: %w", err)
		}
		if err := s.eventRepo.DecrementRegistrations(ctx, reg.EventID); err != nil {
			return fmt.Errorf("decrement registrations: %w", err)
		}
		return nil
	})
}

func (s *registrationService) ListMine(ctx context.Context, userID, status string, params domain.PaginationParams) ([]*domain.RegistrationWithEvent, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, total, err := s.regRepo.ListByUserID(ctx, userID, status, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	eventsByID := make(map[string]*domain.Event)
	result := make([]*domain.RegistrationWithEvent, 0, len(regs))
	for _, reg := range regs {
		ev, ok := eventsByID[reg.EventID]
		if !ok {
			ev, err = s.eventRepo.GetByID(ctx, reg.EventID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					// Event deleted but registration remains; skip this entry defensively.
					continue
				}
				return nil, 0, fmt.Errorf("get event for registration: %w", err)
			}
			eventsByID[reg.EventID] = ev
		}
		result = append(result, &domain.RegistrationWithEvent{
			Registration: reg,
			Event:        ev,
		})
	}
	return result, total, nil
}

func (s *registrationService) ListForEvent(ctx context.Context, eventID, callerID, callerRole, status string, params domain.PaginationParams) ([]*domain.RegistrationWithUser, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	caller := domain.Identity{UserID: callerID, Role: callerRole}
	if !caller.CanManage(event.OrganizerID) {
		return nil, 0, domain.ErrForbidden
	}

	regs, total, err := s.regRepo.ListByEventID(ctx, eventID, status, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	result := make([]*domain.RegistrationWithUser, 0, len(regs))
	for _, reg := range regs {
		user, err := s.userRepo.GetByID(ctx, reg.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, 0, fmt.Errorf("get user for registration: %w", err)
		}
		result = append(result, &domain.RegistrationWithUser{
			Registration: reg,
			User:         user,
		})
	}
	return result, total, nil
}

// sendConfirmation emails the registrant after a successful commit.
// Best-effort: failures are logged, never returned.
func (s *registrationService) sendConfirmation(ctx context.Context, event *domain.Event, userID string) {
	if s.emailService == nil || event == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("confirmation email skipped", "user_id", userID, "err", err)
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		Email:      user.Email,
		FirstName:  user.FirstName,
		EventTitle: event.Title,
		EventDate:  event.Date.Format("2006-01-02"),
		EventTime:  event.Time,
		Location:   event.Location,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.Warn("confirmation email failed", "user_id", userID, "event_id", event.ID, "err", err)
	}
}
