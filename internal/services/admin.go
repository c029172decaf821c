package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/domain"
)

const dashboardRecentLimit = 5

type adminService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.RegistrationRepository
	userRepo       domain.UserRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAdminService creates the moderation gate and user administration
// service. Approve and Reject only change event status; the capacity ledger
// is untouched.
func NewAdminService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AdminService {
	return &adminService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *adminService) ListPendingEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter := domain.EventFilter{Status: domain.EventStatusPending, SortBy: "created_at", SortOrder: "desc"}
	return s.eventRepo.List(ctx, filter, params)
}

func (s *adminService) ApproveEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.moderate(ctx, eventID, domain.EventStatusApproved, "")
}

func (s *adminService) RejectEvent(ctx context.Context, eventID, reason string) (*domain.Event, error) {
	return s.moderate(ctx, eventID, domain.EventStatusRejected, reason)
}

func (s *adminService) moderate(ctx context.Context, eventID, status, reason string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.UpdateStatus(ctx, eventID, status, reason)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event status: %w", err)
	}
	s.notifyOrganizer(ctx, event, reason)
	return event, nil
}

// notifyOrganizer emails the moderation result. Best-effort: failures are
// logged, never returned.
func (s *adminService) notifyOrganizer(ctx context.Context, event *domain.Event, reason string) {
	if s.emailService == nil {
		return
	}
	organizer, err := s.userRepo.GetByID(ctx, event.OrganizerID)
	if err != nil {
		s.logger.Warn("moderation email skipped", "event_id", event.ID, "err", err)
		return
	}
	data := &domain.ModerationResultEmailData{
		Email:      organizer.Email,
		FirstName:  organizer.FirstName,
		EventTitle: event.Title,
		Approved:   event.Status == domain.EventStatusApproved,
		Reason:     reason,
	}
	if err := s.emailService.SendModerationResult(ctx, data); err != nil {
		s.logger.Warn("moderation email failed", "event_id", event.ID, "err", err)
	}
}

func (s *adminService) ListUsers(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) ([]*domain.User, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.userRepo.List(ctx, filter, params)
}

func (s *adminService) UpdateUserRole(ctx context.Context, userID, role string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: invalid role %q", domain.ErrInvalidInput, role)
	}
	user, err := s.userRepo.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user role: %w", err)
	}
	return user, nil
}

func (s *adminService) DeactivateUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.SetActive(ctx, userID, false)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("deactivate user: %w", err)
	}
	return user, nil
}

func (s *adminService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	totalUsers, err := s.userRepo.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	totalEvents, err := s.eventRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	pendingEvents, err := s.eventRepo.CountByStatus(ctx, domain.EventStatusPending)
	if err != nil {
		return nil, fmt.Errorf("count pending events: %w", err)
	}
	totalRegs, err := s.regRepo.CountByStatus(ctx, domain.RegistrationStatusActive)
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}
	recentEvents, err := s.eventRepo.ListRecent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	recentUsers, err := s.userRepo.ListRecent(ctx, dashboardRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}

	return &domain.Dashboard{
		Stats: domain.DashboardStats{
			TotalUsers:         totalUsers,
			TotalEvents:        totalEvents,
			PendingEvents:      pendingEvents,
			TotalRegistrations: totalRegs,
		},
		RecentEvents: recentEvents,
		RecentUsers:  recentUsers,
	}, nil
}
