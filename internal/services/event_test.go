package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/domain"
)

type eventFixture struct {
	store     *memStore
	eventRepo *fakeEventRepo
	regRepo   *fakeRegRepo
	svc       domain.EventService
}

func newEventFixture() *eventFixture {
	store := newMemStore()
	f := &eventFixture{
		store:     store,
		eventRepo: &fakeEventRepo{store: store},
		regRepo:   &fakeRegRepo{store: store},
	}
	f.svc = NewEventService(&fakeTx{store: store}, f.eventRepo, f.regRepo, testTimeout)
	return f
}

func validEvent() *domain.Event {
	return &domain.Event{
		Title:       "Go Workshop",
		Description: "Hands-on introduction to Go.",
		Date:        time.Now().Add(72 * time.Hour),
		Time:        "10:00",
		Location:    "Room 4",
		Capacity:    30,
		OrganizerID: "organizer-1",
		Category:    "workshop",
	}
}

func TestCreateEvent(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *domain.Event)
		wantErr error
	}{
		{
			name:   "success",
			mutate: func(e *domain.Event) {},
		},
		{
			name:    "missing organizer",
			mutate:  func(e *domain.Event) { e.OrganizerID = "" },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "past date",
			mutate:  func(e *domain.Event) { e.Date = time.Now().Add(-time.Hour) },
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "unknown category",
			mutate:  func(e *domain.Event) { e.Category = "rave" },
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture()
			event := validEvent()
			tt.mutate(event)

			err := f.svc.CreateEvent(context.Background(), event)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, event.ID)
			// New events always enter the moderation queue with a zero ledger.
			assert.Equal(t, domain.EventStatusPending, event.Status)
			assert.Equal(t, 0, event.CurrentRegistrations)
		})
	}
}

func TestCreateEvent_ForcesPendingStatus(t *testing.T) {
	f := newEventFixture()
	event := validEvent()
	event.Status = domain.EventStatusApproved
	event.CurrentRegistrations = 20

	require.NoError(t, f.svc.CreateEvent(context.Background(), event))
	assert.Equal(t, domain.EventStatusPending, event.Status)
	assert.Equal(t, 0, event.CurrentRegistrations)
}

func TestGetEvent_WithCallerRegistration(t *testing.T) {
	f := newEventFixture()
	event := f.store.addEvent(validEvent())
	active := f.store.addRegistration(&domain.Registration{
		UserID:  "user-1",
		EventID: event.ID,
		Status:  domain.RegistrationStatusActive,
	})

	got, reg, err := f.svc.GetEvent(context.Background(), event.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	require.NotNil(t, reg)
	assert.Equal(t, active.ID, reg.ID)

	// Anonymous callers get no registration.
	_, reg, err = f.svc.GetEvent(context.Background(), event.ID, "")
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestGetEvent_IgnoresCancelledRegistration(t *testing.T) {
	f := newEventFixture()
	event := f.store.addEvent(validEvent())
	f.store.addRegistration(&domain.Registration{
		UserID:  "user-1",
		EventID: event.ID,
		Status:  domain.RegistrationStatusCancelled,
	})

	_, reg, err := f.svc.GetEvent(context.Background(), event.ID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestUpdateEvent_Authorization(t *testing.T) {
	f := newEventFixture()
	event := f.store.addEvent(validEvent())
	newTitle := "Renamed"

	_, err := f.svc.UpdateEvent(context.Background(), event.ID, "stranger", domain.RoleUser, domain.EventUpdate{Title: &newTitle})
	require.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.svc.UpdateEvent(context.Background(), event.ID, "organizer-1", domain.RoleUser, domain.EventUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestUpdateEvent_NonAdminEditResetsApproval(t *testing.T) {
	f := newEventFixture()
	event := validEvent()
	event.Status = domain.EventStatusApproved
	f.store.addEvent(event)
	newTitle := "Edited"

	updated, err := f.svc.UpdateEvent(context.Background(), event.ID, "organizer-1", domain.RoleUser, domain.EventUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusPending, updated.Status)
}

func TestUpdateEvent_AdminEditKeepsStatus(t *testing.T) {
	f := newEventFixture()
	event := validEvent()
	event.Status = domain.EventStatusApproved
	f.store.addEvent(event)
	newTitle := "Edited"

	updated, err := f.svc.UpdateEvent(context.Background(), event.ID, "admin-1", domain.RoleAdmin, domain.EventUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusApproved, updated.Status)
}

func TestUpdateEvent_CapacityBelowLedger(t *testing.T) {
	f := newEventFixture()
	event := validEvent()
	event.CurrentRegistrations = 10
	f.store.addEvent(event)
	capacity := 5

	_, err := f.svc.UpdateEvent(context.Background(), event.ID, "organizer-1", domain.RoleUser, domain.EventUpdate{Capacity: &capacity})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateEvent_PastDateRejected(t *testing.T) {
	f := newEventFixture()
	event := f.store.addEvent(validEvent())
	past := time.Now().Add(-time.Hour)

	_, err := f.svc.UpdateEvent(context.Background(), event.ID, "organizer-1", domain.RoleUser, domain.EventUpdate{Date: &past})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDeleteEvent_CascadesRegistrations(t *testing.T) {
	f := newEventFixture()
	event := f.store.addEvent(validEvent())
	f.store.addRegistration(&domain.Registration{
		UserID:  "user-1",
		EventID: event.ID,
		Status:  domain.RegistrationStatusActive,
	})

	err := f.svc.DeleteEvent(context.Background(), event.ID, "organizer-1", domain.RoleUser)
	require.NoError(t, err)
	assert.Empty(t, f.store.events)
	assert.Empty(t, f.store.regs)
}

func TestDeleteEvent_Forbidden(t *testing.T) {
	f := newEventFixture()
	event := f.store.addEvent(validEvent())

	err := f.svc.DeleteEvent(context.Background(), event.ID, "stranger", domain.RoleUser)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Len(t, f.store.events, 1)
}

func TestListMyEvents(t *testing.T) {
	f := newEventFixture()
	mine := validEvent()
	f.store.addEvent(mine)
	other := validEvent()
	other.OrganizerID = "organizer-2"
	f.store.addEvent(other)

	events, total, err := f.svc.ListMyEvents(context.Background(), "organizer-1", "", domain.PaginationParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, mine.ID, events[0].ID)
}
