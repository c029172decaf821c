package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"eventhub/internal/domain"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is shared in-memory state for the fake repositories. The fake
// transactor serializes access and restores a snapshot when the transaction
// function fails, mirroring rollback.
type memStore struct {
	mu     sync.Mutex
	events map[string]*domain.Event
	regs   map[string]*domain.Registration
	users  map[string]*domain.User
	nextID int
}

func newMemStore() *memStore {
	return &memStore{
		events: make(map[string]*domain.Event),
		regs:   make(map[string]*domain.Registration),
		users:  make(map[string]*domain.User),
	}
}

func (s *memStore) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *memStore) addUser(u *domain.User) *domain.User {
	if u.ID == "" {
		u.ID = s.id("user")
	}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addEvent(e *domain.Event) *domain.Event {
	if e.ID == "" {
		e.ID = s.id("ev")
	}
	s.events[e.ID] = e
	return e
}

func (s *memStore) addRegistration(r *domain.Registration) *domain.Registration {
	if r.ID == "" {
		r.ID = s.id("reg")
	}
	s.regs[r.ID] = r
	return r
}

func (s *memStore) snapshot() (map[string]*domain.Event, map[string]*domain.Registration) {
	events := make(map[string]*domain.Event, len(s.events))
	for id, e := range s.events {
		cp := *e
		events[id] = &cp
	}
	regs := make(map[string]*domain.Registration, len(s.regs))
	for id, r := range s.regs {
		cp := *r
		regs[id] = &cp
	}
	return events, regs
}

// fakeTx serializes transactions with a mutex and rolls back the store to a
// snapshot when fn or the simulated commit fails.
type fakeTx struct {
	store     *memStore
	commitErr error
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	events, regs := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.events, t.store.regs = events, regs
		return err
	}
	if t.commitErr != nil {
		t.store.events, t.store.regs = events, regs
		return t.commitErr
	}
	return nil
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	store        *memStore
	incrementErr error
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.store.addEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.store.events[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.store.events {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID, status string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	var out []*domain.Event
	for _, e := range f.store.events {
		if e.OrganizerID != organizerID {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	e, ok := f.store.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if upd.Title != nil {
		e.Title = *upd.Title
	}
	if upd.Description != nil {
		e.Description = *upd.Description
	}
	if upd.Date != nil {
		e.Date = *upd.Date
	}
	if upd.Time != nil {
		e.Time = *upd.Time
	}
	if upd.Location != nil {
		e.Location = *upd.Location
	}
	if upd.Capacity != nil {
		e.Capacity = *upd.Capacity
	}
	if upd.Category != nil {
		e.Category = *upd.Category
	}
	if upd.Price != nil {
		e.Price = *upd.Price
	}
	if upd.Status != nil {
		e.Status = *upd.Status
	}
	e.UpdatedAt = time.Now()
	return e, nil
}

func (f *fakeEventRepo) UpdateStatus(ctx context.Context, id, status, rejectionReason string) (*domain.Event, error) {
	e, ok := f.store.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Status = status
	e.RejectionReason = rejectionReason
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.store.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.store.events, id)
	return nil
}

func (f *fakeEventRepo) IncrementRegistrations(ctx context.Context, id string) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	e, ok := f.store.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.CurrentRegistrations >= e.Capacity {
		return domain.ErrEventFull
	}
	e.CurrentRegistrations++
	return nil
}

func (f *fakeEventRepo) DecrementRegistrations(ctx context.Context, id string) error {
	e, ok := f.store.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	if e.CurrentRegistrations > 0 {
		e.CurrentRegistrations--
	}
	return nil
}

func (f *fakeEventRepo) CountAll(ctx context.Context) (int, error) {
	return len(f.store.events), nil
}

func (f *fakeEventRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	n := 0
	for _, e := range f.store.events {
		if e.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeEventRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.store.events {
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeRegRepo is an in-memory RegistrationRepository for tests.
type fakeRegRepo struct {
	store     *memStore
	createErr error
}

func (f *fakeRegRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.store.regs {
		if existing.UserID == reg.UserID && existing.EventID == reg.EventID {
			return domain.ErrAlreadyRegistered
		}
	}
	f.store.addRegistration(reg)
	return nil
}

func (f *fakeRegRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	if r, ok := f.store.regs[id]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registration, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRegRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	for _, r := range f.store.regs {
		if r.EventID == eventID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r, ok := f.store.regs[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	return nil
}

func (f *fakeRegRepo) Reactivate(ctx context.Context, id, notes string, registrationDate time.Time) (*domain.Registration, error) {
	r, ok := f.store.regs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r.Status = domain.RegistrationStatusActive
	r.Notes = notes
	r.RegistrationDate = registrationDate
	r.PaymentStatus = domain.PaymentStatusPending
	r.AttendanceStatus = domain.AttendanceStatusPending
	return r, nil
}

func (f *fakeRegRepo) ListByUserID(ctx context.Context, userID, status string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	var out []*domain.Registration
	for _, r := range f.store.regs {
		if r.UserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRegRepo) ListByEventID(ctx context.Context, eventID, status string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	var out []*domain.Registration
	for _, r := range f.store.regs {
		if r.EventID != eventID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (f *fakeRegRepo) DeleteByEventID(ctx context.Context, eventID string) error {
	for id, r := range f.store.regs {
		if r.EventID == eventID {
			delete(f.store.regs, id)
		}
	}
	return nil
}

func (f *fakeRegRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	n := 0
	for _, r := range f.store.regs {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	store  *memStore
	hashes map[string]string
}

func newFakeUserRepo(store *memStore) *fakeUserRepo {
	return &fakeUserRepo{store: store, hashes: make(map[string]string)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User, passwordHash string) error {
	for _, u := range f.store.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.store.addUser(user)
	f.hashes[user.ID] = passwordHash
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	for _, u := range f.store.users {
		if u.Email == email {
			return u, f.hashes[u.ID], nil
		}
	}
	return nil, "", domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.store.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, filter domain.UserFilter, params domain.PaginationParams) ([]*domain.User, int, error) {
	var out []*domain.User
	for _, u := range f.store.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id, role string) (*domain.User, error) {
	u, ok := f.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Role = role
	return u, nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	u, ok := f.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.IsActive = active
	return u, nil
}

func (f *fakeUserRepo) CountActive(ctx context.Context) (int, error) {
	n := 0
	for _, u := range f.store.users {
		if u.IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) ListRecent(ctx context.Context, limit int) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.store.users {
		if !u.IsActive {
			continue
		}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// fakeEmailService records sent emails.
type fakeEmailService struct {
	mu            sync.Mutex
	moderation    []*domain.ModerationResultEmailData
	confirmations []*domain.RegistrationConfirmationEmailData
	err           error
}

func (f *fakeEmailService) SendModerationResult(ctx context.Context, data *domain.ModerationResultEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.moderation = append(f.moderation, data)
	return nil
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.confirmations = append(f.confirmations, data)
	return nil
}

// fakeHasher is a trivial PasswordHasher for tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

// fakeTokenIssuer returns a deterministic token.
type fakeTokenIssuer struct{}

func (fakeTokenIssuer) Issue(userID, email, role string, expiry time.Duration) (string, error) {
	return "token-" + userID, nil
}
