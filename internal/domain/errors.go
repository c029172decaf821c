package domain

import "errors"

// Sentinel errors shared across services. Controllers map these to HTTP
// status codes; repositories translate driver errors into them.
var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller lacks rights over the target resource.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput means the request failed business validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEventNotApproved means the event is not approved for registration.
	ErrEventNotApproved = errors.New("event is not approved for registration")

	// ErrEventInPast means the event date has already passed.
	ErrEventInPast = errors.New("event is in the past")

	// ErrEventFull means the event has no remaining capacity.
	ErrEventFull = errors.New("event is fully booked")

	// ErrAlreadyRegistered means a registration already exists for this
	// user and event.
	ErrAlreadyRegistered = errors.New("already registered for this event")

	// ErrTransient means the storage layer could not complete the operation
	// (lock timeout, serialization failure). The request may be retried.
	ErrTransient = errors.New("transient storage conflict, retry later")
)
