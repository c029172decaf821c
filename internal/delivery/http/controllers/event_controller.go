package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// timeRegex matches a 24h HH:MM time string.
var timeRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Location     string    `json:"location"`
	Capacity     int       `json:"capacity"`
	Category     string    `json:"category"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	Tags         []string  `json:"tags"`
	Requirements []string  `json:"requirements"`
	IsVirtual    bool      `json:"is_virtual"`
	MeetingLink  string    `json:"meeting_link"`
}

// Validate implements helpers.Validator.
func (r *CreateEventRequest) Validate() []string {
	var errs []string
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Location = strings.TrimSpace(r.Location)
	if len(r.Title) < 3 || len(r.Title) > 200 {
		errs = append(errs, "title must be between 3 and 200 characters")
	}
	if len(r.Description) < 10 || len(r.Description) > 2000 {
		errs = append(errs, "description must be between 10 and 2000 characters")
	}
	if r.Date.IsZero() {
		errs = append(errs, "date is required")
	}
	if !timeRegex.MatchString(r.Time) {
		errs = append(errs, "time must be in HH:MM format")
	}
	if len(r.Location) < 5 || len(r.Location) > 200 {
		errs = append(errs, "location must be between 5 and 200 characters")
	}
	if r.Capacity < 1 || r.Capacity > 10000 {
		errs = append(errs, "capacity must be between 1 and 10000")
	}
	if !domain.ValidEventCategory(r.Category) {
		errs = append(errs, "invalid category")
	}
	if r.Price < 0 {
		errs = append(errs, "price cannot be negative")
	}
	for _, tag := range r.Tags {
		if len(tag) > 50 {
			errs = append(errs, "tag cannot exceed 50 characters")
			break
		}
	}
	for _, req := range r.Requirements {
		if len(req) > 200 {
			errs = append(errs, "requirement cannot exceed 200 characters")
			break
		}
	}
	return errs
}

// Create godoc
// @Summary Create an event
// @Description Creates an event owned by the authenticated user. The event starts in pending status and is not open for registration until approved by an admin.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event fields"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	event := &domain.Event{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Time:         req.Time,
		Location:     req.Location,
		Capacity:     req.Capacity,
		OrganizerID:  identity.UserID,
		Category:     req.Category,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		Tags:         req.Tags,
		Requirements: req.Requirements,
		IsVirtual:    req.IsVirtual,
		MeetingLink:  req.MeetingLink,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// EventsResponse is the success payload for GET /events.
type EventsResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// List godoc
// @Summary List events
// @Description Public filtered listing. Status defaults to approved; pending and rejected events are never shown to unauthenticated browsing.
// @Tags events
// @Produce json
// @Param category query string false "Category"
// @Param location query string false "Location substring (case-insensitive)"
// @Param date query string false "Single day (YYYY-MM-DD)"
// @Param startDate query string false "Range start"
// @Param endDate query string false "Range end"
// @Param priceMin query number false "Minimum price"
// @Param priceMax query number false "Maximum price"
// @Param isVirtual query bool false "Virtual events only"
// @Param search query string false "Free text over title, description, tags"
// @Param sortBy query string false "Sort column" default(date)
// @Param sortOrder query string false "asc or desc" default(asc)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} controllers.EventsResponse
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	filter := helpers.ParseEventFilter(r)
	params := helpers.ParsePagination(r)

	events, total, err := c.Service.ListEvents(r.Context(), filter, params)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// EventDetailResponse is the success payload for GET /events/{eventID}.
type EventDetailResponse struct {
	Event            *domain.Event        `json:"event"`
	UserRegistration *domain.Registration `json:"user_registration"`
}

// Get godoc
// @Summary Get an event
// @Description Returns the event and, when the caller is authenticated, their active registration for it.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventDetailResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) Get(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	callerID := ""
	if identity, ok := middleware.IdentityFromContext(r.Context()); ok {
		callerID = identity.UserID
	}

	event, reg, err := c.Service.GetEvent(r.Context(), eventID, callerID)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventDetailResponse{Event: event, UserRegistration: reg})
}

// UpdateEventRequest is the request body for PUT /events/{eventID}.
// All fields are optional; omitted fields keep their current value.
type UpdateEventRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Date         *time.Time `json:"date"`
	Time         *string    `json:"time"`
	Location     *string    `json:"location"`
	Capacity     *int       `json:"capacity"`
	Category     *string    `json:"category"`
	Price        *float64   `json:"price"`
	ImageURL     *string    `json:"image_url"`
	Tags         []string   `json:"tags"`
	Requirements []string   `json:"requirements"`
	IsVirtual    *bool      `json:"is_virtual"`
	MeetingLink  *string    `json:"meeting_link"`
}

// Validate implements helpers.Validator.
func (r *UpdateEventRequest) Validate() []string {
	var errs []string
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		if len(t) < 3 || len(t) > 200 {
			errs = append(errs, "title must be between 3 and 200 characters")
		}
		*r.Title = t
	}
	if r.Description != nil {
		d := strings.TrimSpace(*r.Description)
		if len(d) < 10 || len(d) > 2000 {
			errs = append(errs, "description must be between 10 and 2000 characters")
		}
		*r.Description = d
	}
	if r.Time != nil && !timeRegex.MatchString(*r.Time) {
		errs = append(errs, "time must be in HH:MM format")
	}
	if r.Location != nil {
		l := strings.TrimSpace(*r.Location)
		if len(l) < 5 || len(l) > 200 {
			errs = append(errs, "location must be between 5 and 200 characters")
		}
		*r.Location = l
	}
	if r.Capacity != nil && (*r.Capacity < 1 || *r.Capacity > 10000) {
		errs = append(errs, "capacity must be between 1 and 10000")
	}
	if r.Category != nil && !domain.ValidEventCategory(*r.Category) {
		errs = append(errs, "invalid category")
	}
	if r.Price != nil && *r.Price < 0 {
		errs = append(errs, "price cannot be negative")
	}
	return errs
}

// Update godoc
// @Summary Update an event
// @Description Only the organizer or an admin may edit. Edits by a non-admin reset the event status to pending, closing registration until re-approved.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	upd := domain.EventUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Date:         req.Date,
		Time:         req.Time,
		Location:     req.Location,
		Capacity:     req.Capacity,
		Category:     req.Category,
		Price:        req.Price,
		ImageURL:     req.ImageURL,
		Tags:         req.Tags,
		Requirements: req.Requirements,
		IsVirtual:    req.IsVirtual,
		MeetingLink:  req.MeetingLink,
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, identity.UserID, identity.Role, upd)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Description Only the organizer or an admin may delete. All registrations for the event are removed in the same transaction.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.DeleteEvent(r.Context(), eventID, identity.UserID, identity.Role); err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// ListMine godoc
// @Summary List the current user's events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} controllers.EventsResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/my [get]
func (c *EventController) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	params := helpers.ParsePagination(r)
	status := r.URL.Query().Get("status")

	events, total, err := c.Service.ListMyEvents(r.Context(), identity.UserID, status, params)
	if err != nil {
		writeDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventsResponse{
		Events:     events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
