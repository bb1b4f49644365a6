package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/eventloka/server/internal/api/middleware"
	"github.com/eventloka/server/internal/api/problem"
	"github.com/eventloka/server/internal/domain/events"
)

// EventsHandler serves public event listing and organizer event creation.
type EventsHandler struct {
	events *events.Service
	env    string
}

func NewEventsHandler(eventsService *events.Service, env string) *EventsHandler {
	return &EventsHandler{events: eventsService, env: env}
}

type CreateEventRequest struct {
	Name        string    `json:"name" validate:"required,min=3,max=200"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	Category    string    `json:"category" validate:"required,min=2,max=100"`
	Location    string    `json:"location" validate:"required,min=2,max=255"`
	Price       int64     `json:"price" validate:"min=0"`
	Quota       int       `json:"quota" validate:"required,min=1"`
	StartsAt    time.Time `json:"startsAt" validate:"required"`
	EndsAt      time.Time `json:"endsAt" validate:"required"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,url,max=2048"`
}

type EventResponse struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Price       int64  `json:"price"`
	Quota       int    `json:"quota"`
	StartsAt    string `json:"startsAt"`
	EndsAt      string `json:"endsAt"`
	ImageURL    string `json:"imageUrl"`
	OrganizerID string `json:"organizerId"`
	CreatedAt   string `json:"createdAt"`
}

type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func toEventResponse(event *events.Event) EventResponse {
	return EventResponse{
		ID:          event.ID,
		Slug:        event.Slug,
		Name:        event.Name,
		Description: event.Description,
		Category:    event.Category,
		Location:    event.Location,
		Price:       event.Price,
		Quota:       event.Quota,
		StartsAt:    event.StartsAt.Format(time.RFC3339),
		EndsAt:      event.EndsAt.Format(time.RFC3339),
		ImageURL:    event.ImageURL,
		OrganizerID: event.OrganizerID,
		CreatedAt:   event.CreatedAt.Format(time.RFC3339),
	}
}

// Create handles POST /api/v1/events. Requires an organizer token.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r.Context())
	if claims == nil {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, h.env)
		return
	}

	var req CreateEventRequest
	if !decodeAndValidate(w, r, &req, h.env) {
		return
	}

	event, err := h.events.Create(r.Context(), events.CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Price:       req.Price,
		Quota:       req.Quota,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		ImageURL:    req.ImageURL,
		OrganizerID: claims.Subject,
	})
	if err != nil {
		var filterErr events.FilterError
		if errors.As(err, &filterErr) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid event", nil, h.env,
				problem.WithErrors(map[string]interface{}{filterErr.Field: filterErr.Message}))
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Event creation failed", err, h.env)
		return
	}

	writeJSON(w, r, http.StatusCreated, toEventResponse(event), h.env)
}

// List handles GET /api/v1/events with optional category, location,
// limit, and offset query parameters.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, pagination, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		var filterErr events.FilterError
		if errors.As(err, &filterErr) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid filters", nil, h.env,
				problem.WithErrors(map[string]interface{}{filterErr.Field: filterErr.Message}))
			return
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid filters", err, h.env)
		return
	}

	result, err := h.events.List(r.Context(), filters, pagination)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Failed to list events", err, h.env)
		return
	}

	resp := ListEventsResponse{
		Events: make([]EventResponse, 0, len(result.Events)),
		Total:  result.Total,
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	}
	for i := range result.Events {
		resp.Events = append(resp.Events, toEventResponse(&result.Events[i]))
	}
	writeJSON(w, r, http.StatusOK, resp, h.env)
}

// Get handles GET /api/v1/events/{slug}
func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	event, err := h.events.GetBySlug(r.Context(), slug)
	if err != nil {
		var filterErr events.FilterError
		switch {
		case errors.Is(err, events.ErrNotFound):
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Event not found", nil, h.env)
		case errors.As(err, &filterErr):
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid slug", nil, h.env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Failed to load event", err, h.env)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, toEventResponse(event), h.env)
}
