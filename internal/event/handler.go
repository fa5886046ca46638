// AngelaMos | 2026
// handler.go

package event

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/meetup-backend/internal/core"
	"github.com/carterperez-dev/meetup-backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/events", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/", h.List)
			r.Get("/{eventID}", h.Get)
			r.Get("/{eventID}/participants", h.Participants)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Create)
			r.Get("/me", h.ListMine)
			r.Patch("/{eventID}", h.Update)
			r.Delete("/{eventID}", h.Delete)
			r.Post("/{eventID}/join", h.Join)
			r.Post("/{eventID}/out", h.Out)
		})
	})
}

func (h *Handler) decodeCreate(w http.ResponseWriter, r *http.Request) (CreateEventRequest, bool) {
	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCreate(w, r)
	if !ok {
		return
	}

	event, err := h.service.Create(r.Context(), req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.Created(w, ToEventResponse(event))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := ListParamsFromQuery(r)
	if err != nil {
		core.HandleError(w, err, "event")
		return
	}

	events, total, err := h.service.List(r.Context(), params, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.Paginated(w, ToEventResponseList(events), params.Page, params.PageSize, total)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponseList(events))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := core.URLUUID(r, "eventID")
	if !ok {
		core.NotFound(w, "event")
		return
	}

	event, err := h.service.Get(r.Context(), eventID, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponse(event))
}

func (h *Handler) Participants(w http.ResponseWriter, r *http.Request) {
	eventID, ok := core.URLUUID(r, "eventID")
	if !ok {
		core.NotFound(w, "event")
		return
	}

	participants, err := h.service.Participants(
		r.Context(),
		eventID,
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.OK(w, ToParticipantResponseList(participants))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, ok := core.URLUUID(r, "eventID")
	if !ok {
		core.NotFound(w, "event")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	event, err := h.service.Update(r.Context(), eventID, req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.OK(w, ToEventResponse(event))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := core.URLUUID(r, "eventID")
	if !ok {
		core.NotFound(w, "event")
		return
	}

	if err := h.service.Delete(r.Context(), eventID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	eventID, ok := core.URLUUID(r, "eventID")
	if !ok {
		core.NotFound(w, "event")
		return
	}

	if err := h.service.Join(r.Context(), eventID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Out(w http.ResponseWriter, r *http.Request) {
	eventID, ok := core.URLUUID(r, "eventID")
	if !ok {
		core.NotFound(w, "event")
		return
	}

	if err := h.service.Out(r.Context(), eventID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "event")
		return
	}

	core.NoContent(w)
}
