// AngelaMos | 2026
// handler.go

package club

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/meetup-backend/internal/core"
	"github.com/carterperez-dev/meetup-backend/internal/event"
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
) {
	r.Route("/clubs", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{clubID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Create)
			r.Get("/me", h.ListMine)
			r.Patch("/{clubID}", h.Update)
			r.Delete("/{clubID}", h.Delete)

			r.Post("/{clubID}/application", h.Apply)
			r.Post("/{clubID}/leave", h.Leave)
			r.Post("/{clubID}/delegate/{userID}", withTarget(h.service.Delegate))

			r.Get("/{clubID}/members", h.Members)
			r.Get("/{clubID}/applicants", h.Applicants)
			r.Post("/{clubID}/applicants/{userID}/approve", withTarget(h.service.Approve))
			r.Post("/{clubID}/applicants/{userID}/reject", withTarget(h.service.Reject))

			r.Post("/{clubID}/events", h.CreateEvent)
		})
	})
}

// decode reads a JSON body into dst and validates it, writing a 400 on
// failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func clubIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := core.URLUUID(r, "clubID")
	if !ok {
		core.NotFound(w, "club")
	}
	return id, ok
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClubRequest
	if !h.decode(w, r, &req) {
		return
	}

	club, err := h.service.Create(r.Context(), req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.Created(w, ToClubResponse(club))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	club, err := h.service.Get(r.Context(), clubID)
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.OK(w, ToClubResponse(club))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := ListParamsFromQuery(r)
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	clubs, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.Paginated(w, ToClubResponseList(clubs), params.Page, params.PageSize, total)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.OK(w, ToClubResponseList(clubs))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateClubRequest
	if !h.decode(w, r, &req) {
		return
	}

	club, err := h.service.Update(r.Context(), clubID, req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.OK(w, ToClubResponse(club))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), clubID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Apply(r.Context(), clubID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Leave(r.Context(), clubID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.NoContent(w)
}

type memberAction func(ctx context.Context, clubID, userID, actingUserID string) error

// withTarget adapts a host action on {userID} into a handler.
func withTarget(action memberAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, ok := clubIDParam(w, r)
		if !ok {
			return
		}

		userID, ok := core.URLUUID(r, "userID")
		if !ok {
			core.NotFound(w, "user")
			return
		}

		err := action(r.Context(), clubID, userID, middleware.GetUserID(r.Context()))
		if err != nil {
			core.HandleError(w, err, "club")
			return
		}

		core.NoContent(w)
	}
}

func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	members, err := h.service.Members(r.Context(), clubID)
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.OK(w, ToMemberResponseList(members))
}

func (h *Handler) Applicants(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	applicants, err := h.service.Applicants(
		r.Context(),
		clubID,
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.OK(w, ToMemberResponseList(applicants))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	clubID, ok := clubIDParam(w, r)
	if !ok {
		return
	}

	var req event.CreateEventRequest
	if !h.decode(w, r, &req) {
		return
	}

	e, err := h.service.CreateEvent(r.Context(), clubID, req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "club")
		return
	}

	core.Created(w, event.ToEventResponse(e))
}
