// AngelaMos | 2026
// handler.go

package review

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
	r.Route("/reviews", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/", h.List)
			r.Get("/{reviewID}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Post("/", h.Create)
			r.Put("/{reviewID}", h.Put)
			r.Patch("/{reviewID}", h.Patch)
			r.Delete("/{reviewID}", h.Delete)
		})
	})
}

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.service.Create(r.Context(), req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.Created(w, ToReviewResponse(review))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := core.URLUUID(r, "reviewID")
	if !ok {
		core.NotFound(w, "review")
		return
	}

	review, err := h.service.Get(r.Context(), reviewID, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := ListParamsFromQuery(r)
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	reviews, total, err := h.service.List(r.Context(), params, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.Paginated(w, ToReviewResponseList(reviews), params.Page, params.PageSize, total)
}

func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := core.URLUUID(r, "reviewID")
	if !ok {
		core.NotFound(w, "review")
		return
	}

	var req PutReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.service.Put(r.Context(), reviewID, req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) Patch(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := core.URLUUID(r, "reviewID")
	if !ok {
		core.NotFound(w, "review")
		return
	}

	var req PatchReviewRequest
	if !h.decode(w, r, &req) {
		return
	}

	review, err := h.service.Patch(r.Context(), reviewID, req, middleware.GetUserID(r.Context()))
	if err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.OK(w, ToReviewResponse(review))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := core.URLUUID(r, "reviewID")
	if !ok {
		core.NotFound(w, "review")
		return
	}

	if err := h.service.Delete(r.Context(), reviewID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err, "review")
		return
	}

	core.NoContent(w)
}
