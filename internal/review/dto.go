// AngelaMos | 2026
// dto.go

package review

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type CreateReviewRequest struct {
	EventID     string  `json:"event_id"    validate:"required,uuid"`
	Score       int     `json:"score"       validate:"required,min=1,max=5"`
	Title       string  `json:"title"       validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// PutReviewRequest replaces every editable field.
type PutReviewRequest struct {
	Score       int     `json:"score"       validate:"required,min=1,max=5"`
	Title       string  `json:"title"       validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type PatchReviewRequest struct {
	Score       core.Nullable[int]    `json:"score"       validate:"omitempty,min=1,max=5"`
	Title       core.Nullable[string] `json:"title"       validate:"omitempty,min=1,max=200"`
	Description core.Nullable[string] `json:"description" validate:"omitempty,max=2000"`
}

type ListReviewsParams struct {
	core.PageParams
	EventID string
	UserID  string
}

func ListParamsFromQuery(r *http.Request) (ListReviewsParams, error) {
	q := r.URL.Query()

	params := ListReviewsParams{
		PageParams: core.PageFromQuery(r),
		EventID:    q.Get("event_id"),
		UserID:     q.Get("user_id"),
	}

	if params.EventID != "" {
		if _, err := uuid.Parse(params.EventID); err != nil {
			return params, core.BadRequestError("event_id must be a UUID")
		}
	}
	if params.UserID != "" {
		if _, err := uuid.Parse(params.UserID); err != nil {
			return params, core.BadRequestError("user_id must be a UUID")
		}
	}

	return params, nil
}

type ReviewResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToReviewResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		EventID:     r.EventID,
		UserID:      r.UserID,
		Score:       r.Score,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
	}
}

func ToReviewResponseList(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, ToReviewResponse(&reviews[i]))
	}
	return out
}
