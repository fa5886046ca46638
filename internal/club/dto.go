// AngelaMos | 2026
// dto.go

package club

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type CreateClubRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"required,max=2000"`
	MaxPeople   int    `json:"max_people"  validate:"required,min=1"`
}

type UpdateClubRequest struct {
	Title       core.Nullable[string] `json:"title"       validate:"omitempty,min=1,max=100"`
	Description core.Nullable[string] `json:"description" validate:"omitempty,max=2000"`
	MaxPeople   core.Nullable[int]    `json:"max_people"  validate:"omitempty,min=1"`
}

type ListClubsParams struct {
	core.PageParams
	HostID      string
	Title       string
	Description string
}

func ListParamsFromQuery(r *http.Request) (ListClubsParams, error) {
	q := r.URL.Query()

	params := ListClubsParams{
		PageParams:  core.PageFromQuery(r),
		HostID:      q.Get("host_id"),
		Title:       q.Get("title"),
		Description: q.Get("description"),
	}

	if params.HostID != "" {
		if _, err := uuid.Parse(params.HostID); err != nil {
			return params, core.BadRequestError("host_id must be a UUID")
		}
	}

	return params, nil
}

type ClubResponse struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	MaxPeople   int       `json:"max_people"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID   string           `json:"user_id"`
	Name     string           `json:"name"`
	Status   MembershipStatus `json:"status"`
	JoinedAt time.Time        `json:"joined_at"`
}

func ToClubResponse(c *Club) ClubResponse {
	return ClubResponse{
		ID:          c.ID,
		HostID:      c.HostID,
		Title:       c.Title,
		Description: c.Description,
		MaxPeople:   c.MaxPeople,
		CreatedAt:   c.CreatedAt,
	}
}

func ToClubResponseList(clubs []Club) []ClubResponse {
	out := make([]ClubResponse, 0, len(clubs))
	for i := range clubs {
		out = append(out, ToClubResponse(&clubs[i]))
	}
	return out
}

func ToMemberResponseList(members []Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, MemberResponse(m))
	}
	return out
}
