// AngelaMos | 2026
// dto.go

package event

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type CreateEventRequest struct {
	Title       string    `json:"title"       validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"required,max=5000"`
	CategoryID  int64     `json:"category_id" validate:"required,gt=0"`
	CityIDs     []int64   `json:"city_ids"    validate:"required,min=1,dive,gt=0"`
	StartTime   time.Time `json:"start_time"  validate:"required"`
	EndTime     time.Time `json:"end_time"    validate:"required"`
	MaxPeople   int       `json:"max_people"  validate:"required,min=1"`
	ClubID      *string   `json:"club_id"     validate:"omitempty,uuid"`
}

// UpdateEventRequest is a PATCH body. Every field may be omitted; none may be
// explicitly null.
type UpdateEventRequest struct {
	Title       core.Nullable[string]    `json:"title"       validate:"omitempty,min=1,max=200"`
	Description core.Nullable[string]    `json:"description" validate:"omitempty,max=5000"`
	CategoryID  core.Nullable[int64]     `json:"category_id" validate:"omitempty,gt=0"`
	CityIDs     core.Nullable[[]int64]   `json:"city_ids"    validate:"omitempty,min=1,dive,gt=0"`
	StartTime   core.Nullable[time.Time] `json:"start_time"`
	EndTime     core.Nullable[time.Time] `json:"end_time"`
	MaxPeople   core.Nullable[int]       `json:"max_people"  validate:"omitempty,min=1"`
}

type ListEventsParams struct {
	core.PageParams
	HostID     string
	ClubID     string
	CategoryID int64
	CityIDs    []int64
}

func ListParamsFromQuery(r *http.Request) (ListEventsParams, error) {
	q := r.URL.Query()

	params := ListEventsParams{
		PageParams: core.PageFromQuery(r),
		HostID:     q.Get("host_id"),
		ClubID:     q.Get("club_id"),
	}

	for name, v := range map[string]string{"host_id": params.HostID, "club_id": params.ClubID} {
		if v == "" {
			continue
		}
		if _, err := uuid.Parse(v); err != nil {
			return params, core.BadRequestError(name + " must be a UUID")
		}
	}

	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return params, core.BadRequestError("category_id must be an integer")
		}
		params.CategoryID = id
	}

	if v := q.Get("city_ids"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return params, core.BadRequestError("city_ids must be integers")
			}
			params.CityIDs = append(params.CityIDs, id)
		}
	}

	return params, nil
}

type EventResponse struct {
	ID          string    `json:"id"`
	HostID      string    `json:"host_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  int64     `json:"category_id"`
	CityIDs     []int64   `json:"city_ids"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	MaxPeople   int       `json:"max_people"`
	ClubID      *string   `json:"club_id"`
	IsArchived  bool      `json:"is_archived"`
}

type ParticipantResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

func ToEventResponse(e *Event) EventResponse {
	cityIDs := e.CityIDs
	if cityIDs == nil {
		cityIDs = []int64{}
	}
	return EventResponse{
		ID:          e.ID,
		HostID:      e.HostID,
		Title:       e.Title,
		Description: e.Description,
		CategoryID:  e.CategoryID,
		CityIDs:     cityIDs,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		MaxPeople:   e.MaxPeople,
		ClubID:      e.ClubID,
		IsArchived:  e.IsArchived,
	}
}

func ToEventResponseList(events []Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, ToEventResponse(&events[i]))
	}
	return out
}

func ToParticipantResponseList(ps []Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, ParticipantResponse{
			UserID:   p.UserID,
			Name:     p.Name,
			JoinedAt: p.JoinedAt,
		})
	}
	return out
}
