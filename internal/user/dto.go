// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

// UpdateUserRequest is a PATCH body. name, email and category_id may be
// omitted but not nulled; birthday and city_id accept null to clear.
type UpdateUserRequest struct {
	Name       core.Nullable[string]    `json:"name"        validate:"omitempty,min=1,max=100"`
	Email      core.Nullable[string]    `json:"email"       validate:"omitempty,email,max=255"`
	Birthday   core.Nullable[time.Time] `json:"birthday"`
	CityID     core.Nullable[int64]     `json:"city_id"     validate:"omitempty,gt=0"`
	CategoryID core.Nullable[int64]     `json:"category_id" validate:"omitempty,gt=0"`
}

type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Birthday   *time.Time `json:"birthday"`
	CityID     *int64     `json:"city_id"`
	CategoryID *int64     `json:"category_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PublicUserResponse is what other users see; it omits the email.
type PublicUserResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Birthday   *time.Time `json:"birthday"`
	CityID     *int64     `json:"city_id"`
	CategoryID *int64     `json:"category_id"`
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Birthday:   u.Birthday,
		CityID:     u.CityID,
		CategoryID: u.CategoryID,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func ToPublicUserResponse(u *User) PublicUserResponse {
	return PublicUserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Birthday:   u.Birthday,
		CityID:     u.CityID,
		CategoryID: u.CategoryID,
	}
}
