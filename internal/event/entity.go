// AngelaMos | 2026
// entity.go

package event

import (
	"time"
)

type Event struct {
	ID          string    `db:"id"`
	HostID      string    `db:"host_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	CategoryID  int64     `db:"category_id"`
	CityIDs     []int64   `db:"-"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	MaxPeople   int       `db:"max_people"`
	ClubID      *string   `db:"club_id"`
	IsArchived  bool      `db:"is_archived"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (e *Event) IsClubEvent() bool {
	return e.ClubID != nil
}

// HasStarted reports whether now is past the start time. Joining, leaving,
// editing and deleting are only allowed before that.
func (e *Event) HasStarted(now time.Time) bool {
	return now.After(e.StartTime)
}

type Participant struct {
	UserID   string    `db:"user_id"`
	Name     string    `db:"name"`
	JoinedAt time.Time `db:"created_at"`
}

type eventCity struct {
	EventID string `db:"event_id"`
	CityID  int64  `db:"city_id"`
}
