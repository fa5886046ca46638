// AngelaMos | 2026
// entity.go

package review

import (
	"time"
)

type Review struct {
	ID          string    `db:"id"`
	EventID     string    `db:"event_id"`
	UserID      string    `db:"user_id"`
	Score       int       `db:"score"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// EventInfo is what the review rules need to know about the reviewed event.
type EventInfo struct {
	ID         string    `db:"id"`
	HostID     string    `db:"host_id"`
	EndTime    time.Time `db:"end_time"`
	ClubID     *string   `db:"club_id"`
	IsArchived bool      `db:"is_archived"`
}

func (e *EventInfo) HasEnded(now time.Time) bool {
	return now.After(e.EndTime)
}
