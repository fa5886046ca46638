// AngelaMos | 2026
// entity.go

package club

import (
	"time"
)

type MembershipStatus string

const (
	StatusApplicant MembershipStatus = "APPLICANT"
	StatusMember    MembershipStatus = "MEMBER"
)

type Club struct {
	ID          string    `db:"id"`
	HostID      string    `db:"host_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	MaxPeople   int       `db:"max_people"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (c *Club) IsHost(userID string) bool {
	return c.HostID == userID
}

type Membership struct {
	ClubID    string           `db:"club_id"`
	UserID    string           `db:"user_id"`
	Status    MembershipStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// Member is a membership row joined with the user's display name.
type Member struct {
	UserID   string           `db:"user_id"`
	Name     string           `db:"name"`
	Status   MembershipStatus `db:"status"`
	JoinedAt time.Time        `db:"created_at"`
}

// EventWindow is the slice of a club event the leave cascade needs.
type EventWindow struct {
	ID        string    `db:"id"`
	HostID    string    `db:"host_id"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
}

func (w EventWindow) InProgress(now time.Time) bool {
	return w.StartTime.Before(now) && now.Before(w.EndTime)
}

func (w EventWindow) Ended(now time.Time) bool {
	return !w.EndTime.After(now)
}
