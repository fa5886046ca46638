// AngelaMos | 2026
// cascade.go

package club

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

// LeavePlan partitions the club events a departing member joined.
type LeavePlan struct {
	DeleteEventIDs  []string
	DetachEventIDs  []string
	SkippedEventIDs []string
}

func (p LeavePlan) Empty() bool {
	return len(p.DeleteEventIDs) == 0 && len(p.DetachEventIDs) == 0
}

// PlanLeave decides what happens to each joined club event when userID leaves.
// Any event in progress refuses the whole leave. Ended events are left alone,
// future events the user hosts are deleted and the remaining future events
// lose only the user's participation.
func PlanLeave(userID string, events []EventWindow, now time.Time) (LeavePlan, error) {
	var plan LeavePlan

	for _, e := range events {
		switch {
		case e.InProgress(now):
			return LeavePlan{}, fmt.Errorf(
				"cannot leave while a club event is in progress: %w",
				core.ErrConflict,
			)
		case e.Ended(now):
			plan.SkippedEventIDs = append(plan.SkippedEventIDs, e.ID)
		case e.HostID == userID:
			plan.DeleteEventIDs = append(plan.DeleteEventIDs, e.ID)
		default:
			plan.DetachEventIDs = append(plan.DetachEventIDs, e.ID)
		}
	}

	return plan, nil
}
