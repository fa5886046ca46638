// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package club

import (
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/meetup-backend/internal/core"
	"github.com/carterperez-dev/meetup-backend/internal/event"
	"github.com/carterperez-dev/meetup-backend/internal/testdb"
)

func isParticipant(t *testing.T, db *sqlx.DB, eventID, userID string) bool {
	t.Helper()

	var exists bool
	require.NoError(t, db.GetContext(testdb.Context(t), &exists,
		`SELECT EXISTS (SELECT 1 FROM event_participants
		 WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID,
	))
	return exists
}

func TestConcurrentApprovalsPostgres(t *testing.T) {
	db := testdb.New(t)
	host := testdb.InsertUser(t, db, "host")
	clubID := testdb.InsertClub(t, db, host, 3)

	users := fakeUsers{host: true}
	applicants := make([]string, 10)
	for i := range applicants {
		applicants[i] = testdb.InsertUser(t, db, "applicant")
		users[applicants[i]] = true
		testdb.AddMembership(t, db, clubID, applicants[i], string(StatusApplicant))
	}

	svc := NewService(NewRepository(db), users, nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, len(applicants))
	for i, id := range applicants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = svc.Approve(testdb.Context(t), clubID, id, host)
		}()
	}
	wg.Wait()

	approved := 0
	for _, err := range errs {
		if err == nil {
			approved++
			continue
		}
		assert.ErrorIs(t, err, core.ErrConflict)
	}
	assert.Equal(t, 2, approved)

	count, err := svc.MemberCount(testdb.Context(t), clubID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLeaveCascadePostgres(t *testing.T) {
	db := testdb.New(t)
	ctx := testdb.Context(t)
	svc := NewService(NewRepository(db), fakeUsers{}, nil, nil)

	host := testdb.InsertUser(t, db, "host")
	leaver := testdb.InsertUser(t, db, "leaver")
	clubID := testdb.InsertClub(t, db, host, 10)
	testdb.AddMembership(t, db, clubID, leaver, string(StatusMember))

	now := time.Now()
	hosted := testdb.InsertEvent(t, db, testdb.EventRow{
		HostID: leaver, ClubID: clubID,
		Start: now.Add(time.Hour), End: now.Add(2 * time.Hour),
	})
	testdb.AddParticipant(t, db, hosted, host)
	joined := testdb.InsertEvent(t, db, testdb.EventRow{
		HostID: host, ClubID: clubID,
		Start: now.Add(time.Hour), End: now.Add(2 * time.Hour),
	})
	testdb.AddParticipant(t, db, joined, leaver)
	past := testdb.InsertEvent(t, db, testdb.EventRow{
		HostID: host, ClubID: clubID,
		Start: now.Add(-3 * time.Hour), End: now.Add(-2 * time.Hour),
	})
	testdb.AddParticipant(t, db, past, leaver)

	require.NoError(t, svc.Leave(ctx, clubID, leaver))

	member, err := svc.IsMember(ctx, clubID, leaver)
	require.NoError(t, err)
	assert.False(t, member)

	var remaining int
	require.NoError(t, db.GetContext(ctx, &remaining,
		`SELECT COUNT(*) FROM events WHERE id = $1`, hosted))
	assert.Zero(t, remaining)
	assert.False(t, isParticipant(t, db, hosted, host))

	assert.False(t, isParticipant(t, db, joined, leaver))
	assert.True(t, isParticipant(t, db, joined, host))
	assert.True(t, isParticipant(t, db, past, leaver))
}

func TestLeaveDuringEventPostgres(t *testing.T) {
	db := testdb.New(t)
	ctx := testdb.Context(t)
	svc := NewService(NewRepository(db), fakeUsers{}, nil, nil)

	host := testdb.InsertUser(t, db, "host")
	leaver := testdb.InsertUser(t, db, "leaver")
	clubID := testdb.InsertClub(t, db, host, 10)
	testdb.AddMembership(t, db, clubID, leaver, string(StatusMember))

	now := time.Now()
	future := testdb.InsertEvent(t, db, testdb.EventRow{
		HostID: leaver, ClubID: clubID,
		Start: now.Add(time.Hour), End: now.Add(2 * time.Hour),
	})
	running := testdb.InsertEvent(t, db, testdb.EventRow{
		HostID: host, ClubID: clubID,
		Start: now.Add(-time.Hour), End: now.Add(time.Hour),
	})
	testdb.AddParticipant(t, db, running, leaver)

	assert.ErrorIs(t, svc.Leave(ctx, clubID, leaver), core.ErrConflict)

	member, err := svc.IsMember(ctx, clubID, leaver)
	require.NoError(t, err)
	assert.True(t, member)
	assert.True(t, isParticipant(t, db, future, leaver))
	assert.True(t, isParticipant(t, db, running, leaver))
}

// A join racing a leave must never leave a participation behind for someone
// who is no longer a member.
func TestLeaveRacingJoinPostgres(t *testing.T) {
	db := testdb.New(t)
	clubs := NewService(NewRepository(db), fakeUsers{}, nil, nil)
	events := event.NewService(event.NewRepository(db), nil, nil)

	host := testdb.InsertUser(t, db, "host")
	clubID := testdb.InsertClub(t, db, host, 50)

	now := time.Now()
	eventIDs := make([]string, 3)
	for i := range eventIDs {
		eventIDs[i] = testdb.InsertEvent(t, db, testdb.EventRow{
			HostID: host, ClubID: clubID,
			Start: now.Add(time.Hour), End: now.Add(2 * time.Hour),
		})
	}

	for round := 0; round < 10; round++ {
		leaver := testdb.InsertUser(t, db, "leaver")
		testdb.AddMembership(t, db, clubID, leaver, string(StatusMember))
		testdb.AddParticipant(t, db, eventIDs[0], leaver)

		var wg sync.WaitGroup
		errs := make([]error, len(eventIDs))
		wg.Add(len(eventIDs))
		go func() {
			defer wg.Done()
			errs[0] = clubs.Leave(testdb.Context(t), clubID, leaver)
		}()
		for i := 1; i < len(eventIDs); i++ {
			go func() {
				defer wg.Done()
				errs[i] = events.Join(testdb.Context(t), eventIDs[i], leaver)
			}()
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, core.ErrConflict)
			}
		}

		member, err := clubs.IsMember(testdb.Context(t), clubID, leaver)
		require.NoError(t, err)
		if !member {
			for _, id := range eventIDs {
				assert.False(t, isParticipant(t, db, id, leaver),
					"round %d: participation kept after leave", round)
			}
		}
	}
}
