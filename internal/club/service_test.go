// AngelaMos | 2026
// service_test.go

package club

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/meetup-backend/internal/core"
	"github.com/carterperez-dev/meetup-backend/internal/event"
)

var baseTime = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc    *Service
	repo   *fakeRepository
	users  fakeUsers
	events *fakeEvents
	host   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:   newFakeRepository(),
		users:  fakeUsers{},
		events: &fakeEvents{},
		host:   uuid.NewString(),
	}
	f.users[f.host] = true
	f.svc = NewService(f.repo, f.users, f.events, nil)
	f.svc.now = func() time.Time { return baseTime }
	return f
}

func (f *fixture) newUser() string {
	id := uuid.NewString()
	f.users[id] = true
	return id
}

func (f *fixture) createClub(t *testing.T, maxPeople int) *Club {
	t.Helper()
	c, err := f.svc.Create(context.Background(), CreateClubRequest{
		Title:       "Sunday hikers",
		Description: "Trails around the city",
		MaxPeople:   maxPeople,
	}, f.host)
	require.NoError(t, err)
	return c
}

func (f *fixture) addMember(t *testing.T, clubID string) string {
	t.Helper()
	ctx := context.Background()
	id := f.newUser()
	require.NoError(t, f.svc.Apply(ctx, clubID, id))
	require.NoError(t, f.svc.Approve(ctx, clubID, id, f.host))
	return id
}

func TestCreateMakesHostMember(t *testing.T) {
	f := newFixture(t)
	c := f.createClub(t, 5)

	isMember, err := f.svc.IsMember(context.Background(), c.ID, f.host)
	require.NoError(t, err)
	assert.True(t, isMember)

	count, err := f.svc.MemberCount(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// A full club refuses new applications outright, and an applicant already
// waiting when the club fills up is refused at approval.
func TestFullClubRefusesApplyAndApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 2)

	a := f.newUser()
	require.NoError(t, f.svc.Apply(ctx, c.ID, a))
	isApplicant, err := f.svc.IsApplicant(ctx, c.ID, a)
	require.NoError(t, err)
	assert.True(t, isApplicant)

	require.NoError(t, f.svc.Approve(ctx, c.ID, a, f.host))

	b := f.newUser()
	err = f.svc.Apply(ctx, c.ID, b)
	assert.ErrorIs(t, err, core.ErrConflict, "apply is refused once the club is full")

	// b applied before a was approved
	f.repo.memberships[c.ID][b] = StatusApplicant
	err = f.svc.Approve(ctx, c.ID, b, f.host)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.Equal(t, "club is full", core.Reason(err, core.ErrConflict))
	assert.Equal(t, StatusApplicant, f.repo.memberships[c.ID][b])
}

func TestApplyAllowedWhileApprovalsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 2)

	a, b := f.newUser(), f.newUser()
	require.NoError(t, f.svc.Apply(ctx, c.ID, a))
	require.NoError(t, f.svc.Apply(ctx, c.ID, b))

	require.NoError(t, f.svc.Approve(ctx, c.ID, a, f.host))
	assert.ErrorIs(t, f.svc.Approve(ctx, c.ID, b, f.host), core.ErrConflict)
}

func TestApplyTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	u := f.newUser()

	require.NoError(t, f.svc.Apply(ctx, c.ID, u))
	assert.ErrorIs(t, f.svc.Apply(ctx, c.ID, u), core.ErrConflict)
	assert.ErrorIs(t, f.svc.Apply(ctx, c.ID, f.host), core.ErrConflict)
	assert.Len(t, f.repo.memberships[c.ID], 2)
}

func TestApplyMissingClub(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Apply(context.Background(), uuid.NewString(), f.newUser())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestConcurrentApprovalsRespectCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 3)

	applicants := make([]string, 10)
	for i := range applicants {
		applicants[i] = f.newUser()
		require.NoError(t, f.svc.Apply(ctx, c.ID, applicants[i]))
	}

	var wg sync.WaitGroup
	for _, id := range applicants {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.svc.Approve(ctx, c.ID, id, f.host)
		}()
	}
	wg.Wait()

	count, err := f.svc.MemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestApproveAndRejectChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	u := f.newUser()
	require.NoError(t, f.svc.Apply(ctx, c.ID, u))

	assert.ErrorIs(t, f.svc.Approve(ctx, c.ID, u, u), core.ErrConflict)
	assert.ErrorIs(t, f.svc.Approve(ctx, c.ID, uuid.NewString(), f.host), core.ErrNotFound)
	assert.ErrorIs(t, f.svc.Approve(ctx, c.ID, f.newUser(), f.host), core.ErrNotFound)
	assert.ErrorIs(t, f.svc.Approve(ctx, c.ID, f.host, f.host), core.ErrNotFound)

	require.NoError(t, f.svc.Reject(ctx, c.ID, u, f.host))
	assert.NotContains(t, f.repo.memberships[c.ID], u)
	assert.ErrorIs(t, f.svc.Reject(ctx, c.ID, u, f.host), core.ErrNotFound)
}

func TestSoftDeletedMembersAreNotCounted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 2)
	gone := f.addMember(t, c.ID)

	f.repo.deletedUser[gone] = true

	u := f.newUser()
	require.NoError(t, f.svc.Apply(ctx, c.ID, u))
	assert.NoError(t, f.svc.Approve(ctx, c.ID, u, f.host))
}

func TestDelegate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	m := f.addMember(t, c.ID)
	applicant := f.newUser()
	require.NoError(t, f.svc.Apply(ctx, c.ID, applicant))

	assert.ErrorIs(t, f.svc.Delegate(ctx, c.ID, m, m), core.ErrConflict)
	assert.ErrorIs(t, f.svc.Delegate(ctx, c.ID, applicant, f.host), core.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delegate(ctx, c.ID, uuid.NewString(), f.host), core.ErrNotFound)

	require.NoError(t, f.svc.Delegate(ctx, c.ID, m, f.host))
	assert.Equal(t, m, f.repo.clubs[c.ID].HostID)
	assert.Equal(t, StatusMember, f.repo.memberships[c.ID][f.host])

	require.NoError(t, f.svc.Leave(ctx, c.ID, f.host))
}

func TestLeaveRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	applicant := f.newUser()
	require.NoError(t, f.svc.Apply(ctx, c.ID, applicant))

	assert.ErrorIs(t, f.svc.Leave(ctx, uuid.NewString(), applicant), core.ErrNotFound)
	assert.ErrorIs(t, f.svc.Leave(ctx, c.ID, applicant), core.ErrConflict)
	assert.ErrorIs(t, f.svc.Leave(ctx, c.ID, f.newUser()), core.ErrConflict)
	assert.ErrorIs(t, f.svc.Leave(ctx, c.ID, f.host), core.ErrConflict)
}

func TestLeaveCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	m := f.addMember(t, c.ID)

	hour := time.Hour
	f.repo.addEvent(c.ID, EventWindow{
		ID: "past", HostID: m,
		StartTime: baseTime.Add(-3 * hour), EndTime: baseTime.Add(-2 * hour),
	}, m, f.host)
	f.repo.addEvent(c.ID, EventWindow{
		ID: "hosted", HostID: m,
		StartTime: baseTime.Add(2 * hour), EndTime: baseTime.Add(3 * hour),
	}, m, f.host)
	f.repo.addEvent(c.ID, EventWindow{
		ID: "joined", HostID: f.host,
		StartTime: baseTime.Add(24 * hour), EndTime: baseTime.Add(25 * hour),
	}, m, f.host)

	require.NoError(t, f.svc.Leave(ctx, c.ID, m))

	assert.NotContains(t, f.repo.memberships[c.ID], m)
	assert.NotContains(t, f.repo.events, "hosted")
	require.Contains(t, f.repo.events, "joined")
	assert.NotContains(t, f.repo.events["joined"].Participants, m)
	assert.True(t, f.repo.events["joined"].Participants[f.host])
	require.Contains(t, f.repo.events, "past")
	assert.True(t, f.repo.events["past"].Participants[m])
}

func TestLeaveDuringEventChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	m := f.addMember(t, c.ID)

	f.repo.addEvent(c.ID, EventWindow{
		ID: "hosted", HostID: m,
		StartTime: baseTime.Add(2 * time.Hour), EndTime: baseTime.Add(3 * time.Hour),
	}, m)
	f.repo.addEvent(c.ID, EventWindow{
		ID: "running", HostID: f.host,
		StartTime: baseTime.Add(-30 * time.Minute), EndTime: baseTime.Add(30 * time.Minute),
	}, m, f.host)

	err := f.svc.Leave(ctx, c.ID, m)
	assert.ErrorIs(t, err, core.ErrConflict)

	assert.Equal(t, StatusMember, f.repo.memberships[c.ID][m])
	assert.Contains(t, f.repo.events, "hosted")
	assert.True(t, f.repo.events["running"].Participants[m])
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	f.addMember(t, c.ID)

	_, err := f.svc.Update(ctx, c.ID, UpdateClubRequest{Title: core.Null[string]()}, f.host)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = f.svc.Update(ctx, c.ID, UpdateClubRequest{Title: core.Of("x")}, f.newUser())
	assert.ErrorIs(t, err, core.ErrConflict)

	_, err = f.svc.Update(ctx, c.ID, UpdateClubRequest{MaxPeople: core.Of(1)}, f.host)
	assert.ErrorIs(t, err, core.ErrConflict)

	updated, err := f.svc.Update(ctx, c.ID, UpdateClubRequest{
		Title:     core.Of("Weekday hikers"),
		MaxPeople: core.Of(2),
	}, f.host)
	require.NoError(t, err)
	assert.Equal(t, "Weekday hikers", updated.Title)
	assert.Equal(t, 2, updated.MaxPeople)
	assert.Equal(t, "Trails around the city", updated.Description)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)

	f.repo.addEvent(c.ID, EventWindow{
		ID: "running", HostID: f.host,
		StartTime: baseTime.Add(-time.Minute), EndTime: baseTime.Add(time.Hour),
	}, f.host)

	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID, f.newUser()), core.ErrConflict)
	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID, f.host), core.ErrConflict)
	assert.Contains(t, f.repo.clubs, c.ID)

	f.svc.now = func() time.Time { return baseTime.Add(2 * time.Hour) }
	require.NoError(t, f.svc.Delete(ctx, c.ID, f.host))
	assert.NotContains(t, f.repo.clubs, c.ID)
	assert.Empty(t, f.repo.events)
	assert.NotContains(t, f.repo.memberships, c.ID)
}

func TestApplicantsHostOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)
	u := f.newUser()
	require.NoError(t, f.svc.Apply(ctx, c.ID, u))

	_, err := f.svc.Applicants(ctx, c.ID, u)
	assert.ErrorIs(t, err, core.ErrConflict)

	applicants, err := f.svc.Applicants(ctx, c.ID, f.host)
	require.NoError(t, err)
	require.Len(t, applicants, 1)
	assert.Equal(t, u, applicants[0].UserID)

	members, err := f.svc.Members(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestCreateEventDelegates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.createClub(t, 5)

	e, err := f.svc.CreateEvent(ctx, c.ID, event.CreateEventRequest{Title: "Ridge walk"}, f.host)
	require.NoError(t, err)
	assert.Equal(t, "Ridge walk", e.Title)
	assert.Equal(t, []string{c.ID}, f.events.calls)

	_, err = f.svc.CreateEvent(ctx, uuid.NewString(), event.CreateEventRequest{}, f.host)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
