// AngelaMos | 2026
// fake_test.go

package club

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/carterperez-dev/meetup-backend/internal/core"
	"github.com/carterperez-dev/meetup-backend/internal/event"
)

type fakeEvent struct {
	EventWindow
	ClubID       string
	Participants map[string]bool
}

// fakeRepository models the club tables in memory. WithTx serializes callers
// and restores the previous state when fn fails.
type fakeRepository struct {
	mu          sync.Mutex
	clubs       map[string]Club
	memberships map[string]map[string]MembershipStatus
	events      map[string]*fakeEvent
	deletedUser map[string]bool
}

type fakeTx struct {
	*fakeRepository
}

func (t fakeTx) WithTx(_ context.Context, fn func(Repository) error) error {
	return fn(t)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		clubs:       map[string]Club{},
		memberships: map[string]map[string]MembershipStatus{},
		events:      map[string]*fakeEvent{},
		deletedUser: map[string]bool{},
	}
}

func (f *fakeRepository) addEvent(clubID string, w EventWindow, participants ...string) {
	e := &fakeEvent{EventWindow: w, ClubID: clubID, Participants: map[string]bool{}}
	for _, p := range participants {
		e.Participants[p] = true
	}
	f.events[w.ID] = e
}

func (f *fakeRepository) WithTx(_ context.Context, fn func(Repository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	clubs := maps.Clone(f.clubs)
	memberships := make(map[string]map[string]MembershipStatus, len(f.memberships))
	for id, ms := range f.memberships {
		memberships[id] = maps.Clone(ms)
	}
	events := make(map[string]*fakeEvent, len(f.events))
	for id, e := range f.events {
		cp := *e
		cp.Participants = maps.Clone(e.Participants)
		events[id] = &cp
	}

	if err := fn(fakeTx{f}); err != nil {
		f.clubs = clubs
		f.memberships = memberships
		f.events = events
		return err
	}
	return nil
}

func (f *fakeRepository) Create(_ context.Context, club *Club) error {
	f.clubs[club.ID] = *club
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Club, error) {
	c, ok := f.clubs[id]
	if !ok {
		return nil, fmt.Errorf("get club: %w", core.ErrNotFound)
	}
	return &c, nil
}

func (f *fakeRepository) GetByIDForUpdate(ctx context.Context, id string) (*Club, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepository) List(_ context.Context, _ ListClubsParams) ([]Club, int, error) {
	out := make([]Club, 0, len(f.clubs))
	for _, c := range f.clubs {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListByMember(_ context.Context, userID string) ([]Club, error) {
	var out []Club
	for id, ms := range f.memberships {
		if ms[userID] == StatusMember {
			out = append(out, f.clubs[id])
		}
	}
	return out, nil
}

func (f *fakeRepository) Update(_ context.Context, club *Club) error {
	f.clubs[club.ID] = *club
	return nil
}

func (f *fakeRepository) UpdateHost(_ context.Context, clubID, hostID string) error {
	c := f.clubs[clubID]
	c.HostID = hostID
	f.clubs[clubID] = c
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	for eventID, e := range f.events {
		if e.ClubID == id {
			delete(f.events, eventID)
		}
	}
	delete(f.memberships, id)
	delete(f.clubs, id)
	return nil
}

func (f *fakeRepository) GetMembership(
	_ context.Context,
	clubID, userID string,
) (*Membership, error) {
	status, ok := f.memberships[clubID][userID]
	if !ok || f.deletedUser[userID] {
		return nil, fmt.Errorf("get membership: %w", core.ErrNotFound)
	}
	return &Membership{ClubID: clubID, UserID: userID, Status: status}, nil
}

func (f *fakeRepository) GetMembershipForUpdate(
	ctx context.Context,
	clubID, userID string,
) (*Membership, error) {
	return f.GetMembership(ctx, clubID, userID)
}

func (f *fakeRepository) CreateMembership(_ context.Context, m *Membership) error {
	ms, ok := f.memberships[m.ClubID]
	if !ok {
		ms = map[string]MembershipStatus{}
		f.memberships[m.ClubID] = ms
	}
	if _, exists := ms[m.UserID]; exists {
		return fmt.Errorf("create membership: %w", core.ErrDuplicateKey)
	}
	ms[m.UserID] = m.Status
	return nil
}

func (f *fakeRepository) UpdateMembershipStatus(
	_ context.Context,
	clubID, userID string,
	status MembershipStatus,
) error {
	if _, ok := f.memberships[clubID][userID]; !ok {
		return fmt.Errorf("update membership: %w", core.ErrNotFound)
	}
	f.memberships[clubID][userID] = status
	return nil
}

func (f *fakeRepository) DeleteMembership(_ context.Context, clubID, userID string) error {
	if _, ok := f.memberships[clubID][userID]; !ok {
		return fmt.Errorf("delete membership: %w", core.ErrNotFound)
	}
	delete(f.memberships[clubID], userID)
	return nil
}

func (f *fakeRepository) CountMembers(_ context.Context, clubID string) (int, error) {
	count := 0
	for userID, status := range f.memberships[clubID] {
		if status == StatusMember && !f.deletedUser[userID] {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) ListMembers(
	_ context.Context,
	clubID string,
	status MembershipStatus,
) ([]Member, error) {
	var out []Member
	for userID, s := range f.memberships[clubID] {
		if s == status && !f.deletedUser[userID] {
			out = append(out, Member{UserID: userID, Status: s})
		}
	}
	return out, nil
}

func (f *fakeRepository) ListJoinedEvents(
	_ context.Context,
	clubID, userID string,
) ([]EventWindow, error) {
	var out []EventWindow
	for _, e := range f.events {
		if e.ClubID == clubID && e.Participants[userID] {
			out = append(out, e.EventWindow)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListEvents(_ context.Context, clubID string) ([]EventWindow, error) {
	var out []EventWindow
	for _, e := range f.events {
		if e.ClubID == clubID {
			out = append(out, e.EventWindow)
		}
	}
	return out, nil
}

func (f *fakeRepository) ApplyLeave(_ context.Context, userID string, plan LeavePlan) error {
	for _, id := range plan.DeleteEventIDs {
		delete(f.events, id)
	}
	for _, id := range plan.DetachEventIDs {
		delete(f.events[id].Participants, userID)
	}
	return nil
}

type fakeUsers map[string]bool

func (f fakeUsers) Exists(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

type fakeEvents struct {
	calls []string
}

func (f *fakeEvents) CreateForClub(
	_ context.Context,
	clubID string,
	req event.CreateEventRequest,
	hostID string,
) (*event.Event, error) {
	f.calls = append(f.calls, clubID)
	return &event.Event{ID: "created", HostID: hostID, Title: req.Title, ClubID: &clubID}, nil
}
