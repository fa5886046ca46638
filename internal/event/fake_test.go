// AngelaMos | 2026
// fake_test.go

package event

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

// fakeRepository keeps state in maps. WithTx serializes callers and restores
// a snapshot when fn fails, which is enough to model row locks and rollback.
type fakeRepository struct {
	mu           sync.Mutex
	events       map[string]*Event
	participants map[string]map[string]time.Time
	clubs        map[string]map[string]bool
}

type fakeTx struct {
	*fakeRepository
}

func (t fakeTx) WithTx(_ context.Context, fn func(Repository) error) error {
	return fn(t)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		events:       map[string]*Event{},
		participants: map[string]map[string]time.Time{},
		clubs:        map[string]map[string]bool{},
	}
}

func (f *fakeRepository) addClub(clubID string, members ...string) {
	f.clubs[clubID] = map[string]bool{}
	for _, m := range members {
		f.clubs[clubID][m] = true
	}
}

func (f *fakeRepository) WithTx(_ context.Context, fn func(Repository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	events := make(map[string]*Event, len(f.events))
	for id, e := range f.events {
		cp := *e
		cp.CityIDs = slices.Clone(e.CityIDs)
		events[id] = &cp
	}
	participants := make(map[string]map[string]time.Time, len(f.participants))
	for id, ps := range f.participants {
		participants[id] = maps.Clone(ps)
	}

	if err := fn(fakeTx{f}); err != nil {
		f.events = events
		f.participants = participants
		return err
	}
	return nil
}

func (f *fakeRepository) Create(_ context.Context, event *Event) error {
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	cp := *e
	cp.CityIDs = slices.Clone(e.CityIDs)
	return &cp, nil
}

func (f *fakeRepository) GetByIDForUpdate(ctx context.Context, id string) (*Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepository) List(
	_ context.Context,
	_ ListEventsParams,
	_ string,
) ([]Event, int, error) {
	out := make([]Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, len(out), nil
}

func (f *fakeRepository) ListJoined(_ context.Context, userID string) ([]Event, error) {
	var out []Event
	for id, ps := range f.participants {
		if _, ok := ps[userID]; ok {
			out = append(out, *f.events[id])
		}
	}
	return out, nil
}

func (f *fakeRepository) Update(_ context.Context, event *Event) error {
	if _, ok := f.events[event.ID]; !ok {
		return fmt.Errorf("update event: %w", core.ErrNotFound)
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return fmt.Errorf("delete event: %w", core.ErrNotFound)
	}
	delete(f.events, id)
	delete(f.participants, id)
	return nil
}

func (f *fakeRepository) SetCities(_ context.Context, eventID string, cityIDs []int64) error {
	f.events[eventID].CityIDs = slices.Clone(cityIDs)
	return nil
}

func (f *fakeRepository) AddParticipant(_ context.Context, eventID, userID string) error {
	ps, ok := f.participants[eventID]
	if !ok {
		ps = map[string]time.Time{}
		f.participants[eventID] = ps
	}
	if _, exists := ps[userID]; exists {
		return fmt.Errorf("add participant: %w", core.ErrDuplicateKey)
	}
	ps[userID] = time.Now()
	return nil
}

func (f *fakeRepository) RemoveParticipant(_ context.Context, eventID, userID string) error {
	if _, ok := f.participants[eventID][userID]; !ok {
		return fmt.Errorf("remove participant: %w", core.ErrNotFound)
	}
	delete(f.participants[eventID], userID)
	return nil
}

func (f *fakeRepository) CountParticipants(_ context.Context, eventID string) (int, error) {
	return len(f.participants[eventID]), nil
}

func (f *fakeRepository) IsParticipant(_ context.Context, eventID, userID string) (bool, error) {
	_, ok := f.participants[eventID][userID]
	return ok, nil
}

func (f *fakeRepository) ListParticipants(_ context.Context, eventID string) ([]Participant, error) {
	var out []Participant
	for userID, joined := range f.participants[eventID] {
		out = append(out, Participant{UserID: userID, JoinedAt: joined})
	}
	return out, nil
}

func (f *fakeRepository) ClubExists(_ context.Context, clubID string) (bool, error) {
	_, ok := f.clubs[clubID]
	return ok, nil
}

func (f *fakeRepository) IsClubMember(_ context.Context, clubID, userID string) (bool, error) {
	return f.clubs[clubID][userID], nil
}

type fakeReference struct{}

func (fakeReference) CategoryExists(_ context.Context, id int64) (bool, error) {
	return id == 1, nil
}

func (fakeReference) CitiesExist(_ context.Context, ids []int64) (bool, error) {
	for _, id := range ids {
		if id != 10 && id != 20 {
			return false, nil
		}
	}
	return true, nil
}
