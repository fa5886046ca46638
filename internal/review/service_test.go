// AngelaMos | 2026
// service_test.go

package review

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

var baseTime = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

type fakeRepository struct {
	reviews      map[string]*Review
	events       map[string]*EventInfo
	participants map[string]map[string]bool
	members      map[string]map[string]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		reviews:      map[string]*Review{},
		events:       map[string]*EventInfo{},
		participants: map[string]map[string]bool{},
		members:      map[string]map[string]bool{},
	}
}

func (f *fakeRepository) Create(_ context.Context, review *Review) error {
	for _, r := range f.reviews {
		if r.EventID == review.EventID && r.UserID == review.UserID {
			return fmt.Errorf("create review: %w", core.ErrDuplicateKey)
		}
	}
	cp := *review
	f.reviews[review.ID] = &cp
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (*Review, error) {
	r, ok := f.reviews[id]
	if !ok {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepository) Exists(_ context.Context, eventID, userID string) (bool, error) {
	for _, r := range f.reviews {
		if r.EventID == eventID && r.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) List(
	_ context.Context,
	_ ListReviewsParams,
	_ string,
) ([]Review, int, error) {
	var out []Review
	for _, r := range f.reviews {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (f *fakeRepository) Update(_ context.Context, review *Review) error {
	cp := *review
	f.reviews[review.ID] = &cp
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	delete(f.reviews, id)
	return nil
}

func (f *fakeRepository) GetEventInfo(_ context.Context, eventID string) (*EventInfo, error) {
	e, ok := f.events[eventID]
	if !ok {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepository) IsParticipant(_ context.Context, eventID, userID string) (bool, error) {
	return f.participants[eventID][userID], nil
}

func (f *fakeRepository) IsClubMember(_ context.Context, clubID, userID string) (bool, error) {
	return f.members[clubID][userID], nil
}

type fixture struct {
	svc     *Service
	repo    *fakeRepository
	eventID string
	host    string
	guest   string
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		repo:    newFakeRepository(),
		eventID: uuid.NewString(),
		host:    uuid.NewString(),
		guest:   uuid.NewString(),
	}
	f.repo.events[f.eventID] = &EventInfo{
		ID:      f.eventID,
		HostID:  f.host,
		EndTime: baseTime,
	}
	f.repo.participants[f.eventID] = map[string]bool{f.host: true, f.guest: true}

	f.svc = NewService(f.repo, nil)
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *fixture) request() CreateReviewRequest {
	return CreateReviewRequest{EventID: f.eventID, Score: 4, Title: "Good pace"}
}

func TestCreateReviewGate(t *testing.T) {
	ctx := context.Background()

	t.Run("before end", func(t *testing.T) {
		f := newFixture(baseTime.Add(-time.Minute))
		_, err := f.svc.Create(ctx, f.request(), f.guest)
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("by host", func(t *testing.T) {
		f := newFixture(baseTime.Add(time.Hour))
		_, err := f.svc.Create(ctx, f.request(), f.host)
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("not a participant", func(t *testing.T) {
		f := newFixture(baseTime.Add(time.Hour))
		_, err := f.svc.Create(ctx, f.request(), uuid.NewString())
		assert.ErrorIs(t, err, core.ErrConflict)
	})

	t.Run("missing event", func(t *testing.T) {
		f := newFixture(baseTime.Add(time.Hour))
		req := f.request()
		req.EventID = uuid.NewString()
		_, err := f.svc.Create(ctx, req, f.guest)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("twice", func(t *testing.T) {
		f := newFixture(baseTime.Add(time.Hour))
		_, err := f.svc.Create(ctx, f.request(), f.guest)
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, f.request(), f.guest)
		assert.ErrorIs(t, err, core.ErrConflict)
		assert.Len(t, f.repo.reviews, 1)
	})
}

func TestGetVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(baseTime.Add(time.Hour))
	r, err := f.svc.Create(ctx, f.request(), f.guest)
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, r.ID, "")
	assert.NoError(t, err)

	clubID := uuid.NewString()
	f.repo.events[f.eventID].ClubID = &clubID
	f.repo.members[clubID] = map[string]bool{f.guest: true}

	_, err = f.svc.Get(ctx, r.ID, uuid.NewString())
	assert.ErrorIs(t, err, core.ErrConflict)
	_, err = f.svc.Get(ctx, r.ID, f.guest)
	assert.NoError(t, err)

	f.repo.events[f.eventID].ClubID = nil
	f.repo.events[f.eventID].IsArchived = true

	_, err = f.svc.Get(ctx, r.ID, "")
	assert.ErrorIs(t, err, core.ErrConflict)
	_, err = f.svc.Get(ctx, r.ID, f.host)
	assert.NoError(t, err)
}

func TestAuthorOnlyChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(baseTime.Add(time.Hour))
	desc := "Would join again"
	req := f.request()
	req.Description = &desc
	r, err := f.svc.Create(ctx, req, f.guest)
	require.NoError(t, err)

	_, err = f.svc.Put(ctx, r.ID, PutReviewRequest{Score: 1, Title: "x"}, f.host)
	assert.ErrorIs(t, err, core.ErrConflict)
	assert.ErrorIs(t, f.svc.Delete(ctx, r.ID, f.host), core.ErrConflict)

	_, err = f.svc.Patch(ctx, r.ID, PatchReviewRequest{Score: core.Null[int]()}, f.guest)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	_, err = f.svc.Patch(ctx, r.ID, PatchReviewRequest{Score: core.Of(0)}, f.guest)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	patched, err := f.svc.Patch(ctx, r.ID, PatchReviewRequest{
		Score:       core.Of(5),
		Description: core.Null[string](),
	}, f.guest)
	require.NoError(t, err)
	assert.Equal(t, 5, patched.Score)
	assert.Equal(t, "Good pace", patched.Title)
	assert.Nil(t, patched.Description)

	put, err := f.svc.Put(ctx, r.ID, PutReviewRequest{Score: 3, Title: "Fine"}, f.guest)
	require.NoError(t, err)
	assert.Equal(t, 3, put.Score)

	require.NoError(t, f.svc.Delete(ctx, r.ID, f.guest))
	assert.Empty(t, f.repo.reviews)
}
