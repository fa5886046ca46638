// AngelaMos | 2026
// service.go

package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type ReferenceChecker interface {
	CategoryExists(ctx context.Context, id int64) (bool, error)
	CitiesExist(ctx context.Context, ids []int64) (bool, error)
}

type Service struct {
	repo      Repository
	reference ReferenceChecker
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	reference ReferenceChecker,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		reference: reference,
		logger:    logger,
		now:       time.Now,
	}
}

// Create validates the payload and writes the event, its city links and the
// host's participation in one transaction.
func (s *Service) Create(
	ctx context.Context,
	req CreateEventRequest,
	hostID string,
) (_ *Event, err error) {
	ctx, span := core.StartSpan(ctx, "event.Create",
		core.UserAttr(hostID),
	)
	defer func() { core.EndSpan(span, err) }()

	cityIDs := dedupeCityIDs(req.CityIDs)

	if err := s.checkReferences(ctx, &req.CategoryID, cityIDs); err != nil {
		return nil, err
	}

	if req.ClubID != nil {
		exists, err := s.repo.ClubExists(ctx, *req.ClubID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, core.NotFoundError("club")
		}

		member, err := s.repo.IsClubMember(ctx, *req.ClubID, hostID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, fmt.Errorf(
				"only club members can create club events: %w",
				core.ErrConflict,
			)
		}
	}

	if err := checkWindow(req.StartTime, req.EndTime, s.now(), true); err != nil {
		return nil, err
	}

	event := &Event{
		ID:          uuid.New().String(),
		HostID:      hostID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		CityIDs:     cityIDs,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		MaxPeople:   req.MaxPeople,
		ClubID:      req.ClubID,
	}

	err = s.repo.WithTx(ctx, func(tx Repository) error {
		if req.ClubID != nil {
			member, err := tx.IsClubMember(ctx, *req.ClubID, hostID)
			if err != nil {
				return err
			}
			if !member {
				return fmt.Errorf(
					"only club members can create club events: %w",
					core.ErrConflict,
				)
			}
		}

		if err := tx.Create(ctx, event); err != nil {
			return err
		}
		if err := tx.SetCities(ctx, event.ID, cityIDs); err != nil {
			return err
		}
		return tx.AddParticipant(ctx, event.ID, hostID)
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("event created",
		"event_id", event.ID,
		"host_id", hostID,
		"club_id", event.ClubID,
	)

	return event, nil
}

// CreateForClub creates an event scoped to clubID.
func (s *Service) CreateForClub(
	ctx context.Context,
	clubID string,
	req CreateEventRequest,
	hostID string,
) (*Event, error) {
	req.ClubID = &clubID
	return s.Create(ctx, req, hostID)
}

func (s *Service) Get(
	ctx context.Context,
	eventID, viewerID string,
) (*Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.checkVisible(ctx, s.repo, event, viewerID); err != nil {
		return nil, err
	}

	return event, nil
}

func (s *Service) List(
	ctx context.Context,
	params ListEventsParams,
	viewerID string,
) ([]Event, int, error) {
	return s.repo.List(ctx, params, viewerID)
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Event, error) {
	return s.repo.ListJoined(ctx, userID)
}

func (s *Service) Participants(
	ctx context.Context,
	eventID, viewerID string,
) ([]Participant, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.checkVisible(ctx, s.repo, event, viewerID); err != nil {
		return nil, err
	}

	return s.repo.ListParticipants(ctx, eventID)
}

// Join adds userID to the event. The event row stays locked from the
// capacity count to the insert.
func (s *Service) Join(ctx context.Context, eventID, userID string) (err error) {
	ctx, span := core.StartSpan(ctx, "event.Join",
		core.EventAttr(eventID),
		core.UserAttr(userID),
	)
	defer func() { core.EndSpan(span, err) }()

	return s.repo.WithTx(ctx, func(tx Repository) error {
		event, err := tx.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if event.IsClubEvent() {
			member, err := tx.IsClubMember(ctx, *event.ClubID, userID)
			if err != nil {
				return err
			}
			if !member {
				return fmt.Errorf(
					"only club members can join this event: %w",
					core.ErrConflict,
				)
			}
		}

		count, err := tx.CountParticipants(ctx, eventID)
		if err != nil {
			return err
		}
		if count >= event.MaxPeople {
			s.logger.Debug("join rejected at capacity",
				"event_id", eventID,
				"participants", count,
				"max_people", event.MaxPeople,
			)
			core.AddSpanEvent(ctx, "capacity.rejected",
				attribute.Int("participants", count),
				attribute.Int("max_people", event.MaxPeople),
			)
			return fmt.Errorf("event is full: %w", core.ErrConflict)
		}

		joined, err := tx.IsParticipant(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if joined {
			return fmt.Errorf("already joined this event: %w", core.ErrConflict)
		}

		if event.HasStarted(s.now()) {
			return fmt.Errorf("event has already started: %w", core.ErrConflict)
		}

		if err := tx.AddParticipant(ctx, eventID, userID); err != nil {
			if errors.Is(err, core.ErrDuplicateKey) {
				return fmt.Errorf("already joined this event: %w", core.ErrConflict)
			}
			return err
		}

		return nil
	})
}

func (s *Service) Out(ctx context.Context, eventID, userID string) error {
	return s.repo.WithTx(ctx, func(tx Repository) error {
		event, err := tx.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if event.HostID == userID {
			return fmt.Errorf("the host cannot leave their event: %w", core.ErrConflict)
		}

		joined, err := tx.IsParticipant(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if !joined {
			return fmt.Errorf("not a participant of this event: %w", core.ErrConflict)
		}

		if event.HasStarted(s.now()) {
			return fmt.Errorf("event has already started: %w", core.ErrConflict)
		}

		return tx.RemoveParticipant(ctx, eventID, userID)
	})
}

// Update applies a partial update. Only the host may edit, and only before
// the event starts.
func (s *Service) Update(
	ctx context.Context,
	eventID string,
	req UpdateEventRequest,
	actingUserID string,
) (*Event, error) {
	if err := rejectNulls(req); err != nil {
		return nil, err
	}

	var categoryID *int64
	if req.CategoryID.Present() {
		categoryID = &req.CategoryID.Value
	}
	var cityIDs []int64
	if req.CityIDs.Present() {
		cityIDs = dedupeCityIDs(req.CityIDs.Value)
	}
	if err := s.checkReferences(ctx, categoryID, cityIDs); err != nil {
		return nil, err
	}

	var updated *Event
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		event, err := tx.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if event.HostID != actingUserID {
			return fmt.Errorf("only the host can edit this event: %w", core.ErrConflict)
		}

		now := s.now()
		if event.HasStarted(now) {
			return fmt.Errorf("event has already started: %w", core.ErrConflict)
		}

		start, end := event.StartTime, event.EndTime
		if req.StartTime.Present() {
			start = req.StartTime.Value
		}
		if req.EndTime.Present() {
			end = req.EndTime.Value
		}
		if err := checkWindow(start, end, now, req.StartTime.Present()); err != nil {
			return err
		}

		if req.MaxPeople.Present() {
			count, err := tx.CountParticipants(ctx, eventID)
			if err != nil {
				return err
			}
			if req.MaxPeople.Value < count {
				return fmt.Errorf(
					"max_people is below the current participant count: %w",
					core.ErrConflict,
				)
			}
			event.MaxPeople = req.MaxPeople.Value
		}

		if req.Title.Present() {
			event.Title = req.Title.Value
		}
		if req.Description.Present() {
			event.Description = req.Description.Value
		}
		if categoryID != nil {
			event.CategoryID = *categoryID
		}
		event.StartTime, event.EndTime = start, end

		if err := tx.Update(ctx, event); err != nil {
			return err
		}

		if req.CityIDs.Present() {
			if err := tx.SetCities(ctx, eventID, cityIDs); err != nil {
				return err
			}
			event.CityIDs = cityIDs
		}

		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, eventID, actingUserID string) error {
	return s.repo.WithTx(ctx, func(tx Repository) error {
		event, err := tx.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return err
		}

		if event.HostID != actingUserID {
			return fmt.Errorf("only the host can delete this event: %w", core.ErrConflict)
		}

		if event.HasStarted(s.now()) {
			return fmt.Errorf("event has already started: %w", core.ErrConflict)
		}

		return tx.Delete(ctx, eventID)
	})
}

func (s *Service) checkVisible(
	ctx context.Context,
	repo Repository,
	event *Event,
	viewerID string,
) error {
	if event.IsClubEvent() {
		if viewerID == "" {
			return fmt.Errorf("only club members can view this event: %w", core.ErrConflict)
		}
		member, err := repo.IsClubMember(ctx, *event.ClubID, viewerID)
		if err != nil {
			return err
		}
		if !member {
			return fmt.Errorf("only club members can view this event: %w", core.ErrConflict)
		}
	}

	if event.IsArchived {
		if viewerID == "" {
			return fmt.Errorf("only participants can view this event: %w", core.ErrConflict)
		}
		joined, err := repo.IsParticipant(ctx, event.ID, viewerID)
		if err != nil {
			return err
		}
		if !joined {
			return fmt.Errorf("only participants can view this event: %w", core.ErrConflict)
		}
	}

	return nil
}

func (s *Service) checkReferences(
	ctx context.Context,
	categoryID *int64,
	cityIDs []int64,
) error {
	if categoryID != nil {
		ok, err := s.reference.CategoryExists(ctx, *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return core.NotFoundError("category")
		}
	}

	if len(cityIDs) > 0 {
		ok, err := s.reference.CitiesExist(ctx, cityIDs)
		if err != nil {
			return err
		}
		if !ok {
			return core.NotFoundError("city")
		}
	}

	return nil
}

// checkWindow requires end after start and, when the start is being set,
// start after now.
func checkWindow(start, end, now time.Time, startChanged bool) error {
	if !end.After(start) {
		return fmt.Errorf("end_time must be after start_time: %w", core.ErrConflict)
	}
	if startChanged && !start.After(now) {
		return fmt.Errorf("start_time must be in the future: %w", core.ErrConflict)
	}
	return nil
}

func rejectNulls(req UpdateEventRequest) error {
	nulls := []struct {
		field string
		null  bool
	}{
		{"title", req.Title.IsNull()},
		{"description", req.Description.IsNull()},
		{"category_id", req.CategoryID.IsNull()},
		{"city_ids", req.CityIDs.IsNull()},
		{"start_time", req.StartTime.IsNull()},
		{"end_time", req.EndTime.IsNull()},
		{"max_people", req.MaxPeople.IsNull()},
	}

	for _, n := range nulls {
		if n.null {
			return fmt.Errorf("%s cannot be null: %w", n.field, core.ErrInvalidInput)
		}
	}

	// omitempty lets zero values through, so the lower bounds are checked here
	switch {
	case req.Title.Present() && req.Title.Value == "":
		return fmt.Errorf("title cannot be empty: %w", core.ErrInvalidInput)
	case req.MaxPeople.Present() && req.MaxPeople.Value < 1:
		return fmt.Errorf("max_people must be at least 1: %w", core.ErrInvalidInput)
	}
	return nil
}

func dedupeCityIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
