// AngelaMos | 2026
// service.go

package club

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/meetup-backend/internal/core"
	"github.com/carterperez-dev/meetup-backend/internal/event"
)

type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type EventCreator interface {
	CreateForClub(
		ctx context.Context,
		clubID string,
		req event.CreateEventRequest,
		hostID string,
	) (*event.Event, error)
}

type Service struct {
	repo   Repository
	users  UserChecker
	events EventCreator
	logger *slog.Logger
	now    func() time.Time
}

func NewService(
	repo Repository,
	users UserChecker,
	events EventCreator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		users:  users,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Create stores the club and the host's MEMBER row together.
func (s *Service) Create(
	ctx context.Context,
	req CreateClubRequest,
	hostID string,
) (*Club, error) {
	club := &Club{
		ID:          uuid.New().String(),
		HostID:      hostID,
		Title:       req.Title,
		Description: req.Description,
		MaxPeople:   req.MaxPeople,
	}

	err := s.repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.Create(ctx, club); err != nil {
			return err
		}
		return tx.CreateMembership(ctx, &Membership{
			ClubID: club.ID,
			UserID: hostID,
			Status: StatusMember,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("create club: %w", err)
	}

	s.logger.Info("club created", "club_id", club.ID, "host_id", hostID)

	return club, nil
}

func (s *Service) Get(ctx context.Context, clubID string) (*Club, error) {
	return s.repo.GetByID(ctx, clubID)
}

func (s *Service) List(ctx context.Context, params ListClubsParams) ([]Club, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]Club, error) {
	return s.repo.ListByMember(ctx, userID)
}

// Apply records an APPLICANT row. Capacity is checked here as a fast path
// and again on approval.
func (s *Service) Apply(ctx context.Context, clubID, userID string) (err error) {
	ctx, span := core.StartSpan(ctx, "club.Apply",
		core.ClubAttr(clubID),
		core.UserAttr(userID),
	)
	defer func() { core.EndSpan(span, err) }()

	return s.repo.WithTx(ctx, func(tx Repository) error {
		club, err := tx.GetByIDForUpdate(ctx, clubID)
		if err != nil {
			return err
		}

		_, err = tx.GetMembership(ctx, clubID, userID)
		switch {
		case err == nil:
			return fmt.Errorf("already applied to or a member of this club: %w", core.ErrConflict)
		case !errors.Is(err, core.ErrNotFound):
			return err
		}

		if err := checkCapacity(ctx, tx, club); err != nil {
			return err
		}

		err = tx.CreateMembership(ctx, &Membership{
			ClubID: clubID,
			UserID: userID,
			Status: StatusApplicant,
		})
		if errors.Is(err, core.ErrDuplicateKey) {
			return fmt.Errorf("already applied to or a member of this club: %w", core.ErrConflict)
		}
		return err
	})
}

// Approve promotes an applicant. The club row lock serializes approvals, so
// the capacity check and the status change commit together.
func (s *Service) Approve(
	ctx context.Context,
	clubID, applicantID, actingUserID string,
) (err error) {
	ctx, span := core.StartSpan(ctx, "club.Approve",
		core.ClubAttr(clubID),
		core.UserAttr(applicantID),
	)
	defer func() { core.EndSpan(span, err) }()

	return s.repo.WithTx(ctx, func(tx Repository) error {
		club, err := s.lockApplicant(ctx, tx, clubID, applicantID, actingUserID)
		if err != nil {
			return err
		}

		if err := checkCapacity(ctx, tx, club); err != nil {
			return err
		}

		if err := tx.UpdateMembershipStatus(ctx, clubID, applicantID, StatusMember); err != nil {
			return err
		}

		s.logger.Info("applicant approved", "club_id", clubID, "user_id", applicantID)
		return nil
	})
}

func (s *Service) Reject(ctx context.Context, clubID, applicantID, actingUserID string) error {
	return s.repo.WithTx(ctx, func(tx Repository) error {
		if _, err := s.lockApplicant(ctx, tx, clubID, applicantID, actingUserID); err != nil {
			return err
		}
		return tx.DeleteMembership(ctx, clubID, applicantID)
	})
}

func (s *Service) lockApplicant(
	ctx context.Context,
	tx Repository,
	clubID, applicantID, actingUserID string,
) (*Club, error) {
	club, err := tx.GetByIDForUpdate(ctx, clubID)
	if err != nil {
		return nil, err
	}

	if !club.IsHost(actingUserID) {
		return nil, fmt.Errorf("only the host can manage applicants: %w", core.ErrConflict)
	}

	if err := s.requireUser(ctx, applicantID); err != nil {
		return nil, err
	}

	m, err := tx.GetMembership(ctx, clubID, applicantID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("applicant")
		}
		return nil, err
	}
	if m.Status != StatusApplicant {
		return nil, core.NotFoundError("applicant")
	}

	return club, nil
}

// Delegate hands the host role to another MEMBER. The previous host keeps
// their MEMBER row.
func (s *Service) Delegate(
	ctx context.Context,
	clubID, newHostID, actingUserID string,
) error {
	return s.repo.WithTx(ctx, func(tx Repository) error {
		club, err := tx.GetByIDForUpdate(ctx, clubID)
		if err != nil {
			return err
		}

		if !club.IsHost(actingUserID) {
			return fmt.Errorf("only the host can delegate: %w", core.ErrConflict)
		}

		if err := s.requireUser(ctx, newHostID); err != nil {
			return err
		}

		m, err := tx.GetMembership(ctx, clubID, newHostID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.NotFoundError("member")
			}
			return err
		}
		if m.Status != StatusMember {
			return core.NotFoundError("member")
		}

		if newHostID == club.HostID {
			return fmt.Errorf("user is already the host: %w", core.ErrConflict)
		}

		if err := tx.UpdateHost(ctx, clubID, newHostID); err != nil {
			return err
		}

		s.logger.Info("club host delegated",
			"club_id", clubID,
			"from", actingUserID,
			"to", newHostID,
		)
		return nil
	})
}

// Leave removes a member and resolves their joined club events in the same
// transaction. An event in progress refuses the leave and nothing changes.
func (s *Service) Leave(ctx context.Context, clubID, userID string) (err error) {
	ctx, span := core.StartSpan(ctx, "club.Leave",
		core.ClubAttr(clubID),
		core.UserAttr(userID),
	)
	defer func() { core.EndSpan(span, err) }()

	return s.repo.WithTx(ctx, func(tx Repository) error {
		club, err := tx.GetByIDForUpdate(ctx, clubID)
		if err != nil {
			return err
		}

		m, err := tx.GetMembershipForUpdate(ctx, clubID, userID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}
		if m == nil || m.Status != StatusMember {
			return fmt.Errorf("not a member of this club: %w", core.ErrConflict)
		}

		if club.IsHost(userID) {
			return fmt.Errorf("the host must delegate before leaving: %w", core.ErrConflict)
		}

		events, err := tx.ListJoinedEvents(ctx, clubID, userID)
		if err != nil {
			return err
		}

		plan, err := PlanLeave(userID, events, s.now())
		if err != nil {
			return err
		}
		core.AddSpanEvent(ctx, "leave.planned",
			attribute.Int("events.deleted", len(plan.DeleteEventIDs)),
			attribute.Int("events.detached", len(plan.DetachEventIDs)),
			attribute.Int("events.skipped", len(plan.SkippedEventIDs)),
		)

		if err := tx.DeleteMembership(ctx, clubID, userID); err != nil {
			return err
		}

		if !plan.Empty() {
			if err := tx.ApplyLeave(ctx, userID, plan); err != nil {
				return err
			}
		}

		s.logger.Info("member left club",
			"club_id", clubID,
			"user_id", userID,
			"deleted_events", len(plan.DeleteEventIDs),
			"detached_events", len(plan.DetachEventIDs),
			"skipped_events", len(plan.SkippedEventIDs),
		)
		return nil
	})
}

func (s *Service) Update(
	ctx context.Context,
	clubID string,
	req UpdateClubRequest,
	actingUserID string,
) (*Club, error) {
	switch {
	case req.Title.IsNull():
		return nil, fmt.Errorf("title cannot be null: %w", core.ErrInvalidInput)
	case req.Description.IsNull():
		return nil, fmt.Errorf("description cannot be null: %w", core.ErrInvalidInput)
	case req.MaxPeople.IsNull():
		return nil, fmt.Errorf("max_people cannot be null: %w", core.ErrInvalidInput)
	case req.Title.Present() && req.Title.Value == "":
		return nil, fmt.Errorf("title cannot be empty: %w", core.ErrInvalidInput)
	case req.MaxPeople.Present() && req.MaxPeople.Value < 1:
		return nil, fmt.Errorf("max_people must be at least 1: %w", core.ErrInvalidInput)
	}

	var updated *Club
	err := s.repo.WithTx(ctx, func(tx Repository) error {
		club, err := tx.GetByIDForUpdate(ctx, clubID)
		if err != nil {
			return err
		}

		if !club.IsHost(actingUserID) {
			return fmt.Errorf("only the host can edit this club: %w", core.ErrConflict)
		}

		if req.MaxPeople.Present() {
			count, err := tx.CountMembers(ctx, clubID)
			if err != nil {
				return err
			}
			if req.MaxPeople.Value < count {
				return fmt.Errorf(
					"max_people is below the current member count: %w",
					core.ErrConflict,
				)
			}
			club.MaxPeople = req.MaxPeople.Value
		}
		if req.Title.Present() {
			club.Title = req.Title.Value
		}
		if req.Description.Present() {
			club.Description = req.Description.Value
		}

		if err := tx.Update(ctx, club); err != nil {
			return err
		}

		updated = club
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes the club and everything under it, unless one of its events
// is in progress.
func (s *Service) Delete(ctx context.Context, clubID, actingUserID string) error {
	return s.repo.WithTx(ctx, func(tx Repository) error {
		club, err := tx.GetByIDForUpdate(ctx, clubID)
		if err != nil {
			return err
		}

		if !club.IsHost(actingUserID) {
			return fmt.Errorf("only the host can delete this club: %w", core.ErrConflict)
		}

		events, err := tx.ListEvents(ctx, clubID)
		if err != nil {
			return err
		}

		now := s.now()
		for _, e := range events {
			if e.InProgress(now) {
				return fmt.Errorf(
					"cannot delete a club while one of its events is in progress: %w",
					core.ErrConflict,
				)
			}
		}

		if err := tx.Delete(ctx, clubID); err != nil {
			return err
		}

		s.logger.Info("club deleted", "club_id", clubID, "events", len(events))
		return nil
	})
}

func (s *Service) Applicants(
	ctx context.Context,
	clubID, actingUserID string,
) ([]Member, error) {
	club, err := s.repo.GetByID(ctx, clubID)
	if err != nil {
		return nil, err
	}

	if !club.IsHost(actingUserID) {
		return nil, fmt.Errorf("only the host can view applicants: %w", core.ErrConflict)
	}

	return s.repo.ListMembers(ctx, clubID, StatusApplicant)
}

func (s *Service) Members(ctx context.Context, clubID string) ([]Member, error) {
	if _, err := s.repo.GetByID(ctx, clubID); err != nil {
		return nil, err
	}

	return s.repo.ListMembers(ctx, clubID, StatusMember)
}

func (s *Service) MemberCount(ctx context.Context, clubID string) (int, error) {
	return s.repo.CountMembers(ctx, clubID)
}

func (s *Service) IsMember(ctx context.Context, clubID, userID string) (bool, error) {
	return s.hasStatus(ctx, clubID, userID, StatusMember)
}

func (s *Service) IsApplicant(ctx context.Context, clubID, userID string) (bool, error) {
	return s.hasStatus(ctx, clubID, userID, StatusApplicant)
}

func (s *Service) hasStatus(
	ctx context.Context,
	clubID, userID string,
	status MembershipStatus,
) (bool, error) {
	m, err := s.repo.GetMembership(ctx, clubID, userID)
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.Status == status, nil
}

func (s *Service) CreateEvent(
	ctx context.Context,
	clubID string,
	req event.CreateEventRequest,
	actingUserID string,
) (*event.Event, error) {
	if _, err := s.repo.GetByID(ctx, clubID); err != nil {
		return nil, err
	}

	return s.events.CreateForClub(ctx, clubID, req, actingUserID)
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return core.NotFoundError("user")
	}
	return nil
}

func checkCapacity(ctx context.Context, tx Repository, club *Club) error {
	count, err := tx.CountMembers(ctx, club.ID)
	if err != nil {
		return err
	}
	if count >= club.MaxPeople {
		core.AddSpanEvent(ctx, "capacity.rejected",
			attribute.Int("members", count),
			attribute.Int("max_people", club.MaxPeople),
		)
		return fmt.Errorf("club is full: %w", core.ErrConflict)
	}
	return nil
}
