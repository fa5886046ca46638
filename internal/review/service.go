// AngelaMos | 2026
// service.go

package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Create accepts a review from a non-host participant once the event has
// ended. The (user_id, event_id) unique key settles concurrent duplicates.
func (s *Service) Create(
	ctx context.Context,
	req CreateReviewRequest,
	userID string,
) (*Review, error) {
	info, err := s.repo.GetEventInfo(ctx, req.EventID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, core.NotFoundError("event")
	}
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, req.EventID, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("already reviewed this event: %w", core.ErrConflict)
	}

	joined, err := s.repo.IsParticipant(ctx, req.EventID, userID)
	if err != nil {
		return nil, err
	}
	if !joined {
		return nil, fmt.Errorf("only participants can review this event: %w", core.ErrConflict)
	}

	if !info.HasEnded(s.now()) {
		return nil, fmt.Errorf("event has not ended yet: %w", core.ErrConflict)
	}

	if info.HostID == userID {
		return nil, fmt.Errorf("the host cannot review their own event: %w", core.ErrConflict)
	}

	review := &Review{
		ID:          uuid.New().String(),
		EventID:     req.EventID,
		UserID:      userID,
		Score:       req.Score,
		Title:       req.Title,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, fmt.Errorf("already reviewed this event: %w", core.ErrConflict)
		}
		return nil, err
	}

	s.logger.Info("review created",
		"review_id", review.ID,
		"event_id", review.EventID,
		"user_id", userID,
	)

	return review, nil
}

func (s *Service) Get(ctx context.Context, reviewID, viewerID string) (*Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	info, err := s.repo.GetEventInfo(ctx, review.EventID)
	if err != nil {
		return nil, err
	}

	if info.ClubID != nil {
		ok, err := viewerCheck(viewerID, func(id string) (bool, error) {
			return s.repo.IsClubMember(ctx, *info.ClubID, id)
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("only club members can view this review: %w", core.ErrConflict)
		}
	}

	if info.IsArchived {
		ok, err := viewerCheck(viewerID, func(id string) (bool, error) {
			return s.repo.IsParticipant(ctx, info.ID, id)
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("only participants can view this review: %w", core.ErrConflict)
		}
	}

	return review, nil
}

// viewerCheck runs check for a signed-in viewer. Anonymous viewers fail.
func viewerCheck(viewerID string, check func(string) (bool, error)) (bool, error) {
	if viewerID == "" {
		return false, nil
	}
	return check(viewerID)
}

func (s *Service) List(
	ctx context.Context,
	params ListReviewsParams,
	viewerID string,
) ([]Review, int, error) {
	return s.repo.List(ctx, params, viewerID)
}

func (s *Service) Put(
	ctx context.Context,
	reviewID string,
	req PutReviewRequest,
	actingUserID string,
) (*Review, error) {
	review, err := s.authored(ctx, reviewID, actingUserID)
	if err != nil {
		return nil, err
	}

	review.Score = req.Score
	review.Title = req.Title
	review.Description = req.Description

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) Patch(
	ctx context.Context,
	reviewID string,
	req PatchReviewRequest,
	actingUserID string,
) (*Review, error) {
	switch {
	case req.Score.IsNull():
		return nil, fmt.Errorf("score cannot be null: %w", core.ErrInvalidInput)
	case req.Title.IsNull():
		return nil, fmt.Errorf("title cannot be null: %w", core.ErrInvalidInput)
	case req.Score.Present() && req.Score.Value == 0:
		return nil, fmt.Errorf("score must be between 1 and 5: %w", core.ErrInvalidInput)
	case req.Title.Present() && req.Title.Value == "":
		return nil, fmt.Errorf("title cannot be empty: %w", core.ErrInvalidInput)
	}

	review, err := s.authored(ctx, reviewID, actingUserID)
	if err != nil {
		return nil, err
	}

	if req.Score.Present() {
		review.Score = req.Score.Value
	}
	if req.Title.Present() {
		review.Title = req.Title.Value
	}
	switch {
	case req.Description.IsNull():
		review.Description = nil
	case req.Description.Present():
		review.Description = &req.Description.Value
	}

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *Service) Delete(ctx context.Context, reviewID, actingUserID string) error {
	if _, err := s.authored(ctx, reviewID, actingUserID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, reviewID)
}

func (s *Service) authored(ctx context.Context, reviewID, userID string) (*Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, fmt.Errorf("only the author can change this review: %w", core.ErrConflict)
	}
	return review, nil
}
