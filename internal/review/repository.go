// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/meetup-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	List(ctx context.Context, params ListReviewsParams, viewerID string) ([]Review, int, error)
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id string) error

	GetEventInfo(ctx context.Context, eventID string) (*EventInfo, error)
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
	IsClubMember(ctx context.Context, clubID, userID string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const reviewColumns = `r.id, r.event_id, r.user_id, r.score, r.title,
	r.description, r.created_at, r.updated_at`

func (r *repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (id, event_id, user_id, score, title, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		review.ID,
		review.EventID,
		review.UserID,
		review.Score,
		review.Title,
		review.Description,
	).Scan(&review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create review: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews r WHERE r.id = $1`

	var review Review
	err := r.db.GetContext(ctx, &review, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &review, nil
}

func (r *repository) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE event_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, eventID, userID); err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}

	return exists, nil
}

// List returns the reviews the viewer may see. Reviews of club events need
// club membership and reviews of archived events need participation; others
// are dropped without error.
func (r *repository) List(
	ctx context.Context,
	params ListReviewsParams,
	viewerID string,
) ([]Review, int, error) {
	params.Normalize()

	args := []any{core.NullIfEmpty(viewerID)}
	conditions := []string{
		`(e.club_id IS NULL OR EXISTS (
			SELECT 1 FROM club_members cm
			WHERE cm.club_id = e.club_id AND cm.user_id = $1
			  AND cm.status = 'MEMBER'))`,
		`(NOT e.is_archived OR EXISTS (
			SELECT 1 FROM event_participants ep
			WHERE ep.event_id = e.id AND ep.user_id = $1))`,
	}
	argIdx := 2

	if params.EventID != "" {
		conditions = append(conditions, fmt.Sprintf("r.event_id = $%d", argIdx))
		args = append(args, params.EventID)
		argIdx++
	}

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("r.user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	from := `FROM reviews r JOIN events e ON e.id = r.event_id WHERE ` +
		strings.Join(conditions, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+from, args...); err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s
		ORDER BY r.created_at DESC, r.id
		LIMIT $%d OFFSET $%d`,
		reviewColumns, from, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var reviews []Review
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *repository) Update(ctx context.Context, review *Review) error {
	query := `
		UPDATE reviews
		SET score = $2, title = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &review.UpdatedAt, query,
		review.ID,
		review.Score,
		review.Title,
		review.Description,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update review: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) GetEventInfo(ctx context.Context, eventID string) (*EventInfo, error) {
	query := `
		SELECT id, host_id, end_time, club_id, is_archived
		FROM events
		WHERE id = $1`

	var info EventInfo
	err := r.db.GetContext(ctx, &info, query, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	return &info, nil
}

func (r *repository) IsParticipant(ctx context.Context, eventID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM event_participants p ` + core.ActiveUserJoin("p") + `
			WHERE p.event_id = $1 AND p.user_id = $2)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, eventID, userID); err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}

	return exists, nil
}

func (r *repository) IsClubMember(ctx context.Context, clubID, userID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM club_members cm ` + core.ActiveUserJoin("cm") + `
			WHERE cm.club_id = $1 AND cm.user_id = $2 AND cm.status = 'MEMBER')`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, clubID, userID); err != nil {
		return false, fmt.Errorf("check club member: %w", err)
	}

	return exists, nil
}
