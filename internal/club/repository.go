// AngelaMos | 2026
// repository.go

package club

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
	WithTx(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, club *Club) error
	GetByID(ctx context.Context, id string) (*Club, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Club, error)
	List(ctx context.Context, params ListClubsParams) ([]Club, int, error)
	ListByMember(ctx context.Context, userID string) ([]Club, error)
	Update(ctx context.Context, club *Club) error
	UpdateHost(ctx context.Context, clubID, hostID string) error
	Delete(ctx context.Context, id string) error

	GetMembership(ctx context.Context, clubID, userID string) (*Membership, error)
	GetMembershipForUpdate(ctx context.Context, clubID, userID string) (*Membership, error)
	CreateMembership(ctx context.Context, m *Membership) error
	UpdateMembershipStatus(
		ctx context.Context,
		clubID, userID string,
		status MembershipStatus,
	) error
	DeleteMembership(ctx context.Context, clubID, userID string) error
	CountMembers(ctx context.Context, clubID string) (int, error)
	ListMembers(ctx context.Context, clubID string, status MembershipStatus) ([]Member, error)

	ListJoinedEvents(ctx context.Context, clubID, userID string) ([]EventWindow, error)
	ListEvents(ctx context.Context, clubID string) ([]EventWindow, error)
	ApplyLeave(ctx context.Context, userID string, plan LeavePlan) error
}

type repository struct {
	db   core.DBTX
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) WithTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	if r.conn == nil {
		return fn(r)
	}
	return core.InTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

const clubColumns = `c.id, c.host_id, c.title, c.description, c.max_people,
	c.created_at, c.updated_at`

func (r *repository) Create(ctx context.Context, club *Club) error {
	query := `
		INSERT INTO clubs (id, host_id, title, description, max_people)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		club.ID,
		club.HostID,
		club.Title,
		club.Description,
		club.MaxPeople,
	).Scan(&club.CreatedAt, &club.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create club: %w", err)
	}

	return nil
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	id string,
) (*Club, error) {
	var club Club
	err := r.db.GetContext(ctx, &club, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get club: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get club: %w", err)
	}

	return &club, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Club, error) {
	return r.getOne(ctx, `SELECT `+clubColumns+` FROM clubs c WHERE c.id = $1`, id)
}

// GetByIDForUpdate locks the club row for the rest of the transaction.
// Every membership write takes this lock first, so member counts read
// afterwards stay valid until commit.
func (r *repository) GetByIDForUpdate(ctx context.Context, id string) (*Club, error) {
	return r.getOne(
		ctx,
		`SELECT `+clubColumns+` FROM clubs c WHERE c.id = $1 FOR UPDATE`,
		id,
	)
}

func (r *repository) List(
	ctx context.Context,
	params ListClubsParams,
) ([]Club, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.HostID != "" {
		conditions = append(conditions, fmt.Sprintf("c.host_id = $%d", argIdx))
		args = append(args, params.HostID)
		argIdx++
	}

	if params.Title != "" {
		conditions = append(conditions, fmt.Sprintf("c.title ILIKE '%%' || $%d || '%%'", argIdx))
		args = append(args, params.Title)
		argIdx++
	}

	if params.Description != "" {
		conditions = append(
			conditions,
			fmt.Sprintf("c.description ILIKE '%%' || $%d || '%%'", argIdx),
		)
		args = append(args, params.Description)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM clubs c " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count clubs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM clubs c
		%s
		ORDER BY c.created_at DESC, c.id
		LIMIT $%d OFFSET $%d`,
		clubColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var clubs []Club
	if err := r.db.SelectContext(ctx, &clubs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list clubs: %w", err)
	}

	return clubs, total, nil
}

func (r *repository) ListByMember(ctx context.Context, userID string) ([]Club, error) {
	query := `
		SELECT ` + clubColumns + `
		FROM clubs c
		JOIN club_members cm ON cm.club_id = c.id
		WHERE cm.user_id = $1 AND cm.status = 'MEMBER'
		ORDER BY cm.created_at DESC, c.id`

	var clubs []Club
	if err := r.db.SelectContext(ctx, &clubs, query, userID); err != nil {
		return nil, fmt.Errorf("list member clubs: %w", err)
	}

	return clubs, nil
}

func (r *repository) Update(ctx context.Context, club *Club) error {
	query := `
		UPDATE clubs
		SET title = $2, description = $3, max_people = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &club.UpdatedAt, query,
		club.ID,
		club.Title,
		club.Description,
		club.MaxPeople,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update club: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update club: %w", err)
	}

	return nil
}

func (r *repository) UpdateHost(ctx context.Context, clubID, hostID string) error {
	query := `UPDATE clubs SET host_id = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, clubID, hostID)
	if err != nil {
		return fmt.Errorf("update club host: %w", err)
	}

	return requireRow(result, "update club host")
}

// Delete removes the club with its events, their reviews, participations and
// city links, and every membership. Callers run it inside WithTx.
func (r *repository) Delete(ctx context.Context, id string) error {
	clubEvents := `SELECT id FROM events WHERE club_id = $1`

	for _, stmt := range []string{
		`DELETE FROM reviews WHERE event_id IN (` + clubEvents + `)`,
		`DELETE FROM event_participants WHERE event_id IN (` + clubEvents + `)`,
		`DELETE FROM event_cities WHERE event_id IN (` + clubEvents + `)`,
		`DELETE FROM events WHERE club_id = $1`,
		`DELETE FROM club_members WHERE club_id = $1`,
	} {
		if _, err := r.db.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete club: %w", err)
		}
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete club: %w", err)
	}

	return requireRow(result, "delete club")
}

const membershipQuery = `
	SELECT cm.club_id, cm.user_id, cm.status, cm.created_at, cm.updated_at
	FROM club_members cm `

func (r *repository) getMembership(
	ctx context.Context,
	query string,
	clubID, userID string,
) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, query, clubID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get membership: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}

	return &m, nil
}

func (r *repository) GetMembership(
	ctx context.Context,
	clubID, userID string,
) (*Membership, error) {
	query := membershipQuery + core.ActiveUserJoin("cm") + `
		WHERE cm.club_id = $1 AND cm.user_id = $2`
	return r.getMembership(ctx, query, clubID, userID)
}

// GetMembershipForUpdate waits for event joins that hold a share lock on the
// row, and blocks new ones until the transaction ends.
func (r *repository) GetMembershipForUpdate(
	ctx context.Context,
	clubID, userID string,
) (*Membership, error) {
	query := membershipQuery + core.ActiveUserJoin("cm") + `
		WHERE cm.club_id = $1 AND cm.user_id = $2
		FOR UPDATE OF cm`
	return r.getMembership(ctx, query, clubID, userID)
}

func (r *repository) CreateMembership(ctx context.Context, m *Membership) error {
	query := `
		INSERT INTO club_members (club_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, m.ClubID, m.UserID, m.Status).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("create membership: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create membership: %w", err)
	}

	return nil
}

func (r *repository) UpdateMembershipStatus(
	ctx context.Context,
	clubID, userID string,
	status MembershipStatus,
) error {
	query := `
		UPDATE club_members
		SET status = $3, updated_at = NOW()
		WHERE club_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, clubID, userID, status)
	if err != nil {
		return fmt.Errorf("update membership: %w", err)
	}

	return requireRow(result, "update membership")
}

func (r *repository) DeleteMembership(ctx context.Context, clubID, userID string) error {
	query := `DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, clubID, userID)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}

	return requireRow(result, "delete membership")
}

func (r *repository) CountMembers(ctx context.Context, clubID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM club_members cm ` + core.ActiveUserJoin("cm") + `
		WHERE cm.club_id = $1 AND cm.status = 'MEMBER'`

	var count int
	if err := r.db.GetContext(ctx, &count, query, clubID); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}

	return count, nil
}

func (r *repository) ListMembers(
	ctx context.Context,
	clubID string,
	status MembershipStatus,
) ([]Member, error) {
	query := `
		SELECT cm.user_id, au.name, cm.status, cm.created_at
		FROM club_members cm ` + core.ActiveUserJoin("cm") + `
		WHERE cm.club_id = $1 AND cm.status = $2
		ORDER BY cm.created_at, cm.user_id`

	var members []Member
	if err := r.db.SelectContext(ctx, &members, query, clubID, status); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return members, nil
}

func (r *repository) ListJoinedEvents(
	ctx context.Context,
	clubID, userID string,
) ([]EventWindow, error) {
	query := `
		SELECT e.id, e.host_id, e.start_time, e.end_time
		FROM events e
		JOIN event_participants p ON p.event_id = e.id
		WHERE e.club_id = $1 AND p.user_id = $2
		ORDER BY e.start_time
		FOR UPDATE OF e`

	var events []EventWindow
	if err := r.db.SelectContext(ctx, &events, query, clubID, userID); err != nil {
		return nil, fmt.Errorf("list joined club events: %w", err)
	}

	return events, nil
}

func (r *repository) ListEvents(ctx context.Context, clubID string) ([]EventWindow, error) {
	query := `
		SELECT id, host_id, start_time, end_time
		FROM events
		WHERE club_id = $1
		ORDER BY start_time`

	var events []EventWindow
	if err := r.db.SelectContext(ctx, &events, query, clubID); err != nil {
		return nil, fmt.Errorf("list club events: %w", err)
	}

	return events, nil
}

// ApplyLeave deletes planned events with their dependents and removes userID
// from detached ones. Callers run it inside WithTx.
func (r *repository) ApplyLeave(ctx context.Context, userID string, plan LeavePlan) error {
	if len(plan.DeleteEventIDs) > 0 {
		for _, stmt := range []string{
			`DELETE FROM event_participants WHERE event_id IN (?)`,
			`DELETE FROM event_cities WHERE event_id IN (?)`,
			`DELETE FROM events WHERE id IN (?)`,
		} {
			if err := r.execIn(ctx, stmt, plan.DeleteEventIDs); err != nil {
				return fmt.Errorf("delete hosted events: %w", err)
			}
		}
	}

	if len(plan.DetachEventIDs) > 0 {
		query, args, err := sqlx.In(
			`DELETE FROM event_participants WHERE user_id = ? AND event_id IN (?)`,
			userID,
			plan.DetachEventIDs,
		)
		if err != nil {
			return fmt.Errorf("detach participations: %w", err)
		}
		if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
			return fmt.Errorf("detach participations: %w", err)
		}
	}

	return nil
}

func (r *repository) execIn(ctx context.Context, stmt string, ids []string) error {
	query, args, err := sqlx.In(stmt, ids)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return err
}

func requireRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
