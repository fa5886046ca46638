// AngelaMos | 2026
// repository.go

package event

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
	// WithTx runs fn against a repository bound to one transaction. Calls
	// made on an already transactional repository join the open transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error

	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, params ListEventsParams, viewerID string) ([]Event, int, error)
	ListJoined(ctx context.Context, userID string) ([]Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	SetCities(ctx context.Context, eventID string, cityIDs []int64) error

	AddParticipant(ctx context.Context, eventID, userID string) error
	RemoveParticipant(ctx context.Context, eventID, userID string) error
	CountParticipants(ctx context.Context, eventID string) (int, error)
	IsParticipant(ctx context.Context, eventID, userID string) (bool, error)
	ListParticipants(ctx context.Context, eventID string) ([]Participant, error)

	ClubExists(ctx context.Context, clubID string) (bool, error)
	IsClubMember(ctx context.Context, clubID, userID string) (bool, error)
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

const eventColumns = `e.id, e.host_id, e.title, e.description, e.category_id,
	e.start_time, e.end_time, e.max_people, e.club_id, e.is_archived,
	e.created_at, e.updated_at`

// visibleTo filters events the viewer bound at argIdx may see: club events
// need a MEMBER row, archived events need a participation row.
func visibleTo(argIdx int) string {
	return fmt.Sprintf(`(e.club_id IS NULL OR EXISTS (
			SELECT 1 FROM club_members cm
			WHERE cm.club_id = e.club_id AND cm.user_id = $%[1]d
			  AND cm.status = 'MEMBER'))
		AND (NOT e.is_archived OR EXISTS (
			SELECT 1 FROM event_participants ep
			WHERE ep.event_id = e.id AND ep.user_id = $%[1]d))`, argIdx)
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (id, host_id, title, description, category_id,
		                    start_time, end_time, max_people, club_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING is_archived, created_at, updated_at`

	row := r.db.QueryRowxContext(ctx, query,
		event.ID,
		event.HostID,
		event.Title,
		event.Description,
		event.CategoryID,
		event.StartTime,
		event.EndTime,
		event.MaxPeople,
		event.ClubID,
	)
	if err := row.Scan(&event.IsArchived, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *repository) getOne(
	ctx context.Context,
	query string,
	id string,
) (*Event, error) {
	var event Event
	err := r.db.GetContext(ctx, &event, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	events := []Event{event}
	if err := r.loadCities(ctx, events); err != nil {
		return nil, err
	}

	return &events[0], nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id)
}

// GetByIDForUpdate locks the event row until the surrounding transaction
// ends. Capacity checks and participant inserts happen under this lock.
func (r *repository) GetByIDForUpdate(
	ctx context.Context,
	id string,
) (*Event, error) {
	return r.getOne(
		ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`,
		id,
	)
}

func (r *repository) List(
	ctx context.Context,
	params ListEventsParams,
	viewerID string,
) ([]Event, int, error) {
	params.Normalize()

	args := []any{core.NullIfEmpty(viewerID)}
	conditions := []string{visibleTo(1)}
	argIdx := 2

	if params.HostID != "" {
		conditions = append(conditions, fmt.Sprintf("e.host_id = $%d", argIdx))
		args = append(args, params.HostID)
		argIdx++
	}

	if params.ClubID != "" {
		conditions = append(conditions, fmt.Sprintf("e.club_id = $%d", argIdx))
		args = append(args, params.ClubID)
		argIdx++
	}

	if params.CategoryID != 0 {
		conditions = append(conditions, fmt.Sprintf("e.category_id = $%d", argIdx))
		args = append(args, params.CategoryID)
		argIdx++
	}

	if len(params.CityIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM event_cities ec
			WHERE ec.event_id = e.id AND ec.city_id = ANY($%d))`, argIdx))
		args = append(args, params.CityIDs)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM events e WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		WHERE %s
		ORDER BY e.start_time ASC, e.id
		LIMIT $%d OFFSET $%d`,
		eventColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var events []Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	if err := r.loadCities(ctx, events); err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *repository) ListJoined(
	ctx context.Context,
	userID string,
) ([]Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		JOIN event_participants p ON p.event_id = e.id
		WHERE p.user_id = $1
		ORDER BY e.start_time ASC, e.id`

	var events []Event
	if err := r.db.SelectContext(ctx, &events, query, userID); err != nil {
		return nil, fmt.Errorf("list joined events: %w", err)
	}

	if err := r.loadCities(ctx, events); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *repository) loadCities(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]string, 0, len(events))
	index := make(map[string]int, len(events))
	for i := range events {
		ids = append(ids, events[i].ID)
		index[events[i].ID] = i
		events[i].CityIDs = []int64{}
	}

	query, args, err := sqlx.In(
		`SELECT event_id, city_id FROM event_cities
		 WHERE event_id IN (?) ORDER BY city_id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("load event cities: %w", err)
	}

	var rows []eventCity
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("load event cities: %w", err)
	}

	for _, row := range rows {
		i := index[row.EventID]
		events[i].CityIDs = append(events[i].CityIDs, row.CityID)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, event *Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, category_id = $4, start_time = $5,
		    end_time = $6, max_people = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &event.UpdatedAt, query,
		event.ID,
		event.Title,
		event.Description,
		event.CategoryID,
		event.StartTime,
		event.EndTime,
		event.MaxPeople,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update event: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	return nil
}

// Delete removes the event with its participations and city links. Callers
// run it inside WithTx.
func (r *repository) Delete(ctx context.Context, id string) error {
	for _, stmt := range []string{
		`DELETE FROM event_participants WHERE event_id = $1`,
		`DELETE FROM event_cities WHERE event_id = $1`,
	} {
		if _, err := r.db.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete event: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SetCities(
	ctx context.Context,
	eventID string,
	cityIDs []int64,
) error {
	if _, err := r.db.ExecContext(
		ctx,
		`DELETE FROM event_cities WHERE event_id = $1`,
		eventID,
	); err != nil {
		return fmt.Errorf("set event cities: %w", err)
	}

	query := `
		INSERT INTO event_cities (event_id, city_id)
		SELECT $1, UNNEST($2::bigint[])`

	if _, err := r.db.ExecContext(ctx, query, eventID, cityIDs); err != nil {
		return fmt.Errorf("set event cities: %w", err)
	}

	return nil
}

func (r *repository) AddParticipant(
	ctx context.Context,
	eventID, userID string,
) error {
	query := `INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, eventID, userID); err != nil {
		if core.IsDuplicateKeyError(err) {
			return fmt.Errorf("add participant: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("add participant: %w", err)
	}

	return nil
}

func (r *repository) RemoveParticipant(
	ctx context.Context,
	eventID, userID string,
) error {
	query := `DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("remove participant: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountParticipants(
	ctx context.Context,
	eventID string,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM event_participants p ` + core.ActiveUserJoin("p") + `
		WHERE p.event_id = $1`

	var count int
	if err := r.db.GetContext(ctx, &count, query, eventID); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}

	return count, nil
}

func (r *repository) IsParticipant(
	ctx context.Context,
	eventID, userID string,
) (bool, error) {
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

func (r *repository) ListParticipants(
	ctx context.Context,
	eventID string,
) ([]Participant, error) {
	query := `
		SELECT p.user_id, au.name, p.created_at
		FROM event_participants p ` + core.ActiveUserJoin("p") + `
		WHERE p.event_id = $1
		ORDER BY p.created_at, p.user_id`

	var participants []Participant
	if err := r.db.SelectContext(ctx, &participants, query, eventID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	return participants, nil
}

func (r *repository) ClubExists(ctx context.Context, clubID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(
		ctx,
		&exists,
		`SELECT EXISTS (SELECT 1 FROM clubs WHERE id = $1)`,
		clubID,
	)
	if err != nil {
		return false, fmt.Errorf("check club exists: %w", err)
	}

	return exists, nil
}

// IsClubMember takes a share lock on the membership row, so a concurrent
// leave, which deletes that row, waits for this transaction to finish.
func (r *repository) IsClubMember(
	ctx context.Context,
	clubID, userID string,
) (bool, error) {
	query := `
		SELECT cm.status
		FROM club_members cm ` + core.ActiveUserJoin("cm") + `
		WHERE cm.club_id = $1 AND cm.user_id = $2 AND cm.status = 'MEMBER'
		FOR SHARE OF cm`

	var status string
	err := r.db.GetContext(ctx, &status, query, clubID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check club member: %w", err)
	}

	return true, nil
}
