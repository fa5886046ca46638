// AngelaMos | 2026
// testdb.go

//go:build integration

// Package testdb connects integration tests to a real PostgreSQL instance.
//
// The database is taken from TEST_DATABASE_URL, falling back to
// DATABASE_URL; tests are skipped when neither is set. The embedded
// migrations are applied once per test binary. Tests never truncate: every
// row they insert carries fresh UUIDs, so queries are scoped by host or club.
//
//	go test -tags integration ./...
package testdb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/meetup-backend/internal/config"
	"github.com/carterperez-dev/meetup-backend/internal/core"
	"github.com/carterperez-dev/meetup-backend/migrations"
)

var (
	setupOnce sync.Once
	shared    *core.Database
	setupErr  error
)

func databaseURL() string {
	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("DATABASE_URL")
}

// New returns the shared connection, migrating on first use.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	url := databaseURL()
	if url == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set")
	}

	setupOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shared, setupErr = core.NewDatabase(ctx, config.DatabaseConfig{
			URL:          url,
			MaxOpenConns: 20,
			MaxIdleConns: 5,
		})
		if setupErr != nil {
			return
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		setupErr = core.Migrate(shared, migrations.FS, logger)
	})
	require.NoError(t, setupErr)

	return shared.DB
}

func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func InsertUser(t *testing.T, db *sqlx.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.ExecContext(Context(t), `
		INSERT INTO users (id, email, name, password_hash)
		VALUES ($1, $2, $3, 'x')`,
		id, id+"@example.test", name,
	)
	require.NoError(t, err)
	return id
}

func SoftDeleteUser(t *testing.T, db *sqlx.DB, id string) {
	t.Helper()

	_, err := db.ExecContext(Context(t),
		`UPDATE users SET deleted_at = NOW() WHERE id = $1`, id)
	require.NoError(t, err)
}

// CategoryID returns one of the seeded categories.
func CategoryID(t *testing.T, db *sqlx.DB) int64 {
	t.Helper()

	var id int64
	require.NoError(t, db.GetContext(Context(t), &id, `SELECT MIN(id) FROM categories`))
	return id
}

// InsertClub writes a club and the host's MEMBER row.
func InsertClub(t *testing.T, db *sqlx.DB, hostID string, maxPeople int) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.ExecContext(Context(t), `
		INSERT INTO clubs (id, host_id, title, description, max_people)
		VALUES ($1, $2, 'Club', '', $3)`,
		id, hostID, maxPeople,
	)
	require.NoError(t, err)

	AddMembership(t, db, id, hostID, "MEMBER")
	return id
}

func AddMembership(t *testing.T, db *sqlx.DB, clubID, userID, status string) {
	t.Helper()

	_, err := db.ExecContext(Context(t), `
		INSERT INTO club_members (club_id, user_id, status)
		VALUES ($1, $2, $3)`,
		clubID, userID, status,
	)
	require.NoError(t, err)
}

type EventRow struct {
	HostID     string
	ClubID     string
	Start      time.Time
	End        time.Time
	MaxPeople  int
	IsArchived bool
}

// InsertEvent writes an event with the host as its first participant.
func InsertEvent(t *testing.T, db *sqlx.DB, row EventRow) string {
	t.Helper()

	if row.MaxPeople == 0 {
		row.MaxPeople = 10
	}

	id := uuid.NewString()
	_, err := db.ExecContext(Context(t), `
		INSERT INTO events (id, host_id, title, description, category_id,
		                    start_time, end_time, max_people, club_id, is_archived)
		VALUES ($1, $2, 'Event', '', $3, $4, $5, $6, $7, $8)`,
		id, row.HostID, CategoryID(t, db), row.Start, row.End, row.MaxPeople,
		core.NullIfEmpty(row.ClubID), row.IsArchived,
	)
	require.NoError(t, err)

	AddParticipant(t, db, id, row.HostID)
	return id
}

func AddParticipant(t *testing.T, db *sqlx.DB, eventID, userID string) {
	t.Helper()

	_, err := db.ExecContext(Context(t), `
		INSERT INTO event_participants (event_id, user_id) VALUES ($1, $2)`,
		eventID, userID,
	)
	require.NoError(t, err)
}

func InsertReview(t *testing.T, db *sqlx.DB, eventID, userID string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.ExecContext(Context(t), `
		INSERT INTO reviews (id, event_id, user_id, score, title)
		VALUES ($1, $2, $3, 4, 'Review')`,
		id, eventID, userID,
	)
	require.NoError(t, err)
	return id
}
