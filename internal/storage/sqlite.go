package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// Fixed-width so lexical order matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStorage struct {
	db     *sql.DB
	feed   *feed
	now    func() time.Time
	logger internal.Logger
}

func NewSQLiteStorage(filePath string, logger internal.Logger) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, err
	}
	// One writer keeps modernc's sqlite free of SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s := &SQLiteStorage{db: db, now: time.Now, logger: logger}
	s.feed = newFeed(s.ListObservations, logger)
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		logger.Errorf("storage: sqlite schema init failed: %v", err)
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStorage) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS observations (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			obs_date TEXT NOT NULL,
			obs_time TEXT NOT NULL DEFAULT '',
			coordinates TEXT NOT NULL DEFAULT '',
			right_ascension TEXT NOT NULL DEFAULT '',
			declination TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			object_type TEXT NOT NULL DEFAULT '',
			equipment TEXT NOT NULL DEFAULT '',
			conditions TEXT NOT NULL DEFAULT '',
			seeing TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_observations_owner ON observations(owner_id, created_at DESC);
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			provider TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);`)
	return err
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func toTS(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func fromTS(v string) time.Time {
	t, err := time.Parse(sqliteTimeLayout, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- ObservationRepository ---
func (s *SQLiteStorage) AddObservation(ctx context.Context, obs *internal.Observation) error {
	if obs.OwnerID == "" {
		return fmt.Errorf("storage: observation has no owner")
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	obs.CreatedAt = s.now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations
		(id, owner_id, name, obs_date, obs_time, coordinates, right_ascension, declination, location, notes, object_type, equipment, conditions, seeing, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		obs.ID, obs.OwnerID, obs.Name, obs.Date, obs.Time, obs.Coordinates, obs.RA, obs.Dec,
		obs.Location, obs.Notes, obs.ObjectType, obs.Equipment, obs.Conditions, obs.Seeing,
		obs.ImageURL, toTS(obs.CreatedAt),
	)
	if err != nil {
		s.logger.Errorf("failed to insert observation: %v", err)
		return err
	}
	s.feed.publish(context.Background(), obs.OwnerID)
	return nil
}

func (s *SQLiteStorage) DeleteObservation(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM observations WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		s.logger.Errorf("failed to delete observation: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: observation %s: %w", id, internal.ErrNotFound)
	}
	s.feed.publish(context.Background(), ownerID)
	return nil
}

func (s *SQLiteStorage) ListObservations(ctx context.Context, ownerID string) ([]internal.Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, obs_date, obs_time, coordinates, right_ascension, declination, location, notes, object_type, equipment, conditions, seeing, image_url, created_at
		FROM observations
		WHERE owner_id = ?
		ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		s.logger.Errorf("failed to query observations: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := []internal.Observation{}
	for rows.Next() {
		var o internal.Observation
		var createdAt string
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.Name, &o.Date, &o.Time, &o.Coordinates, &o.RA, &o.Dec,
			&o.Location, &o.Notes, &o.ObjectType, &o.Equipment, &o.Conditions, &o.Seeing, &o.ImageURL, &createdAt); err != nil {
			s.logger.Errorf("failed to scan observation: %v", err)
			return nil, err
		}
		o.CreatedAt = fromTS(createdAt)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStorage) WatchObservations(ctx context.Context, ownerID string) (<-chan []internal.Observation, error) {
	return s.feed.subscribe(ctx, ownerID)
}

// --- UserRepository ---
func (s *SQLiteStorage) CreateCredential(ctx context.Context, cred *internal.Credential) error {
	if cred.User.ID == "" {
		cred.User.ID = uuid.NewString()
	}
	if cred.CreatedAt.IsZero() {
		cred.CreatedAt = s.now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, avatar_url, password_hash, provider, subject, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cred.User.ID, normalizeEmail(cred.Email), cred.User.DisplayName, cred.User.AvatarURL,
		cred.PasswordHash, cred.Provider, cred.Subject, toTS(cred.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return internal.ErrAccountExists
		}
		s.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (s *SQLiteStorage) scanCredential(row *sql.Row) (*internal.Credential, error) {
	var c internal.Credential
	var createdAt string
	err := row.Scan(&c.User.ID, &c.Email, &c.User.DisplayName, &c.User.AvatarURL,
		&c.PasswordHash, &c.Provider, &c.Subject, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.User.Email = c.Email
	c.CreatedAt = fromTS(createdAt)
	return &c, nil
}

const sqliteUserColumns = `id, email, display_name, avatar_url, password_hash, provider, subject, created_at`

func (s *SQLiteStorage) GetCredentialByEmail(ctx context.Context, email string) (*internal.Credential, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
	c, err := s.scanCredential(row)
	if err != nil {
		return nil, fmt.Errorf("storage: credential %s: %w", email, err)
	}
	return c, nil
}

func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
	c, err := s.scanCredential(row)
	if err != nil {
		return nil, fmt.Errorf("storage: user %s: %w", id, err)
	}
	return &c.User, nil
}

func (s *SQLiteStorage) UpsertFederatedUser(ctx context.Context, cred *internal.Credential) (*internal.User, error) {
	existing, err := s.GetCredentialByEmail(ctx, cred.Email)
	if err == nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE users SET
				display_name = CASE WHEN ? <> '' THEN ? ELSE display_name END,
				avatar_url = CASE WHEN ? <> '' THEN ? ELSE avatar_url END
			WHERE id = ?`,
			cred.User.DisplayName, cred.User.DisplayName, cred.User.AvatarURL, cred.User.AvatarURL, existing.User.ID)
		if err != nil {
			return nil, err
		}
		return s.GetUser(ctx, existing.User.ID)
	}
	if !errors.Is(err, internal.ErrNotFound) {
		return nil, err
	}
	if err := s.CreateCredential(ctx, cred); err != nil {
		return nil, err
	}
	return &cred.User, nil
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStorage)(nil)
