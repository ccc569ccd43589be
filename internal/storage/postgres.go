package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Manas-Phal/CCHack-SpaceExplorer/internal"
)

// Channel carrying the owner id of every changed observation list.
const notifyChannel = "observations_changed"

type PostgresStorage struct {
	pool   *pgxpool.Pool
	feed   *feed
	cancel context.CancelFunc
	done   chan struct{}
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	p := &PostgresStorage{pool: pool, done: make(chan struct{}), logger: logger}
	p.feed = newFeed(p.ListObservations, logger)
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		logger.Errorf("failed to migrate postgres schema: %v", err)
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.listen(listenCtx)
	return p, nil
}

func (p *PostgresStorage) migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
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
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
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
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// listen relays NOTIFY payloads from any instance to local watchers.
func (p *PostgresStorage) listen(ctx context.Context) {
	defer close(p.done)
	for ctx.Err() == nil {
		if err := p.listenOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warnf("storage: listen on %s interrupted: %v", notifyChannel, err)
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
			}
		}
	}
}

func (p *PostgresStorage) listenOnce(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		return err
	}
	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			// Still LISTENing, so it must not go back to the pool.
			_ = conn.Hijack().Close(context.Background())
			return err
		}
		p.feed.publish(ctx, n.Payload)
	}
}

func (p *PostgresStorage) notify(ctx context.Context, ownerID string) {
	if _, err := p.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, ownerID); err != nil {
		// Local watchers still get the change.
		p.logger.Warnf("storage: pg_notify failed: %v", err)
		p.feed.publish(context.Background(), ownerID)
	}
}

func (p *PostgresStorage) Close() error {
	p.cancel()
	<-p.done
	p.pool.Close()
	return nil
}

// --- ObservationRepository ---
func (p *PostgresStorage) AddObservation(ctx context.Context, obs *internal.Observation) error {
	if obs.OwnerID == "" {
		return fmt.Errorf("storage: observation has no owner")
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}
	row := p.pool.QueryRow(ctx, `
		INSERT INTO observations
		(id, owner_id, name, obs_date, obs_time, coordinates, right_ascension, declination, location, notes, object_type, equipment, conditions, seeing, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at`,
		obs.ID, obs.OwnerID, obs.Name, obs.Date, obs.Time, obs.Coordinates, obs.RA, obs.Dec,
		obs.Location, obs.Notes, obs.ObjectType, obs.Equipment, obs.Conditions, obs.Seeing, obs.ImageURL)
	if err := row.Scan(&obs.CreatedAt); err != nil {
		p.logger.Errorf("failed to insert observation: %v", err)
		return err
	}
	p.notify(ctx, obs.OwnerID)
	return nil
}

func (p *PostgresStorage) DeleteObservation(ctx context.Context, ownerID, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM observations WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		p.logger.Errorf("failed to delete observation: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: observation %s: %w", id, internal.ErrNotFound)
	}
	p.notify(ctx, ownerID)
	return nil
}

func (p *PostgresStorage) ListObservations(ctx context.Context, ownerID string) ([]internal.Observation, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, owner_id, name, obs_date, obs_time, coordinates, right_ascension, declination, location, notes, object_type, equipment, conditions, seeing, image_url, created_at
		FROM observations
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		p.logger.Errorf("failed to query observations: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := []internal.Observation{}
	for rows.Next() {
		var o internal.Observation
		err := rows.Scan(&o.ID, &o.OwnerID, &o.Name, &o.Date, &o.Time, &o.Coordinates, &o.RA, &o.Dec,
			&o.Location, &o.Notes, &o.ObjectType, &o.Equipment, &o.Conditions, &o.Seeing, &o.ImageURL, &o.CreatedAt)
		if err != nil {
			p.logger.Errorf("failed to scan observation: %v", err)
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *PostgresStorage) WatchObservations(ctx context.Context, ownerID string) (<-chan []internal.Observation, error) {
	return p.feed.subscribe(ctx, ownerID)
}

// --- UserRepository ---
func (p *PostgresStorage) CreateCredential(ctx context.Context, cred *internal.Credential) error {
	if cred.User.ID == "" {
		cred.User.ID = uuid.NewString()
	}
	row := p.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, avatar_url, password_hash, provider, subject)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		cred.User.ID, normalizeEmail(cred.Email), cred.User.DisplayName, cred.User.AvatarURL,
		cred.PasswordHash, cred.Provider, cred.Subject)
	if err := row.Scan(&cred.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return internal.ErrAccountExists
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

const pgUserColumns = `id, email, display_name, avatar_url, password_hash, provider, subject, created_at`

func scanPgCredential(row pgx.Row) (*internal.Credential, error) {
	var c internal.Credential
	err := row.Scan(&c.User.ID, &c.Email, &c.User.DisplayName, &c.User.AvatarURL,
		&c.PasswordHash, &c.Provider, &c.Subject, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, internal.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.User.Email = c.Email
	return &c, nil
}

func (p *PostgresStorage) GetCredentialByEmail(ctx context.Context, email string) (*internal.Credential, error) {
	c, err := scanPgCredential(p.pool.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE email = $1`, normalizeEmail(email)))
	if err != nil {
		return nil, fmt.Errorf("storage: credential %s: %w", email, err)
	}
	return c, nil
}

func (p *PostgresStorage) GetUser(ctx context.Context, id string) (*internal.User, error) {
	c, err := scanPgCredential(p.pool.QueryRow(ctx, `SELECT `+pgUserColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("storage: user %s: %w", id, err)
	}
	return &c.User, nil
}

func (p *PostgresStorage) UpsertFederatedUser(ctx context.Context, cred *internal.Credential) (*internal.User, error) {
	if cred.User.ID == "" {
		cred.User.ID = uuid.NewString()
	}
	c, err := scanPgCredential(p.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, display_name, avatar_url, provider, subject)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
			avatar_url = COALESCE(NULLIF(EXCLUDED.avatar_url, ''), users.avatar_url)
		RETURNING `+pgUserColumns,
		cred.User.ID, normalizeEmail(cred.Email), cred.User.DisplayName, cred.User.AvatarURL,
		cred.Provider, cred.Subject))
	if err != nil {
		p.logger.Errorf("failed to upsert federated user: %v", err)
		return nil, err
	}
	return &c.User, nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
