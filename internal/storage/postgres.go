package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitfuzz-storefront/internal/logger"

	"go.uber.org/zap"
)

// Postgres keeps values in the kv_store table created by cmd/migrate.
type Postgres struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `
		SELECT value
		FROM kv_store
		WHERE key = $1
		  AND (expires_at IS NULL OR expires_at > $2)
	`

	var value []byte
	err := p.db.QueryRowContext(ctx, q, key, p.now().UTC()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("kv get failed",
			zap.String("repo", "Postgres"),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, err
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const q = `
		INSERT INTO kv_store (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    expires_at = EXCLUDED.expires_at,
		    updated_at = NOW()
	`

	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: p.now().UTC().Add(ttl), Valid: true}
	}

	if _, err := p.db.ExecContext(ctx, q, key, value, expiresAt); err != nil {
		logger.FromCtx(ctx).Error("kv set failed",
			zap.String("repo", "Postgres"),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		logger.FromCtx(ctx).Error("kv delete failed",
			zap.String("repo", "Postgres"),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// PurgeExpired deletes rows whose expiry has passed. Get already hides
// them; this only reclaims space.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM kv_store WHERE expires_at IS NOT NULL AND expires_at <= $1`,
		p.now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
