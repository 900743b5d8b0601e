package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, sess *domain.Session) error {
	data, err := json.Marshal(sess.Data)
	if err != nil {
		return err
	}

	query := `INSERT INTO sessions (id, user_id, data, expires_at) VALUES ($1, $2, $3, $4)`
	_, err = r.pool.Exec(ctx, query, sess.ID, sess.UserID, data, sess.ExpiresAt)
	return translateErr(err)
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	var sess domain.Session
	var data []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, data, expires_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &data, &sess.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, &sess.Data); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
