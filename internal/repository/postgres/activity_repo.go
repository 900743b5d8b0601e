package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Append(ctx context.Context, act *domain.Activity) error {
	payload := act.Payload
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}

	query := `
		INSERT INTO activities (instance_id, actor_id, type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		act.InstanceID, act.ActorID, act.Type, payload, act.CreatedAt,
	).Scan(&act.ID)
	return translateErr(err)
}

func (r *ActivityRepo) ListByInstance(ctx context.Context, instanceID int64, limit int) ([]domain.Activity, error) {
	query := `
		SELECT id, instance_id, actor_id, type, payload, created_at
		FROM activities
		WHERE instance_id = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, instanceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acts []domain.Activity
	for rows.Next() {
		var act domain.Activity
		if err := rows.Scan(
			&act.ID, &act.InstanceID, &act.ActorID, &act.Type, &act.Payload, &act.CreatedAt,
		); err != nil {
			return nil, err
		}
		acts = append(acts, act)
	}
	return acts, rows.Err()
}
