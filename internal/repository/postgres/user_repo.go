package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

const userColumns = `id, username, email, password_hash, name, bio, headline, image_url,
	activity_pub_id, actor_url, inbox_url, outbox_url, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, name, bio, headline, image_url,
			activity_pub_id, actor_url, inbox_url, outbox_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.Name, user.Bio, user.Headline, user.ImageURL,
		user.ActivityPubID, user.ActorURL, user.InboxURL, user.OutboxURL,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	return translateErr(err)
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, bio = $2, headline = $3, image_url = $4,
			activity_pub_id = $5, actor_url = $6, inbox_url = $7, outbox_url = $8,
			updated_at = $9
		WHERE id = $10`

	_, err := r.pool.Exec(ctx, query,
		user.Name, user.Bio, user.Headline, user.ImageURL,
		user.ActivityPubID, user.ActorURL, user.InboxURL, user.OutboxURL,
		user.UpdatedAt, user.ID,
	)
	return translateErr(err)
}

// Delete relies on the schema's cascades to remove owned rows.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.Name, &u.Bio, &u.Headline, &u.ImageURL,
		&u.ActivityPubID, &u.ActorURL, &u.InboxURL, &u.OutboxURL,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
