package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (r *PostRepo) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (user_id, content, media_url, activity_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		post.UserID, post.Content, post.MediaURL, post.ActivityID, post.CreatedAt,
	).Scan(&post.ID)
	return translateErr(err)
}

func (r *PostRepo) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.content, p.media_url, p.activity_id, p.created_at,
			u.username, COALESCE(u.name, '')
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`

	var p domain.Post
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.Content, &p.MediaURL, &p.ActivityID, &p.CreatedAt,
		&p.AuthorUsername, &p.AuthorName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List pages backwards by id: pass the id of the oldest post already seen.
func (r *PostRepo) List(ctx context.Context, before *int64, limit int) ([]domain.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.content, p.media_url, p.activity_id, p.created_at,
			u.username, COALESCE(u.name, '')
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE $1::bigint IS NULL OR p.id < $1
		ORDER BY p.id DESC
		LIMIT $2`

	return r.listPosts(ctx, query, before, limit)
}

func (r *PostRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.content, p.media_url, p.activity_id, p.created_at,
			u.username, COALESCE(u.name, '')
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = $1
		ORDER BY p.id DESC`

	return r.listPosts(ctx, query, userID)
}

func (r *PostRepo) Update(ctx context.Context, post *domain.Post) error {
	query := `UPDATE posts SET content = $1, media_url = $2 WHERE id = $3`
	_, err := r.pool.Exec(ctx, query, post.Content, post.MediaURL, post.ID)
	return err
}

func (r *PostRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	return err
}

func (r *PostRepo) CreateComment(ctx context.Context, c *domain.Comment) error {
	query := `
		INSERT INTO comments (post_id, user_id, content, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query, c.PostID, c.UserID, c.Content, c.CreatedAt).Scan(&c.ID)
	return translateErr(err)
}

func (r *PostRepo) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.id = $1`

	var c domain.Comment
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorUsername,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostRepo) ListComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, u.username
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.id`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.AuthorUsername); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *PostRepo) DeleteComment(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}

// SetReaction upserts on the (post_id, user_id) unique pair. Two concurrent
// writers for the same pair end up with exactly one row, last writer wins.
func (r *PostRepo) SetReaction(ctx context.Context, reaction *domain.Reaction) error {
	query := `
		INSERT INTO reactions (post_id, user_id, type, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (post_id, user_id) DO UPDATE SET type = EXCLUDED.type
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		reaction.PostID, reaction.UserID, reaction.Type, reaction.CreatedAt,
	).Scan(&reaction.ID)
	return translateErr(err)
}

func (r *PostRepo) GetReaction(ctx context.Context, postID, userID int64) (*domain.Reaction, error) {
	query := `
		SELECT id, post_id, user_id, type, created_at
		FROM reactions WHERE post_id = $1 AND user_id = $2`

	var re domain.Reaction
	err := r.pool.QueryRow(ctx, query, postID, userID).Scan(
		&re.ID, &re.PostID, &re.UserID, &re.Type, &re.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &re, nil
}

func (r *PostRepo) ListReactions(ctx context.Context, postID int64) ([]domain.Reaction, error) {
	query := `
		SELECT id, post_id, user_id, type, created_at
		FROM reactions WHERE post_id = $1
		ORDER BY id`

	rows, err := r.pool.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reactions []domain.Reaction
	for rows.Next() {
		var re domain.Reaction
		if err := rows.Scan(&re.ID, &re.PostID, &re.UserID, &re.Type, &re.CreatedAt); err != nil {
			return nil, err
		}
		reactions = append(reactions, re)
	}
	return reactions, rows.Err()
}

func (r *PostRepo) DeleteReaction(ctx context.Context, postID, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reactions WHERE post_id = $1 AND user_id = $2`, postID, userID)
	return err
}

func (r *PostRepo) listPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Content, &p.MediaURL, &p.ActivityID, &p.CreatedAt,
			&p.AuthorUsername, &p.AuthorName,
		); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
