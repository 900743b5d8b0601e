package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type ServiceRepo struct {
	pool *pgxpool.Pool
}

func NewServiceRepo(pool *pgxpool.Pool) *ServiceRepo {
	return &ServiceRepo{pool: pool}
}

func (r *ServiceRepo) Create(ctx context.Context, svc *domain.Service) error {
	query := `
		INSERT INTO services (user_id, category_id, title, description, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		svc.UserID, svc.CategoryID, svc.Title, svc.Description, svc.Price, svc.CreatedAt,
	).Scan(&svc.ID)
	return translateErr(err)
}

func (r *ServiceRepo) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	query := `
		SELECT s.id, s.user_id, s.category_id, s.title, s.description, s.price, s.created_at,
			u.username, COALESCE(c.name, '')
		FROM services s
		JOIN users u ON s.user_id = u.id
		LEFT JOIN categories c ON s.category_id = c.id
		WHERE s.id = $1`

	var svc domain.Service
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&svc.ID, &svc.UserID, &svc.CategoryID, &svc.Title,
		&svc.Description, &svc.Price, &svc.CreatedAt,
		&svc.OwnerUsername, &svc.CategoryName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *ServiceRepo) List(ctx context.Context, categoryID *int64) ([]domain.Service, error) {
	query := `
		SELECT s.id, s.user_id, s.category_id, s.title, s.description, s.price, s.created_at,
			u.username, COALESCE(c.name, '')
		FROM services s
		JOIN users u ON s.user_id = u.id
		LEFT JOIN categories c ON s.category_id = c.id
		WHERE $1::bigint IS NULL OR s.category_id = $1
		ORDER BY s.created_at DESC`

	return r.listServices(ctx, query, categoryID)
}

func (r *ServiceRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Service, error) {
	query := `
		SELECT s.id, s.user_id, s.category_id, s.title, s.description, s.price, s.created_at,
			u.username, COALESCE(c.name, '')
		FROM services s
		JOIN users u ON s.user_id = u.id
		LEFT JOIN categories c ON s.category_id = c.id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`

	return r.listServices(ctx, query, userID)
}

func (r *ServiceRepo) Update(ctx context.Context, svc *domain.Service) error {
	query := `
		UPDATE services
		SET category_id = $1, title = $2, description = $3, price = $4
		WHERE id = $5`

	_, err := r.pool.Exec(ctx, query, svc.CategoryID, svc.Title, svc.Description, svc.Price, svc.ID)
	return translateErr(err)
}

func (r *ServiceRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	return err
}

func (r *ServiceRepo) listServices(ctx context.Context, query string, arg any) ([]domain.Service, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var svcs []domain.Service
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID, &svc.UserID, &svc.CategoryID, &svc.Title,
			&svc.Description, &svc.Price, &svc.CreatedAt,
			&svc.OwnerUsername, &svc.CategoryName,
		); err != nil {
			return nil, err
		}
		svcs = append(svcs, svc)
	}
	return svcs, rows.Err()
}
