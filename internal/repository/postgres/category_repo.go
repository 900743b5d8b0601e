package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Create(ctx context.Context, cat *domain.Category) error {
	query := `INSERT INTO categories (name, color) VALUES ($1, $2) RETURNING id`
	err := r.pool.QueryRow(ctx, query, cat.Name, cat.Color).Scan(&cat.ID)
	return translateErr(err)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var cat domain.Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, color FROM categories WHERE id = $1`, id).
		Scan(&cat.ID, &cat.Name, &cat.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Color); err != nil {
			return nil, err
		}
		cats = append(cats, cat)
	}
	return cats, rows.Err()
}

// Delete nulls the category reference on dependent services first, in the
// same transaction, so a service never points at a missing category and is
// never deleted along with it.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE services SET category_id = NULL WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("detaching services: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
