package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (r *ProfileRepo) CreateExperience(ctx context.Context, exp *domain.WorkExperience) error {
	query := `
		INSERT INTO work_experiences (user_id, title, company, description, start_date, end_date, current)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		exp.UserID, exp.Title, exp.Company, exp.Description,
		exp.StartDate, exp.EndDate, exp.Current,
	).Scan(&exp.ID)
	return translateErr(err)
}

func (r *ProfileRepo) GetExperience(ctx context.Context, id int64) (*domain.WorkExperience, error) {
	query := `
		SELECT id, user_id, title, company, description, start_date, end_date, current
		FROM work_experiences WHERE id = $1`

	var exp domain.WorkExperience
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&exp.ID, &exp.UserID, &exp.Title, &exp.Company,
		&exp.Description, &exp.StartDate, &exp.EndDate, &exp.Current,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

func (r *ProfileRepo) ListExperiences(ctx context.Context, userID int64) ([]domain.WorkExperience, error) {
	query := `
		SELECT id, user_id, title, company, description, start_date, end_date, current
		FROM work_experiences
		WHERE user_id = $1
		ORDER BY start_date DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exps []domain.WorkExperience
	for rows.Next() {
		var exp domain.WorkExperience
		if err := rows.Scan(
			&exp.ID, &exp.UserID, &exp.Title, &exp.Company,
			&exp.Description, &exp.StartDate, &exp.EndDate, &exp.Current,
		); err != nil {
			return nil, err
		}
		exps = append(exps, exp)
	}
	return exps, rows.Err()
}

func (r *ProfileRepo) UpdateExperience(ctx context.Context, exp *domain.WorkExperience) error {
	query := `
		UPDATE work_experiences
		SET title = $1, company = $2, description = $3, start_date = $4, end_date = $5, current = $6
		WHERE id = $7`

	_, err := r.pool.Exec(ctx, query,
		exp.Title, exp.Company, exp.Description,
		exp.StartDate, exp.EndDate, exp.Current, exp.ID,
	)
	return err
}

func (r *ProfileRepo) DeleteExperience(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM work_experiences WHERE id = $1`, id)
	return err
}

func (r *ProfileRepo) CreateEducation(ctx context.Context, edu *domain.Education) error {
	query := `
		INSERT INTO educations (user_id, school, degree, field, start_date, end_date, current)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		edu.UserID, edu.School, edu.Degree, edu.Field,
		edu.StartDate, edu.EndDate, edu.Current,
	).Scan(&edu.ID)
	return translateErr(err)
}

func (r *ProfileRepo) GetEducation(ctx context.Context, id int64) (*domain.Education, error) {
	query := `
		SELECT id, user_id, school, degree, field, start_date, end_date, current
		FROM educations WHERE id = $1`

	var edu domain.Education
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&edu.ID, &edu.UserID, &edu.School, &edu.Degree,
		&edu.Field, &edu.StartDate, &edu.EndDate, &edu.Current,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edu, nil
}

func (r *ProfileRepo) ListEducations(ctx context.Context, userID int64) ([]domain.Education, error) {
	query := `
		SELECT id, user_id, school, degree, field, start_date, end_date, current
		FROM educations
		WHERE user_id = $1
		ORDER BY start_date DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edus []domain.Education
	for rows.Next() {
		var edu domain.Education
		if err := rows.Scan(
			&edu.ID, &edu.UserID, &edu.School, &edu.Degree,
			&edu.Field, &edu.StartDate, &edu.EndDate, &edu.Current,
		); err != nil {
			return nil, err
		}
		edus = append(edus, edu)
	}
	return edus, rows.Err()
}

func (r *ProfileRepo) UpdateEducation(ctx context.Context, edu *domain.Education) error {
	query := `
		UPDATE educations
		SET school = $1, degree = $2, field = $3, start_date = $4, end_date = $5, current = $6
		WHERE id = $7`

	_, err := r.pool.Exec(ctx, query,
		edu.School, edu.Degree, edu.Field,
		edu.StartDate, edu.EndDate, edu.Current, edu.ID,
	)
	return err
}

func (r *ProfileRepo) DeleteEducation(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM educations WHERE id = $1`, id)
	return err
}
