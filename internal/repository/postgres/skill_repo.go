package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type SkillRepo struct {
	pool *pgxpool.Pool
}

func NewSkillRepo(pool *pgxpool.Pool) *SkillRepo {
	return &SkillRepo{pool: pool}
}

// GetOrCreate upserts on the skill name so concurrent creators converge on
// the same row.
func (r *SkillRepo) GetOrCreate(ctx context.Context, name string) (*domain.Skill, error) {
	query := `
		INSERT INTO skills (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	var s domain.Skill
	if err := r.pool.QueryRow(ctx, query, name).Scan(&s.ID, &s.Name); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SkillRepo) List(ctx context.Context) ([]domain.Skill, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM skills ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []domain.Skill
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

func (r *SkillRepo) AddUserSkill(ctx context.Context, userID, skillID int64) error {
	query := `INSERT INTO user_skills (user_id, skill_id, endorsements) VALUES ($1, $2, 0)`
	_, err := r.pool.Exec(ctx, query, userID, skillID)
	return translateErr(err)
}

func (r *SkillRepo) ListUserSkills(ctx context.Context, userID int64) ([]domain.UserSkill, error) {
	query := `
		SELECT us.user_id, us.skill_id, us.endorsements, s.name
		FROM user_skills us
		JOIN skills s ON us.skill_id = s.id
		WHERE us.user_id = $1
		ORDER BY us.endorsements DESC, s.name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []domain.UserSkill
	for rows.Next() {
		var us domain.UserSkill
		if err := rows.Scan(&us.UserID, &us.SkillID, &us.Endorsements, &us.SkillName); err != nil {
			return nil, err
		}
		skills = append(skills, us)
	}
	return skills, rows.Err()
}

func (r *SkillRepo) Endorse(ctx context.Context, userID, skillID int64) (int, bool, error) {
	query := `
		UPDATE user_skills
		SET endorsements = endorsements + 1
		WHERE user_id = $1 AND skill_id = $2
		RETURNING endorsements`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, skillID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *SkillRepo) RemoveUserSkill(ctx context.Context, userID, skillID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_skills WHERE user_id = $1 AND skill_id = $2`, userID, skillID)
	return err
}
