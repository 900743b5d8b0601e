package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/commune-hq/commune/internal/domain"
)

type InstanceRepo struct {
	pool *pgxpool.Pool
}

func NewInstanceRepo(pool *pgxpool.Pool) *InstanceRepo {
	return &InstanceRepo{pool: pool}
}

func (r *InstanceRepo) Create(ctx context.Context, inst *domain.Instance) error {
	mod, req, fed, err := marshalRules(inst)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO instances (name, domain, admin_user_id, moderation_rules, required_profile_fields, federation_rules, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = r.pool.QueryRow(ctx, query,
		inst.Name, inst.Domain, inst.AdminUserID, mod, req, fed, inst.CreatedAt,
	).Scan(&inst.ID)
	return translateErr(err)
}

func (r *InstanceRepo) GetByID(ctx context.Context, id int64) (*domain.Instance, error) {
	return r.scanInstance(ctx, `
		SELECT id, name, domain, admin_user_id, moderation_rules, required_profile_fields, federation_rules, created_at
		FROM instances WHERE id = $1`, id)
}

func (r *InstanceRepo) GetByDomain(ctx context.Context, dom string) (*domain.Instance, error) {
	return r.scanInstance(ctx, `
		SELECT id, name, domain, admin_user_id, moderation_rules, required_profile_fields, federation_rules, created_at
		FROM instances WHERE domain = $1`, dom)
}

func (r *InstanceRepo) List(ctx context.Context) ([]domain.Instance, error) {
	query := `
		SELECT id, name, domain, admin_user_id, moderation_rules, required_profile_fields, federation_rules, created_at
		FROM instances ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insts []domain.Instance
	for rows.Next() {
		inst, err := scanInstanceRow(rows)
		if err != nil {
			return nil, err
		}
		insts = append(insts, *inst)
	}
	return insts, rows.Err()
}

func (r *InstanceRepo) UpdateSettings(ctx context.Context, inst *domain.Instance) error {
	mod, req, fed, err := marshalRules(inst)
	if err != nil {
		return err
	}

	query := `
		UPDATE instances
		SET name = $1, moderation_rules = $2, required_profile_fields = $3, federation_rules = $4
		WHERE id = $5`

	_, err = r.pool.Exec(ctx, query, inst.Name, mod, req, fed, inst.ID)
	return err
}

func (r *InstanceRepo) CreateFederation(ctx context.Context, fed *domain.FederatedInstance) error {
	query := `
		INSERT INTO federated_instances (instance_id, fed_with_instance_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		fed.InstanceID, fed.FedWithInstanceID, fed.Status, fed.CreatedAt,
	).Scan(&fed.ID)
	return translateErr(err)
}

func (r *InstanceRepo) GetFederation(ctx context.Context, id int64) (*domain.FederatedInstance, error) {
	query := `
		SELECT f.id, f.instance_id, f.fed_with_instance_id, f.status, f.created_at, i.domain
		FROM federated_instances f
		JOIN instances i ON f.fed_with_instance_id = i.id
		WHERE f.id = $1`
	return r.scanFederation(ctx, query, id)
}

func (r *InstanceRepo) GetFederationByPair(ctx context.Context, instanceID, peerID int64) (*domain.FederatedInstance, error) {
	query := `
		SELECT f.id, f.instance_id, f.fed_with_instance_id, f.status, f.created_at, i.domain
		FROM federated_instances f
		JOIN instances i ON f.fed_with_instance_id = i.id
		WHERE f.instance_id = $1 AND f.fed_with_instance_id = $2`

	var fed domain.FederatedInstance
	err := r.pool.QueryRow(ctx, query, instanceID, peerID).Scan(
		&fed.ID, &fed.InstanceID, &fed.FedWithInstanceID, &fed.Status, &fed.CreatedAt, &fed.PeerDomain,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fed, nil
}

func (r *InstanceRepo) ListFederation(ctx context.Context, instanceID int64) ([]domain.FederatedInstance, error) {
	query := `
		SELECT f.id, f.instance_id, f.fed_with_instance_id, f.status, f.created_at, i.domain
		FROM federated_instances f
		JOIN instances i ON f.fed_with_instance_id = i.id
		WHERE f.instance_id = $1
		ORDER BY f.id`

	rows, err := r.pool.Query(ctx, query, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feds []domain.FederatedInstance
	for rows.Next() {
		var fed domain.FederatedInstance
		if err := rows.Scan(
			&fed.ID, &fed.InstanceID, &fed.FedWithInstanceID, &fed.Status, &fed.CreatedAt, &fed.PeerDomain,
		); err != nil {
			return nil, err
		}
		feds = append(feds, fed)
	}
	return feds, rows.Err()
}

func (r *InstanceRepo) UpdateFederationStatus(ctx context.Context, id int64, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE federated_instances SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (r *InstanceRepo) DeleteFederation(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM federated_instances WHERE id = $1`, id)
	return err
}

func (r *InstanceRepo) scanFederation(ctx context.Context, query string, arg any) (*domain.FederatedInstance, error) {
	var fed domain.FederatedInstance
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&fed.ID, &fed.InstanceID, &fed.FedWithInstanceID, &fed.Status, &fed.CreatedAt, &fed.PeerDomain,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fed, nil
}

func (r *InstanceRepo) scanInstance(ctx context.Context, query string, arg any) (*domain.Instance, error) {
	return scanInstanceRow(r.pool.QueryRow(ctx, query, arg))
}

func scanInstanceRow(row pgx.Row) (*domain.Instance, error) {
	var inst domain.Instance
	var mod, req, fed []byte

	err := row.Scan(
		&inst.ID, &inst.Name, &inst.Domain, &inst.AdminUserID,
		&mod, &req, &fed, &inst.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(mod, &inst.ModerationRules); err != nil {
		return nil, fmt.Errorf("decoding moderation rules: %w", err)
	}
	if err := json.Unmarshal(req, &inst.RequiredProfileFields); err != nil {
		return nil, fmt.Errorf("decoding required profile fields: %w", err)
	}
	if err := json.Unmarshal(fed, &inst.FederationRules); err != nil {
		return nil, fmt.Errorf("decoding federation rules: %w", err)
	}
	return &inst, nil
}

func marshalRules(inst *domain.Instance) ([]byte, []byte, []byte, error) {
	mod, err := json.Marshal(inst.ModerationRules)
	if err != nil {
		return nil, nil, nil, err
	}
	req, err := json.Marshal(inst.RequiredProfileFields)
	if err != nil {
		return nil, nil, nil, err
	}
	fed, err := json.Marshal(inst.FederationRules)
	if err != nil {
		return nil, nil, nil, err
	}
	return mod, req, fed, nil
}
