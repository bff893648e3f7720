package postgres

import (
	"context"
	"database/sql"
	"errors"

	"lionshub/internal/domain"
)

type roleRepository struct {
	DB *sql.DB
}

// NewRoleRepository returns a RoleRepository backed by Postgres.
func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{DB: db}
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	query := `SELECT id, tenant_id, type, name FROM roles WHERE id = $1`
	role := &domain.Role{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&role.ID, &role.TenantID, &role.Type, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *roleRepository) GetByType(ctx context.Context, tenantID, roleType string) (*domain.Role, error) {
	query := `SELECT id, tenant_id, type, name FROM roles WHERE tenant_id = $1 AND type = $2`
	role := &domain.Role{}
	err := r.DB.QueryRowContext(ctx, query, tenantID, roleType).Scan(&role.ID, &role.TenantID, &role.Type, &role.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *roleRepository) ListPermissionCodes(ctx context.Context, roleID string) ([]string, error) {
	query := `
		SELECT code
		FROM role_permissions
		WHERE role_id = $1
		ORDER BY code
	`
	rows, err := r.DB.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}
