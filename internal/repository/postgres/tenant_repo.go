package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"lionshub/internal/domain"
)

type tenantRepository struct {
	DB *sql.DB
}

// NewTenantRepository returns a TenantRepository backed by Postgres.
func NewTenantRepository(db *sql.DB) domain.TenantRepository {
	return &tenantRepository{DB: db}
}

const tenantColumns = `id, slug, club_number, name, feature_flags, plan_expires_at,
		public_site_enabled, primary_color, logo_url, about, created_at, updated_at`

func scanTenant(row interface{ Scan(...any) error }) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := row.Scan(
		&t.ID, &t.Slug, &t.ClubNumber, &t.Name, pq.Array(&t.FeatureFlags),
		&t.PlanExpiresAt, &t.PublicSiteEnabled, &t.PrimaryColor, &t.LogoURL,
		&t.About, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE id = $1
	`
	return scanTenant(r.DB.QueryRowContext(ctx, query, id))
}

func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE slug = $1
	`
	return scanTenant(r.DB.QueryRowContext(ctx, query, slug))
}

func (r *tenantRepository) GetBySlugAndNumber(ctx context.Context, slug, clubNumber string) (*domain.Tenant, error) {
	query := `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE slug = $1 AND club_number = $2
	`
	return scanTenant(r.DB.QueryRowContext(ctx, query, slug, clubNumber))
}

func (r *tenantRepository) Update(ctx context.Context, t *domain.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, feature_flags = $2, plan_expires_at = $3,
		    public_site_enabled = $4, primary_color = $5, logo_url = $6,
		    about = $7, updated_at = $8
		WHERE id = $9
	`
	res, err := r.DB.ExecContext(ctx, query,
		t.Name, pq.Array(t.FeatureFlags), t.PlanExpiresAt,
		t.PublicSiteEnabled, t.PrimaryColor, t.LogoURL,
		t.About, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateWithDefaults creates the tenant, the three seeded roles with their
// permission bundles, and the founding admin member in one transaction.
func (r *tenantRepository) CreateWithDefaults(ctx context.Context, t *domain.Tenant, admin *domain.Member) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tenants (slug, club_number, name, feature_flags, plan_expires_at,
			public_site_enabled, primary_color, logo_url, about, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		t.Slug, t.ClubNumber, t.Name, pq.Array(t.FeatureFlags), t.PlanExpiresAt,
		t.PublicSiteEnabled, t.PrimaryColor, t.LogoURL, t.About, t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("insert tenant: %w", err)
	}

	var adminRoleID string
	for _, roleType := range []string{domain.RoleTypeAdmin, domain.RoleTypeBoard, domain.RoleTypeMember} {
		var roleID string
		err = tx.QueryRowContext(ctx,
			`INSERT INTO roles (tenant_id, type, name) VALUES ($1, $2, $3) RETURNING id`,
			t.ID, roleType, domain.DefaultRoleNames[roleType],
		).Scan(&roleID)
		if err != nil {
			return fmt.Errorf("insert role %s: %w", roleType, err)
		}
		for _, code := range domain.DefaultRolePermissions[roleType] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO role_permissions (role_id, code) VALUES ($1, $2)`,
				roleID, code,
			); err != nil {
				return fmt.Errorf("insert permission %s: %w", code, err)
			}
		}
		if roleType == domain.RoleTypeAdmin {
			adminRoleID = roleID
		}
	}

	admin.TenantID = t.ID
	admin.RoleID = &adminRoleID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO members (tenant_id, auth_user_id, email, first_name, last_name,
			active, status, role_id, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		admin.TenantID, admin.AuthUserID, admin.Email, admin.FirstName, admin.LastName,
		admin.Active, admin.Status, admin.RoleID, admin.Locale, admin.CreatedAt, admin.UpdatedAt,
	).Scan(&admin.ID)
	if err != nil {
		return fmt.Errorf("insert founding admin: %w", err)
	}

	return tx.Commit()
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
