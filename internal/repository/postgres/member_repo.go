package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lionshub/internal/domain"
)

type memberRepository struct {
	DB *sql.DB
}

// NewMemberRepository returns a MemberRepository backed by Postgres.
func NewMemberRepository(db *sql.DB) domain.MemberRepository {
	return &memberRepository{DB: db}
}

const memberColumns = `id, tenant_id, auth_user_id, email, first_name, last_name,
		active, status, role_id, locale, avatar_url, created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (*domain.Member, error) {
	m := &domain.Member{}
	err := row.Scan(
		&m.ID, &m.TenantID, &m.AuthUserID, &m.Email, &m.FirstName, &m.LastName,
		&m.Active, &m.Status, &m.RoleID, &m.Locale, &m.AvatarURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *memberRepository) Create(ctx context.Context, m *domain.Member) error {
	query := `
		INSERT INTO members (tenant_id, auth_user_id, email, first_name, last_name,
			active, status, role_id, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		m.TenantID, m.AuthUserID, m.Email, m.FirstName, m.LastName,
		m.Active, m.Status, m.RoleID, m.Locale, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMember
		}
		return err
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMember(r.DB.QueryRowContext(ctx, query, id))
}

func (r *memberRepository) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE auth_user_id = $1`
	return scanMember(r.DB.QueryRowContext(ctx, query, authUserID))
}

func (r *memberRepository) GetByEmail(ctx context.Context, tenantID, email string) (*domain.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE tenant_id = $1 AND email = $2`
	return scanMember(r.DB.QueryRowContext(ctx, query, tenantID, email))
}

func (r *memberRepository) List(ctx context.Context, tenantID string, p domain.PaginationParams) ([]*domain.Member, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE tenant_id = $1`, tenantID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE tenant_id = $1
		ORDER BY last_name, first_name, email
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, tenantID, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	members := []*domain.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *memberRepository) Update(ctx context.Context, m *domain.Member) error {
	query := `
		UPDATE members
		SET email = $1, first_name = $2, last_name = $3, active = $4, status = $5,
		    role_id = $6, locale = $7, avatar_url = $8, updated_at = $9
		WHERE id = $10
	`
	res, err := r.DB.ExecContext(ctx, query,
		m.Email, m.FirstName, m.LastName, m.Active, m.Status,
		m.RoleID, m.Locale, m.AvatarURL, m.UpdatedAt, m.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMember
		}
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

func (r *memberRepository) CountActiveAdmins(ctx context.Context, tenantID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM members m
		JOIN roles r ON r.id = m.role_id
		WHERE m.tenant_id = $1 AND m.active AND m.status = $2 AND r.type = $3
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, tenantID, domain.MemberStatusActive, domain.RoleTypeAdmin).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteWithReassign deletes the member, reassigning authored events to
// newOwnerID and deleting authored invitations first. Registrations cascade
// via the event_registrations foreign key.
func (r *memberRepository) DeleteWithReassign(ctx context.Context, memberID, newOwnerID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET created_by = $1 WHERE created_by = $2`, newOwnerID, memberID,
	); err != nil {
		return fmt.Errorf("reassign events: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM invitations WHERE invited_by = $1`, memberID,
	); err != nil {
		return fmt.Errorf("delete authored invitations: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, memberID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
