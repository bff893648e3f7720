package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lionshub/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository returns an InvitationRepository backed by Postgres.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

const invitationColumns = `id, tenant_id, email, token, role_type, invited_by,
		status, expires_at, accepted_at, created_at`

func scanInvitation(row interface{ Scan(...any) error }) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.Email, &inv.Token, &inv.RoleType, &inv.InvitedBy,
		&inv.Status, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (tenant_id, email, token, role_type, invited_by,
			status, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.TenantID, inv.Email, inv.Token, inv.RoleType, inv.InvitedBy,
		inv.Status, inv.ExpiresAt, inv.CreatedAt,
	).Scan(&inv.ID)
	if err != nil {
		// The (tenant, email) constraint is the race-breaker for two
		// concurrent creates that both passed the pending check.
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInvitation
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE token = $1`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, token))
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, id))
}

func (r *invitationRepository) GetPendingByEmail(ctx context.Context, tenantID, email string) (*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE tenant_id = $1 AND email = $2 AND status = $3
	`
	return scanInvitation(r.DB.QueryRowContext(ctx, query, tenantID, email, domain.InvitationStatusPending))
}

func (r *invitationRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := []*domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return invs, nil
}

// PurgeStale removes every finished invitation row for the email: expired,
// revoked, and accepted ones whose member has since been deleted. The
// (tenant, email) uniqueness constraint covers all statuses, so any leftover
// row would block a re-invite.
func (r *invitationRepository) PurgeStale(ctx context.Context, tenantID, email string) error {
	query := `
		DELETE FROM invitations
		WHERE tenant_id = $1 AND email = $2 AND status <> $3
	`
	_, err := r.DB.ExecContext(ctx, query, tenantID, email, domain.InvitationStatusPending)
	return err
}

func (r *invitationRepository) MarkExpired(ctx context.Context, id string) error {
	query := `
		UPDATE invitations
		SET status = $1
		WHERE id = $2 AND status = $3
	`
	_, err := r.DB.ExecContext(ctx, query,
		domain.InvitationStatusExpired, id, domain.InvitationStatusPending)
	return err
}

// Accept creates the member and marks the invitation accepted in one
// transaction. The invitation update is guarded on status=pending so that of
// two concurrent accepts only the first commit wins.
func (r *invitationRepository) Accept(ctx context.Context, inv *domain.Invitation, m *domain.Member) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE invitations
		SET status = $1, accepted_at = $2
		WHERE id = $3 AND status = $4
	`, domain.InvitationStatusAccepted, now, inv.ID, domain.InvitationStatusPending)
	if err != nil {
		return fmt.Errorf("mark invitation accepted: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvitationNotPending
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO members (tenant_id, auth_user_id, email, first_name, last_name,
			active, status, role_id, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		m.TenantID, m.AuthUserID, m.Email, m.FirstName, m.LastName,
		m.Active, m.Status, m.RoleID, m.Locale, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateMember
		}
		return fmt.Errorf("insert member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	inv.Status = domain.InvitationStatusAccepted
	inv.AcceptedAt = &now
	return nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
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
