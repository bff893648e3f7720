package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"lionshub/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

// NewRegistrationRepository returns an EventRegistrationRepository backed by Postgres.
func NewRegistrationRepository(db *sql.DB) domain.EventRegistrationRepository {
	return &registrationRepository{DB: db}
}

const registrationColumns = `id, event_id, member_id, status, guest_count,
		guest_names, paid, total_cents, created_at, updated_at`

func scanRegistration(row interface{ Scan(...any) error }) (*domain.EventRegistration, error) {
	reg := &domain.EventRegistration{}
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.MemberID, &reg.Status, &reg.GuestCount,
		pq.Array(&reg.GuestNames), &reg.Paid, &reg.TotalCents, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

// Upsert inserts or updates the (event, member) registration in place.
func (r *registrationRepository) Upsert(ctx context.Context, reg *domain.EventRegistration) error {
	query := `
		INSERT INTO event_registrations (event_id, member_id, status, guest_count,
			guest_names, paid, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (event_id, member_id) DO UPDATE
		SET status = EXCLUDED.status, guest_count = EXCLUDED.guest_count,
		    guest_names = EXCLUDED.guest_names, total_cents = EXCLUDED.total_cents,
		    updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.MemberID, reg.Status, reg.GuestCount,
		pq.Array(reg.GuestNames), reg.Paid, reg.TotalCents, reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByEventAndMember(ctx context.Context, eventID, memberID string) (*domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1 AND member_id = $2
	`
	return scanRegistration(r.DB.QueryRowContext(ctx, query, eventID, memberID))
}

func (r *registrationRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM event_registrations
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []*domain.EventRegistration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *registrationRepository) CountRegistered(ctx context.Context, eventID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM event_registrations
		WHERE event_id = $1 AND status = $2
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, eventID, domain.RegistrationStatusRegistered).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
