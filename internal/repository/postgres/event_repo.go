package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lionshub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns an EventRepository backed by Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, tenant_id, title, title_en, description, type,
		starts_at, ends_at, location, meeting_url,
		registration_required, registration_deadline, max_participants,
		guests_allowed, cost_cents, guest_cost_cents,
		visibility, published, cancelled, created_by, category_id,
		created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Title, &e.TitleEn, &e.Description, &e.Type,
		&e.StartsAt, &e.EndsAt, &e.Location, &e.MeetingURL,
		&e.RegistrationRequired, &e.RegistrationDeadline, &e.MaxParticipants,
		&e.GuestsAllowed, &e.CostCents, &e.GuestCostCents,
		&e.Visibility, &e.Published, &e.Cancelled, &e.CreatedBy, &e.CategoryID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (tenant_id, title, title_en, description, type,
			starts_at, ends_at, location, meeting_url,
			registration_required, registration_deadline, max_participants,
			guests_allowed, cost_cents, guest_cost_cents,
			visibility, published, cancelled, created_by, category_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.TenantID, e.Title, e.TitleEn, e.Description, e.Type,
		e.StartsAt, e.EndsAt, e.Location, e.MeetingURL,
		e.RegistrationRequired, e.RegistrationDeadline, e.MaxParticipants,
		e.GuestsAllowed, e.CostCents, e.GuestCostCents,
		e.Visibility, e.Published, e.Cancelled, e.CreatedBy, e.CategoryID,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, title_en = $2, description = $3, type = $4,
		    starts_at = $5, ends_at = $6, location = $7, meeting_url = $8,
		    registration_required = $9, registration_deadline = $10,
		    max_participants = $11, guests_allowed = $12,
		    cost_cents = $13, guest_cost_cents = $14,
		    visibility = $15, published = $16, cancelled = $17,
		    category_id = $18, updated_at = $19
		WHERE id = $20 AND tenant_id = $21
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.Title, e.TitleEn, e.Description, e.Type,
		e.StartsAt, e.EndsAt, e.Location, e.MeetingURL,
		e.RegistrationRequired, e.RegistrationDeadline,
		e.MaxParticipants, e.GuestsAllowed,
		e.CostCents, e.GuestCostCents,
		e.Visibility, e.Published, e.Cancelled,
		e.CategoryID, e.UpdatedAt,
		e.ID, e.TenantID,
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

// visibilityTiers returns the visibility values visible at the given tier.
func visibilityTiers(tier string) []string {
	switch tier {
	case domain.VisibilityBoard:
		return []string{domain.VisibilityPublic, domain.VisibilityMembers, domain.VisibilityBoard}
	case domain.VisibilityMembers:
		return []string{domain.VisibilityPublic, domain.VisibilityMembers}
	default:
		return []string{domain.VisibilityPublic}
	}
}

func (r *eventRepository) List(ctx context.Context, tenantID string, f domain.EventFilter, p domain.PaginationParams) ([]*domain.Event, int, error) {
	where := `WHERE tenant_id = $1`
	args := []any{tenantID}

	if f.PublishedOnly {
		where += ` AND published`
	}
	if f.From != nil {
		args = append(args, *f.From)
		where += fmt.Sprintf(` AND starts_at >= $%d`, len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where += fmt.Sprintf(` AND starts_at < $%d`, len(args))
	}
	if f.Visibility != "" {
		tiers := visibilityTiers(f.Visibility)
		where += ` AND visibility IN (`
		for i, tier := range tiers {
			args = append(args, tier)
			if i > 0 {
				where += `, `
			}
			where += fmt.Sprintf(`$%d`, len(args))
		}
		where += `)`
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, p.PageSize, p.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		%s
		ORDER BY starts_at
		LIMIT $%d OFFSET $%d
	`, eventColumns, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListPublicUpcoming(ctx context.Context, tenantID string, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE tenant_id = $1 AND published AND NOT cancelled
		  AND visibility = $2 AND starts_at >= $3
		ORDER BY starts_at
	`
	rows, err := r.DB.QueryContext(ctx, query, tenantID, domain.VisibilityPublic, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
