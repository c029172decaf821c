package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

const registrationColumns = `id, user_id, event_id, registration_date, status, payment_status,
		attendance_status, notes, created_at, updated_at`

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

// Create inserts a registration row. The unique index on (user_id, event_id)
// is the storage-level guard against duplicate registrations; a violation
// surfaces as domain.ErrAlreadyRegistered.
func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (user_id, event_id, registration_date, status,
			payment_status, attendance_status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := q(ctx, r.DB).QueryRowContext(ctx, query,
		reg.UserID, reg.EventID, reg.RegistrationDate, reg.Status,
		reg.PaymentStatus, reg.AttendanceStatus, nullString(reg.Notes),
		reg.CreatedAt, reg.UpdatedAt,
	).Scan(&reg.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE id = $1`, registrationColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE id = $1 FOR UPDATE`, registrationColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	query := fmt.Sprintf(`SELECT %s FROM registrations WHERE event_id = $1 AND user_id = $2`, registrationColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, eventID, userID))
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE registrations SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reactivate flips a cancelled registration back to active with a fresh
// registration date. Used instead of a new insert so the (user, event)
// uniqueness constraint holds across cancel/re-register cycles.
func (r *registrationRepository) Reactivate(ctx context.Context, id, notes string, registrationDate time.Time) (*domain.Registration, error) {
	query := fmt.Sprintf(`
		UPDATE registrations
		SET status = $1, notes = $2, registration_date = $3,
			payment_status = $4, attendance_status = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING %s
	`, registrationColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query,
		domain.RegistrationStatusActive, nullString(notes), registrationDate,
		domain.PaymentStatusPending, domain.AttendanceStatusPending, id,
	))
}

func (r *registrationRepository) ListByUserID(ctx context.Context, userID, status string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	return r.list(ctx, "user_id", userID, status, params)
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID, status string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	return r.list(ctx, "event_id", eventID, status, params)
}

func (r *registrationRepository) list(ctx context.Context, column, value, status string, params domain.PaginationParams) ([]*domain.Registration, int, error) {
	where := fmt.Sprintf(` WHERE %s = $1`, column)
	args := []interface{}{value}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM registrations%s ORDER BY registration_date DESC LIMIT $%d OFFSET $%d`,
		registrationColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := q(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

// DeleteByEventID removes all registrations for an event. Called inside the
// event-deletion transaction so the cascade and the event delete commit
// together.
func (r *registrationRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	query := `DELETE FROM registrations WHERE event_id = $1`
	_, err := q(ctx, r.DB).ExecContext(ctx, query, eventID)
	return err
}

func (r *registrationRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var total int
	err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE status = $1`, status).Scan(&total)
	return total, err
}

func (r *registrationRepository) scanOne(row *sql.Row) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var notesNull sql.NullString
	err := row.Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.RegistrationDate, &reg.Status,
		&reg.PaymentStatus, &reg.AttendanceStatus, &notesNull, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	reg.Notes = notesNull.String
	return reg, nil
}

func (r *registrationRepository) scanRow(rows *sql.Rows) (*domain.Registration, error) {
	reg := &domain.Registration{}
	var notesNull sql.NullString
	if err := rows.Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.RegistrationDate, &reg.Status,
		&reg.PaymentStatus, &reg.AttendanceStatus, &notesNull, &reg.CreatedAt, &reg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	reg.Notes = notesNull.String
	return reg, nil
}
