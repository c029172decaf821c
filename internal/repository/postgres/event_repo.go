package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

const eventColumns = `id, title, description, date, event_time, location, capacity, current_registrations,
		organizer_id, status, rejection_reason, category, price, image_url, tags, requirements,
		is_virtual, meeting_link, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, event_time, location, capacity,
			organizer_id, status, category, price, image_url, tags, requirements,
			is_virtual, meeting_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, current_registrations
	`
	return q(ctx, r.DB).QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Time, e.Location, e.Capacity,
		e.OrganizerID, e.Status, e.Category, e.Price, nullString(e.ImageURL),
		pq.Array(e.Tags), pq.Array(e.Requirements), e.IsVirtual, nullString(e.MeetingLink),
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID, &e.CurrentRegistrations)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1 FOR UPDATE`, eventColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, id))
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where, args := buildEventWhere(filter)

	countQuery := `SELECT COUNT(*) FROM events` + where
	var total int
	if err := q(ctx, r.DB).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderBy := eventOrderBy(filter.SortBy, filter.SortOrder)
	query := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		eventColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := q(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID, status string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := ` WHERE organizer_id = $1`
	args := []interface{}{organizerID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		eventColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	rows, err := q(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.Time != nil {
		add("event_time", *upd.Time)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Capacity != nil {
		add("capacity", *upd.Capacity)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.ImageURL != nil {
		add("image_url", nullString(*upd.ImageURL))
	}
	if upd.Tags != nil {
		add("tags", pq.Array(upd.Tags))
	}
	if upd.Requirements != nil {
		add("requirements", pq.Array(upd.Requirements))
	}
	if upd.IsVirtual != nil {
		add("is_virtual", *upd.IsVirtual)
	}
	if upd.MeetingLink != nil {
		add("meeting_link", nullString(*upd.MeetingLink))
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, args...))
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id, status, rejectionReason string) (*domain.Event, error) {
	query := fmt.Sprintf(`
		UPDATE events SET status = $1, rejection_reason = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING %s
	`, eventColumns)
	return r.scanOne(q(ctx, r.DB).QueryRowContext(ctx, query, status, nullString(rejectionReason), id))
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementRegistrations performs the conditional ledger increment: the
// capacity check and the write are a single statement, so two concurrent
// registrations can never both pass the check and overshoot capacity.
func (r *eventRepository) IncrementRegistrations(ctx context.Context, id string) error {
	query := `
		UPDATE events
		SET current_registrations = current_registrations + 1, updated_at = NOW()
		WHERE id = $1 AND current_registrations < capacity
	`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEventFull
	}
	return nil
}

// DecrementRegistrations lowers the ledger by one, flooring at zero. The
// floor is a safety net; the schema CHECK already forbids negatives.
func (r *eventRepository) DecrementRegistrations(ctx context.Context, id string) error {
	query := `
		UPDATE events
		SET current_registrations = GREATEST(current_registrations - 1, 0), updated_at = NOW()
		WHERE id = $1
	`
	result, err := q(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&total)
	return total, err
}

func (r *eventRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var total int
	err := q(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE status = $1`, status).Scan(&total)
	return total, err
}

func (r *eventRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY created_at DESC LIMIT $1`, eventColumns)
	rows, err := q(ctx, r.DB).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// buildEventWhere translates an EventFilter into a WHERE clause. The
// free-text search is an OR over title, description, and tags, matching
// case-insensitively.
func buildEventWhere(filter domain.EventFilter) (string, []interface{}) {
	clauses := []string{}
	args := []interface{}{}
	n := 1
	add := func(clause string, values ...interface{}) {
		clauses = append(clauses, clause)
		args = append(args, values...)
		n += len(values)
	}

	if filter.Status != "" {
		add(fmt.Sprintf("status = $%d", n), filter.Status)
	}
	if filter.Category != "" {
		add(fmt.Sprintf("category = $%d", n), filter.Category)
	}
	if filter.OrganizerID != "" {
		add(fmt.Sprintf("organizer_id = $%d", n), filter.OrganizerID)
	}
	if filter.IsVirtual != nil {
		add(fmt.Sprintf("is_virtual = $%d", n), *filter.IsVirtual)
	}
	if filter.Location != "" {
		add(fmt.Sprintf("location ILIKE $%d", n), "%"+filter.Location+"%")
	}
	if filter.Date != nil {
		dayStart := filter.Date.Truncate(24 * time.Hour)
		add(fmt.Sprintf("date >= $%d AND date < $%d", n, n+1), dayStart, dayStart.AddDate(0, 0, 1))
	} else if filter.StartDate != nil && filter.EndDate != nil {
		add(fmt.Sprintf("date >= $%d AND date <= $%d", n, n+1), *filter.StartDate, *filter.EndDate)
	}
	if filter.PriceMin != nil {
		add(fmt.Sprintf("price >= $%d", n), *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		add(fmt.Sprintf("price <= $%d", n), *filter.PriceMax)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		add(fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE $%d))", n, n+1, n+2),
			pattern, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// eventOrderBy whitelists sortable columns; anything else sorts by date.
func eventOrderBy(sortBy, sortOrder string) string {
	column := "date"
	switch sortBy {
	case "date", "price", "title", "created_at", "capacity":
		column = sortBy
	}
	direction := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}

func (r *eventRepository) scanOne(row *sql.Row) (*domain.Event, error) {
	e := &domain.Event{}
	var rejectionNull, imageNull, linkNull sql.NullString
	var tags, requirements pq.StringArray
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
		&e.Capacity, &e.CurrentRegistrations, &e.OrganizerID, &e.Status,
		&rejectionNull, &e.Category, &e.Price, &imageNull, &tags, &requirements,
		&e.IsVirtual, &linkNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.RejectionReason = rejectionNull.String
	e.ImageURL = imageNull.String
	e.MeetingLink = linkNull.String
	e.Tags = tags
	e.Requirements = requirements
	return e, nil
}

func (r *eventRepository) scanAll(rows *sql.Rows) ([]*domain.Event, error) {
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		var rejectionNull, imageNull, linkNull sql.NullString
		var tags, requirements pq.StringArray
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
			&e.Capacity, &e.CurrentRegistrations, &e.OrganizerID, &e.Status,
			&rejectionNull, &e.Category, &e.Price, &imageNull, &tags, &requirements,
			&e.IsVirtual, &linkNull, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.RejectionReason = rejectionNull.String
		e.ImageURL = imageNull.String
		e.MeetingLink = linkNull.String
		e.Tags = tags
		e.Requirements = requirements
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
