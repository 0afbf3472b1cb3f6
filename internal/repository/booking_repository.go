package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bloomcove/booking-api/internal/models"
	"github.com/bloomcove/booking-api/internal/scheduling"
)

const bookingColumns = `id, slot_id, staff_id, offering_id, client_name, client_email, client_phone, date, start_minute, duration_minutes, buffer_minutes, status, notes, cancelled_at, created_at, updated_at`

// BookingRepository manages persistence for bookings. Conflict-sensitive
// writes lock the staff member's day inside a transaction so two concurrent
// requests for the same gap cannot both pass the check.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// List returns bookings matching filters along with total count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	base := "FROM bookings WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.ClientRef != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(client_email) = LOWER($%d)", len(args)+1))
		args = append(args, filter.ClientRef)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "date"
	}
	allowedSorts := map[string]string{
		"date":         "date",
		"start_minute": "start_minute",
		"created_at":   "created_at",
		"status":       "status",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "date"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_minute ASC LIMIT %d OFFSET %d", bookingColumns, base, column, order, size, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// FindByID fetches a booking by ID.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1", bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByStaffAndDate returns every non-cancelled booking for the staff
// member on the given date, without locking. Used for read paths such as
// free-gap computation.
func (r *BookingRepository) ListByStaffAndDate(ctx context.Context, staffID string, date time.Time) ([]models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE staff_id = $1 AND date = $2 AND status <> $3 ORDER BY start_minute", bookingColumns)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, staffID, date, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("list bookings for staff day: %w", err)
	}
	return bookings, nil
}

// CreateIfFree inserts the booking only when its occupied interval does not
// overlap any existing non-cancelled booking for the same staff member and
// date. The day's rows are locked for the duration of the transaction, which
// serializes the check against concurrent writes.
func (r *BookingRepository) CreateIfFree(ctx context.Context, booking *models.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := lockStaffDay(ctx, tx, booking.StaffID, booking.Date, "")
	if err != nil {
		return err
	}
	if conflict := findConflict(*booking, existing); conflict != nil {
		return conflict
	}

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, slot_id, staff_id, offering_id, client_name, client_email, client_phone, date, start_minute, duration_minutes, buffer_minutes, status, notes, cancelled_at, created_at, updated_at)
		VALUES (:id, :slot_id, :staff_id, :offering_id, :client_name, :client_email, :client_phone, :date, :start_minute, :duration_minutes, :buffer_minutes, :status, :notes, :cancelled_at, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// RescheduleIfFree moves the booking to its new date and start time only
// when the target gap is free. The booking's own row is excluded from the
// conflict scan so a booking can always be shifted within its current gap.
func (r *BookingRepository) RescheduleIfFree(ctx context.Context, booking *models.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reschedule transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	existing, err := lockStaffDay(ctx, tx, booking.StaffID, booking.Date, booking.ID)
	if err != nil {
		return err
	}
	if conflict := findConflict(*booking, existing); conflict != nil {
		return conflict
	}

	booking.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET date = :date, start_minute = :start_minute, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reschedule: %w", err)
	}
	return nil
}

// UpdateStatus transitions a booking's lifecycle status. Cancelling also
// stamps cancelled_at.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	now := time.Now().UTC()
	if status == models.BookingCancelled {
		const query = `UPDATE bookings SET status = $2, cancelled_at = $3, updated_at = $3 WHERE id = $1`
		if _, err := r.db.ExecContext(ctx, query, id, status, now); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		return nil
	}
	const query = `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, now); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	return nil
}

// lockStaffDay loads and row-locks the staff member's non-cancelled bookings
// for the date, optionally excluding one booking ID.
func lockStaffDay(ctx context.Context, tx *sqlx.Tx, staffID string, date time.Time, excludeID string) ([]models.Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE staff_id = $1 AND date = $2 AND status <> $3", bookingColumns)
	args := []interface{}{staffID, date, models.BookingCancelled}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	query += " FOR UPDATE"

	var bookings []models.Booking
	if err := tx.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("lock staff day: %w", err)
	}
	return bookings, nil
}

// findConflict runs the engine's overlap predicate against the locked rows
// and, when a conflict exists, reports which bookings block the candidate.
func findConflict(candidate models.Booking, existing []models.Booking) *models.BookingConflictError {
	records := make([]scheduling.BookingRecord, 0, len(existing))
	for _, b := range existing {
		records = append(records, b.Record())
	}

	c := scheduling.Candidate{
		StaffID:         candidate.StaffID,
		Date:            candidate.Date,
		StartMinute:     candidate.StartMinute,
		DurationMinutes: candidate.DurationMinutes,
		BufferMinutes:   candidate.BufferMinutes,
	}
	if !scheduling.HasConflict(c, records) {
		return nil
	}

	conflict := &models.BookingConflictError{
		Message: "requested time overlaps an existing booking",
		StaffID: candidate.StaffID,
		Date:    scheduling.DateKey(candidate.Date),
	}
	for _, b := range existing {
		single := []scheduling.BookingRecord{b.Record()}
		if scheduling.HasConflict(c, single) {
			conflict.Conflict = append(conflict.Conflict, models.BookingConflictDetail{
				BookingID:     b.ID,
				StartMinute:   b.StartMinute,
				EndMinute:     b.StartMinute + b.DurationMinutes,
				BufferMinutes: b.BufferMinutes,
			})
		}
	}
	return conflict
}
