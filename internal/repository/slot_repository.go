package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bloomcove/booking-api/internal/models"
)

const slotColumns = `id, staff_id, schedule_type, weekday, biweekly_group, skip_fifth_week, monthly_occurrence, specific_date, recurrence_end_date, start_minute, end_minute, buffer_minutes, appointment_only, offering_ids, active, created_at, updated_at`

// SlotRepository manages persistence for availability slots.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository constructs a SlotRepository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// List returns slots matching filters along with total count.
func (r *SlotRepository) List(ctx context.Context, filter models.SlotFilter) ([]models.AvailabilitySlot, int, error) {
	base := "FROM availability_slots WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.ScheduleType != "" {
		conditions = append(conditions, fmt.Sprintf("schedule_type = $%d", len(args)+1))
		args = append(args, filter.ScheduleType)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"start_minute": "start_minute",
		"created_at":   "created_at",
		"updated_at":   "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", slotColumns, base, column, order, size, offset)
	var slots []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list slots: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count slots: %w", err)
	}

	return slots, total, nil
}

// ListActive returns every active slot, optionally narrowed to one staff
// member and/or one offering. Slots whose recurrence already ended before
// the window start are filtered out in SQL so projection touches fewer rows.
func (r *SlotRepository) ListActive(ctx context.Context, staffID, offeringID string, windowStart time.Time) ([]models.AvailabilitySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_slots WHERE active = TRUE AND (recurrence_end_date IS NULL OR recurrence_end_date >= $1)", slotColumns)
	args := []interface{}{windowStart}

	if staffID != "" {
		query += fmt.Sprintf(" AND staff_id = $%d", len(args)+1)
		args = append(args, staffID)
	}
	if offeringID != "" {
		query += fmt.Sprintf(" AND $%d = ANY(offering_ids)", len(args)+1)
		args = append(args, offeringID)
	}
	query += " ORDER BY start_minute, id"

	var slots []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list active slots: %w", err)
	}
	return slots, nil
}

// FindByID fetches a slot by ID.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_slots WHERE id = $1", slotColumns)
	var slot models.AvailabilitySlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create inserts a new availability slot.
func (r *SlotRepository) Create(ctx context.Context, slot *models.AvailabilitySlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now

	const query = `INSERT INTO availability_slots (id, staff_id, schedule_type, weekday, biweekly_group, skip_fifth_week, monthly_occurrence, specific_date, recurrence_end_date, start_minute, end_minute, buffer_minutes, appointment_only, offering_ids, active, created_at, updated_at)
		VALUES (:id, :staff_id, :schedule_type, :weekday, :biweekly_group, :skip_fifth_week, :monthly_occurrence, :specific_date, :recurrence_end_date, :start_minute, :end_minute, :buffer_minutes, :appointment_only, :offering_ids, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

// Update modifies an existing availability slot.
func (r *SlotRepository) Update(ctx context.Context, slot *models.AvailabilitySlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE availability_slots SET schedule_type = :schedule_type, weekday = :weekday, biweekly_group = :biweekly_group, skip_fifth_week = :skip_fifth_week, monthly_occurrence = :monthly_occurrence, specific_date = :specific_date, recurrence_end_date = :recurrence_end_date, start_minute = :start_minute, end_minute = :end_minute, buffer_minutes = :buffer_minutes, appointment_only = :appointment_only, offering_ids = :offering_ids, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update slot: %w", err)
	}
	return nil
}

// Deactivate retires a slot. Existing bookings keep their copied buffer and
// are unaffected.
func (r *SlotRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE availability_slots SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate slot: %w", err)
	}
	return nil
}
