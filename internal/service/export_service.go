package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bloomcove/booking-api/internal/dto"
	"github.com/bloomcove/booking-api/internal/models"
	"github.com/bloomcove/booking-api/internal/scheduling"
	"github.com/bloomcove/booking-api/pkg/export"
	"github.com/bloomcove/booking-api/pkg/storage"
)

const exportPageSize = 100

type exportBookingSource interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
}

type exportSlotSource interface {
	ListActive(ctx context.Context, staffID, offeringID string, windowStart time.Time) ([]models.AvailabilitySlot, error)
}

type exportStaffSource interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

type exportOfferingSource interface {
	FindByID(ctx context.Context, id string) (*models.Offering, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	bookings  exportBookingSource
	slots     exportSlotSource
	staff     exportStaffSource
	offerings exportOfferingSource
	storage   fileStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(bookings exportBookingSource, slots exportSlotSource, staff exportStaffSource, offerings exportOfferingSource, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		bookings:  bookings,
		slots:     slots,
		staff:     staff,
		offerings: offerings,
		storage:   storage,
		csv:       csv,
		pdf:       pdf,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate builds a dataset according to the job definition and stores the
// rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := "all"
	if job.Params.StaffID != nil && *job.Params.StaffID != "" {
		scope = sanitizeFilename(*job.Params.StaffID)
	}
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), scope, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	from, to, err := reportWindow(job.Params)
	if err != nil {
		return export.Dataset{}, "", err
	}
	switch job.Type {
	case models.ReportTypeBookings:
		return s.buildBookingsDataset(ctx, job.Params, from, to)
	case models.ReportTypeSchedule:
		return s.buildScheduleDataset(ctx, job.Params, from, to)
	case models.ReportTypeSummary:
		return s.buildSummaryDataset(ctx, job.Params, from, to)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func reportWindow(params models.ReportJobParams) (time.Time, time.Time, error) {
	from, err := dto.ParseDate(params.DateFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid dateFrom %q: %w", params.DateFrom, err)
	}
	to, err := dto.ParseDate(params.DateTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid dateTo %q: %w", params.DateTo, err)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("dateFrom %s is after dateTo %s", params.DateFrom, params.DateTo)
	}
	return from, to, nil
}

// listAllBookings pages through the repository until the window is exhausted
// so exports are not capped at a single page.
func (s *ExportService) listAllBookings(ctx context.Context, params models.ReportJobParams, from, to time.Time) ([]models.Booking, error) {
	filter := models.BookingFilter{
		StaffID:   deref(params.StaffID),
		DateFrom:  &from,
		DateTo:    &to,
		PageSize:  exportPageSize,
		SortBy:    "date",
		SortOrder: "asc",
	}
	var all []models.Booking
	for page := 1; ; page++ {
		filter.Page = page
		rows, total, err := s.bookings.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if len(rows) < exportPageSize || len(all) >= total {
			break
		}
	}
	return all, nil
}

func (s *ExportService) buildBookingsDataset(ctx context.Context, params models.ReportJobParams, from, to time.Time) (export.Dataset, string, error) {
	bookings, err := s.listAllBookings(ctx, params, from, to)
	if err != nil {
		return export.Dataset{}, "", err
	}

	staffNames := map[string]string{}
	offeringNames := map[string]string{}
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
		if params.OfferingID != nil && *params.OfferingID != "" && b.OfferingID != *params.OfferingID {
			continue
		}
		rows = append(rows, map[string]string{
			"Date":     b.Date.Format(dto.DateLayout),
			"Start":    dto.FormatTimeOfDay(b.StartMinute),
			"End":      dto.FormatTimeOfDay(b.StartMinute + b.DurationMinutes),
			"Staff":    s.staffName(ctx, staffNames, b.StaffID),
			"Offering": s.offeringName(ctx, offeringNames, b.OfferingID),
			"Client":   b.ClientName,
			"Email":    b.ClientEmail,
			"Status":   string(b.Status),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Start", "End", "Staff", "Offering", "Client", "Email", "Status"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Bookings %s to %s", params.DateFrom, params.DateTo)
	return dataset, title, nil
}

func (s *ExportService) buildScheduleDataset(ctx context.Context, params models.ReportJobParams, from, to time.Time) (export.Dataset, string, error) {
	stored, err := s.slots.ListActive(ctx, deref(params.StaffID), deref(params.OfferingID), from)
	if err != nil {
		return export.Dataset{}, "", err
	}
	window, err := scheduling.NewWindow(from, to)
	if err != nil {
		return export.Dataset{}, "", err
	}
	engineSlots := make([]scheduling.Slot, 0, len(stored))
	for _, slot := range stored {
		engineSlots = append(engineSlots, slot.SchedulingSlot())
	}
	days, err := scheduling.Project(engineSlots, window)
	if err != nil {
		return export.Dataset{}, "", err
	}

	keys := make([]string, 0, len(days))
	for key := range days {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	staffNames := map[string]string{}
	var rows []map[string]string
	for _, key := range keys {
		for _, slot := range days[key] {
			booking := "walk-in"
			if slot.AppointmentOnly {
				booking = "appointment"
			}
			rows = append(rows, map[string]string{
				"Date":         key,
				"Staff":        s.staffName(ctx, staffNames, slot.StaffID),
				"Start":        dto.FormatTimeOfDay(slot.StartMinute),
				"End":          dto.FormatTimeOfDay(slot.EndMinute),
				"Buffer (min)": fmt.Sprintf("%d", slot.BufferMinutes),
				"Booking":      booking,
			})
		}
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Staff", "Start", "End", "Buffer (min)", "Booking"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Schedule %s to %s", params.DateFrom, params.DateTo)
	return dataset, title, nil
}

func (s *ExportService) buildSummaryDataset(ctx context.Context, params models.ReportJobParams, from, to time.Time) (export.Dataset, string, error) {
	bookings, err := s.listAllBookings(ctx, params, from, to)
	if err != nil {
		return export.Dataset{}, "", err
	}

	byStatus := map[models.BookingStatus]int{}
	staffSeen := map[string]bool{}
	bookedMinutes := 0
	for _, b := range bookings {
		byStatus[b.Status]++
		staffSeen[b.StaffID] = true
		if b.Status != models.BookingCancelled {
			bookedMinutes += b.DurationMinutes
		}
	}

	rangeLabel := fmt.Sprintf("%s to %s", params.DateFrom, params.DateTo)
	rows := []map[string]string{
		{"Metric": "Total Bookings", "Range": rangeLabel, "Value": fmt.Sprintf("%d", len(bookings))},
		{"Metric": "Pending", "Range": rangeLabel, "Value": fmt.Sprintf("%d", byStatus[models.BookingPending])},
		{"Metric": "Confirmed", "Range": rangeLabel, "Value": fmt.Sprintf("%d", byStatus[models.BookingConfirmed])},
		{"Metric": "Rescheduled", "Range": rangeLabel, "Value": fmt.Sprintf("%d", byStatus[models.BookingRescheduled])},
		{"Metric": "Cancelled", "Range": rangeLabel, "Value": fmt.Sprintf("%d", byStatus[models.BookingCancelled])},
		{"Metric": "Booked Hours", "Range": rangeLabel, "Value": fmt.Sprintf("%.1f", float64(bookedMinutes)/60)},
		{"Metric": "Staff Involved", "Range": rangeLabel, "Value": fmt.Sprintf("%d", len(staffSeen))},
	}

	dataset := export.Dataset{
		Headers: []string{"Metric", "Range", "Value"},
		Rows:    rows,
	}
	title := fmt.Sprintf("Booking Summary %s", rangeLabel)
	return dataset, title, nil
}

// staffName resolves a display name, memoizing per export run. Lookup
// failures fall back to the raw identifier so a stale reference cannot sink
// the whole report.
func (s *ExportService) staffName(ctx context.Context, memo map[string]string, id string) string {
	if name, ok := memo[id]; ok {
		return name
	}
	name := id
	if s.staff != nil {
		if staff, err := s.staff.FindByID(ctx, id); err == nil && staff != nil {
			name = staff.FullName
		} else if err != nil {
			s.logger.Sugar().Debugw("export staff lookup failed", "staff_id", id, "error", err)
		}
	}
	memo[id] = name
	return name
}

func (s *ExportService) offeringName(ctx context.Context, memo map[string]string, id string) string {
	if name, ok := memo[id]; ok {
		return name
	}
	name := id
	if s.offerings != nil {
		if offering, err := s.offerings.FindByID(ctx, id); err == nil && offering != nil {
			name = offering.Name
		} else if err != nil {
			s.logger.Sugar().Debugw("export offering lookup failed", "offering_id", id, "error", err)
		}
	}
	memo[id] = name
	return name
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
