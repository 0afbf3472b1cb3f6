package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloomcove/booking-api/internal/dto"
	appErrors "github.com/bloomcove/booking-api/pkg/errors"
	"github.com/bloomcove/booking-api/pkg/response"
)

type availabilityService interface {
	Calendar(ctx context.Context, query dto.CalendarQuery) (*dto.CalendarResponse, error)
	Day(ctx context.Context, query dto.DayViewQuery) (*dto.DayViewResponse, error)
	NextOccurrence(ctx context.Context, slotID string, from time.Time) (*dto.NextOccurrenceResponse, error)
}

// AvailabilityHandler exposes the public availability projections.
type AvailabilityHandler struct {
	availability availabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Calendar godoc
// @Summary Projected availability calendar
// @Tags Availability
// @Produce json
// @Param from query string true "Window start (2006-01-02)"
// @Param to query string true "Window end (2006-01-02)"
// @Param staffId query string false "Filter by staff member"
// @Param offeringId query string false "Filter by offering"
// @Success 200 {object} response.Envelope
// @Router /availability/calendar [get]
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	from, err := dto.ParseDate(c.Query("from"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as 2006-01-02"))
		return
	}
	to, err := dto.ParseDate(c.Query("to"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as 2006-01-02"))
		return
	}
	query := dto.CalendarQuery{
		StaffID:    c.Query("staffId"),
		OfferingID: c.Query("offeringId"),
		From:       from,
		To:         to,
	}
	calendar, err := h.availability.Calendar(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, calendar, nil)
}

// Day godoc
// @Summary Single day availability with busy intervals
// @Tags Availability
// @Produce json
// @Param date query string true "Date (2006-01-02)"
// @Param staffId query string false "Filter by staff member"
// @Param offeringId query string false "Filter by offering"
// @Success 200 {object} response.Envelope
// @Router /availability/day [get]
func (h *AvailabilityHandler) Day(c *gin.Context) {
	date, err := dto.ParseDate(c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as 2006-01-02"))
		return
	}
	query := dto.DayViewQuery{
		Date:       date,
		StaffID:    c.Query("staffId"),
		OfferingID: c.Query("offeringId"),
	}
	day, err := h.availability.Day(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// NextOccurrence godoc
// @Summary Next date a slot is active
// @Tags Availability
// @Produce json
// @Param id path string true "Slot ID"
// @Param from query string false "Search start (defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /slots/{id}/next-occurrence [get]
func (h *AvailabilityHandler) NextOccurrence(c *gin.Context) {
	from := time.Now().UTC()
	if raw := c.Query("from"); raw != "" {
		parsed, err := dto.ParseDate(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as 2006-01-02"))
			return
		}
		from = parsed
	}
	next, err := h.availability.NextOccurrence(c.Request.Context(), c.Param("id"), from)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, next, nil)
}
