package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jabana-gov/case-service/internal/service"
)

// ReportsHandler serves executive summaries.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs the handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Generate GET /staff/reports.
func (h *ReportsHandler) Generate(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	query := service.ReportQuery{
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Type:     c.Query("type"),
		Search:   c.Query("search"),
	}
	if from := parseTime(c.Query("from")); from != nil {
		query.From = *from
	}
	if to := parseTime(c.Query("to")); to != nil {
		query.To = *to
	}
	report, err := h.reports.Generate(c.Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": report})
}

// StatusCounts GET /staff/reports/status-counts.
func (h *ReportsHandler) StatusCounts(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	counts, err := h.reports.StatusCounts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
