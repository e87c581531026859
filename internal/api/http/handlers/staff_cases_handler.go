package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jabana-gov/case-service/internal/api/dto"
	"github.com/jabana-gov/case-service/internal/auth"
	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/service"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// StaffCasesHandler handles the staff case queue and lifecycle endpoints.
type StaffCasesHandler struct {
	cases *service.CaseService
}

// NewStaffCasesHandler constructs the handler.
func NewStaffCasesHandler(caseService *service.CaseService) *StaffCasesHandler {
	return &StaffCasesHandler{cases: caseService}
}

// ListCases GET /staff/cases.
func (h *StaffCasesHandler) ListCases(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	filter := parseStaffCaseFilter(c)
	cases, err := h.cases.ListCases(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseSummaries(cases)})
}

// GetCase GET /staff/cases/:id returns the full case with notes and history.
func (h *StaffCasesHandler) GetCase(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	found, notes, history, err := h.cases.GetCaseDetail(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseDetail(found, notes, history)})
}

// UpdateStatus PATCH /staff/cases/:id/status.
func (h *StaffCasesHandler) UpdateStatus(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.cases.UpdateStatus(c.Context(), staff, c.Params("id"), req.Status, req.Comment, req.Version)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseSummary(*updated)})
}

// UpdatePriority PATCH /staff/cases/:id/priority.
func (h *StaffCasesHandler) UpdatePriority(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.cases.UpdatePriority(c.Context(), staff, c.Params("id"), req.Priority, req.Version)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseSummary(*updated)})
}

// Assign PATCH /staff/cases/:id/assignee. A null staff_id unassigns.
func (h *StaffCasesHandler) Assign(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.cases.Assign(c.Context(), staff, c.Params("id"), req.StaffID, req.Version)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseSummary(*updated)})
}

// SelfAssign POST /staff/cases/:id/claim.
func (h *StaffCasesHandler) SelfAssign(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	updated, err := h.cases.SelfAssign(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseSummary(*updated)})
}

// Reopen POST /staff/cases/:id/reopen.
func (h *StaffCasesHandler) Reopen(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ReopenCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.cases.Reopen(c.Context(), staff, c.Params("id"), req.Version)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseSummary(*updated)})
}

// AddNote POST /staff/cases/:id/notes.
func (h *StaffCasesHandler) AddNote(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.cases.AddNote(c.Context(), staff, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CaseNoteResponse{
		ID:         note.ID,
		AuthorID:   note.AuthorID,
		AuthorName: note.AuthorName,
		Body:       note.Body,
		CreatedAt:  note.CreatedAt,
	}})
}

// ListHistory GET /staff/cases/:id/history.
func (h *StaffCasesHandler) ListHistory(c *fiber.Ctx) error {
	if _, err := staffPrincipal(c); err != nil {
		return err
	}
	history, err := h.cases.ListHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseHistory(history)})
}

func staffPrincipal(c *fiber.Ctx) (*domain.StaffMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal.Staff, nil
}

func parseStaffCaseFilter(c *fiber.Ctx) service.CaseListFilter {
	filter := service.CaseListFilter{}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.Search = &search
	}
	if status := c.Query("status"); status != "" {
		s := domain.CaseStatus(status)
		filter.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.CasePriority(priority)
		filter.Priority = &p
	}
	if caseType := c.Query("type"); caseType != "" {
		t := domain.CaseType(caseType)
		filter.Type = &t
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
