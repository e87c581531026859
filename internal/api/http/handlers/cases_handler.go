package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jabana-gov/case-service/internal/api/dto"
	"github.com/jabana-gov/case-service/internal/auth"
	"github.com/jabana-gov/case-service/internal/service"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// CasesHandler manages citizen-facing case endpoints.
type CasesHandler struct {
	service *service.CaseService
}

// NewCasesHandler constructs the handler.
func NewCasesHandler(caseService *service.CaseService) *CasesHandler {
	return &CasesHandler{service: caseService}
}

// CreateCase POST /cases.
func (h *CasesHandler) CreateCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen account required")
	}
	var req dto.CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.CaseCreateInput{
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Priority:    req.Priority,
		Location:    req.Location,
		Phone:       req.Phone,
		Email:       req.Email,
		Anonymous:   req.Anonymous,
	}
	created, err := h.service.CreateCase(c.Context(), principal.Citizen, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewCaseSummary(*created)})
}

// ListCases GET /cases returns the caller's own cases in submission order.
func (h *CasesHandler) ListCases(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen account required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	cases, err := h.service.ListCitizenCases(c.Context(), principal.Citizen.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseSummaries(cases)})
}

// GetCase GET /cases/:id returns one of the caller's cases with its public
// history. Internal notes are never included here.
func (h *CasesHandler) GetCase(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen account required")
	}
	found, history, err := h.service.GetCaseForCitizen(c.Context(), principal.Citizen.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewCaseDetail(found, nil, history)})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
