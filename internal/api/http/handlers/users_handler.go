package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jabana-gov/case-service/internal/api/dto"
	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/service"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// UsersHandler exposes auth endpoints for citizen accounts.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /auth/citizens/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	citizen, token, exp, err := h.auth.RegisterCitizen(c.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"citizen": citizenResponse(citizen),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Login handles POST /auth/citizens/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	citizen, token, exp, err := h.auth.LoginCitizen(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"citizen": citizenResponse(citizen),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

func citizenResponse(citizen *domain.User) fiber.Map {
	return fiber.Map{
		"id":    citizen.ID,
		"name":  citizen.Name,
		"email": citizen.Email,
		"phone": citizen.Phone,
	}
}
