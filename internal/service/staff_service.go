package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jabana-gov/case-service/internal/auth"
	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/domain"
	"github.com/jabana-gov/case-service/internal/repository"
	apperrors "github.com/jabana-gov/case-service/pkg/util/errorutil"
)

// StaffService manages the sector roster.
type StaffService struct {
	staff      repository.StaffRepository
	bcryptCost int
}

// StaffDependencies encapsulates repositories required for roster management.
type StaffDependencies struct {
	StaffRepo repository.StaffRepository
}

// StaffCreateInput carries the fields an admin supplies for a new member.
type StaffCreateInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     domain.StaffRole
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps StaffDependencies) *StaffService {
	return &StaffService{staff: deps.StaffRepo, bcryptCost: cfg.Auth.BcryptCost}
}

// CreateStaff provisions a roster member. Admin only; enforced at the route.
func (s *StaffService) CreateStaff(ctx context.Context, in StaffCreateInput) (*domain.StaffMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Name == "" || in.Email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if len(in.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	switch in.Role {
	case domain.StaffRoleOfficer, domain.StaffRoleExecutive, domain.StaffRoleAdmin:
	default:
		return nil, apperrors.NewValidationError("unknown staff role", map[string]any{"role": in.Role})
	}

	if _, err := s.staff.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict("a staff member with this email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	member := &domain.StaffMember{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         in.Role,
		Availability: domain.AvailabilityAvailable,
		Active:       true,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetStaff fetches one roster member.
func (s *StaffService) GetStaff(ctx context.Context, id string) (*domain.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"id": id})
		}
		return nil, err
	}
	return member, nil
}

// ListStaff returns roster members matching the filter.
func (s *StaffService) ListStaff(ctx context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.staff.List(ctx, filter)
}

// Roster returns every member with case counts derived from the case table.
func (s *StaffService) Roster(ctx context.Context) ([]domain.StaffCaseLoad, error) {
	return s.staff.ListWithCaseLoad(ctx)
}

// SetAvailability records a member's own roster status.
func (s *StaffService) SetAvailability(ctx context.Context, staffID string, availability domain.Availability) (*domain.StaffMember, error) {
	if !domain.ValidAvailability(availability) {
		return nil, apperrors.NewValidationError("unknown availability", map[string]any{"availability": availability})
	}
	member, err := s.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	member.Availability = availability
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// SetActive enables or disables a roster member's account.
func (s *StaffService) SetActive(ctx context.Context, staffID string, active bool) (*domain.StaffMember, error) {
	member, err := s.GetStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	member.Active = active
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}
