package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jabana-gov/case-service/internal/auth"
	"github.com/jabana-gov/case-service/internal/config"
	"github.com/jabana-gov/case-service/internal/domain"
)

func newStaffFixture(members ...domain.StaffMember) (*fakeStaffRepo, *StaffService) {
	repo := newFakeStaffRepo(members...)
	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}}
	return repo, NewStaffService(cfg, StaffDependencies{StaffRepo: repo})
}

func TestCreateStaffDefaultsAndHashing(t *testing.T) {
	_, svc := newStaffFixture()

	member, err := svc.CreateStaff(context.Background(), StaffCreateInput{
		Name:     "  Claire Uwase ",
		Email:    " Claire.Uwase@Jabana.gov.RW ",
		Phone:    "+250788000003",
		Password: "password1",
		Role:     domain.StaffRoleOfficer,
	})
	require.NoError(t, err)

	assert.Equal(t, "Claire Uwase", member.Name)
	assert.Equal(t, "claire.uwase@jabana.gov.rw", member.Email)
	assert.Equal(t, domain.AvailabilityAvailable, member.Availability)
	assert.True(t, member.Active)
	assert.NotEqual(t, "password1", member.PasswordHash)
	assert.NoError(t, auth.ComparePassword(member.PasswordHash, "password1"))
}

func TestCreateStaffValidation(t *testing.T) {
	_, svc := newStaffFixture()

	_, err := svc.CreateStaff(context.Background(), StaffCreateInput{
		Email: "a@b.c", Password: "password1", Role: domain.StaffRoleOfficer,
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.CreateStaff(context.Background(), StaffCreateInput{
		Name: "X", Email: "a@b.c", Password: "short", Role: domain.StaffRoleOfficer,
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))

	_, err = svc.CreateStaff(context.Background(), StaffCreateInput{
		Name: "X", Email: "a@b.c", Password: "password1", Role: "janitor",
	})
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestCreateStaffRejectsDuplicateEmail(t *testing.T) {
	_, svc := newStaffFixture(domain.StaffMember{
		ID: "staff-1", Name: "Alice", Email: "alice@jabana.gov.rw",
		Role: domain.StaffRoleOfficer, Active: true,
	})

	_, err := svc.CreateStaff(context.Background(), StaffCreateInput{
		Name: "Alice Again", Email: "ALICE@jabana.gov.rw",
		Password: "password1", Role: domain.StaffRoleOfficer,
	})
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestSetAvailability(t *testing.T) {
	repo, svc := newStaffFixture(domain.StaffMember{
		ID: "staff-1", Name: "Alice", Email: "alice@jabana.gov.rw",
		Role: domain.StaffRoleOfficer, Availability: domain.AvailabilityAvailable, Active: true,
	})

	member, err := svc.SetAvailability(context.Background(), "staff-1", domain.AvailabilityBusy)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityBusy, member.Availability)

	stored, err := repo.GetByID(context.Background(), "staff-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityBusy, stored.Availability)

	_, err = svc.SetAvailability(context.Background(), "staff-1", "on-the-moon")
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestSetActiveUnknownMember(t *testing.T) {
	_, svc := newStaffFixture()

	_, err := svc.SetActive(context.Background(), "nope", false)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestSetActiveDisablesAccount(t *testing.T) {
	repo, svc := newStaffFixture(domain.StaffMember{
		ID: "staff-1", Name: "David", Email: "david@jabana.gov.rw",
		Role: domain.StaffRoleOfficer, Availability: domain.AvailabilityAvailable, Active: true,
	})

	member, err := svc.SetActive(context.Background(), "staff-1", false)
	require.NoError(t, err)
	assert.False(t, member.Active)

	stored, err := repo.GetByID(context.Background(), "staff-1")
	require.NoError(t, err)
	assert.False(t, stored.Active)
}
