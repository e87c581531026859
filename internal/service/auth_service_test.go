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

type authFixture struct {
	users  *fakeUserRepo
	staff  *fakeStaffRepo
	resets *fakeResetRepo
	svc    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newFakeUserRepo(),
		staff:  newFakeStaffRepo(),
		resets: newFakeResetRepo(),
	}
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   60,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              bcrypt.MinCost,
	}}
	f.svc = NewAuthService(cfg, AuthDependencies{
		UserRepo:          f.users,
		StaffRepo:         f.staff,
		PasswordResetRepo: f.resets,
	})
	return f
}

func (f *authFixture) registerCitizen(t *testing.T) *domain.User {
	t.Helper()
	citizen, _, _, err := f.svc.RegisterCitizen(context.Background(),
		"Grace Ingabire", "grace@example.com", "+250788000100", "password1")
	require.NoError(t, err)
	return citizen
}

func TestRegisterCitizenIssuesToken(t *testing.T) {
	f := newAuthFixture(t)

	citizen, token, exp, err := f.svc.RegisterCitizen(context.Background(),
		"Grace Ingabire", "grace@example.com", "+250788000100", "password1")
	require.NoError(t, err)

	assert.NotEmpty(t, citizen.ID)
	assert.Equal(t, domain.UserStatusActive, citizen.Status)
	assert.False(t, exp.IsZero())

	claims, err := f.svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, citizen.ID, claims.SubjectID)
	assert.Equal(t, domain.SubjectTypeCitizen, claims.Subject)
	assert.Nil(t, claims.Role)
}

func TestRegisterCitizenDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.registerCitizen(t)

	_, _, _, err := f.svc.RegisterCitizen(context.Background(),
		"Grace Again", "grace@example.com", "", "password2")
	assert.Equal(t, "CONFLICT", domainCode(t, err))
}

func TestLoginCitizen(t *testing.T) {
	f := newAuthFixture(t)
	f.registerCitizen(t)

	_, token, _, err := f.svc.LoginCitizen(context.Background(), "grace@example.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, _, err = f.svc.LoginCitizen(context.Background(), "grace@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	_, _, _, err = f.svc.LoginCitizen(context.Background(), "nobody@example.com", "password1")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestLoginSuspendedCitizen(t *testing.T) {
	f := newAuthFixture(t)
	citizen := f.registerCitizen(t)

	citizen.Status = domain.UserStatusSuspended
	require.NoError(t, f.users.Update(context.Background(), citizen))

	_, _, _, err := f.svc.LoginCitizen(context.Background(), "grace@example.com", "password1")
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestLoginStaffCarriesRole(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := auth.HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.staff.Create(context.Background(), &domain.StaffMember{
		Name: "Alice Mukamana", Email: "alice@jabana.gov.rw",
		PasswordHash: hash, Role: domain.StaffRoleOfficer, Active: true,
	}))

	staff, token, _, err := f.svc.LoginStaff(context.Background(), "alice@jabana.gov.rw", "password1")
	require.NoError(t, err)

	claims, err := f.svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, staff.ID, claims.SubjectID)
	assert.Equal(t, domain.SubjectTypeStaff, claims.Subject)
	require.NotNil(t, claims.Role)
	assert.Equal(t, domain.StaffRoleOfficer, *claims.Role)
}

func TestLoginDeactivatedStaff(t *testing.T) {
	f := newAuthFixture(t)
	hash, err := auth.HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.staff.Create(context.Background(), &domain.StaffMember{
		Name: "David Mugabo", Email: "david@jabana.gov.rw",
		PasswordHash: hash, Role: domain.StaffRoleOfficer, Active: false,
	}))

	_, _, _, err = f.svc.LoginStaff(context.Background(), "david@jabana.gov.rw", "password1")
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestPasswordResetRoundTrip(t *testing.T) {
	f := newAuthFixture(t)
	f.registerCitizen(t)

	token, err := f.svc.RequestPasswordReset(context.Background(), "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, string(domain.SubjectTypeCitizen), token.SubjectType)

	require.NoError(t, f.svc.ConfirmPasswordReset(context.Background(), token.Token, "newpassword1"))

	_, _, _, err = f.svc.LoginCitizen(context.Background(), "grace@example.com", "newpassword1")
	assert.NoError(t, err)

	// single use
	err = f.svc.ConfirmPasswordReset(context.Background(), token.Token, "anotherpass")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.RequestPasswordReset(context.Background(), "ghost@example.com")
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	f := newAuthFixture(t)
	citizen := f.registerCitizen(t)
	subject := AuthSubject{Type: domain.SubjectTypeCitizen, ID: citizen.ID}

	err := f.svc.ChangePassword(context.Background(), subject, "wrong", "newpassword1")
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))

	require.NoError(t, f.svc.ChangePassword(context.Background(), subject, "password1", "newpassword1"))

	_, _, _, err = f.svc.LoginCitizen(context.Background(), "grace@example.com", "newpassword1")
	assert.NoError(t, err)
}
