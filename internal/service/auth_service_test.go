package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/auth"
	"github.com/spec-kit/ops-portal/internal/config"
	"github.com/spec-kit/ops-portal/internal/domain"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

func newAuthService(f *fixture) *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, BcryptCost: testBcryptCost}}
	return NewAuthService(cfg, AuthDependencies{UserRepo: f.store.Users(), Logger: zap.NewNop()})
}

func setPassword(t *testing.T, f *fixture, user *domain.User, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password, testBcryptCost)
	require.NoError(t, err)
	user.PasswordHash = hash
	require.NoError(t, f.store.Users().Update(f.ctx, user))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	setPassword(t, f, f.staff, "kitchen-secret")

	session, err := svc.Login(f.ctx, " S100 ", "kitchen-secret")
	require.NoError(t, err)
	assert.Equal(t, f.staff.ID, session.User.ID)
	assert.NotEmpty(t, session.Token)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, f.staff.ID, claims.Subject)
	assert.Equal(t, domain.RoleKitchenStaff, claims.Role)
}

func TestLogin_FailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	setPassword(t, f, f.staff, "kitchen-secret")
	setPassword(t, f, f.otherStaff, "kitchen-secret")
	f.otherStaff.Active = false
	require.NoError(t, f.store.Users().Update(f.ctx, f.otherStaff))

	cases := map[string][2]string{
		"unknown employee":    {"NOPE", "kitchen-secret"},
		"wrong password":      {"S100", "wrong-password"},
		"deactivated account": {"S101", "kitchen-secret"},
		"no password set":     {"K100", ""},
	}
	var messages []string
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(f.ctx, creds[0], creds[1])
			requireCode(t, err, apperrors.CodeUnauthorized)
			messages = append(messages, err.Error())
		})
	}
	for _, msg := range messages {
		assert.Equal(t, "invalid employee id or password", msg)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f)
	setPassword(t, f, f.staff, "kitchen-secret")

	err := svc.ChangePassword(f.ctx, f.as(f.staff), "wrong-password", "brand-new-secret")
	requireCode(t, err, apperrors.CodeValidation)

	err = svc.ChangePassword(f.ctx, f.as(f.staff), "kitchen-secret", "short")
	requireCode(t, err, apperrors.CodeValidation)

	require.NoError(t, svc.ChangePassword(f.ctx, f.as(f.staff), "kitchen-secret", "brand-new-secret"))

	_, err = svc.Login(f.ctx, "S100", "kitchen-secret")
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, err = svc.Login(f.ctx, "S100", "brand-new-secret")
	assert.NoError(t, err)
}
