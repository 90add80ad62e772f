package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/auth"
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

func newDirectoryService(f *fixture) *DirectoryService {
	return NewDirectoryService(DirectoryDependencies{Store: f.store, BcryptCost: testBcryptCost, Logger: zap.NewNop()})
}

func employeeIDs(users []domain.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.EmployeeID)
	}
	return ids
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	svc := newDirectoryService(f)

	user, err := svc.CreateUser(f.ctx, f.as(f.admin), CreateUserInput{
		EmployeeID: " S200 ",
		FullName:   "New Staff",
		Role:       domain.RoleKitchenStaff,
		LocationID: &f.locA.ID,
		Password:   "initial-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "S200", user.EmployeeID)
	assert.Equal(t, "S200", user.Username)
	assert.True(t, user.Active)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "initial-secret"))

	_, err = svc.CreateUser(f.ctx, f.as(f.admin), CreateUserInput{
		EmployeeID: "S200", Role: domain.RoleKitchenStaff, Password: "initial-secret",
	})
	requireCode(t, err, apperrors.CodeConflict)
}

func TestCreateUser_Rejects(t *testing.T) {
	f := newFixture(t)
	svc := newDirectoryService(f)
	missing := "00000000-0000-0000-0000-000000000000"

	tests := []struct {
		name  string
		actor scope.Subject
		input CreateUserInput
		code  string
	}{
		{"non admin", f.as(f.owner), CreateUserInput{EmployeeID: "X1", Role: domain.RoleOwner, Password: "long-enough"}, apperrors.CodeForbidden},
		{"missing employee id", f.as(f.admin), CreateUserInput{Role: domain.RoleOwner, Password: "long-enough"}, apperrors.CodeValidation},
		{"unknown role", f.as(f.admin), CreateUserInput{EmployeeID: "X1", Role: "chef", Password: "long-enough"}, apperrors.CodeValidation},
		{"weak password", f.as(f.admin), CreateUserInput{EmployeeID: "X1", Role: domain.RoleOwner, Password: "short"}, apperrors.CodeValidation},
		{"unknown location", f.as(f.admin), CreateUserInput{EmployeeID: "X1", Role: domain.RoleOwner, Password: "long-enough", LocationID: &missing}, apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(f.ctx, tt.actor, tt.input)
			requireCode(t, err, tt.code)
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	svc := newDirectoryService(f)

	created, err := svc.EnsureAdmin(f.ctx, "ROOT", "bootstrap-secret")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(f.ctx, "ROOT", "bootstrap-secret")
	require.NoError(t, err)
	assert.False(t, created)

	created, err = svc.EnsureAdmin(f.ctx, "", "bootstrap-secret")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := f.store.Users().GetByEmployeeID(f.ctx, "ROOT")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestDeactivateUser(t *testing.T) {
	f := newFixture(t)
	svc := newDirectoryService(f)

	user, err := svc.DeactivateUser(f.ctx, f.as(f.admin), f.staff.ID)
	require.NoError(t, err)
	assert.False(t, user.Active)

	user, err = svc.DeactivateUser(f.ctx, f.as(f.admin), f.staff.ID)
	require.NoError(t, err)
	assert.False(t, user.Active)

	_, err = svc.DeactivateUser(f.ctx, f.as(f.admin), f.admin.ID)
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.DeactivateUser(f.ctx, f.as(f.admin), "missing")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	svc := newDirectoryService(f)

	all, err := svc.ListUsers(f.ctx, f.as(f.admin), UserListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 7)

	role := domain.RoleOwner
	owners, err := svc.ListUsers(f.ctx, f.as(f.admin), UserListFilter{Role: &role})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"E010", "E013"}, employeeIDs(owners))

	territory, err := svc.ListUsers(f.ctx, f.as(f.cm), UserListFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"S100", "K100"}, employeeIDs(territory))

	outside, err := svc.ListUsers(f.ctx, f.as(f.cm), UserListFilter{LocationID: &f.locB.ID})
	require.NoError(t, err)
	assert.Empty(t, outside)

	ownersForCM, err := svc.ListUsers(f.ctx, f.as(f.cm), UserListFilter{Role: &role})
	require.NoError(t, err)
	assert.Empty(t, ownersForCM)

	_, err = svc.ListUsers(f.ctx, f.as(f.staff), UserListFilter{})
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestLocations(t *testing.T) {
	f := newFixture(t)
	svc := newDirectoryService(f)

	location, err := svc.CreateLocation(f.ctx, f.as(f.admin), " wf ", "Whitefield")
	require.NoError(t, err)
	assert.Equal(t, "WF", location.Code)

	_, err = svc.CreateLocation(f.ctx, f.as(f.admin), "wf", "Whitefield again")
	requireCode(t, err, apperrors.CodeConflict)

	_, err = svc.CreateLocation(f.ctx, f.as(f.admin), "", "Nameless")
	requireCode(t, err, apperrors.CodeValidation)

	all, err := svc.ListLocations(f.ctx, f.as(f.owner))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := svc.ListLocations(f.ctx, f.as(f.km))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "KA", mine[0].Code)
}

func TestAssignTerritory(t *testing.T) {
	f := newFixture(t)
	svc := newDirectoryService(f)

	profile, err := svc.AssignTerritory(f.ctx, f.as(f.admin), f.cm.ID, []string{f.locA.ID, f.locB.ID, f.locA.ID, " "})
	require.NoError(t, err)
	assert.Equal(t, []string{f.locA.ID, f.locB.ID}, profile.LocationIDs)

	users, err := svc.ListUsers(f.ctx, f.as(f.cm), UserListFilter{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"S100", "S101", "K100"}, employeeIDs(users))

	_, err = svc.AssignTerritory(f.ctx, f.as(f.admin), f.km.ID, []string{f.locA.ID})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.AssignTerritory(f.ctx, f.as(f.admin), f.cm.ID, []string{"00000000-0000-0000-0000-000000000000"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.AssignTerritory(f.ctx, f.as(f.owner), f.cm.ID, nil)
	requireCode(t, err, apperrors.CodeForbidden)
}
