package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(CreateUserRequest{EmployeeID: "E1", Role: "chef", Password: "short"})
	require.Error(t, err)
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	fields, ok := apperrors.ToDomainError(err).Details["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"full_name": "is required",
		"role":      "must be one of [kitchen_staff kitchen_manager cluster_manager owner admin]",
		"password":  "must be at least 8 characters long",
	}, fields)
}

func TestValidate_OptionalUUID(t *testing.T) {
	assert.NoError(t, Validate(SubmitTicketRequest{Concern: "Salary Related"}))

	bad := "not-a-uuid"
	err := Validate(SubmitTicketRequest{Concern: "Salary Related", StaffID: &bad})
	require.Error(t, err)
	fields := apperrors.ToDomainError(err).Details["fields"].(map[string]any)
	assert.Equal(t, "must be a valid UUID", fields["staff_id"])
}
