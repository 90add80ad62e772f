package util

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through", NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{"no rows", fmt.Errorf("load: %w", pgx.ErrNoRows), CodeNotFound, http.StatusNotFound},
		{"malformed uuid", fmt.Errorf("load: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}), CodeValidation, http.StatusBadRequest},
		{"other postgres error", &pgconn.PgError{Code: "57014"}, CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Nil(t, ToDomainError(nil))
}
