package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/repository/memory"
)

func TestOwnerResolver_MappedEmployeeID(t *testing.T) {
	r := NewOwnerResolver(map[string]string{"Accommodation Issue": " E013 ", "Blank": ""})

	id, ok := r.MappedEmployeeID("  accommodation ISSUE ")
	assert.True(t, ok)
	assert.Equal(t, "E013", id)

	_, ok = r.MappedEmployeeID("Blank")
	assert.False(t, ok)

	_, ok = r.MappedEmployeeID("Unknown")
	assert.False(t, ok)
}

func TestOwnerResolver_Resolve(t *testing.T) {
	f := newFixture(t)
	r := NewOwnerResolver(map[string]string{"Accommodation Issue": "E013", "Staffing": "C100", "Ghost": "E999"})

	owner, err := r.Resolve(f.ctx, f.store.Users(), "Accommodation Issue")
	require.NoError(t, err)
	assert.Equal(t, f.hrOwner.ID, owner.ID)

	f.seedTicket(t, domain.TicketStatusAssigned)
	for _, category := range []string{"Staffing", "Ghost", "Unmapped"} {
		owner, err = r.Resolve(f.ctx, f.store.Users(), category)
		require.NoError(t, err)
		assert.Equal(t, f.hrOwner.ID, owner.ID, category)
	}
}

func TestOwnerResolver_NoOwners(t *testing.T) {
	store := memory.New()
	owner, err := NewOwnerResolver(nil).Resolve(context.Background(), store.Users(), "Anything")
	require.NoError(t, err)
	assert.Nil(t, owner)
}
