package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-portal/internal/domain"
)

func strp(s string) *string { return &s }

func user(id string, role domain.Role, location *string) *domain.User {
	return &domain.User{ID: id, EmployeeID: "E-" + id, Role: role, LocationID: location, Active: true}
}

func TestFor_TicketVisibility(t *testing.T) {
	ticket := &domain.Ticket{
		ID:              "t1",
		EmployeeID:      "staff",
		RaisedByID:      "staff",
		LocationID:      strp("loc-a"),
		AssignedOwnerID: strp("owner"),
		ReassignedToID:  strp("km"),
	}

	tests := []struct {
		name    string
		subject Subject
		want    bool
	}{
		{"staff sees own ticket", Subject{User: user("staff", domain.RoleKitchenStaff, strp("loc-a"))}, true},
		{"other staff does not", Subject{User: user("staff-2", domain.RoleKitchenStaff, strp("loc-a"))}, false},
		{"reassigned kitchen manager sees it", Subject{User: user("km", domain.RoleKitchenManager, strp("loc-a"))}, true},
		{"other kitchen manager does not", Subject{User: user("km-2", domain.RoleKitchenManager, strp("loc-a"))}, false},
		{"assigned owner sees it", Subject{User: user("owner", domain.RoleOwner, nil)}, true},
		{"other owner does not", Subject{User: user("owner-2", domain.RoleOwner, nil)}, false},
		{"admin sees everything", Subject{User: user("admin", domain.RoleAdmin, nil)}, true},
		{
			"cluster manager sees territory",
			Subject{
				User:    user("cm", domain.RoleClusterManager, nil),
				Profile: &domain.ClusterManagerProfile{UserID: "cm", LocationIDs: []string{"loc-a"}},
			},
			true,
		},
		{
			"cluster manager outside territory",
			Subject{
				User:    user("cm", domain.RoleClusterManager, nil),
				Profile: &domain.ClusterManagerProfile{UserID: "cm", LocationIDs: []string{"loc-b"}},
			},
			false,
		},
		{"cluster manager without profile", Subject{User: user("cm", domain.RoleClusterManager, nil)}, false},
		{"missing user", Subject{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, For(tt.subject).CanSeeTicket(ticket))
		})
	}
}

func TestFor_ClusterManagerSeesOwnRaisedTicketsAnywhere(t *testing.T) {
	sc := For(Subject{
		User:    user("cm", domain.RoleClusterManager, nil),
		Profile: &domain.ClusterManagerProfile{UserID: "cm", LocationIDs: []string{"loc-a"}},
	})

	ticket := &domain.Ticket{EmployeeID: "staff", RaisedByID: "cm", LocationID: strp("loc-z")}
	assert.True(t, sc.CanSeeTicket(ticket))
}

func TestFor_InactiveUserHasEmptyScope(t *testing.T) {
	admin := user("admin", domain.RoleAdmin, nil)
	admin.Active = false

	sc := For(Subject{User: admin})
	assert.True(t, sc.Empty())
	assert.False(t, sc.Global())
	assert.False(t, sc.CanSeeTicket(&domain.Ticket{}))
}

func TestFor_ProfileOfAnotherUserIsIgnored(t *testing.T) {
	sc := For(Subject{
		User:    user("cm", domain.RoleClusterManager, nil),
		Profile: &domain.ClusterManagerProfile{UserID: "someone-else", LocationIDs: []string{"loc-a"}},
	})
	assert.True(t, sc.Empty())
	assert.False(t, sc.AllowsLocation("loc-a"))
}

func TestScope_Locations(t *testing.T) {
	staff := For(Subject{User: user("staff", domain.RoleKitchenStaff, strp("loc-a"))})
	assert.Equal(t, []string{"loc-a"}, staff.AllowedLocations())
	assert.True(t, staff.AllowsLocation("loc-a"))
	assert.False(t, staff.AllowsLocation("loc-b"))

	homeless := For(Subject{User: user("km", domain.RoleKitchenManager, nil)})
	assert.Empty(t, homeless.AllowedLocations())
	assert.False(t, homeless.AllowsLocation("loc-a"))

	owner := For(Subject{User: user("owner", domain.RoleOwner, nil)})
	assert.True(t, owner.Global())
	assert.True(t, owner.AllowsLocation("anything"))
}

func TestScope_AllowedLocationsReturnsCopy(t *testing.T) {
	profile := &domain.ClusterManagerProfile{UserID: "cm", LocationIDs: []string{"loc-a", "loc-b"}}
	sc := For(Subject{User: user("cm", domain.RoleClusterManager, nil), Profile: profile})

	got := sc.AllowedLocations()
	got[0] = "mutated"
	profile.LocationIDs[1] = "mutated"

	assert.Equal(t, []string{"loc-a", "loc-b"}, sc.AllowedLocations())
}

func TestScope_KitchenLogs(t *testing.T) {
	staff := For(Subject{User: user("staff", domain.RoleKitchenStaff, strp("loc-a"))})
	filter := staff.KitchenLogs([]string{"KA"})
	require.NotNil(t, filter.StaffUserID)
	require.NotNil(t, filter.StaffEmployeeID)
	assert.Equal(t, "staff", *filter.StaffUserID)
	assert.Equal(t, "E-staff", *filter.StaffEmployeeID)
	assert.Empty(t, filter.LocationCodes)

	km := For(Subject{User: user("km", domain.RoleKitchenManager, strp("loc-a"))})
	filter = km.KitchenLogs([]string{"KA"})
	assert.Nil(t, filter.StaffUserID)
	assert.Equal(t, []string{"KA"}, filter.LocationCodes)

	admin := For(Subject{User: user("admin", domain.RoleAdmin, nil)})
	assert.True(t, admin.KitchenLogs(nil).All)
}

func TestScope_Photos(t *testing.T) {
	km := For(Subject{User: user("km", domain.RoleKitchenManager, strp("loc-a"))})
	filter := km.Photos()
	assert.False(t, filter.All)
	assert.Equal(t, []string{"loc-a"}, filter.LocationIDs)

	owner := For(Subject{User: user("owner", domain.RoleOwner, nil)})
	assert.True(t, owner.Photos().All)
}
