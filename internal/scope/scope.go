// Package scope derives what an authenticated user may see from their role,
// home location and cluster territory.
package scope

import (
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/repository"
)

// Subject is the input to scoping: the user plus the cluster profile when the
// user is a cluster manager.
type Subject struct {
	User    *domain.User
	Profile *domain.ClusterManagerProfile
}

// Scope is the visibility of one subject. Every check and every list filter
// derives from the same fields.
type Scope struct {
	global    bool
	locations []string
	tickets   repository.TicketScope
	// logSelf matches kitchen logs about the subject.
	logSelf bool
	user    *domain.User
}

// For computes the scope of subject. Unknown roles, a missing user, a missing
// home location or a missing cluster profile yield an empty scope.
func For(subject Subject) Scope {
	user := subject.User
	if user == nil || !user.Active {
		return Scope{}
	}
	switch user.Role {
	case domain.RoleKitchenStaff:
		return staffScope(user)
	case domain.RoleKitchenManager:
		return kitchenManagerScope(user)
	case domain.RoleClusterManager:
		return clusterManagerScope(user, subject.Profile)
	case domain.RoleOwner:
		return ownerScope(user)
	case domain.RoleAdmin:
		return adminScope(user)
	default:
		return Scope{}
	}
}

func staffScope(user *domain.User) Scope {
	id := user.ID
	return Scope{
		locations: homeLocation(user),
		tickets:   repository.TicketScope{EmployeeID: &id},
		logSelf:   true,
		user:      user,
	}
}

func kitchenManagerScope(user *domain.User) Scope {
	id := user.ID
	return Scope{
		locations: homeLocation(user),
		tickets:   repository.TicketScope{ReassignedToID: &id},
		user:      user,
	}
}

func clusterManagerScope(user *domain.User, profile *domain.ClusterManagerProfile) Scope {
	if profile == nil || profile.UserID != user.ID {
		return Scope{user: user}
	}
	id := user.ID
	territory := append([]string(nil), profile.LocationIDs...)
	return Scope{
		locations: territory,
		tickets:   repository.TicketScope{RaisedByID: &id, LocationIDs: territory},
		user:      user,
	}
}

func ownerScope(user *domain.User) Scope {
	id := user.ID
	return Scope{
		global:  true,
		tickets: repository.TicketScope{AssignedOwnerID: &id},
		user:    user,
	}
}

func adminScope(user *domain.User) Scope {
	return Scope{
		global:  true,
		tickets: repository.TicketScope{All: true},
		user:    user,
	}
}

func homeLocation(user *domain.User) []string {
	if user.LocationID == nil || *user.LocationID == "" {
		return nil
	}
	return []string{*user.LocationID}
}

// Global reports whether the subject may see every location.
func (s Scope) Global() bool {
	return s.global
}

// AllowedLocations returns the location ids the subject may act on. It is
// empty for global subjects; check Global first.
func (s Scope) AllowedLocations() []string {
	return append([]string(nil), s.locations...)
}

// AllowsLocation reports whether the subject may act on locationID.
func (s Scope) AllowsLocation(locationID string) bool {
	if s.global {
		return true
	}
	for _, id := range s.locations {
		if id == locationID {
			return true
		}
	}
	return false
}

// Tickets returns the repository predicate for ticket lists.
func (s Scope) Tickets() repository.TicketScope {
	return s.tickets
}

// CanSeeTicket is the single-ticket form of Tickets.
func (s Scope) CanSeeTicket(t *domain.Ticket) bool {
	return s.tickets.Matches(t)
}

// KitchenLogs returns the visibility part of a kitchen log filter. codes maps
// the allowed location ids to location codes.
func (s Scope) KitchenLogs(codes []string) repository.KitchenLogFilter {
	if s.global {
		return repository.KitchenLogFilter{All: true}
	}
	filter := repository.KitchenLogFilter{}
	if s.logSelf && s.user != nil {
		id, employeeID := s.user.ID, s.user.EmployeeID
		filter.StaffUserID = &id
		filter.StaffEmployeeID = &employeeID
		return filter
	}
	filter.LocationCodes = append([]string(nil), codes...)
	return filter
}

// Photos returns the visibility part of an order photo filter.
func (s Scope) Photos() repository.OrderPhotoFilter {
	if s.global {
		return repository.OrderPhotoFilter{All: true}
	}
	return repository.OrderPhotoFilter{LocationIDs: s.AllowedLocations()}
}

// Empty reports whether the subject can see nothing at all.
func (s Scope) Empty() bool {
	return !s.global && len(s.locations) == 0 && s.tickets.IsEmpty()
}
