package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/repository/memory"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

const testBcryptCost = 4

// recorder captures every published event.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctx        context.Context
	store      *memory.Store
	dispatcher events.Dispatcher
	recorded   *recorder
	now        time.Time

	locA, locB *domain.Location

	admin      *domain.User
	owner      *domain.User
	hrOwner    *domain.User
	staff      *domain.User
	otherStaff *domain.User
	km         *domain.User
	cm         *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		recorded: &recorder{},
		now:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	f.store = memory.New(memory.WithClock(f.clock))
	f.dispatcher = events.NewInMemoryDispatcher(zap.NewNop())
	for _, eventType := range events.AllEventTypes {
		f.dispatcher.Subscribe(eventType, f.recorded.handle)
	}

	f.locA = f.addLocation(t, "KA", "Koramangala")
	f.locB = f.addLocation(t, "HS", "HSR Layout")

	f.admin = f.addUser(t, "A001", "Asha Admin", domain.RoleAdmin, nil)
	f.owner = f.addUser(t, "E010", "Olivia Owner", domain.RoleOwner, nil)
	f.hrOwner = f.addUser(t, "E013", "Harini HR", domain.RoleOwner, nil)
	f.staff = f.addUser(t, "S100", "Sam Staff", domain.RoleKitchenStaff, &f.locA.ID)
	f.otherStaff = f.addUser(t, "S101", "Ravi Staff", domain.RoleKitchenStaff, &f.locB.ID)
	f.km = f.addUser(t, "K100", "Kiran Manager", domain.RoleKitchenManager, &f.locA.ID)
	f.cm = f.addUser(t, "C100", "Chitra Cluster", domain.RoleClusterManager, nil)
	require.NoError(t, f.store.Locations().SaveClusterProfile(f.ctx, &domain.ClusterManagerProfile{
		UserID:      f.cm.ID,
		LocationIDs: []string{f.locA.ID},
	}))
	return f
}

func (f *fixture) clock() time.Time {
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) addLocation(t *testing.T, code, name string) *domain.Location {
	t.Helper()
	location := &domain.Location{Code: code, Name: name}
	require.NoError(t, f.store.Locations().Create(f.ctx, location))
	return location
}

func (f *fixture) addUser(t *testing.T, employeeID, name string, role domain.Role, locationID *string) *domain.User {
	t.Helper()
	user := &domain.User{
		EmployeeID: employeeID,
		Username:   employeeID,
		FullName:   name,
		Role:       role,
		LocationID: locationID,
		Active:     true,
	}
	require.NoError(t, f.store.Users().Create(f.ctx, user))
	return user
}

// as builds the subject for user, loading the cluster profile when needed.
func (f *fixture) as(user *domain.User) scope.Subject {
	subject := scope.Subject{User: user}
	if user.Role == domain.RoleClusterManager {
		if profile, err := f.store.Locations().GetClusterProfile(f.ctx, user.ID); err == nil {
			subject.Profile = profile
		}
	}
	return subject
}

func (f *fixture) ticketService() *TicketService {
	return NewTicketService(TicketDependencies{
		Store:      f.store,
		Resolver:   NewOwnerResolver(map[string]string{"Accommodation Issue": "E013", "Training Related": "E010"}),
		Dispatcher: f.dispatcher,
		Logger:     zap.NewNop(),
		Clock:      f.clock,
	})
}

// seedTicket stores a ticket raised by staff at location A and owned by owner.
func (f *fixture) seedTicket(t *testing.T, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	seq, err := f.store.Tickets().NextNumber(f.ctx)
	require.NoError(t, err)
	ticket := &domain.Ticket{
		Number:          domain.FormatTicketNumber(seq),
		EmployeeID:      f.staff.ID,
		EmployeeCode:    f.staff.EmployeeID,
		EmployeeName:    f.staff.FullName,
		RaisedByID:      f.staff.ID,
		LocationID:      &f.locA.ID,
		Concern:         "Co-Worker Issue",
		Status:          status,
		AssignedOwnerID: &f.owner.ID,
	}
	require.NoError(t, f.store.Tickets().Create(f.ctx, ticket))
	return ticket
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}
