// Package memory provides a process-local repository.Store used for local
// development without Postgres and by service tests.
package memory

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/repository"
)

type data struct {
	users         map[string]domain.User
	locations     map[string]domain.Location
	profiles      map[string]domain.ClusterManagerProfile
	tickets       map[string]domain.Ticket
	history       []domain.TicketHistory
	logs          map[string]domain.KitchenLog
	photos        map[string]domain.OrderPhoto
	performance   map[string]domain.StaffPerformance
	slips         []domain.SalarySlip
	notifications map[string]domain.Notification
	counter       int64
}

func newData() *data {
	return &data{
		users:         map[string]domain.User{},
		locations:     map[string]domain.Location{},
		profiles:      map[string]domain.ClusterManagerProfile{},
		tickets:       map[string]domain.Ticket{},
		logs:          map[string]domain.KitchenLog{},
		photos:        map[string]domain.OrderPhoto{},
		performance:   map[string]domain.StaffPerformance{},
		notifications: map[string]domain.Notification{},
	}
}

func (d *data) clone() *data {
	c := newData()
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.locations {
		c.locations[k] = v
	}
	for k, v := range d.profiles {
		v.LocationIDs = append([]string(nil), v.LocationIDs...)
		c.profiles[k] = v
	}
	for k, v := range d.tickets {
		c.tickets[k] = v
	}
	c.history = append(c.history, d.history...)
	for k, v := range d.logs {
		c.logs[k] = v
	}
	for k, v := range d.photos {
		c.photos[k] = v
	}
	for k, v := range d.performance {
		c.performance[k] = v
	}
	c.slips = append(c.slips, d.slips...)
	for k, v := range d.notifications {
		c.notifications[k] = v
	}
	c.counter = d.counter
	return c
}

type state struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    *data
	now  func() time.Time
}

// Store implements repository.Store on maps guarded by a mutex.
//
// Transactions are serialized and staged on a copy of the data until they
// commit.
type Store struct {
	st   *state
	inTx bool
}

// Option configures the store.
type Option func(*state)

// WithClock overrides the timestamp source for created/updated columns.
func WithClock(now func() time.Time) Option {
	return func(s *state) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	st := &state{d: newData(), now: time.Now}
	for _, opt := range opts {
		opt(st)
	}
	return &Store{st: st}
}

func (s *Store) Users() repository.UserRepository             { return &userRepo{s.st} }
func (s *Store) Locations() repository.LocationRepository     { return &locationRepo{s.st} }
func (s *Store) Tickets() repository.TicketRepository         { return &ticketRepo{s.st} }
func (s *Store) History() repository.TicketHistoryRepository  { return &historyRepo{s.st} }
func (s *Store) KitchenLogs() repository.KitchenLogRepository { return &kitchenLogRepo{s.st} }
func (s *Store) Photos() repository.OrderPhotoRepository      { return &photoRepo{s.st} }
func (s *Store) Payroll() repository.PayrollRepository        { return &payrollRepo{s.st} }
func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepo{s.st}
}

// InTx serializes fn against other transactions. fn works on a private copy
// of the data; on success the rows it changed are written back, so writes made
// outside the transaction in the meantime survive both commit and rollback.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.st.mu.Lock()
	base := s.st.d.clone()
	staged := &state{d: s.st.d.clone(), now: s.st.now}
	s.st.mu.Unlock()

	if err := fn(&Store{st: staged, inTx: true}); err != nil {
		return err
	}

	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.d.merge(base, staged.d)
	return nil
}

// merge applies the difference between base and staged to d.
func (d *data) merge(base, staged *data) {
	mergeRows(d.users, base.users, staged.users)
	mergeRows(d.locations, base.locations, staged.locations)
	mergeRows(d.profiles, base.profiles, staged.profiles)
	mergeRows(d.tickets, base.tickets, staged.tickets)
	mergeRows(d.logs, base.logs, staged.logs)
	mergeRows(d.photos, base.photos, staged.photos)
	mergeRows(d.performance, base.performance, staged.performance)
	mergeRows(d.notifications, base.notifications, staged.notifications)
	d.history = append(d.history, staged.history[len(base.history):]...)
	d.slips = append(d.slips, staged.slips[len(base.slips):]...)
	if staged.counter > d.counter {
		d.counter = staged.counter
	}
}

func mergeRows[V any](live, base, staged map[string]V) {
	for k, v := range staged {
		if old, ok := base[k]; !ok || !reflect.DeepEqual(old, v) {
			live[k] = v
		}
	}
	for k := range base {
		if _, ok := staged[k]; !ok {
			delete(live, k)
		}
	}
}

var _ repository.Store = (*Store)(nil)

func newID() string {
	return uuid.NewString()
}

type userRepo struct{ st *state }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.users {
		if existing.EmployeeID == user.EmployeeID {
			return repository.UniqueViolation("users_employee_id_key")
		}
	}
	user.ID = newID()
	now := r.st.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.st.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	existing, ok := r.st.d.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Username = user.Username
	existing.FullName = user.FullName
	existing.LocationID = user.LocationID
	existing.PasswordHash = user.PasswordHash
	existing.Active = user.Active
	existing.UpdatedAt = r.st.now()
	r.st.d.users[user.ID] = existing
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	user, ok := r.st.d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepo) GetByEmployeeID(_ context.Context, employeeID string) (*domain.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, user := range r.st.d.users {
		if user.EmployeeID == employeeID {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.User
	for _, user := range r.st.d.users {
		u := user
		if filter.Matches(&u) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].FullName != result[j].FullName {
			return result[i].FullName < result[j].FullName
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *userRepo) Count(ctx context.Context, filter repository.UserFilter) (int, error) {
	filter.Limit, filter.Offset = 0, 0
	users, err := r.List(ctx, filter)
	return len(users), err
}

func (r *userRepo) OwnerWorkloads(_ context.Context) ([]repository.OwnerWorkload, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	counts := map[string]int{}
	for _, t := range r.st.d.tickets {
		if t.AssignedOwnerID != nil {
			counts[*t.AssignedOwnerID]++
		}
	}
	var result []repository.OwnerWorkload
	for _, user := range r.st.d.users {
		if user.Role == domain.RoleOwner && user.Active {
			result = append(result, repository.OwnerWorkload{Owner: user, Tickets: counts[user.ID]})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Tickets != result[j].Tickets {
			return result[i].Tickets < result[j].Tickets
		}
		return result[i].Owner.ID < result[j].Owner.ID
	})
	return result, nil
}

type locationRepo struct{ st *state }

func (r *locationRepo) Create(_ context.Context, location *domain.Location) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, existing := range r.st.d.locations {
		if existing.Code == location.Code {
			return repository.UniqueViolation("locations_code_key")
		}
	}
	location.ID = newID()
	location.CreatedAt = r.st.now()
	r.st.d.locations[location.ID] = *location
	return nil
}

func (r *locationRepo) GetByID(_ context.Context, id string) (*domain.Location, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	location, ok := r.st.d.locations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &location, nil
}

func (r *locationRepo) GetByCode(_ context.Context, code string) (*domain.Location, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	for _, location := range r.st.d.locations {
		if location.Code == code {
			l := location
			return &l, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *locationRepo) List(_ context.Context) ([]domain.Location, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	result := make([]domain.Location, 0, len(r.st.d.locations))
	for _, location := range r.st.d.locations {
		result = append(result, location)
	}
	sortLocations(result)
	return result, nil
}

func (r *locationRepo) ListByIDs(_ context.Context, ids []string) ([]domain.Location, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.Location
	for _, id := range ids {
		if location, ok := r.st.d.locations[id]; ok {
			result = append(result, location)
		}
	}
	sortLocations(result)
	return result, nil
}

func (r *locationRepo) GetClusterProfile(_ context.Context, userID string) (*domain.ClusterManagerProfile, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	profile, ok := r.st.d.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	profile.LocationIDs = append([]string(nil), profile.LocationIDs...)
	return &profile, nil
}

func (r *locationRepo) SaveClusterProfile(_ context.Context, profile *domain.ClusterManagerProfile) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	seen := map[string]bool{}
	var ids []string
	for _, id := range profile.LocationIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	profile.UpdatedAt = r.st.now()
	r.st.d.profiles[profile.UserID] = domain.ClusterManagerProfile{
		UserID:      profile.UserID,
		LocationIDs: ids,
		UpdatedAt:   profile.UpdatedAt,
	}
	return nil
}

func sortLocations(locations []domain.Location) {
	sort.Slice(locations, func(i, j int) bool { return locations[i].Code < locations[j].Code })
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
