package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/repository"
)

type kitchenLogRepo struct{ st *state }

func (r *kitchenLogRepo) Create(_ context.Context, log *domain.KitchenLog) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	log.ID = newID()
	log.CreatedAt = r.st.now()
	r.st.d.logs[log.ID] = *log
	return nil
}

func (r *kitchenLogRepo) GetByID(_ context.Context, id string) (*domain.KitchenLog, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	log, ok := r.st.d.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &log, nil
}

func (r *kitchenLogRepo) Acknowledge(_ context.Context, log *domain.KitchenLog) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	existing, ok := r.st.d.logs[log.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.IsAcknowledged = log.IsAcknowledged
	existing.AcknowledgedAt = log.AcknowledgedAt
	r.st.d.logs[log.ID] = existing
	return nil
}

func (r *kitchenLogRepo) List(_ context.Context, filter repository.KitchenLogFilter) ([]domain.KitchenLog, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.KitchenLog
	for _, log := range r.st.d.logs {
		l := log
		if filter.Matches(&l) {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LogDate.Equal(result[j].LogDate) {
			return result[i].LogDate.After(result[j].LogDate)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

type photoRepo struct{ st *state }

func (r *photoRepo) Create(_ context.Context, photo *domain.OrderPhoto) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	photo.ID = newID()
	photo.UploadedAt = r.st.now()
	stored := *photo
	stored.UploaderName, stored.LocationName = "", ""
	r.st.d.photos[photo.ID] = stored
	return nil
}

func (r *photoRepo) List(_ context.Context, filter repository.OrderPhotoFilter) ([]domain.OrderPhoto, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.OrderPhoto
	for _, photo := range r.st.d.photos {
		p := photo
		if p.UploadedByID != nil {
			if user, ok := r.st.d.users[*p.UploadedByID]; ok {
				p.UploaderName = user.DisplayName()
			}
		}
		if p.LocationID != nil {
			if location, ok := r.st.d.locations[*p.LocationID]; ok {
				p.LocationName = location.Name
			}
		}
		if filter.Matches(&p) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UploadedAt.After(result[j].UploadedAt) })
	return result, nil
}

type payrollRepo struct{ st *state }

func performanceKey(employeeID, month string) string {
	return employeeID + "|" + month
}

func (r *payrollRepo) UpsertPerformance(_ context.Context, record *domain.StaffPerformance) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	key := performanceKey(record.EmployeeID, record.Month)
	if existing, ok := r.st.d.performance[key]; ok {
		record.ID = existing.ID
	} else {
		record.ID = newID()
	}
	r.st.d.performance[key] = *record
	return nil
}

func (r *payrollRepo) CreateSalarySlip(_ context.Context, slip *domain.SalarySlip) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	slip.ID = newID()
	slip.CreatedAt = r.st.now()
	r.st.d.slips = append(r.st.d.slips, *slip)
	return nil
}

func (r *payrollRepo) ListPerformance(_ context.Context, employeeID string) ([]domain.StaffPerformance, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.StaffPerformance
	for _, p := range r.st.d.performance {
		if p.EmployeeID == employeeID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month > result[j].Month })
	return result, nil
}

func (r *payrollRepo) ListSalarySlips(_ context.Context, employeeID string) ([]domain.SalarySlip, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.SalarySlip
	for i := len(r.st.d.slips) - 1; i >= 0; i-- {
		if r.st.d.slips[i].EmployeeID == employeeID {
			result = append(result, r.st.d.slips[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Year > result[j].Year })
	return result, nil
}

type notificationRepo struct{ st *state }

func (r *notificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n.ID = newID()
	n.IsRead = false
	n.CreatedAt = r.st.now()
	r.st.d.notifications[n.ID] = *n
	return nil
}

func (r *notificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]domain.Notification, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.st.d.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, userID, id string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	n, ok := r.st.d.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.IsRead = true
	r.st.d.notifications[id] = n
	return nil
}
