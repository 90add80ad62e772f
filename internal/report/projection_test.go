package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-portal/internal/domain"
)

func at(hours float64, base time.Time) *time.Time {
	ts := base.Add(time.Duration(hours * float64(time.Hour)))
	return &ts
}

func TestProject_SLA(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		closedAt   *time.Time
		wantBreach bool
		wantTTR    string
	}{
		{"closed within 47h", at(47, created), false, "1 day, 23:00:00"},
		{"closed exactly at 48h", at(48, created), false, "2 days, 0:00:00"},
		{"closed after 49h", at(49, created), true, "2 days, 1:00:00"},
		{"still open", nil, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &domain.Ticket{CreatedAt: created, ClosedAt: tt.closedAt}
			p := Project(ticket, created.Add(100*time.Hour), time.UTC)
			assert.Equal(t, tt.wantBreach, p.SLABreach)
			assert.Equal(t, tt.wantTTR, p.TimeToResolve)
		})
	}
}

func TestProject_PendingDays(t *testing.T) {
	created := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)

	open := &domain.Ticket{CreatedAt: created}
	p := Project(open, created.Add(time.Hour), time.UTC)
	assert.Equal(t, 1, p.PendingDays, "calendar days, not elapsed days")

	closed := &domain.Ticket{CreatedAt: created, ClosedAt: at(24*3, created)}
	p = Project(closed, created.Add(24*30*time.Hour), time.UTC)
	assert.Equal(t, 3, p.PendingDays, "frozen at close")
}

func TestProject_PendingDaysUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC is 01:30 next day in IST.
	created := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	ticket := &domain.Ticket{CreatedAt: created}
	assert.Equal(t, 1, Project(ticket, now, time.UTC).PendingDays)
	assert.Equal(t, 0, Project(ticket, now, kolkata).PendingDays)
}

func TestProject_ConfirmPendingDays(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	p := Project(&domain.Ticket{CreatedAt: created}, created, nil)
	assert.Nil(t, p.ConfirmPendingDays)

	ticket := &domain.Ticket{CreatedAt: created, StaffConfirmedAt: at(50, created)}
	p = Project(ticket, created, nil)
	require.NotNil(t, p.ConfirmPendingDays)
	assert.Equal(t, 2, *p.ConfirmPendingDays)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00:00"},
		{59*time.Second + 900*time.Millisecond, "0:00:59"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3:04:05"},
		{24 * time.Hour, "1 day, 0:00:00"},
		{50*time.Hour + 30*time.Minute, "2 days, 2:30:00"},
		{-time.Minute, "0:00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}
