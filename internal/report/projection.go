// Package report computes read-time ticket metrics and renders the ticket
// export. Nothing here is persisted.
package report

import (
	"fmt"
	"time"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// SLAThreshold is the resolution time above which a closed ticket breaches SLA.
const SLAThreshold = 48 * time.Hour

// Projection holds the derived fields of one ticket.
type Projection struct {
	PendingDays int
	// TimeToResolve is empty while the ticket is open.
	TimeToResolve      string
	SLABreach          bool
	ConfirmPendingDays *int
}

// Project derives the report fields for t. Calendar-day differences are taken
// in loc; nil loc means UTC.
func Project(t *domain.Ticket, now time.Time, loc *time.Location) Projection {
	if loc == nil {
		loc = time.UTC
	}
	var p Projection

	end := now
	if t.ClosedAt != nil {
		end = *t.ClosedAt
	}
	p.PendingDays = dayDiff(t.CreatedAt, end, loc)

	if t.ClosedAt != nil {
		elapsed := t.ClosedAt.Sub(t.CreatedAt)
		p.TimeToResolve = FormatDuration(elapsed)
		p.SLABreach = elapsed > SLAThreshold
	}

	if t.StaffConfirmedAt != nil {
		days := dayDiff(t.CreatedAt, *t.StaffConfirmedAt, loc)
		p.ConfirmPendingDays = &days
	}
	return p
}

// dayDiff counts calendar days between the dates of from and to in loc.
func dayDiff(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	start := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	end := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// FormatDuration renders d as "H:MM:SS" or "N day(s), H:MM:SS", truncated to
// whole seconds. Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	rest := total % 86400
	clock := fmt.Sprintf("%d:%02d:%02d", rest/3600, (rest%3600)/60, rest%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
