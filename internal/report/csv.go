package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/spec-kit/ops-portal/internal/domain"
)

const (
	DateLayout     = "02-01-2006"
	DateTimeLayout = "02-01-2006 15:04"
)

// TicketColumns is the header row of the ticket export.
var TicketColumns = []string{
	"Raised Date",
	"Ticket Number",
	"Employee",
	"Employee Code",
	"Location",
	"Concern",
	"Category",
	"Status",
	"Assigned Owner",
	"Description",
	"Closed Date&Time",
	"Pending Days",
	"Staff Confirmation Date",
	"Staff Confirmation Pending Days",
	"Employee Remarks",
	"Owner Remarks",
	"Rejection Remarks",
	"Reassigned Info",
	"Time To Resolve",
	"SLA Breach",
}

// Names resolves user and location ids to display names.
type Names struct {
	Users     map[string]string
	Locations map[string]string
}

func (n Names) user(id *string) string {
	if id == nil {
		return ""
	}
	return n.Users[*id]
}

func (n Names) location(id *string) string {
	if id == nil {
		return ""
	}
	return n.Locations[*id]
}

// Row is one projected ticket, shared by the JSON list and the CSV export.
type Row struct {
	Ticket         domain.Ticket
	Projection     Projection
	LocationName   string
	OwnerName      string
	ReassignedInfo string
}

// BuildRows projects tickets for display.
func BuildRows(tickets []domain.Ticket, names Names, now time.Time, loc *time.Location) []Row {
	rows := make([]Row, 0, len(tickets))
	for i := range tickets {
		t := tickets[i]
		row := Row{
			Ticket:       t,
			Projection:   Project(&t, now, loc),
			LocationName: names.location(t.LocationID),
			OwnerName:    names.user(t.AssignedOwnerID),
		}
		if t.ReassignedToID != nil {
			row.ReassignedInfo = "Reassigned to " + names.user(t.ReassignedToID)
		}
		rows = append(rows, row)
	}
	return rows
}

// OwnerRemarks picks the remark shown in the owner column: the closing
// remark when present, else the resolve remark, else the cluster remark.
func OwnerRemarks(t *domain.Ticket) string {
	switch {
	case t.OwnerCloserRemarks != "":
		return t.OwnerCloserRemarks
	case t.OwnerRemarks != "":
		return t.OwnerRemarks
	default:
		return t.ClosingRemarks
	}
}

// WriteTicketsCSV writes the header and one line per row.
func WriteTicketsCSV(w io.Writer, rows []Row, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(TicketColumns); err != nil {
		return err
	}
	for i := range rows {
		if err := cw.Write(ticketRecord(&rows[i], loc)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ticketRecord(r *Row, loc *time.Location) []string {
	t := &r.Ticket
	confirmPending := ""
	if r.Projection.ConfirmPendingDays != nil {
		confirmPending = strconv.Itoa(*r.Projection.ConfirmPendingDays)
	}
	sla := "NO"
	if r.Projection.SLABreach {
		sla = "YES"
	}
	return []string{
		t.CreatedAt.In(loc).Format(DateLayout),
		t.Number,
		t.EmployeeName,
		t.EmployeeCode,
		r.LocationName,
		t.Concern,
		t.Category,
		string(t.Status),
		r.OwnerName,
		t.Description,
		formatTime(t.ClosedAt, loc),
		strconv.Itoa(r.Projection.PendingDays),
		formatTime(t.StaffConfirmedAt, loc),
		confirmPending,
		t.StaffRemarks,
		OwnerRemarks(t),
		t.RejectionReason,
		r.ReassignedInfo,
		r.Projection.TimeToResolve,
		sla,
	}
}

func formatTime(ts *time.Time, loc *time.Location) string {
	if ts == nil {
		return ""
	}
	return ts.In(loc).Format(DateTimeLayout)
}

// PhotoColumns is the header row of the order photo export.
var PhotoColumns = []string{"Order ID", "Uploaded By", "Location", "Uploaded At", "Image URL"}

// WriteOrderPhotosCSV renders photo metadata.
func WriteOrderPhotosCSV(w io.Writer, photos []domain.OrderPhoto, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(PhotoColumns); err != nil {
		return err
	}
	for _, p := range photos {
		if err := cw.Write([]string{
			p.OrderID,
			p.UploaderName,
			p.LocationName,
			p.UploadedAt.In(loc).Format("2006-01-02 15:04"),
			p.ImageURL,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
