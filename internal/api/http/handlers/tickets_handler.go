package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-portal/internal/api/dto"
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/report"
	"github.com/spec-kit/ops-portal/internal/service"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// TicketsHandler manages ticket endpoints for every role.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// SubmitTicket POST /tickets.
func (h *TicketsHandler) SubmitTicket(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.SubmitTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.SubmitTicket(c.UserContext(), actor, service.SubmitInput{
		Concern:      req.Concern,
		Category:     req.Category,
		Description:  req.Description,
		MobileNumber: req.MobileNumber,
		StaffID:      req.StaffID,
		LocationID:   req.LocationID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	filter.Limit, filter.Offset = page(c)
	rows, err := h.service.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(rows))
	for i := range rows {
		items = append(items, rowResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ExportTickets GET /tickets/export.
func (h *TicketsHandler) ExportTickets(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.service.ExportTicketsCSV(c.UserContext(), actor, filter, &buf); err != nil {
		return err
	}
	return sendCSV(c, "tickets.csv", &buf)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "ticket")
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), actor, ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketDetailResponse{
		TicketResponse: rowResponse(&detail.Row),
		History:        historyResponses(detail.History),
	}})
}

// Transition POST /tickets/:id/:action.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	ticketID, err := pathID(c, "ticket")
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	action := domain.TicketAction(strings.ReplaceAll(c.Params("action"), "-", "_"))
	result, err := h.service.Transition(c.UserContext(), actor, ticketID, action, service.TransitionInput{
		Remarks:    req.Remarks,
		NewOwnerID: req.NewOwnerID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TransitionResponse{
		Ticket:      ticketResponse(result.Ticket),
		AlreadyDone: result.AlreadyDone,
	}})
}

// ReassignCandidates GET /tickets/reassign-candidates.
func (h *TicketsHandler) ReassignCandidates(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	users, err := h.service.ReassignCandidates(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// Summary GET /admin/summary.
func (h *TicketsHandler) Summary(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{
		AssignedTo:  optionalQuery(c, "assigned_to"),
		LocationID:  optionalQuery(c, "location_id"),
		CreatedFrom: parseDate(c.Query("created_from")),
		CreatedTo:   parseDate(c.Query("created_to")),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status := domain.TicketStatus(strings.TrimSpace(part))
			if !status.Valid() {
				return filter, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	return filter, nil
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:               ticket.ID,
		Number:           ticket.Number,
		EmployeeID:       ticket.EmployeeID,
		EmployeeCode:     ticket.EmployeeCode,
		EmployeeName:     ticket.EmployeeName,
		RaisedByID:       ticket.RaisedByID,
		LocationID:       ticket.LocationID,
		Concern:          ticket.Concern,
		Category:         ticket.Category,
		Description:      ticket.Description,
		MobileNumber:     ticket.MobileNumber,
		Status:           ticket.Status,
		AssignedOwnerID:  ticket.AssignedOwnerID,
		ReassignedToID:   ticket.ReassignedToID,
		StaffRemarks:     ticket.StaffRemarks,
		OwnerRemarks:     report.OwnerRemarks(ticket),
		RejectionReason:  ticket.RejectionReason,
		StaffConfirmed:   ticket.StaffConfirmed,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
		ResolvedAt:       ticket.ResolvedAt,
		ClosedAt:         ticket.ClosedAt,
		StaffConfirmedAt: ticket.StaffConfirmedAt,
	}
}

func rowResponse(row *report.Row) dto.TicketResponse {
	resp := ticketResponse(&row.Ticket)
	resp.LocationName = row.LocationName
	resp.AssignedOwnerName = row.OwnerName
	resp.ReassignedInfo = row.ReassignedInfo
	pending := row.Projection.PendingDays
	breach := row.Projection.SLABreach
	resp.PendingDays = &pending
	resp.SLABreach = &breach
	resp.TimeToResolve = row.Projection.TimeToResolve
	resp.ConfirmPendingDays = row.Projection.ConfirmPendingDays
	return resp
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			Action:     entry.Action,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			Details:    entry.Details,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return resp
}
