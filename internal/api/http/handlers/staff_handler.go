package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-portal/internal/api/dto"
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/service"
)

// StaffHandler exposes the staff records: kitchen logs, performance and
// salary slips.
type StaffHandler struct {
	logs    *service.KitchenLogService
	imports *service.ImportService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(logs *service.KitchenLogService, imports *service.ImportService) *StaffHandler {
	return &StaffHandler{logs: logs, imports: imports}
}

// CreateLog handles POST /kitchen-logs.
func (h *StaffHandler) CreateLog(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.KitchenLogRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	log, err := h.logs.Create(c.UserContext(), actor, service.KitchenLogInput{
		StaffID:  req.StaffID,
		EmpID:    req.EmpID,
		EmpName:  req.EmpName,
		Category: req.Category,
		Remarks:  req.Remarks,
		LogDate:  req.LogDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": kitchenLogResponse(log)})
}

// ListLogs handles GET /kitchen-logs.
func (h *StaffHandler) ListLogs(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	search := service.KitchenLogSearch{Name: c.Query("name"), EmpID: c.Query("emp_id")}
	search.Limit, search.Offset = page(c)
	logs, err := h.logs.List(c.UserContext(), actor, search)
	if err != nil {
		return err
	}
	items := make([]dto.KitchenLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, kitchenLogResponse(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AcknowledgeLog handles POST /kitchen-logs/:id/acknowledge.
func (h *StaffHandler) AcknowledgeLog(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	logID, err := pathID(c, "kitchen log")
	if err != nil {
		return err
	}
	log, err := h.logs.Acknowledge(c.UserContext(), actor, logID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": kitchenLogResponse(log)})
}

// MyPerformance handles GET /me/performance.
func (h *StaffHandler) MyPerformance(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	records, err := h.imports.MyPerformance(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.PerformanceResponse, 0, len(records))
	for _, p := range records {
		items = append(items, dto.PerformanceResponse{
			Month:               p.Month,
			BAUStatus:           p.BAUStatus,
			Rating:              p.Rating,
			Incentive:           p.Incentive,
			OTSacOffAmount:      p.OTSacOffAmount,
			ReferralBonus:       p.ReferralBonus,
			DSATDeduction:       p.DSATDeduction,
			WrongOrderDeduction: p.WrongOrderDeduction,
			MRDDeductionStaff:   p.MRDDeductionStaff,
			OtherDeduction:      p.OtherDeduction,
			EarningTotal:        p.EarningTotal,
			DeductionTotal:      p.DeductionTotal,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MySalarySlips handles GET /me/salary-slips.
func (h *StaffHandler) MySalarySlips(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	slips, err := h.imports.MySalarySlips(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.SalarySlipResponse, 0, len(slips))
	for _, s := range slips {
		items = append(items, dto.SalarySlipResponse{
			Month:                s.Month,
			Year:                 s.Year,
			PresentDays:          s.PresentDays,
			LOPDays:              s.LOPDays,
			SacOffOT:             s.SacOffOT,
			RatingIncentive:      s.RatingIncentive,
			KMMRDIncentive:       s.KMMRDIncentive,
			Arrears:              s.Arrears,
			ReferralBonus:        s.ReferralBonus,
			MRDDeduction:         s.MRDDeduction,
			KMMRDDeduction:       s.KMMRDDeduction,
			PhotoDeduction:       s.PhotoDeduction,
			MissingItemDeduction: s.MissingItemDeduction,
			NetPay:               s.NetPay,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func kitchenLogResponse(log *domain.KitchenLog) dto.KitchenLogResponse {
	return dto.KitchenLogResponse{
		ID:             log.ID,
		StaffID:        log.StaffID,
		EmpID:          log.EmpID,
		EmpName:        log.EmpName,
		LocationCode:   log.LocationCode,
		Category:       log.Category,
		Remarks:        log.Remarks,
		LogDate:        log.LogDate.Format(dateLayout),
		CreatedByID:    log.CreatedByID,
		IsAcknowledged: log.IsAcknowledged,
		AcknowledgedAt: log.AcknowledgedAt,
		CreatedAt:      log.CreatedAt,
	}
}
