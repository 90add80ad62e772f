package repository

import (
	"context"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// PayrollRepository persists monthly performance records and salary slips.
type PayrollRepository interface {
	// UpsertPerformance inserts or replaces the record for (employee, month).
	UpsertPerformance(ctx context.Context, record *domain.StaffPerformance) error
	CreateSalarySlip(ctx context.Context, slip *domain.SalarySlip) error
	ListPerformance(ctx context.Context, employeeID string) ([]domain.StaffPerformance, error)
	ListSalarySlips(ctx context.Context, employeeID string) ([]domain.SalarySlip, error)
}

type payrollRepository struct {
	db DBTX
}

// NewPayrollRepository constructs repository.
func NewPayrollRepository(db DBTX) PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) UpsertPerformance(ctx context.Context, record *domain.StaffPerformance) error {
	const query = `
        INSERT INTO staff_performance (employee_id, month, bau_status, rating, incentive, ot_sacoff_amount,
            referral_bonus, dsat_deduction, wrong_order_deduction, mrd_deduction_staff, other_deduction,
            earning_total, deduction_total)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        ON CONFLICT (employee_id, month) DO UPDATE SET
            bau_status=EXCLUDED.bau_status, rating=EXCLUDED.rating, incentive=EXCLUDED.incentive,
            ot_sacoff_amount=EXCLUDED.ot_sacoff_amount, referral_bonus=EXCLUDED.referral_bonus,
            dsat_deduction=EXCLUDED.dsat_deduction, wrong_order_deduction=EXCLUDED.wrong_order_deduction,
            mrd_deduction_staff=EXCLUDED.mrd_deduction_staff, other_deduction=EXCLUDED.other_deduction,
            earning_total=EXCLUDED.earning_total, deduction_total=EXCLUDED.deduction_total
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		record.EmployeeID,
		record.Month,
		record.BAUStatus,
		record.Rating,
		record.Incentive,
		record.OTSacOffAmount,
		record.ReferralBonus,
		record.DSATDeduction,
		record.WrongOrderDeduction,
		record.MRDDeductionStaff,
		record.OtherDeduction,
		record.EarningTotal,
		record.DeductionTotal,
	).Scan(&record.ID)
}

func (r *payrollRepository) CreateSalarySlip(ctx context.Context, slip *domain.SalarySlip) error {
	const query = `
        INSERT INTO salary_slips (employee_id, month, year, present_days, lop_days, sac_off_ot, rating_incentive,
            km_mrd_incentive, arrears, referral_bonus, mrd_deduction, km_mrd_deduction, photo_deduction,
            missing_item_deduction, net_pay)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		slip.EmployeeID,
		slip.Month,
		slip.Year,
		slip.PresentDays,
		slip.LOPDays,
		slip.SacOffOT,
		slip.RatingIncentive,
		slip.KMMRDIncentive,
		slip.Arrears,
		slip.ReferralBonus,
		slip.MRDDeduction,
		slip.KMMRDDeduction,
		slip.PhotoDeduction,
		slip.MissingItemDeduction,
		slip.NetPay,
	).Scan(&slip.ID, &slip.CreatedAt)
}

func (r *payrollRepository) ListPerformance(ctx context.Context, employeeID string) ([]domain.StaffPerformance, error) {
	const query = `
        SELECT id, employee_id, month, bau_status, rating, incentive, ot_sacoff_amount, referral_bonus,
               dsat_deduction, wrong_order_deduction, mrd_deduction_staff, other_deduction, earning_total,
               deduction_total
        FROM staff_performance WHERE employee_id=$1 ORDER BY month DESC`
	rows, err := r.db.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StaffPerformance
	for rows.Next() {
		var p domain.StaffPerformance
		if err := rows.Scan(
			&p.ID,
			&p.EmployeeID,
			&p.Month,
			&p.BAUStatus,
			&p.Rating,
			&p.Incentive,
			&p.OTSacOffAmount,
			&p.ReferralBonus,
			&p.DSATDeduction,
			&p.WrongOrderDeduction,
			&p.MRDDeductionStaff,
			&p.OtherDeduction,
			&p.EarningTotal,
			&p.DeductionTotal,
		); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *payrollRepository) ListSalarySlips(ctx context.Context, employeeID string) ([]domain.SalarySlip, error) {
	const query = `
        SELECT id, employee_id, month, year, present_days, lop_days, sac_off_ot, rating_incentive,
               km_mrd_incentive, arrears, referral_bonus, mrd_deduction, km_mrd_deduction, photo_deduction,
               missing_item_deduction, net_pay, created_at
        FROM salary_slips WHERE employee_id=$1 ORDER BY year DESC, created_at DESC`
	rows, err := r.db.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SalarySlip
	for rows.Next() {
		var s domain.SalarySlip
		if err := rows.Scan(
			&s.ID,
			&s.EmployeeID,
			&s.Month,
			&s.Year,
			&s.PresentDays,
			&s.LOPDays,
			&s.SacOffOT,
			&s.RatingIncentive,
			&s.KMMRDIncentive,
			&s.Arrears,
			&s.ReferralBonus,
			&s.MRDDeduction,
			&s.KMMRDDeduction,
			&s.PhotoDeduction,
			&s.MissingItemDeduction,
			&s.NetPay,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
