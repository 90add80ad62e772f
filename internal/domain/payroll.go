package domain

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// StaffPerformance is a monthly performance record, keyed by employee and month.
type StaffPerformance struct {
	ID                  string
	EmployeeID          string
	Month               string
	BAUStatus           string
	Rating              pgtype.Numeric
	Incentive           pgtype.Numeric
	OTSacOffAmount      pgtype.Numeric
	ReferralBonus       pgtype.Numeric
	DSATDeduction       pgtype.Numeric
	WrongOrderDeduction pgtype.Numeric
	MRDDeductionStaff   pgtype.Numeric
	OtherDeduction      pgtype.Numeric
	EarningTotal        pgtype.Numeric
	DeductionTotal      pgtype.Numeric
}

// SalarySlip is a monthly salary record.
type SalarySlip struct {
	ID                   string
	EmployeeID           string
	Month                string
	Year                 int
	PresentDays          int
	LOPDays              int
	SacOffOT             pgtype.Numeric
	RatingIncentive      pgtype.Numeric
	KMMRDIncentive       pgtype.Numeric
	Arrears              pgtype.Numeric
	ReferralBonus        pgtype.Numeric
	MRDDeduction         pgtype.Numeric
	KMMRDDeduction       pgtype.Numeric
	PhotoDeduction       pgtype.Numeric
	MissingItemDeduction pgtype.Numeric
	NetPay               pgtype.Numeric
	CreatedAt            time.Time
}
