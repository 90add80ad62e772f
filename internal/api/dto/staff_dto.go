package dto

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// KitchenLogRequest payload. Either StaffID or EmpName must identify the
// employee.
type KitchenLogRequest struct {
	StaffID  *string    `json:"staff_id" validate:"omitempty,uuid"`
	EmpID    string     `json:"emp_id" validate:"max=50"`
	EmpName  string     `json:"emp_name" validate:"required_without=StaffID,max=200"`
	Category string     `json:"category" validate:"required"`
	Remarks  string     `json:"remarks" validate:"max=2000"`
	LogDate  *time.Time `json:"log_date"`
}

// KitchenLogResponse view.
type KitchenLogResponse struct {
	ID             string     `json:"id"`
	StaffID        *string    `json:"staff_id"`
	EmpID          string     `json:"emp_id"`
	EmpName        string     `json:"emp_name"`
	LocationCode   string     `json:"location"`
	Category       string     `json:"category"`
	Remarks        string     `json:"remarks"`
	LogDate        string     `json:"log_date"`
	CreatedByID    string     `json:"created_by_id"`
	IsAcknowledged bool       `json:"is_acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// OrderPhotoRequest records metadata of a photo already stored externally.
type OrderPhotoRequest struct {
	OrderID    string  `json:"order_id" validate:"required,max=100"`
	StorageKey string  `json:"storage_key" validate:"max=500"`
	ImageURL   string  `json:"image_url" validate:"omitempty,url"`
	LocationID *string `json:"location_id" validate:"omitempty,uuid"`
}

// OrderPhotoResponse view.
type OrderPhotoResponse struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	StorageKey   string    `json:"storage_key,omitempty"`
	ImageURL     string    `json:"image_url"`
	UploadedByID *string   `json:"uploaded_by_id"`
	UploaderName string    `json:"uploaded_by,omitempty"`
	LocationID   *string   `json:"location_id"`
	LocationName string    `json:"location,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

// PerformanceResponse view.
type PerformanceResponse struct {
	Month               string         `json:"month"`
	BAUStatus           string         `json:"bau_status"`
	Rating              pgtype.Numeric `json:"rating"`
	Incentive           pgtype.Numeric `json:"incentive"`
	OTSacOffAmount      pgtype.Numeric `json:"ot_sacoff_amount"`
	ReferralBonus       pgtype.Numeric `json:"referral_bonus"`
	DSATDeduction       pgtype.Numeric `json:"dsat_deduction"`
	WrongOrderDeduction pgtype.Numeric `json:"wrong_order_deduction"`
	MRDDeductionStaff   pgtype.Numeric `json:"mrd_deduction_staff"`
	OtherDeduction      pgtype.Numeric `json:"other_deduction"`
	EarningTotal        pgtype.Numeric `json:"earning_total"`
	DeductionTotal      pgtype.Numeric `json:"deduction_total"`
}

// SalarySlipResponse view.
type SalarySlipResponse struct {
	Month                string         `json:"month"`
	Year                 int            `json:"year"`
	PresentDays          int            `json:"present_days"`
	LOPDays              int            `json:"lop_days"`
	SacOffOT             pgtype.Numeric `json:"sac_off_ot"`
	RatingIncentive      pgtype.Numeric `json:"rating_incentive"`
	KMMRDIncentive       pgtype.Numeric `json:"km_mrd_incentive"`
	Arrears              pgtype.Numeric `json:"arrears"`
	ReferralBonus        pgtype.Numeric `json:"referral_bonus"`
	MRDDeduction         pgtype.Numeric `json:"mrd_deduction"`
	KMMRDDeduction       pgtype.Numeric `json:"km_mrd_deduction"`
	PhotoDeduction       pgtype.Numeric `json:"photo_deduction"`
	MissingItemDeduction pgtype.Numeric `json:"missing_item_deduction"`
	NetPay               pgtype.Numeric `json:"net_pay"`
}

// NotificationResponse view.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
