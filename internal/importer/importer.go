// Package importer parses performance and salary spreadsheets exported as CSV.
// Parsing is all-or-nothing: a missing column or a bad cell anywhere rejects
// the whole file before anything is written.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/spec-kit/ops-portal/internal/domain"
)

// Kind selects a column contract.
type Kind string

const (
	KindPerformance Kind = "performance"
	KindSalary      Kind = "salary"
)

// PerformanceColumns is the performance column contract.
var PerformanceColumns = []string{
	"employee_id", "month", "bau_status", "rating", "incentive", "ot_sacoff_amount",
	"referral_bonus", "dsat_deduction", "wrong_order_deduction", "mrd_deduction_staff",
	"other_deduction", "earning_total", "deduction_total",
}

// SalaryColumns is the salary column contract.
var SalaryColumns = []string{
	"employee_id", "month", "year", "present_days", "lop_days", "sac_off_ot",
	"rating_incentive", "km_mrd_incentive", "arrears", "referral_bonus", "mrd_deduction",
	"km_mrd_deduction", "photo_deduction", "missing_item_deduction", "net_pay",
}

// Columns returns the contract of kind.
func Columns(kind Kind) ([]string, error) {
	switch kind {
	case KindPerformance:
		return PerformanceColumns, nil
	case KindSalary:
		return SalaryColumns, nil
	default:
		return nil, fmt.Errorf("unknown import kind %q", kind)
	}
}

// MissingColumnsError lists contract columns absent from the header, in
// contract order.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Missing, ", ")
}

// Problem is a single unparseable cell or row. Row is 1-based and counts the
// header as row 1, matching what a spreadsheet shows.
type Problem struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

// ProblemsError carries every problem found in a file.
type ProblemsError struct {
	Problems []Problem
}

func (e *ProblemsError) Error() string {
	return fmt.Sprintf("%d problem(s) in file", len(e.Problems))
}

// Record is one parsed row keyed by its employee id.
type Record[T any] struct {
	Row        int
	EmployeeID string
	Value      T
}

type sheet struct {
	index map[string]int
	rows  [][]string
}

func readSheet(r io.Reader, required []string) (*sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnsError{Missing: append([]string(nil), required...)}
	}
	if err != nil {
		return nil, &ProblemsError{Problems: []Problem{{Row: 1, Message: err.Error()}}}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	var rows [][]string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ProblemsError{Problems: []Problem{{Row: line, Message: err.Error()}}}
		}
		rows = append(rows, record)
	}
	return &sheet{index: index, rows: rows}, nil
}

// cells reads typed values from one row and records problems as it goes.
type cells struct {
	sheet    *sheet
	record   []string
	row      int
	problems *[]Problem
}

func (c cells) raw(column string) string {
	i := c.sheet.index[column]
	if i >= len(c.record) {
		return ""
	}
	return strings.TrimSpace(c.record[i])
}

func (c cells) fail(column, message string) {
	*c.problems = append(*c.problems, Problem{Row: c.row, Column: column, Message: message})
}

func (c cells) required(column string) string {
	v := c.raw(column)
	if v == "" {
		c.fail(column, "value is required")
	}
	return v
}

func (c cells) text(column string) string {
	return c.raw(column)
}

// integer accepts whole numbers written as "12" or "12.0".
func (c cells) integer(column string, required bool) int {
	v := c.raw(column)
	if v == "" {
		if required {
			c.fail(column, "value is required")
		}
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != float64(int(f)) {
		c.fail(column, fmt.Sprintf("%q is not a whole number", v))
		return 0
	}
	return int(f)
}

// money parses a decimal amount; empty cells are zero.
func (c cells) money(column string) pgtype.Numeric {
	v := c.raw(column)
	if v == "" {
		v = "0"
	}
	var n pgtype.Numeric
	if _, err := strconv.ParseFloat(v, 64); err != nil {
		c.fail(column, fmt.Sprintf("%q is not a number", v))
		return n
	}
	if err := n.Scan(v); err != nil {
		c.fail(column, fmt.Sprintf("%q is not a number", v))
	}
	return n
}

// ParsePerformance parses a performance sheet.
func ParsePerformance(r io.Reader) ([]Record[domain.StaffPerformance], error) {
	s, err := readSheet(r, PerformanceColumns)
	if err != nil {
		return nil, err
	}
	var problems []Problem
	records := make([]Record[domain.StaffPerformance], 0, len(s.rows))
	for i, record := range s.rows {
		c := cells{sheet: s, record: record, row: i + 2, problems: &problems}
		p := domain.StaffPerformance{
			EmployeeID:          c.required("employee_id"),
			Month:               c.required("month"),
			BAUStatus:           c.text("bau_status"),
			Rating:              c.money("rating"),
			Incentive:           c.money("incentive"),
			OTSacOffAmount:      c.money("ot_sacoff_amount"),
			ReferralBonus:       c.money("referral_bonus"),
			DSATDeduction:       c.money("dsat_deduction"),
			WrongOrderDeduction: c.money("wrong_order_deduction"),
			MRDDeductionStaff:   c.money("mrd_deduction_staff"),
			OtherDeduction:      c.money("other_deduction"),
			EarningTotal:        c.money("earning_total"),
			DeductionTotal:      c.money("deduction_total"),
		}
		records = append(records, Record[domain.StaffPerformance]{Row: c.row, EmployeeID: p.EmployeeID, Value: p})
	}
	if len(problems) > 0 {
		return nil, &ProblemsError{Problems: problems}
	}
	return records, nil
}

// ParseSalary parses a salary sheet.
func ParseSalary(r io.Reader) ([]Record[domain.SalarySlip], error) {
	s, err := readSheet(r, SalaryColumns)
	if err != nil {
		return nil, err
	}
	var problems []Problem
	records := make([]Record[domain.SalarySlip], 0, len(s.rows))
	for i, record := range s.rows {
		c := cells{sheet: s, record: record, row: i + 2, problems: &problems}
		slip := domain.SalarySlip{
			EmployeeID:           c.required("employee_id"),
			Month:                c.required("month"),
			Year:                 c.integer("year", true),
			PresentDays:          c.integer("present_days", false),
			LOPDays:              c.integer("lop_days", false),
			SacOffOT:             c.money("sac_off_ot"),
			RatingIncentive:      c.money("rating_incentive"),
			KMMRDIncentive:       c.money("km_mrd_incentive"),
			Arrears:              c.money("arrears"),
			ReferralBonus:        c.money("referral_bonus"),
			MRDDeduction:         c.money("mrd_deduction"),
			KMMRDDeduction:       c.money("km_mrd_deduction"),
			PhotoDeduction:       c.money("photo_deduction"),
			MissingItemDeduction: c.money("missing_item_deduction"),
			NetPay:               c.money("net_pay"),
		}
		records = append(records, Record[domain.SalarySlip]{Row: c.row, EmployeeID: slip.EmployeeID, Value: slip})
	}
	if len(problems) > 0 {
		return nil, &ProblemsError{Problems: problems}
	}
	return records, nil
}
