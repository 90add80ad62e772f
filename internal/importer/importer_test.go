package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salaryHeader = "employee_id,month,year,present_days,lop_days,sac_off_ot,rating_incentive,km_mrd_incentive," +
	"arrears,referral_bonus,mrd_deduction,km_mrd_deduction,photo_deduction,missing_item_deduction,net_pay"

const performanceHeader = "employee_id,month,bau_status,rating,incentive,ot_sacoff_amount,referral_bonus," +
	"dsat_deduction,wrong_order_deduction,mrd_deduction_staff,other_deduction,earning_total,deduction_total"

func TestParseSalary(t *testing.T) {
	sheet := salaryHeader + "\n" +
		"E100,March,2024,26,1,100,200,0,0,0,50,0,0,0,18250.50\n" +
		"E101,March,2024.0,,,,,,,,,,,,\n"

	records, err := ParseSalary(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "E100", first.EmployeeID)
	assert.Equal(t, 2024, first.Value.Year)
	assert.Equal(t, 26, first.Value.PresentDays)
	assert.Equal(t, 1, first.Value.LOPDays)
	assert.True(t, first.Value.NetPay.Valid)
	net, err := first.Value.NetPay.Float64Value()
	require.NoError(t, err)
	assert.InDelta(t, 18250.50, net.Float64, 0.001)

	second := records[1]
	assert.Equal(t, 3, second.Row)
	assert.Equal(t, 2024, second.Value.Year)
	zero, err := second.Value.NetPay.Float64Value()
	require.NoError(t, err)
	assert.Zero(t, zero.Float64, "empty money cells are zero")
}

func TestParseSalary_MissingColumns(t *testing.T) {
	header := strings.Replace(salaryHeader, ",net_pay", "", 1)

	_, err := ParseSalary(strings.NewReader(header + "\nE100,March,2024,26,1,0,0,0,0,0,0,0,0,0\n"))
	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"net_pay"}, missing.Missing)
}

func TestParseSalary_EmptyFile(t *testing.T) {
	_, err := ParseSalary(strings.NewReader(""))
	var missing *MissingColumnsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, SalaryColumns, missing.Missing)
}

func TestParseSalary_HeaderIsCaseInsensitive(t *testing.T) {
	header := "\ufeff" + strings.ToUpper(salaryHeader)
	records, err := ParseSalary(strings.NewReader(header + "\nE100,March,2024,,,,,,,,,,,,1\n"))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestParseSalary_CollectsEveryProblem(t *testing.T) {
	sheet := salaryHeader + "\n" +
		",March,2024,26,1,0,0,0,0,0,0,0,0,0,100\n" +
		"E101,March,twenty,26.5,1,0,0,0,0,0,0,0,0,0,abc\n"

	_, err := ParseSalary(strings.NewReader(sheet))
	var problems *ProblemsError
	require.True(t, errors.As(err, &problems))

	got := map[string]int{}
	for _, p := range problems.Problems {
		got[p.Column] = p.Row
	}
	assert.Equal(t, map[string]int{
		"employee_id":  2,
		"year":         3,
		"present_days": 3,
		"net_pay":      3,
	}, got)
}

func TestParsePerformance(t *testing.T) {
	sheet := performanceHeader + ",extra\n" +
		"E100,2024-03,Active,4.5,1000,0,0,0,0,0,0,1000,0,ignored\n"

	records, err := ParsePerformance(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "E100", records[0].EmployeeID)
	assert.Equal(t, "2024-03", records[0].Value.Month)
	assert.Equal(t, "Active", records[0].Value.BAUStatus)
}

func TestParsePerformance_RequiresMonth(t *testing.T) {
	sheet := performanceHeader + "\nE100,,Active,4.5,0,0,0,0,0,0,0,0,0\n"

	_, err := ParsePerformance(strings.NewReader(sheet))
	var problems *ProblemsError
	require.True(t, errors.As(err, &problems))
	require.Len(t, problems.Problems, 1)
	assert.Equal(t, Problem{Row: 2, Column: "month", Message: "value is required"}, problems.Problems[0])
}

func TestColumns(t *testing.T) {
	cols, err := Columns(KindSalary)
	require.NoError(t, err)
	assert.Equal(t, SalaryColumns, cols)

	_, err = Columns(Kind("bonus"))
	assert.Error(t, err)
}
