package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/events"
	"github.com/spec-kit/ops-portal/internal/importer"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

func newImportService(f *fixture) *ImportService {
	return NewImportService(ImportDependencies{Store: f.store, Dispatcher: f.dispatcher, Logger: zap.NewNop(), Clock: f.clock})
}

func salarySheet(rows ...string) string {
	return strings.Join(append([]string{strings.Join(importer.SalaryColumns, ",")}, rows...), "\n") + "\n"
}

func performanceSheet(rows ...string) string {
	return strings.Join(append([]string{strings.Join(importer.PerformanceColumns, ",")}, rows...), "\n") + "\n"
}

func TestImportSalary(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(f)

	sheet := salarySheet(
		"S100,March,2024,26,1,0,0,0,0,0,0,0,0,0,18000",
		"GHOST,March,2024,26,1,0,0,0,0,0,0,0,0,0,18000",
		"S101,March,2024,20,6,0,0,0,0,0,0,0,0,0,14000",
	)
	result, err := svc.ImportSalary(f.ctx, f.admin, strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Equal(t, importer.KindSalary, result.Kind)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, []SkippedRow{{Row: 3, EmployeeID: "GHOST"}}, result.Skipped)

	slips, err := svc.MySalarySlips(f.ctx, f.as(f.staff))
	require.NoError(t, err)
	require.Len(t, slips, 1)
	assert.Equal(t, 26, slips[0].PresentDays)
	assert.Equal(t, f.staff.ID, slips[0].EmployeeID)

	completed := f.recorded.ofType(events.EventImportCompleted)
	require.Len(t, completed, 1)
	payload, ok := completed[0].Payload.(events.ImportCompletedPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"GHOST"}, payload.Skipped)
}

func TestImportSalary_InvalidFileWritesNothing(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(f)

	sheet := salarySheet(
		"S100,March,2024,26,1,0,0,0,0,0,0,0,0,0,18000",
		"S101,March,2024,20,6,0,0,0,0,0,0,0,0,0,lots",
	)
	_, err := svc.ImportSalary(f.ctx, f.admin, strings.NewReader(sheet))
	requireCode(t, err, apperrors.CodeImport)
	details := apperrors.ToDomainError(err).Details
	problems, ok := details["problems"].([]importer.Problem)
	require.True(t, ok)
	require.Len(t, problems, 1)
	assert.Equal(t, 3, problems[0].Row)
	assert.Equal(t, "net_pay", problems[0].Column)

	slips, err := svc.MySalarySlips(f.ctx, f.as(f.staff))
	require.NoError(t, err)
	assert.Empty(t, slips)
	assert.Empty(t, f.recorded.ofType(events.EventImportCompleted))
}

func TestImportSalary_MissingColumns(t *testing.T) {
	f := newFixture(t)
	header := strings.Join(importer.SalaryColumns[:len(importer.SalaryColumns)-1], ",")

	_, err := newImportService(f).ImportSalary(f.ctx, nil, strings.NewReader(header+"\n"))
	requireCode(t, err, apperrors.CodeImport)
	assert.Equal(t, []string{"net_pay"}, apperrors.ToDomainError(err).Details["missing_columns"])
}

func TestImportPerformance_UpsertsByMonth(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(f)

	first := performanceSheet("S100,2024-03,Active,3,0,0,0,0,0,0,0,0,0")
	_, err := svc.Import(f.ctx, nil, importer.KindPerformance, strings.NewReader(first))
	require.NoError(t, err)

	second := performanceSheet(
		"S100,2024-03,Active,5,0,0,0,0,0,0,0,0,0",
		"S100,2024-04,Active,4,0,0,0,0,0,0,0,0,0",
	)
	result, err := svc.Import(f.ctx, nil, importer.KindPerformance, strings.NewReader(second))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Empty(t, result.Skipped)

	records, err := svc.MyPerformance(f.ctx, f.as(f.staff))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-04", records[0].Month)
	rating, err := records[1].Rating.Float64Value()
	require.NoError(t, err)
	assert.Equal(t, 5.0, rating.Float64)
}

func TestImport_Authorization(t *testing.T) {
	f := newFixture(t)
	svc := newImportService(f)

	_, err := svc.Import(f.ctx, f.owner, importer.KindSalary, strings.NewReader(salarySheet()))
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = svc.Import(f.ctx, f.admin, importer.Kind("bonus"), strings.NewReader(""))
	requireCode(t, err, apperrors.CodeValidation)

	result, err := svc.Import(f.ctx, f.admin, importer.KindSalary, strings.NewReader(salarySheet()))
	require.NoError(t, err)
	assert.Zero(t, result.Created)
}
