package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/events"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

func newKitchenLogService(f *fixture, loc *time.Location) *KitchenLogService {
	return NewKitchenLogService(KitchenLogDependencies{
		Store:      f.store,
		Dispatcher: f.dispatcher,
		Logger:     zap.NewNop(),
		Clock:      f.clock,
		Location:   loc,
	})
}

func TestKitchenLogCreate_SnapshotsStaff(t *testing.T) {
	f := newFixture(t)
	svc := newKitchenLogService(f, time.UTC)

	log, err := svc.Create(f.ctx, f.as(f.km), KitchenLogInput{
		StaffID:  &f.staff.ID,
		EmpID:    "ignored",
		EmpName:  "ignored",
		Category: "Grooming",
		Remarks:  " untidy apron ",
	})
	require.NoError(t, err)
	assert.Equal(t, "S100", log.EmpID)
	assert.Equal(t, "Sam Staff", log.EmpName)
	assert.Equal(t, "KA", log.LocationCode)
	assert.Equal(t, "untidy apron", log.Remarks)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), log.LogDate)

	created := f.recorded.ofType(events.EventKitchenLogCreated)
	require.Len(t, created, 1)
	assert.Equal(t, log.ID, created[0].SubjectID)
}

func TestKitchenLogCreate_LogDateUsesConfiguredLocation(t *testing.T) {
	f := newFixture(t)
	f.now = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	ist := time.FixedZone("IST", 5*3600+1800)

	log, err := newKitchenLogService(f, ist).Create(f.ctx, f.as(f.km), KitchenLogInput{
		EmpName:  "Walk-in Helper",
		Category: "Reporting Issue",
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), log.LogDate)
	assert.Equal(t, "-", log.EmpID)
	assert.Nil(t, log.StaffID)
}

func TestKitchenLogCreate_ClusterManagerLocation(t *testing.T) {
	f := newFixture(t)
	svc := newKitchenLogService(f, time.UTC)

	log, err := svc.Create(f.ctx, f.as(f.cm), KitchenLogInput{StaffID: &f.staff.ID, Category: "Kot Process"})
	require.NoError(t, err)
	assert.Equal(t, "KA", log.LocationCode)

	log, err = svc.Create(f.ctx, f.as(f.cm), KitchenLogInput{EmpName: "Unlisted", Category: "Kot Process"})
	require.NoError(t, err)
	assert.Equal(t, domain.UnknownLocationCode, log.LocationCode)
}

func TestKitchenLogCreate_Rejects(t *testing.T) {
	f := newFixture(t)
	svc := newKitchenLogService(f, time.UTC)

	_, err := svc.Create(f.ctx, f.as(f.staff), KitchenLogInput{EmpName: "x", Category: "Grooming"})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = svc.Create(f.ctx, f.as(f.km), KitchenLogInput{EmpName: "x", Category: "Singing"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.Create(f.ctx, f.as(f.km), KitchenLogInput{Category: "Grooming"})
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.Create(f.ctx, f.as(f.km), KitchenLogInput{StaffID: &f.otherStaff.ID, Category: "Grooming"})
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = svc.Create(f.ctx, f.as(f.km), KitchenLogInput{StaffID: &f.owner.ID, Category: "Grooming"})
	requireCode(t, err, apperrors.CodeValidation)
}

func TestKitchenLogList_Visibility(t *testing.T) {
	f := newFixture(t)
	svc := newKitchenLogService(f, time.UTC)

	_, err := svc.Create(f.ctx, f.as(f.km), KitchenLogInput{StaffID: &f.staff.ID, Category: "Grooming"})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, f.as(f.km), KitchenLogInput{EmpID: "S100", EmpName: "Sam (paper)", Category: "Reporting Issue"})
	require.NoError(t, err)
	_, err = svc.Create(f.ctx, f.as(f.km), KitchenLogInput{EmpName: "Someone Else", Category: "Kot Process"})
	require.NoError(t, err)

	mine, err := svc.List(f.ctx, f.as(f.staff), KitchenLogSearch{})
	require.NoError(t, err)
	assert.Len(t, mine, 2, "matched by staff link or employee id")

	other, err := svc.List(f.ctx, f.as(f.otherStaff), KitchenLogSearch{})
	require.NoError(t, err)
	assert.Empty(t, other)

	site, err := svc.List(f.ctx, f.as(f.km), KitchenLogSearch{})
	require.NoError(t, err)
	assert.Len(t, site, 3)

	searched, err := svc.List(f.ctx, f.as(f.cm), KitchenLogSearch{Name: "else"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Someone Else", searched[0].EmpName)

	all, err := svc.List(f.ctx, f.as(f.owner), KitchenLogSearch{EmpID: "s100"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestKitchenLogAcknowledge(t *testing.T) {
	f := newFixture(t)
	svc := newKitchenLogService(f, time.UTC)

	log, err := svc.Create(f.ctx, f.as(f.km), KitchenLogInput{StaffID: &f.staff.ID, Category: "Grooming"})
	require.NoError(t, err)

	_, err = svc.Acknowledge(f.ctx, f.as(f.km), log.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	acked, err := svc.Acknowledge(f.ctx, f.as(f.staff), log.ID)
	require.NoError(t, err)
	assert.True(t, acked.IsAcknowledged)
	require.NotNil(t, acked.AcknowledgedAt)
	first := *acked.AcknowledgedAt

	f.advance(time.Hour)
	again, err := svc.Acknowledge(f.ctx, f.as(f.staff), log.ID)
	require.NoError(t, err)
	assert.True(t, again.AcknowledgedAt.Equal(first))

	_, err = svc.Acknowledge(f.ctx, f.as(f.staff), "missing")
	requireCode(t, err, apperrors.CodeNotFound)
}
