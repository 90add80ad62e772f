package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ops-portal/internal/domain"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

func newNotificationService(f *fixture) *NotificationService {
	svc := NewNotificationService(f.dispatcher, f.store.Notifications(), zap.NewNop())
	svc.RegisterHandlers()
	return svc
}

func messages(items []domain.Notification) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.Message)
	}
	return out
}

func TestNotifications_TicketLifecycle(t *testing.T) {
	f := newFixture(t)
	notifications := newNotificationService(f)
	tickets := f.ticketService()

	ticket, err := tickets.SubmitTicket(f.ctx, f.as(f.staff), SubmitInput{Concern: "Accommodation Issue"})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = tickets.Transition(f.ctx, f.as(f.hrOwner), ticket.ID, domain.ActionResolve, TransitionInput{Remarks: "fixed"})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = tickets.Transition(f.ctx, f.as(f.staff), ticket.ID, domain.ActionConfirm, TransitionInput{})
	require.NoError(t, err)

	ownerInbox, err := notifications.List(f.ctx, f.as(f.hrOwner), false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Staff confirmed closure of ticket TIK-00001",
		"Ticket TIK-00001 (Accommodation Issue) has been assigned to you",
	}, messages(ownerInbox))
	assert.Equal(t, "/tickets/"+ticket.ID, ownerInbox[0].Link)

	staffInbox, err := notifications.List(f.ctx, f.as(f.staff), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ticket TIK-00001 has been resolved. Please confirm closure"}, messages(staffInbox))
}

func TestNotifications_ReassignAndKitchenLog(t *testing.T) {
	f := newFixture(t)
	notifications := newNotificationService(f)
	ticket := f.seedTicket(t, domain.TicketStatusAssigned)

	_, err := f.ticketService().Transition(f.ctx, f.as(f.owner), ticket.ID, domain.ActionReassign, TransitionInput{NewOwnerID: f.cm.ID})
	require.NoError(t, err)

	cmInbox, err := notifications.List(f.ctx, f.as(f.cm), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ticket " + ticket.Number + " has been reassigned to you"}, messages(cmInbox))

	_, err = newKitchenLogService(f, time.UTC).Create(f.ctx, f.as(f.km), KitchenLogInput{StaffID: &f.staff.ID, Category: "Grooming"})
	require.NoError(t, err)

	staffInbox, err := notifications.List(f.ctx, f.as(f.staff), false)
	require.NoError(t, err)
	require.Len(t, staffInbox, 1)
	assert.Equal(t, "A Grooming log was recorded for you", staffInbox[0].Message)
	assert.Equal(t, "/kitchen-logs", staffInbox[0].Link)
}

func TestNotifications_MarkRead(t *testing.T) {
	f := newFixture(t)
	svc := newNotificationService(f)
	_, err := f.ticketService().SubmitTicket(f.ctx, f.as(f.staff), SubmitInput{Concern: "Accommodation Issue"})
	require.NoError(t, err)

	inbox, err := svc.List(f.ctx, f.as(f.hrOwner), true)
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	err = svc.MarkRead(f.ctx, f.as(f.staff), inbox[0].ID)
	requireCode(t, err, apperrors.CodeNotFound)

	require.NoError(t, svc.MarkRead(f.ctx, f.as(f.hrOwner), inbox[0].ID))

	unread, err := svc.List(f.ctx, f.as(f.hrOwner), true)
	require.NoError(t, err)
	assert.Empty(t, unread)

	all, err := svc.List(f.ctx, f.as(f.hrOwner), false)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsRead)
}
