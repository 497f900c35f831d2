package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

func ticket(status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		TicketNumber:   "SR-20250101-001",
		Kind:           domain.KindMEP,
		Status:         status,
		RequesterEmail: "req@example.com",
		AssigneeEmail:  "mep@example.com",
	}
}

func TestCanSubmitFeedback(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.TicketStatus
		actor   string
		wantErr error
	}{
		{"requester on completed", domain.StatusCompleted, "req@example.com", nil},
		{"requester case insensitive", domain.StatusCompleted, "REQ@example.com", nil},
		{"assignee on completed", domain.StatusCompleted, "mep@example.com", apperrors.ErrForbidden},
		{"requester on in progress", domain.StatusInProgress, "req@example.com", &apperrors.DomainError{Code: apperrors.CodeConflict}},
		{"requester on rejected", domain.StatusRejected, "req@example.com", &apperrors.DomainError{Code: apperrors.CodeConflict}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CanSubmitFeedback(ticket(tc.status), tc.actor)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
		})
	}
}

func TestCanChangeStatus(t *testing.T) {
	assert.NoError(t, CanChangeStatus(ticket(domain.StatusPending), "mep@example.com"))
	assert.True(t, errors.Is(CanChangeStatus(ticket(domain.StatusPending), "req@example.com"), apperrors.ErrForbidden))
}

func TestCanAssignDriver(t *testing.T) {
	m := NewMachine(transport)
	vr := func(status domain.TicketStatus, assignee string) domain.VRTicket {
		return domain.VRTicket{Ticket: domain.Ticket{
			Kind:           domain.KindVR,
			Status:         status,
			RequesterEmail: "req@example.com",
			AssigneeEmail:  assignee,
		}}
	}

	assert.NoError(t, m.CanAssignDriver(vr(domain.StatusPending, transport), transport))
	assert.NoError(t, m.CanAssignDriver(vr(domain.StatusInProgress, transport), transport))

	err := m.CanAssignDriver(vr(domain.StatusPendingManager, "boss@example.com"), transport)
	assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)

	err = m.CanAssignDriver(vr(domain.StatusPendingManager, transport), transport)
	assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code)

	err = m.CanAssignDriver(vr(domain.StatusPending, transport), "req@example.com")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	for _, closed := range []domain.TicketStatus{domain.StatusCompleted, domain.StatusRejected} {
		err = m.CanAssignDriver(vr(closed, transport), transport)
		assert.Equal(t, apperrors.CodeConflict, apperrors.ToDomainError(err).Code, closed)
	}
}

func TestCanView(t *testing.T) {
	tk := ticket(domain.StatusPending)
	assert.True(t, CanView(tk, domain.Principal{Email: "req@example.com"}))
	assert.True(t, CanView(tk, domain.Principal{Email: "mep@example.com"}))
	assert.True(t, CanView(tk, domain.Principal{Email: "hod@example.com", IsHOD: true}))
	assert.False(t, CanView(tk, domain.Principal{Email: "other@example.com"}))
}

func TestChatRecipients(t *testing.T) {
	tk := ticket(domain.StatusPending)
	assert.Equal(t, []string{"mep@example.com"}, ChatRecipients(tk, "req@example.com"))
	assert.Equal(t, []string{"req@example.com"}, ChatRecipients(tk, "mep@example.com"))
	assert.Equal(t, []string{"req@example.com", "mep@example.com"}, ChatRecipients(tk, "hod@example.com"))

	self := tk
	self.AssigneeEmail = self.RequesterEmail
	assert.Equal(t, []string{}, ChatRecipients(self, "req@example.com"))
}
