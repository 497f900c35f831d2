package lifecycle

import (
	"strings"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

func sameEmail(a, b string) bool {
	return a != "" && strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CanView reports whether p may read the ticket, its history and its chat.
func CanView(t domain.Ticket, p domain.Principal) bool {
	return p.IsHOD || sameEmail(t.RequesterEmail, p.Email) || sameEmail(t.AssigneeEmail, p.Email)
}

// CanChangeStatus allows only the current assignee to move a ticket.
func CanChangeStatus(t domain.Ticket, actor string) error {
	if !sameEmail(t.AssigneeEmail, actor) {
		return apperrors.NewForbidden("only the current assignee can change the status")
	}
	return nil
}

// CanSubmitFeedback allows the requester to rate a completed ticket.
func CanSubmitFeedback(t domain.Ticket, actor string) error {
	if !sameEmail(t.RequesterEmail, actor) {
		return apperrors.NewForbidden("only the requester can leave feedback")
	}
	if t.Status != domain.StatusCompleted {
		return apperrors.NewConflict("feedback is accepted only on completed tickets", map[string]any{
			"status": t.Status,
		})
	}
	return nil
}

// CanAssignDriver allows transport to set driver details while the request is open
// and past manager review.
func (m *Machine) CanAssignDriver(t domain.VRTicket, actor string) error {
	if t.Status == domain.StatusPendingManager {
		return apperrors.NewConflict("vehicle request is awaiting manager approval", map[string]any{
			"status": t.Status,
		})
	}
	if vrTable.IsTerminal(t.Status) {
		return apperrors.NewConflict("vehicle request is closed", map[string]any{
			"status": t.Status,
		})
	}
	if !sameEmail(t.AssigneeEmail, m.transportMailbox) {
		return apperrors.NewConflict("vehicle request is not held by transport", map[string]any{
			"assignee_email": t.AssigneeEmail,
		})
	}
	if !sameEmail(actor, m.transportMailbox) {
		return apperrors.NewForbidden("only transport can assign a driver")
	}
	return nil
}

// ChatRecipients returns every participant except the sender.
func ChatRecipients(t domain.Ticket, sender string) []string {
	out := []string{}
	for _, p := range t.Participants() {
		if !sameEmail(p, sender) {
			out = append(out, p)
		}
	}
	return out
}
