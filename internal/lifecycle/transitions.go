// Package lifecycle holds the ticket state machines. Transition legality and the
// side effects of each transition live in declarative tables; nothing here
// performs I/O.
package lifecycle

import (
	"fmt"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	apperrors "github.com/aarnav1729/premier-support-hub/pkg/util"
)

// AssigneeEffect says what happens to the assignee when a rule fires.
type AssigneeEffect int

const (
	AssigneeUnchanged AssigneeEffect = iota
	AssigneeToTransport
)

// Rule is one row of a transition table.
type Rule struct {
	From     domain.TicketStatus
	To       domain.TicketStatus
	Assignee AssigneeEffect
	// Approval marks the manager sign-off step of a vehicle request.
	Approval bool
}

// Table is the transition table of one ticket kind.
type Table struct {
	statuses []domain.TicketStatus
	rules    []Rule
}

var mepTable = Table{
	statuses: []domain.TicketStatus{
		domain.StatusPending,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusRejected,
	},
	rules: []Rule{
		{From: domain.StatusPending, To: domain.StatusInProgress},
		{From: domain.StatusPending, To: domain.StatusRejected},
		{From: domain.StatusInProgress, To: domain.StatusCompleted},
		{From: domain.StatusInProgress, To: domain.StatusRejected},
	},
}

var vrTable = Table{
	statuses: []domain.TicketStatus{
		domain.StatusPendingManager,
		domain.StatusPending,
		domain.StatusInProgress,
		domain.StatusCompleted,
		domain.StatusRejected,
	},
	rules: []Rule{
		{From: domain.StatusPendingManager, To: domain.StatusPending, Assignee: AssigneeToTransport, Approval: true},
		{From: domain.StatusPendingManager, To: domain.StatusRejected},
		{From: domain.StatusPending, To: domain.StatusInProgress},
		{From: domain.StatusPending, To: domain.StatusRejected},
		{From: domain.StatusInProgress, To: domain.StatusCompleted},
		{From: domain.StatusInProgress, To: domain.StatusRejected},
	},
}

// TableFor returns the transition table for a kind.
func TableFor(kind domain.Kind) (*Table, error) {
	switch kind {
	case domain.KindMEP:
		return &mepTable, nil
	case domain.KindVR:
		return &vrTable, nil
	default:
		return nil, fmt.Errorf("unknown ticket kind %q", kind)
	}
}

// Statuses lists every status of the kind in lifecycle order.
func (t *Table) Statuses() []domain.TicketStatus {
	return append([]domain.TicketStatus(nil), t.statuses...)
}

// Knows reports whether status belongs to the kind.
func (t *Table) Knows(status domain.TicketStatus) bool {
	for _, s := range t.statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Allowed returns the statuses reachable from status in one step.
func (t *Table) Allowed(from domain.TicketStatus) []domain.TicketStatus {
	out := []domain.TicketStatus{}
	for _, r := range t.rules {
		if r.From == from {
			out = append(out, r.To)
		}
	}
	return out
}

// IsTerminal reports whether no transition leaves status.
func (t *Table) IsTerminal(status domain.TicketStatus) bool {
	return t.Knows(status) && len(t.Allowed(status)) == 0
}

func (t *Table) rule(from, to domain.TicketStatus) (Rule, bool) {
	for _, r := range t.rules {
		if r.From == from && r.To == to {
			return r, true
		}
	}
	return Rule{}, false
}

// Transition is an evaluated, legal status change ready to be persisted.
type Transition struct {
	Kind   domain.Kind
	From   domain.TicketStatus
	To     domain.TicketStatus
	Action domain.HistoryAction
	// NewAssignee is set only when the rule moves the ticket to another mailbox.
	NewAssignee string
	Approval    bool
}

// ChangesAssignee reports whether the transition writes assignee_email.
func (tr Transition) ChangesAssignee() bool {
	return tr.NewAssignee != ""
}

// Machine evaluates transitions with organization routing supplied at construction.
type Machine struct {
	transportMailbox string
}

// NewMachine builds a Machine. transportMailbox receives vehicle requests after manager approval.
func NewMachine(transportMailbox string) *Machine {
	return &Machine{transportMailbox: transportMailbox}
}

// Plan validates from→to for kind and resolves the rule's side effects.
func (m *Machine) Plan(kind domain.Kind, from, to domain.TicketStatus) (Transition, error) {
	table, err := TableFor(kind)
	if err != nil {
		return Transition{}, apperrors.NewValidationError(err.Error(), nil)
	}
	if !table.Knows(to) {
		return Transition{}, apperrors.NewValidationError("unknown status for ticket kind", map[string]any{
			"kind":   kind,
			"status": to,
		})
	}
	r, ok := table.rule(from, to)
	if !ok {
		return Transition{}, apperrors.NewInvalidTransition(string(from), string(to), statusStrings(table.Allowed(from)))
	}
	tr := Transition{
		Kind:     kind,
		From:     from,
		To:       to,
		Action:   statusAction(kind),
		Approval: r.Approval,
	}
	if r.Assignee == AssigneeToTransport {
		tr.NewAssignee = m.transportMailbox
	}
	return tr, nil
}

// InitialMEP is the status of a freshly created MEP ticket.
func InitialMEP() domain.TicketStatus {
	return domain.StatusPending
}

// InitialVR picks the first status and assignee of a vehicle request.
// With a resolved manager the request waits for sign-off; otherwise it goes straight to transport.
func (m *Machine) InitialVR(managerEmail string) (domain.TicketStatus, string) {
	if managerEmail != "" {
		return domain.StatusPendingManager, managerEmail
	}
	return domain.StatusPending, m.transportMailbox
}

func statusAction(kind domain.Kind) domain.HistoryAction {
	if kind == domain.KindVR {
		return domain.ActionUpdateVRStatus
	}
	return domain.ActionUpdateMEPStatus
}

func statusStrings(in []domain.TicketStatus) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}
