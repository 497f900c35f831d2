package repository

import (
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// ErrStaleStatus means a conditional status write lost a race with another writer.
var ErrStaleStatus = errors.New("ticket status changed concurrently")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// TicketFilter narrows ticket listings. A zero filter lists everything.
type TicketFilter struct {
	Scope  domain.TicketScope
	Email  string
	Status *domain.TicketStatus
}

// apply adds the filter's predicates; requesterCol differs between the mep and vr tables.
func (f TicketFilter) apply(b sq.SelectBuilder, requesterCol string) sq.SelectBuilder {
	switch f.Scope {
	case domain.ScopeMine:
		b = b.Where(sq.Eq{requesterCol: f.Email})
	case domain.ScopeAssigned:
		b = b.Where(sq.Eq{"assignee_email": f.Email})
	}
	if f.Status != nil {
		b = b.Where(sq.Eq{"status": string(*f.Status)})
	}
	return b
}
