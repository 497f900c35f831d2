package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
	"github.com/aarnav1729/premier-support-hub/internal/numbering"
)

// MEPRepository encapsulates MEP ticket persistence.
type MEPRepository interface {
	// Create reserves a ticket number and inserts the ticket in one transaction.
	Create(ctx context.Context, ticket *domain.MEPTicket) error
	GetByNumber(ctx context.Context, number string) (*domain.MEPTicket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.MEPTicket, error)
	// UpdateStatus writes to only if the stored status is still from.
	UpdateStatus(ctx context.Context, number string, from, to domain.TicketStatus) (*domain.MEPTicket, error)
	UpdateFeedback(ctx context.Context, number, feedback string) (*domain.MEPTicket, error)
}

var mepColumns = []string{
	"ticket_number", "empid", "empemail", "dept", "subdept", "emplocation", "designation", "hod",
	"creation_datetime", "location", "category", "area_of_work", "attachments", "description",
	"status", "feedback", "assignee_email",
}

const mepReturning = `RETURNING ticket_number, empid, empemail, dept, subdept, emplocation, designation, hod,
            creation_datetime, location, category, area_of_work, attachments, description,
            status, feedback, assignee_email`

type mepRepository struct {
	pool    *pgxpool.Pool
	numbers numbering.Allocator
	now     func() time.Time
}

// NewMEPRepository instantiates repository.
func NewMEPRepository(pool *pgxpool.Pool, numbers numbering.Allocator) MEPRepository {
	return &mepRepository{pool: pool, numbers: numbers, now: time.Now}
}

func (r *mepRepository) Create(ctx context.Context, ticket *domain.MEPTicket) error {
	const query = `
        INSERT INTO mep (ticket_number, empid, empemail, dept, subdept, emplocation, designation, hod,
            creation_datetime, location, category, area_of_work, attachments, description, status, assignee_email)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		at := r.now()
		number, err := r.numbers.Next(ctx, tx, domain.KindMEP.Prefix(), at)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, query,
			number,
			ticket.EmpID,
			ticket.RequesterEmail,
			ticket.Dept,
			ticket.Subdept,
			ticket.EmpLocation,
			ticket.Designation,
			ticket.HOD,
			at,
			ticket.Location,
			ticket.Category,
			ticket.AreaOfWork,
			ticket.Attachments,
			ticket.Description,
			ticket.Status,
			ticket.AssigneeEmail,
		)
		if err != nil {
			return err
		}
		ticket.TicketNumber = number
		ticket.Kind = domain.KindMEP
		ticket.CreatedAt = at
		return nil
	})
}

func (r *mepRepository) GetByNumber(ctx context.Context, number string) (*domain.MEPTicket, error) {
	query, args, err := psql.Select(mepColumns...).From("mep").Where("ticket_number = ?", number).ToSql()
	if err != nil {
		return nil, err
	}
	return scanMEP(r.pool.QueryRow(ctx, query, args...))
}

func (r *mepRepository) List(ctx context.Context, filter TicketFilter) ([]domain.MEPTicket, error) {
	b := psql.Select(mepColumns...).From("mep").OrderBy("creation_datetime DESC", "ticket_number DESC")
	query, args, err := filter.apply(b, "empemail").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.MEPTicket{}
	for rows.Next() {
		t, err := scanMEP(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (r *mepRepository) UpdateStatus(ctx context.Context, number string, from, to domain.TicketStatus) (*domain.MEPTicket, error) {
	query := `UPDATE mep SET status=$1 WHERE ticket_number=$2 AND status=$3 ` + mepReturning
	t, err := scanMEP(r.pool.QueryRow(ctx, query, to, number, from))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missingOrStale(ctx, number)
	}
	return t, err
}

func (r *mepRepository) UpdateFeedback(ctx context.Context, number, feedback string) (*domain.MEPTicket, error) {
	query := `UPDATE mep SET feedback=$1 WHERE ticket_number=$2 ` + mepReturning
	return scanMEP(r.pool.QueryRow(ctx, query, feedback, number))
}

func (r *mepRepository) missingOrStale(ctx context.Context, number string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM mep WHERE ticket_number=$1)`, number).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrStaleStatus
}

func scanMEP(row pgx.Row) (*domain.MEPTicket, error) {
	var t domain.MEPTicket
	if err := row.Scan(
		&t.TicketNumber,
		&t.EmpID,
		&t.RequesterEmail,
		&t.Dept,
		&t.Subdept,
		&t.EmpLocation,
		&t.Designation,
		&t.HOD,
		&t.CreatedAt,
		&t.Location,
		&t.Category,
		&t.AreaOfWork,
		&t.Attachments,
		&t.Description,
		&t.Status,
		&t.Feedback,
		&t.AssigneeEmail,
	); err != nil {
		return nil, err
	}
	t.Kind = domain.KindMEP
	return &t, nil
}
