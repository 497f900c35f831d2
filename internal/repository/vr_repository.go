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

// VRRepository encapsulates vehicle request persistence.
type VRRepository interface {
	// Create reserves a ticket number and inserts the request in one transaction.
	Create(ctx context.Context, ticket *domain.VRTicket) error
	GetByNumber(ctx context.Context, number string) (*domain.VRTicket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.VRTicket, error)
	// UpdateStatus writes to only if the stored status is still from. A non-empty
	// assignee replaces assignee_email in the same statement.
	UpdateStatus(ctx context.Context, number string, from, to domain.TicketStatus, assignee string) (*domain.VRTicket, error)
	UpdateFeedback(ctx context.Context, number, feedback string) (*domain.VRTicket, error)
	UpdateDriver(ctx context.Context, number, name, phone string) (*domain.VRTicket, error)
}

var vrColumns = []string{
	"ticket_number", "hod", "creation_datetime", "number_of_people", "employee_or_guest", "names",
	"pickup_datetime", "drop_datetime", "contact_number", "purpose_of_visit", "driver_name", "driver_number",
	"assignee_email", "feedback", "status", "description", "attachments", "user_email",
}

const vrReturning = `RETURNING ticket_number, hod, creation_datetime, number_of_people, employee_or_guest, names,
            pickup_datetime, drop_datetime, contact_number, purpose_of_visit, driver_name, driver_number,
            assignee_email, feedback, status, description, attachments, user_email`

type vrRepository struct {
	pool    *pgxpool.Pool
	numbers numbering.Allocator
	now     func() time.Time
}

// NewVRRepository instantiates repository.
func NewVRRepository(pool *pgxpool.Pool, numbers numbering.Allocator) VRRepository {
	return &vrRepository{pool: pool, numbers: numbers, now: time.Now}
}

func (r *vrRepository) Create(ctx context.Context, ticket *domain.VRTicket) error {
	const query = `
        INSERT INTO vr (ticket_number, hod, creation_datetime, number_of_people, employee_or_guest, names,
            pickup_datetime, drop_datetime, contact_number, purpose_of_visit, assignee_email, status,
            description, attachments, user_email)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		at := r.now()
		number, err := r.numbers.Next(ctx, tx, domain.KindVR.Prefix(), at)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, query,
			number,
			ticket.HOD,
			at,
			ticket.NumberOfPeople,
			ticket.EmployeeOrGuest,
			ticket.Names,
			ticket.PickupAt,
			ticket.DropAt,
			ticket.ContactNumber,
			ticket.PurposeOfVisit,
			ticket.AssigneeEmail,
			ticket.Status,
			ticket.Description,
			ticket.Attachments,
			ticket.RequesterEmail,
		)
		if err != nil {
			return err
		}
		ticket.TicketNumber = number
		ticket.Kind = domain.KindVR
		ticket.CreatedAt = at
		return nil
	})
}

func (r *vrRepository) GetByNumber(ctx context.Context, number string) (*domain.VRTicket, error) {
	query, args, err := psql.Select(vrColumns...).From("vr").Where("ticket_number = ?", number).ToSql()
	if err != nil {
		return nil, err
	}
	return scanVR(r.pool.QueryRow(ctx, query, args...))
}

func (r *vrRepository) List(ctx context.Context, filter TicketFilter) ([]domain.VRTicket, error) {
	b := psql.Select(vrColumns...).From("vr").OrderBy("creation_datetime DESC", "ticket_number DESC")
	query, args, err := filter.apply(b, "user_email").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.VRTicket{}
	for rows.Next() {
		t, err := scanVR(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (r *vrRepository) UpdateStatus(ctx context.Context, number string, from, to domain.TicketStatus, assignee string) (*domain.VRTicket, error) {
	query := `UPDATE vr SET status=$1, assignee_email=COALESCE(NULLIF($2, ''), assignee_email)
        WHERE ticket_number=$3 AND status=$4 ` + vrReturning
	t, err := scanVR(r.pool.QueryRow(ctx, query, to, assignee, number, from))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.missingOrStale(ctx, number)
	}
	return t, err
}

func (r *vrRepository) UpdateFeedback(ctx context.Context, number, feedback string) (*domain.VRTicket, error) {
	query := `UPDATE vr SET feedback=$1 WHERE ticket_number=$2 ` + vrReturning
	return scanVR(r.pool.QueryRow(ctx, query, feedback, number))
}

func (r *vrRepository) UpdateDriver(ctx context.Context, number, name, phone string) (*domain.VRTicket, error) {
	query := `UPDATE vr SET driver_name=$1, driver_number=$2 WHERE ticket_number=$3 ` + vrReturning
	return scanVR(r.pool.QueryRow(ctx, query, name, phone, number))
}

func (r *vrRepository) missingOrStale(ctx context.Context, number string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM vr WHERE ticket_number=$1)`, number).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return pgx.ErrNoRows
	}
	return ErrStaleStatus
}

func scanVR(row pgx.Row) (*domain.VRTicket, error) {
	var t domain.VRTicket
	if err := row.Scan(
		&t.TicketNumber,
		&t.HOD,
		&t.CreatedAt,
		&t.NumberOfPeople,
		&t.EmployeeOrGuest,
		&t.Names,
		&t.PickupAt,
		&t.DropAt,
		&t.ContactNumber,
		&t.PurposeOfVisit,
		&t.DriverName,
		&t.DriverNumber,
		&t.AssigneeEmail,
		&t.Feedback,
		&t.Status,
		&t.Description,
		&t.Attachments,
		&t.RequesterEmail,
	); err != nil {
		return nil, err
	}
	t.Kind = domain.KindVR
	return &t, nil
}
