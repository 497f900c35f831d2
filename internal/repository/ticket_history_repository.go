package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// TicketHistoryRepository stores audit entries. Entries are never updated or deleted.
type TicketHistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByTicket(ctx context.Context, ticketNumber string) ([]domain.HistoryEntry, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO history (ticket_number, actor_email, comment, action_type, before_state, after_state)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketNumber,
		entry.ActorEmail,
		entry.Comment,
		entry.Action,
		entry.BeforeState,
		entry.AfterState,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketNumber string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, ticket_number, actor_email, comment, action_type, before_state, after_state, created_at
        FROM history WHERE ticket_number=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.HistoryEntry{}
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketNumber,
			&entry.ActorEmail,
			&entry.Comment,
			&entry.Action,
			&entry.BeforeState,
			&entry.AfterState,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
