package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// ChatMessageRepository persists ticket conversations.
type ChatMessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	// ListByTicket returns the oldest limit messages, oldest first.
	ListByTicket(ctx context.Context, ticketNumber string, limit int) ([]domain.ChatMessage, error)
}

type chatMessageRepository struct {
	pool *pgxpool.Pool
}

// NewChatMessageRepository returns repository.
func NewChatMessageRepository(pool *pgxpool.Pool) ChatMessageRepository {
	return &chatMessageRepository{pool: pool}
}

func (r *chatMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	const query = `
        INSERT INTO chat_messages (ticket_number, sender_email, message, attachments)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, msg.TicketNumber, msg.SenderEmail, msg.Message, msg.Attachments).
		Scan(&msg.ID, &msg.CreatedAt)
}

func (r *chatMessageRepository) ListByTicket(ctx context.Context, ticketNumber string, limit int) ([]domain.ChatMessage, error) {
	const query = `
        SELECT id, ticket_number, sender_email, message, attachments, created_at
        FROM chat_messages WHERE ticket_number=$1
        ORDER BY created_at ASC, id ASC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, ticketNumber, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []domain.ChatMessage{}
	for rows.Next() {
		var msg domain.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.TicketNumber, &msg.SenderEmail, &msg.Message, &msg.Attachments, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}
