package domain

import "time"

// ChatMessage is one message in a ticket conversation.
type ChatMessage struct {
	ID           int64
	TicketNumber string
	SenderEmail  string
	Message      string
	Attachments  []Attachment
	CreatedAt    time.Time
}
