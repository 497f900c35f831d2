package numbering

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Querier is the part of pgx shared by pools and transactions.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Allocator reserves the next ticket number for a prefix on the day of at.
// Implementations must never hand the same number to two callers.
type Allocator interface {
	Next(ctx context.Context, q Querier, prefix string, at time.Time) (string, error)
}

const (
	bumpCounterSQL = `UPDATE ticket_counters SET last_seq = last_seq + 1
WHERE prefix = $1 AND day = $2
RETURNING last_seq`

	seedCounterSQL = `INSERT INTO ticket_counters (prefix, day, last_seq)
VALUES ($1, $2, $3)
ON CONFLICT (prefix, day) DO UPDATE SET last_seq = ticket_counters.last_seq + 1
RETURNING last_seq`
)

// CounterAllocator keeps one row per (prefix, day) in ticket_counters and bumps it
// under the row lock, so concurrent reservations serialize in the database.
// The first reservation of a day seeds the counter from the largest ticket number
// already stored, which keeps numbering continuous over pre-existing data.
type CounterAllocator struct {
	loc    *time.Location
	tables map[string]string
}

// NewCounterAllocator builds the allocator. tables maps a prefix to the table that stores its tickets.
func NewCounterAllocator(loc *time.Location, tables map[string]string) *CounterAllocator {
	if loc == nil {
		loc = time.Local
	}
	return &CounterAllocator{loc: loc, tables: tables}
}

// Next reserves a number. Call it inside the transaction that inserts the ticket.
func (a *CounterAllocator) Next(ctx context.Context, q Querier, prefix string, at time.Time) (string, error) {
	day := at.In(a.loc)
	dayKey := day.Format(dateLayout)

	var seq int
	err := q.QueryRow(ctx, bumpCounterSQL, prefix, dayKey).Scan(&seq)
	if errors.Is(err, pgx.ErrNoRows) {
		seed, serr := a.seed(ctx, q, prefix, day)
		if serr != nil {
			return "", serr
		}
		err = q.QueryRow(ctx, seedCounterSQL, prefix, dayKey, seed).Scan(&seq)
	}
	if err != nil {
		return "", fmt.Errorf("reserve %s sequence: %w", prefix, err)
	}
	return Format(prefix, day, seq)
}

func (a *CounterAllocator) seed(ctx context.Context, q Querier, prefix string, day time.Time) (int, error) {
	table, ok := a.tables[prefix]
	if !ok {
		return 1, nil
	}
	base := Base(prefix, day)
	var maxNumber *string
	query := fmt.Sprintf("SELECT MAX(ticket_number) FROM %s WHERE ticket_number LIKE $1", table)
	if err := q.QueryRow(ctx, query, base+"%").Scan(&maxNumber); err != nil {
		return 0, fmt.Errorf("scan %s for %s: %w", table, base, err)
	}
	if maxNumber == nil {
		return 1, nil
	}
	return NextAfter(base, *maxNumber)
}

// MemoryAllocator is a process-local Allocator for tests and single-node tooling.
type MemoryAllocator struct {
	mu   sync.Mutex
	loc  *time.Location
	seqs map[string]int
}

// NewMemoryAllocator creates an empty MemoryAllocator.
func NewMemoryAllocator(loc *time.Location) *MemoryAllocator {
	if loc == nil {
		loc = time.Local
	}
	return &MemoryAllocator{loc: loc, seqs: make(map[string]int)}
}

// Next ignores q; the counter lives in memory.
func (a *MemoryAllocator) Next(_ context.Context, _ Querier, prefix string, at time.Time) (string, error) {
	day := at.In(a.loc)
	key := Base(prefix, day)

	a.mu.Lock()
	defer a.mu.Unlock()
	seq := a.seqs[key] + 1
	number, err := Format(prefix, day, seq)
	if err != nil {
		return "", err
	}
	a.seqs[key] = seq
	return number, nil
}
