package numbering

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAllocatorSequential(t *testing.T) {
	a := NewMemoryAllocator(time.UTC)
	ctx := context.Background()

	first, err := a.Next(ctx, nil, "SR", day)
	require.NoError(t, err)
	second, err := a.Next(ctx, nil, "SR", day)
	require.NoError(t, err)
	other, err := a.Next(ctx, nil, "VR", day)
	require.NoError(t, err)
	tomorrow, err := a.Next(ctx, nil, "SR", day.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "SR-20251117-001", first)
	assert.Equal(t, "SR-20251117-002", second)
	assert.Equal(t, "VR-20251117-001", other)
	assert.Equal(t, "SR-20251118-001", tomorrow)
}

func TestMemoryAllocatorConcurrent(t *testing.T) {
	a := NewMemoryAllocator(time.UTC)
	const callers = 200

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := a.Next(context.Background(), nil, "SR", day)
			assert.NoError(t, err)
			mu.Lock()
			seen[n] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, callers)
}

func TestMemoryAllocatorUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	a := NewMemoryAllocator(ist)

	// 20:00 UTC on the 17th is already the 18th in IST.
	n, err := a.Next(context.Background(), nil, "VR", time.Date(2025, 11, 17, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "VR-20251118-001", n)
}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

// counterDB mimics ticket_counters plus a MAX(ticket_number) scan.
type counterDB struct {
	mu        sync.Mutex
	counters  map[string]int
	maxByLike map[string]*string
	queries   []string
}

func newCounterDB() *counterDB {
	return &counterDB{counters: map[string]int{}, maxByLike: map[string]*string{}}
}

func (db *counterDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.queries = append(db.queries, sql)

	switch {
	case strings.HasPrefix(sql, "UPDATE ticket_counters"):
		key := args[0].(string) + args[1].(string)
		seq, ok := db.counters[key]
		if !ok {
			return fakeRow{scan: func(...any) error { return pgx.ErrNoRows }}
		}
		seq++
		db.counters[key] = seq
		return fakeRow{scan: func(dest ...any) error { *dest[0].(*int) = seq; return nil }}
	case strings.HasPrefix(sql, "INSERT INTO ticket_counters"):
		key := args[0].(string) + args[1].(string)
		seq, ok := db.counters[key]
		if ok {
			seq++
		} else {
			seq = args[2].(int)
		}
		db.counters[key] = seq
		return fakeRow{scan: func(dest ...any) error { *dest[0].(*int) = seq; return nil }}
	case strings.HasPrefix(sql, "SELECT MAX(ticket_number)"):
		found := db.maxByLike[args[0].(string)]
		return fakeRow{scan: func(dest ...any) error { *dest[0].(**string) = found; return nil }}
	}
	return fakeRow{scan: func(...any) error { return errors.New("unexpected query") }}
}

func TestCounterAllocatorStartsAtOne(t *testing.T) {
	db := newCounterDB()
	a := NewCounterAllocator(time.UTC, map[string]string{"SR": "mep"})

	n, err := a.Next(context.Background(), db, "SR", day)
	require.NoError(t, err)
	assert.Equal(t, "SR-20251117-001", n)

	n, err = a.Next(context.Background(), db, "SR", day)
	require.NoError(t, err)
	assert.Equal(t, "SR-20251117-002", n)
	assert.True(t, strings.HasPrefix(db.queries[len(db.queries)-1], "UPDATE ticket_counters"))
}

func TestCounterAllocatorSeedsFromExistingTickets(t *testing.T) {
	db := newCounterDB()
	existing := "SR-20251117-007"
	db.maxByLike["SR-20251117-%"] = &existing
	a := NewCounterAllocator(time.UTC, map[string]string{"SR": "mep"})

	n, err := a.Next(context.Background(), db, "SR", day)
	require.NoError(t, err)
	assert.Equal(t, "SR-20251117-008", n)
}

func TestCounterAllocatorRejectsCorruptSuffix(t *testing.T) {
	db := newCounterDB()
	corrupt := "SR-20251117-abc"
	db.maxByLike["SR-20251117-%"] = &corrupt
	a := NewCounterAllocator(time.UTC, map[string]string{"SR": "mep"})

	_, err := a.Next(context.Background(), db, "SR", day)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptSuffix))
	_, seeded := db.counters["SR20251117"]
	assert.False(t, seeded)
}

func TestCounterAllocatorExhaustion(t *testing.T) {
	db := newCounterDB()
	db.counters["VR20251117"] = MaxSequence
	a := NewCounterAllocator(time.UTC, map[string]string{"VR": "vr"})

	_, err := a.Next(context.Background(), db, "VR", day)
	assert.True(t, errors.Is(err, ErrSequenceExhausted))
}
