package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aarnav1729/premier-support-hub/internal/domain"
)

// AnalyticsRepository computes grouped ticket counts.
type AnalyticsRepository interface {
	CountByTable(ctx context.Context) ([]domain.CountRow, error)
	CountByStatus(ctx context.Context) ([]domain.CountRow, error)
	CountMEPBy(ctx context.Context, column string) ([]domain.CountRow, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository returns repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) CountByTable(ctx context.Context) ([]domain.CountRow, error) {
	mep := psql.Select("'MEP' AS key", "COUNT(*) AS count").From("mep")
	vr := psql.Select("'VR' AS key", "COUNT(*) AS count").From("vr")
	return r.union(ctx, mep, vr)
}

func (r *analyticsRepository) CountByStatus(ctx context.Context) ([]domain.CountRow, error) {
	mep := psql.Select("status AS key", "COUNT(*) AS count").From("mep").GroupBy("status")
	vr := psql.Select("status AS key", "COUNT(*) AS count").From("vr").GroupBy("status")
	rows, err := r.union(ctx, mep, vr)
	if err != nil {
		return nil, err
	}
	return mergeCounts(rows), nil
}

// CountMEPBy groups MEP tickets by location or category. Other columns are rejected.
func (r *analyticsRepository) CountMEPBy(ctx context.Context, column string) ([]domain.CountRow, error) {
	switch column {
	case "location", "category":
	default:
		return nil, fmt.Errorf("analytics: unsupported mep column %q", column)
	}
	query, args, err := psql.Select(column+" AS key", "COUNT(*) AS count").
		From("mep").
		GroupBy(column).
		OrderBy("count DESC", column).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, query, args)
}

func (r *analyticsRepository) union(ctx context.Context, a, b sq.SelectBuilder) ([]domain.CountRow, error) {
	aSQL, aArgs, err := a.ToSql()
	if err != nil {
		return nil, err
	}
	bSQL, bArgs, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, aSQL+" UNION ALL "+bSQL, append(aArgs, bArgs...))
}

func (r *analyticsRepository) collect(ctx context.Context, query string, args []any) ([]domain.CountRow, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.CountRow{}
	for rows.Next() {
		var row domain.CountRow
		if err := rows.Scan(&row.Key, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// mergeCounts folds rows sharing a key, keeping first-seen order.
func mergeCounts(rows []domain.CountRow) []domain.CountRow {
	index := map[string]int{}
	out := []domain.CountRow{}
	for _, row := range rows {
		if i, ok := index[row.Key]; ok {
			out[i].Count += row.Count
			continue
		}
		index[row.Key] = len(out)
		out = append(out, row)
	}
	return out
}
