package domain

// CountRow is one bucket of a grouped count.
type CountRow struct {
	Key   string
	Count int64
}

// AnalyticsSummary aggregates ticket counts across both kinds.
type AnalyticsSummary struct {
	TypeCounts    []CountRow
	StatusCounts  []CountRow
	MEPByLocation []CountRow
	MEPByCategory []CountRow
}
