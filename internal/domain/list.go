package domain

// OrderTotalListResult captures paginated order total results.
type OrderTotalListResult struct {
	Items []OrderTotal
	Total int64
}
