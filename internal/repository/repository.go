package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/tallyline/internal/domain"
	"github.com/vanshika/tallyline/internal/graph"
)

// ErrNotFound is returned when a requested result is not stored.
var ErrNotFound = errors.New("not found")

// ListOrderTotalsOptions defines filters and pagination for stored totals.
type ListOrderTotalsOptions struct {
	Offset     int
	Limit      int
	CustomerID string
}

// Repository persists computed results in the graph store.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// SaveOrderTotal stores the total of an order, linking it to its customer when known.
func (r *Repository) SaveOrderTotal(ctx context.Context, total domain.OrderTotal) error {
	if total.OrderID == "" {
		return errors.New("order id is required")
	}

	params := map[string]any{
		"orderId":    total.OrderID,
		"customerId": total.CustomerID,
		"props": map[string]any{
			"total":      total.Total.String(),
			"itemCount":  int64(total.ItemCount),
			"computedAt": formatTime(total.ComputedAt),
		},
	}

	if _, err := r.client.ExecuteWrite(ctx, saveOrderTotalCypher, params); err != nil {
		return fmt.Errorf("save order total %s: %w", total.OrderID, err)
	}
	return nil
}

// SaveUserView stores the projected name and email of a user.
func (r *Repository) SaveUserView(ctx context.Context, userID string, view domain.UserView) error {
	if userID == "" {
		return errors.New("user id is required")
	}

	params := map[string]any{
		"userId": userID,
		"name":   view.Name,
		"email":  view.Email,
	}

	if _, err := r.client.ExecuteWrite(ctx, saveUserViewCypher, params); err != nil {
		return fmt.Errorf("save user view %s: %w", userID, err)
	}
	return nil
}

// GetOrderTotal loads the stored total of an order.
func (r *Repository) GetOrderTotal(ctx context.Context, orderID string) (domain.OrderTotal, error) {
	res, err := r.client.ExecuteRead(ctx, getOrderTotalCypher, map[string]any{"orderId": orderID})
	if err != nil {
		return domain.OrderTotal{}, fmt.Errorf("get order total %s: %w", orderID, err)
	}

	record, ok := res.First()
	if !ok {
		return domain.OrderTotal{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return toOrderTotal(record)
}

// ListOrderTotals returns stored totals, most recent first.
func (r *Repository) ListOrderTotals(ctx context.Context, opts ListOrderTotalsOptions) (domain.OrderTotalListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	params := map[string]any{
		"customerId": strings.TrimSpace(opts.CustomerID),
		"skip":       offset,
		"limit":      limit,
	}

	res, err := r.client.ExecuteRead(ctx, listOrderTotalsCypher, params)
	if err != nil {
		return domain.OrderTotalListResult{}, fmt.Errorf("list order totals query: %w", err)
	}

	var items []domain.OrderTotal
	for _, record := range res.Records {
		item, err := toOrderTotal(record)
		if err != nil {
			return domain.OrderTotalListResult{}, err
		}
		items = append(items, item)
	}

	countRes, err := r.client.ExecuteRead(ctx, countOrderTotalsCypher, params)
	if err != nil {
		return domain.OrderTotalListResult{}, fmt.Errorf("count order totals query: %w", err)
	}

	var total int64
	if record, ok := countRes.First(); ok {
		total = toInt64(record["total"])
	}

	return domain.OrderTotalListResult{
		Items: items,
		Total: total,
	}, nil
}

func toOrderTotal(record graph.Record) (domain.OrderTotal, error) {
	orderID := toString(record["orderId"])
	amount, err := decimal.NewFromString(toString(record["total"]))
	if err != nil {
		return domain.OrderTotal{}, fmt.Errorf("order %s: decode total: %w", orderID, err)
	}

	item := domain.OrderTotal{
		OrderID:    orderID,
		CustomerID: toString(record["customerId"]),
		Total:      amount,
		ItemCount:  int(toInt64(record["itemCount"])),
	}
	if computed := toTimePtr(record["computedAt"]); computed != nil {
		item.ComputedAt = *computed
	}
	return item, nil
}

// storedTimeLayout is fixed width so that computedAt strings order the same
// way as the instants they encode.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeLayout)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
	}
	return nil
}

const saveOrderTotalCypher = `
MERGE (o:Order {orderId: $orderId})
SET o += $props
WITH o
FOREACH (_ IN CASE WHEN $customerId = "" THEN [] ELSE [1] END |
	MERGE (c:Customer {customerId: $customerId})
	MERGE (c)-[:PLACED]->(o)
)
RETURN o.orderId AS orderId
`

const saveUserViewCypher = `
MERGE (u:User {userId: $userId})
SET u.name = $name,
    u.email = $email
RETURN u.userId AS userId
`

const getOrderTotalCypher = `
MATCH (o:Order {orderId: $orderId})
OPTIONAL MATCH (c:Customer)-[:PLACED]->(o)
RETURN o.orderId AS orderId,
       c.customerId AS customerId,
       o.total AS total,
       o.itemCount AS itemCount,
       o.computedAt AS computedAt
`

const listOrderTotalsCypher = `
MATCH (o:Order)
OPTIONAL MATCH (c:Customer)-[:PLACED]->(o)
WITH o, c
WHERE $customerId = "" OR c.customerId = $customerId
RETURN o.orderId AS orderId,
       c.customerId AS customerId,
       o.total AS total,
       o.itemCount AS itemCount,
       o.computedAt AS computedAt
ORDER BY o.computedAt DESC, o.orderId
SKIP $skip
LIMIT $limit
`

const countOrderTotalsCypher = `
MATCH (o:Order)
OPTIONAL MATCH (c:Customer)-[:PLACED]->(o)
WITH o, c
WHERE $customerId = "" OR c.customerId = $customerId
RETURN count(o) AS total
`
