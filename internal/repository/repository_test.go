package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/tallyline/internal/domain"
	"github.com/vanshika/tallyline/internal/graph"
)

func TestRepository_SaveOrderTotal(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	total := domain.OrderTotal{
		OrderID:    "ORD-001",
		CustomerID: "CUS-001",
		Total:      decimal.RequireFromString("35.00"),
		ItemCount:  2,
		ComputedAt: now,
	}

	if err := repo.SaveOrderTotal(context.Background(), total); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}

	call := calls[0]
	if call.Query != saveOrderTotalCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", saveOrderTotalCypher, call.Query)
	}
	if call.Params["orderId"] != "ORD-001" || call.Params["customerId"] != "CUS-001" {
		t.Errorf("unexpected ids: %v", call.Params)
	}

	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["total"] != "35" {
		t.Errorf("total mismatch: want 35 got %v", props["total"])
	}
	if props["itemCount"] != int64(2) {
		t.Errorf("itemCount mismatch: want 2 got %v", props["itemCount"])
	}
	if props["computedAt"] != "2026-03-01T12:00:00.000000000Z" {
		t.Errorf("computedAt mismatch: got %v", props["computedAt"])
	}
}

func TestFormatTime_SortsChronologically(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := formatTime(base)
	later := formatTime(base.Add(500 * time.Millisecond))

	if !(earlier < later) {
		t.Fatalf("expected %q to sort before %q", earlier, later)
	}
	if len(earlier) != len(later) {
		t.Fatalf("expected fixed width, got %q and %q", earlier, later)
	}

	parsed := toTimePtr(later)
	if parsed == nil || !parsed.Equal(base.Add(500*time.Millisecond)) {
		t.Fatalf("expected round trip, got %v", parsed)
	}
}

func TestRepository_SaveOrderTotalRequiresID(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.SaveOrderTotal(context.Background(), domain.OrderTotal{}); err == nil {
		t.Fatal("expected error for missing order id")
	}
}

func TestRepository_SaveUserView(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	view := domain.UserView{Name: "Ann", Email: "ann@x.com"}
	if err := repo.SaveUserView(context.Background(), "USR-1", view); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	if calls[0].Params["email"] != "ann@x.com" || calls[0].Params["name"] != "Ann" {
		t.Errorf("unexpected params: %v", calls[0].Params)
	}

	if err := repo.SaveUserView(context.Background(), "", view); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestRepository_GetOrderTotal(t *testing.T) {
	mem := graph.NewMemoryClient().WithResponder(func(query string, params map[string]any) (graph.Result, error) {
		if params["orderId"] != "ORD-7" {
			return graph.Result{}, nil
		}
		return graph.Result{Records: []graph.Record{{
			"orderId":    "ORD-7",
			"customerId": "CUS-3",
			"total":      "12.5",
			"itemCount":  int64(3),
			"computedAt": "2026-03-01T12:00:00Z",
		}}}, nil
	})
	repo := New(mem)

	got, err := repo.GetOrderTotal(context.Background(), "ORD-7")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.Total.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("total mismatch: got %s", got.Total)
	}
	if got.ItemCount != 3 || got.CustomerID != "CUS-3" {
		t.Errorf("unexpected order total: %+v", got)
	}
	if got.ComputedAt.IsZero() {
		t.Error("expected computedAt to be parsed")
	}

	_, err = repo.GetOrderTotal(context.Background(), "ORD-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ListOrderTotals(t *testing.T) {
	mem := graph.NewMemoryClient().WithResponder(func(query string, params map[string]any) (graph.Result, error) {
		if query == countOrderTotalsCypher {
			return graph.Result{Records: []graph.Record{{"total": int64(41)}}}, nil
		}
		return graph.Result{Records: []graph.Record{
			{"orderId": "ORD-1", "total": "20", "itemCount": int64(1)},
			{"orderId": "ORD-2", "total": "35", "itemCount": int64(2)},
		}}, nil
	})
	repo := New(mem)

	res, err := repo.ListOrderTotals(context.Background(), ListOrderTotalsOptions{Limit: 500, Offset: -3, CustomerID: " CUS-1 "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(res.Items) != 2 || res.Total != 41 {
		t.Fatalf("unexpected result: %+v", res)
	}

	reads := mem.ReadCalls()
	if len(reads) != 2 {
		t.Fatalf("expected 2 read queries, got %d", len(reads))
	}
	if reads[0].Params["limit"] != 200 || reads[0].Params["skip"] != 0 {
		t.Errorf("expected clamped pagination, got %v", reads[0].Params)
	}
	if reads[0].Params["customerId"] != "CUS-1" {
		t.Errorf("expected trimmed customer id, got %v", reads[0].Params["customerId"])
	}
}

func TestRepository_ListOrderTotalsPropagatesErrors(t *testing.T) {
	boom := errors.New("bolt unavailable")
	mem := graph.NewMemoryClient().WithResponder(func(string, map[string]any) (graph.Result, error) {
		return graph.Result{}, boom
	})

	_, err := New(mem).ListOrderTotals(context.Background(), ListOrderTotalsOptions{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
