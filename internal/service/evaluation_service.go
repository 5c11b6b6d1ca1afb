package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vanshika/tallyline/internal/billing"
	"github.com/vanshika/tallyline/internal/domain"
	"github.com/vanshika/tallyline/internal/repository"
)

// ErrStoreUnavailable is returned by read operations when no results store is configured.
var ErrStoreUnavailable = errors.New("results store is not configured")

// ResultStore is the persistence contract required by the evaluation service.
type ResultStore interface {
	SaveOrderTotal(ctx context.Context, total domain.OrderTotal) error
	SaveUserView(ctx context.Context, userID string, view domain.UserView) error
	GetOrderTotal(ctx context.Context, orderID string) (domain.OrderTotal, error)
	ListOrderTotals(ctx context.Context, opts repository.ListOrderTotalsOptions) (domain.OrderTotalListResult, error)
}

// Options tunes the evaluation service.
type Options struct {
	// RequireEmail rejects users without an email instead of projecting an empty one.
	RequireEmail bool
	Logger       *slog.Logger
}

// EvaluationService computes order totals and user views, persisting them
// when a store is configured.
type EvaluationService struct {
	store        ResultStore
	requireEmail bool
	logger       *slog.Logger
	nowFn        func() time.Time
}

// PaginationMeta captures pagination metadata returned to API clients.
type PaginationMeta struct {
	Page       int
	PageSize   int
	TotalItems int64
	TotalPages int
}

// OrderTotalsPage represents paginated stored totals with metadata.
type OrderTotalsPage struct {
	Items      []domain.OrderTotal
	Pagination PaginationMeta
}

// ListOrderTotalsParams defines filters for listing stored totals.
type ListOrderTotalsParams struct {
	Page       int
	PageSize   int
	CustomerID string
}

// NewEvaluationService constructs an EvaluationService. store may be nil, in
// which case nothing is persisted.
func NewEvaluationService(store ResultStore, opts Options) *EvaluationService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EvaluationService{
		store:        store,
		requireEmail: opts.RequireEmail,
		logger:       logger,
		nowFn:        time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *EvaluationService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// HasStore reports whether results are persisted.
func (s *EvaluationService) HasStore() bool {
	return s.store != nil
}

// TotalOrder computes the exact total of an order and stores it.
func (s *EvaluationService) TotalOrder(ctx context.Context, order domain.Order) (domain.OrderTotal, error) {
	amount, err := billing.Total(order.Items)
	if err != nil {
		return domain.OrderTotal{}, fmt.Errorf("order %s: %w", order.ID, err)
	}

	result := domain.OrderTotal{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Total:      amount,
		ItemCount:  len(order.Items),
		ComputedAt: s.nowFn().UTC(),
	}

	if s.store != nil && order.ID != "" {
		if err := s.store.SaveOrderTotal(ctx, result); err != nil {
			return domain.OrderTotal{}, err
		}
	}
	return result, nil
}

// ProjectUser extracts the name and email of a user and stores the view.
func (s *EvaluationService) ProjectUser(ctx context.Context, user domain.UserRecord) (domain.UserView, error) {
	var view domain.UserView
	if s.requireEmail {
		v, err := billing.RequireEmail(user)
		if err != nil {
			return domain.UserView{}, fmt.Errorf("user %s: %w", user.ID, err)
		}
		view = v
	} else {
		view = billing.ProcessUser(user)
		if view.Email == "" {
			s.logger.Debug("user has no email", "userId", user.ID)
		}
	}

	if s.store != nil && user.ID != "" {
		if err := s.store.SaveUserView(ctx, user.ID, view); err != nil {
			return domain.UserView{}, err
		}
	}
	return view, nil
}

// GetOrderTotal returns a previously stored order total.
func (s *EvaluationService) GetOrderTotal(ctx context.Context, orderID string) (domain.OrderTotal, error) {
	if s.store == nil {
		return domain.OrderTotal{}, ErrStoreUnavailable
	}
	return s.store.GetOrderTotal(ctx, orderID)
}

// ListOrderTotals retrieves paginated stored totals.
func (s *EvaluationService) ListOrderTotals(ctx context.Context, params ListOrderTotalsParams) (OrderTotalsPage, error) {
	if s.store == nil {
		return OrderTotalsPage{}, ErrStoreUnavailable
	}
	page, pageSize := normalizePagination(params.Page, params.PageSize)
	offset := (page - 1) * pageSize

	result, err := s.store.ListOrderTotals(ctx, repository.ListOrderTotalsOptions{
		Offset:     offset,
		Limit:      pageSize,
		CustomerID: params.CustomerID,
	})
	if err != nil {
		return OrderTotalsPage{}, err
	}

	return OrderTotalsPage{
		Items:      result.Items,
		Pagination: buildPaginationMeta(page, pageSize, result.Total),
	}, nil
}

func normalizePagination(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}
	return page, pageSize
}

func buildPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
