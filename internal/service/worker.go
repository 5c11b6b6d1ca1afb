package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/vanshika/tallyline/internal/domain"
)

// ItemError ties a failure to the dataset entry that caused it.
type ItemError struct {
	Index int
	ID    string
	Err   error
}

func (e *ItemError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("entry %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// TaskError accumulates multiple errors produced during a batch run.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	b.WriteString("multiple errors:")
	for _, err := range e.Errors {
		b.WriteString(" " + err.Error() + ";")
	}
	return b.String()
}

func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

// asError orders failures by entry index so the message is stable across runs.
func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	slices.SortStableFunc(e.Errors, func(a, b error) int {
		return entryIndex(a) - entryIndex(b)
	})
	return e
}

func entryIndex(err error) int {
	var itemErr *ItemError
	if errors.As(err, &itemErr) {
		return itemErr.Index
	}
	return math.MaxInt32
}

// BatchEvaluator runs the evaluation service over whole datasets using a worker pool.
type BatchEvaluator struct {
	service *EvaluationService
	workers int
}

// NewBatchEvaluator creates a BatchEvaluator with the provided concurrency.
func NewBatchEvaluator(service *EvaluationService, workers int) *BatchEvaluator {
	if workers <= 0 {
		workers = 4
	}
	return &BatchEvaluator{
		service: service,
		workers: workers,
	}
}

// EvaluateOrders totals every order. Results keep the input order; entries
// that failed are left zero and reported through a *TaskError.
func (be *BatchEvaluator) EvaluateOrders(ctx context.Context, orders []OrderInput) ([]domain.OrderTotal, error) {
	results := make([]domain.OrderTotal, len(orders))
	err := be.run(ctx, len(orders), func(idx int) error {
		in := orders[idx]
		order, err := in.ToDomain()
		if err != nil {
			return &ItemError{Index: idx, ID: in.ID, Err: err}
		}
		total, err := be.service.TotalOrder(ctx, order)
		if err != nil {
			return &ItemError{Index: idx, ID: in.ID, Err: err}
		}
		results[idx] = total
		return nil
	})
	return results, err
}

// EvaluateUsers projects every user, in input order.
func (be *BatchEvaluator) EvaluateUsers(ctx context.Context, users []UserInput) ([]domain.UserView, error) {
	results := make([]domain.UserView, len(users))
	err := be.run(ctx, len(users), func(idx int) error {
		in := users[idx]
		view, err := be.service.ProjectUser(ctx, in.ToDomain())
		if err != nil {
			return &ItemError{Index: idx, ID: in.ID, Err: err}
		}
		results[idx] = view
		return nil
	})
	return results, err
}

func (be *BatchEvaluator) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < be.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
