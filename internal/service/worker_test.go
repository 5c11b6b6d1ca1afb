package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/tallyline/internal/billing"
	"github.com/vanshika/tallyline/internal/domain"
)

func TestBatchEvaluator_EvaluateOrders(t *testing.T) {
	store := &stubStore{}
	evaluator := NewBatchEvaluator(newService(store, Options{}), 3)

	orders := make([]OrderInput, 20)
	for i := range orders {
		orders[i] = OrderInput{
			ID:    fmt.Sprintf("ORD-%02d", i),
			Items: []LineItemInput{{Price: ptr(float64(i)), Quantity: ptr(2.0)}},
		}
	}

	results, err := evaluator.EvaluateOrders(context.Background(), orders)
	require.NoError(t, err)
	require.Len(t, results, len(orders))
	for i, res := range results {
		assert.Equal(t, orders[i].ID, res.OrderID)
		assert.Equal(t, float64(2*i), res.Total.InexactFloat64())
	}
	assert.Len(t, store.totals, len(orders))
}

func TestBatchEvaluator_CollectsItemErrors(t *testing.T) {
	evaluator := NewBatchEvaluator(newService(nil, Options{}), 2)

	orders := []OrderInput{
		{ID: "ORD-OK", Items: []LineItemInput{{Price: ptr(10.0), Quantity: ptr(2.0)}}},
		{ID: "ORD-BAD", Items: []LineItemInput{{Price: ptr(10.0)}}},
		{ID: "ORD-OK2", Items: nil},
	}

	results, err := evaluator.EvaluateOrders(context.Background(), orders)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrInvalidElement)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	require.Len(t, taskErr.Errors, 1)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)
	assert.Equal(t, "ORD-BAD", itemErr.ID)

	assert.Equal(t, "ORD-OK", results[0].OrderID)
	assert.Empty(t, results[1].OrderID)
	assert.True(t, results[2].Total.IsZero())
}

func TestBatchEvaluator_EvaluateUsers(t *testing.T) {
	evaluator := NewBatchEvaluator(newService(nil, Options{RequireEmail: true}), 0)

	users := []UserInput{
		{ID: "USR-1", Name: "Ann", Email: ptr("ann@x.com")},
		{ID: "USR-2", Name: "Bob"},
	}

	views, err := evaluator.EvaluateUsers(context.Background(), users)
	require.ErrorIs(t, err, billing.ErrMissingEmail)
	assert.Equal(t, domain.UserView{Name: "Ann", Email: "ann@x.com"}, views[0])
	assert.Equal(t, domain.UserView{}, views[1])
}

func TestBatchEvaluator_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	evaluator := NewBatchEvaluator(newService(nil, Options{}), 2)
	_, err := evaluator.EvaluateUsers(ctx, []UserInput{{Name: "Ann"}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBatchEvaluator_Empty(t *testing.T) {
	evaluator := NewBatchEvaluator(newService(nil, Options{}), 2)
	results, err := evaluator.EvaluateOrders(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestTaskError_Message(t *testing.T) {
	var te TaskError
	assert.Equal(t, "no errors", te.Error())
	te.append(errors.New("a"))
	te.append(nil)
	te.append(errors.New("b"))
	assert.Equal(t, "multiple errors: a; b;", te.Error())
}

func TestBatchEvaluator_ErrorsOrderedByIndex(t *testing.T) {
	evaluator := NewBatchEvaluator(newService(nil, Options{}), 8)

	orders := make([]OrderInput, 40)
	for i := range orders {
		orders[i] = OrderInput{ID: fmt.Sprintf("ORD-%02d", i), Items: []LineItemInput{{Price: ptr(1.0)}}}
	}

	for run := 0; run < 5; run++ {
		_, err := evaluator.EvaluateOrders(context.Background(), orders)
		var taskErr *TaskError
		require.ErrorAs(t, err, &taskErr)
		require.Len(t, taskErr.Errors, len(orders))

		for i, e := range taskErr.Errors {
			var itemErr *ItemError
			require.ErrorAs(t, e, &itemErr)
			assert.Equal(t, i, itemErr.Index, "run %d", run)
		}
	}
}
