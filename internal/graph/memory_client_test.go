package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient_RecordsAndResponds(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryClient().WithResponder(func(query string, params map[string]any) (Result, error) {
		if query == "boom" {
			return Result{}, errors.New("boom")
		}
		return Result{Records: []Record{{"id": params["id"]}}}, nil
	})

	res, err := mem.ExecuteRead(ctx, "MATCH (n) RETURN n", map[string]any{"id": "ORD-1"})
	require.NoError(t, err)
	first, ok := res.First()
	require.True(t, ok)
	assert.Equal(t, "ORD-1", first["id"])

	_, err = mem.ExecuteWrite(ctx, "boom", nil)
	require.Error(t, err)

	assert.Len(t, mem.ReadCalls(), 1)
	assert.Len(t, mem.WriteCalls(), 1)
}

func TestNewNeo4jClient_RequiresURI(t *testing.T) {
	_, err := NewNeo4jClient(context.Background(), Options{})
	require.ErrorIs(t, err, ErrMissingURI)
}

func TestResult_FirstEmpty(t *testing.T) {
	_, ok := Result{}.First()
	assert.False(t, ok)
}
