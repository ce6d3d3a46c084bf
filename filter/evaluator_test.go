package filter

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/siftapi/sift"
)

func manySifts(n int) []sift.Sift {
	domains := []string{"flight", "hotel", "purchase", "shipment"}
	sifts := make([]sift.Sift, n)
	for i := range sifts {
		sifts[i] = sift.Sift{SiftID: int64(i), Domain: domains[i%len(domains)]}
	}
	return sifts
}

func TestEvaluatorKeepsOrder(t *testing.T) {
	f, err := NewExprCompiler().Compile(`Domain == "hotel"`)
	require.NoError(t, err)

	sifts := manySifts(1000)

	for _, workers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			e := NewEvaluator(WithWorkers(workers), WithBatchSize(50))

			matched, err := e.Evaluate(context.Background(), f, sifts)
			require.NoError(t, err)
			assert.Equal(t, Apply(f, sifts), matched)
			require.Len(t, matched, 250)
			for i := 1; i < len(matched); i++ {
				assert.Less(t, matched[i-1].SiftID, matched[i].SiftID)
			}
		})
	}
}

func TestEvaluatorSmallInput(t *testing.T) {
	f, err := NewExprCompiler().Compile(`SiftID == 2`)
	require.NoError(t, err)

	matched, err := NewEvaluator().Evaluate(context.Background(), f, testSifts())
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "hotel", matched[0].Domain)
}

func TestEvaluatorNilFilter(t *testing.T) {
	sifts := testSifts()
	matched, err := NewEvaluator().Evaluate(context.Background(), nil, sifts)
	require.NoError(t, err)
	assert.Equal(t, sifts, matched)
}

func TestEvaluatorCanceled(t *testing.T) {
	f, err := NewExprCompiler().Compile(`true`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewEvaluator(WithBatchSize(10)).Evaluate(ctx, f, manySifts(100))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateAll(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterFilters(map[string]string{
		"travel":   `isDomain("flight", "hotel")`,
		"shipping": `Domain == "shipment"`,
		"none":     `Domain == "rental"`,
	}))

	results, err := NewEvaluator(WithBatchSize(100)).EvaluateAll(context.Background(), m.Filters(), manySifts(400))
	require.NoError(t, err)

	assert.Len(t, results["travel"], 200)
	assert.Len(t, results["shipping"], 100)
	assert.Empty(t, results["none"])
	assert.Len(t, results, 3)
}

func TestEvaluateAllEmpty(t *testing.T) {
	results, err := NewEvaluator().EvaluateAll(context.Background(), nil, manySifts(10))
	require.NoError(t, err)
	assert.Empty(t, results)
}
