package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/siftapi/sift"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*Evaluator)

// WithWorkers sets the maximum number of concurrent chunks
func WithWorkers(workers int) EvaluatorOption {
	return func(e *Evaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the minimum chunk size; smaller inputs are evaluated
// sequentially
func WithBatchSize(size int) EvaluatorOption {
	return func(e *Evaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// Evaluator runs filters over sift lists, splitting large lists into chunks
// evaluated in parallel. Result order always matches input order.
type Evaluator struct {
	workers   int
	batchSize int
}

// NewEvaluator creates a new evaluator
func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 500,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the sifts matched by f
func (e *Evaluator) Evaluate(ctx context.Context, f Filter, sifts []sift.Sift) ([]sift.Sift, error) {
	if f == nil {
		return sifts, nil
	}
	if len(sifts) < e.batchSize {
		return Apply(f, sifts), nil
	}

	chunkSize := max(len(sifts)/e.workers, e.batchSize)
	chunks := make([][]sift.Sift, (len(sifts)+chunkSize-1)/chunkSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range chunks {
		start := i * chunkSize
		end := min(start+chunkSize, len(sifts))

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			// each goroutine owns its slot
			chunks[i] = Apply(f, sifts[start:end])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	matched := make([]sift.Sift, 0, total)
	for _, c := range chunks {
		matched = append(matched, c...)
	}
	return matched, nil
}

// EvaluateAll runs every filter against sifts and returns the matches by name
func (e *Evaluator) EvaluateAll(ctx context.Context, filters map[string]CompiledFilter, sifts []sift.Sift) (map[string][]sift.Sift, error) {
	results := make(map[string][]sift.Sift, len(filters))
	if len(filters) == 0 {
		return results, nil
	}

	type namedResult struct {
		name    string
		matches []sift.Sift
	}
	resultChan := make(chan namedResult, len(filters))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for name, f := range filters {
		g.Go(func() error {
			matches, err := e.Evaluate(ctx, f, sifts)
			if err != nil {
				return err
			}
			resultChan <- namedResult{name: name, matches: matches}
			return nil
		})
	}

	err := g.Wait()
	close(resultChan)
	if err != nil {
		return nil, err
	}

	for r := range resultChan {
		results[r.name] = r.matches
	}
	return results, nil
}
