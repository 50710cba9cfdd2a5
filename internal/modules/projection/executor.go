package projection

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ExecutorConfig controls how paths are chunked and how many chunks run at once.
type ExecutorConfig struct {
	BatchSize int
	Workers   int
}

// RunPaths compounds every path month by month, depositing before applying
// the month's return, and returns one terminal balance per path in path order.
//
// returns must hold pathCount*months samples laid out path*months + month.
// Each batch writes a disjoint window of the output, so neither the batch
// size nor the number of workers changes the result.
func RunPaths(ctx context.Context, returns []float64, pathCount, months int, deposit float64, cfg ExecutorConfig) ([]float64, error) {
	if pathCount <= 0 || months <= 0 {
		return nil, fmt.Errorf("%w: %d paths of %d months", ErrInvalidParameters, pathCount, months)
	}
	if len(returns) != pathCount*months {
		return nil, fmt.Errorf("%w: have %d return samples, need %d", ErrInvalidParameters, len(returns), pathCount*months)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > pathCount {
		batchSize = min(DefaultBatchSize, pathCount)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	balances := make([]float64, pathCount)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < pathCount; start += batchSize {
		end := min(start+batchSize, pathCount)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			runBatch(balances[start:end], returns, start, months, deposit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to run simulation batches: %w", err)
	}

	return balances, nil
}

func runBatch(out []float64, returns []float64, firstPath, months int, deposit float64) {
	for i := range out {
		offset := (firstPath + i) * months
		balance := 0.0
		for _, r := range returns[offset : offset+months] {
			balance = (balance + deposit) * (1 + r)
		}
		out[i] = balance
	}
}
