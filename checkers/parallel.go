package checkers

import (
	"context"
	"runtime"
	"sync"
)

// ParallelExecutor runs multiple checkers concurrently over one project.
type ParallelExecutor struct {
	maxWorkers int
}

// NewParallelExecutor creates an executor with the given worker bound.
// Zero or negative defaults to runtime.NumCPU().
func NewParallelExecutor(maxWorkers int) *ParallelExecutor {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &ParallelExecutor{maxWorkers: maxWorkers}
}

// CheckOutcome pairs a checker with its result or execution error.
type CheckOutcome struct {
	Checker string
	Result  *Result
	Err     error
}

// Run executes every checker against the project. Ordering of the returned
// outcomes matches the input checkers so reports stay stable across runs.
func (pe *ParallelExecutor) Run(ctx context.Context, cs []Checker, proj Project) []CheckOutcome {
	if len(cs) == 0 {
		return nil
	}

	outcomes := make([]CheckOutcome, len(cs))

	// A single checker runs inline, no goroutine ceremony.
	if len(cs) == 1 {
		result, err := cs[0].Check(ctx, proj)
		outcomes[0] = CheckOutcome{Checker: cs[0].Name(), Result: result, Err: err}
		return outcomes
	}

	sem := make(chan struct{}, pe.maxWorkers)
	var wg sync.WaitGroup

	for i, c := range cs {
		wg.Add(1)
		go func(i int, c Checker) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				outcomes[i] = CheckOutcome{Checker: c.Name(), Err: ctx.Err()}
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			result, err := c.Check(ctx, proj)
			outcomes[i] = CheckOutcome{Checker: c.Name(), Result: result, Err: err}
		}(i, c)
	}

	wg.Wait()
	return outcomes
}

// Passed reports whether every outcome ran cleanly and succeeded.
func Passed(outcomes []CheckOutcome) bool {
	for _, o := range outcomes {
		if o.Err != nil {
			return false
		}
		if o.Result == nil || !o.Result.Success {
			return false
		}
	}
	return true
}
