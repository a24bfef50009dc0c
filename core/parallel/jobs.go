package parallel

import (
	"runtime"
	"sync"
)

// NumWorkers resolves an n_jobs-style degree of parallelism into a worker count,
// following the joblib convention:
//
//   - nJobs == 1 (or 0): sequential execution, a single worker
//   - nJobs == -1: one worker per available CPU
//   - nJobs < -1: NumCPU() + 1 + nJobs workers (so -2 means all CPUs but one)
//   - nJobs > 1: exactly nJobs workers
//
// The result is never below 1 and never above tasks when tasks > 0.
func NumWorkers(nJobs, tasks int) int {
	var n int
	switch {
	case nJobs == 0 || nJobs == 1:
		n = 1
	case nJobs == -1:
		n = runtime.NumCPU()
	case nJobs < -1:
		n = runtime.NumCPU() + 1 + nJobs
	default:
		n = nJobs
	}
	if n < 1 {
		n = 1
	}
	if tasks > 0 && n > tasks {
		n = tasks
	}
	return n
}

// MapErr submits n independent tasks to a pool of workers and collects each
// task's result in input order. The degree of parallelism follows NumWorkers.
//
// Tasks must be independent: no ordering is guaranteed between executions of
// fn, only between the collected results. When nJobs resolves to a single
// worker, fn runs inline on the calling goroutine, which keeps stack traces
// simple for debugging.
//
// The first task error encountered (lowest index) is returned; results are
// discarded on error.
func MapErr[T any](nJobs, n int, fn func(i int) (T, error)) ([]T, error) {
	results := make([]T, n)
	if n == 0 {
		return results, nil
	}

	workers := NumWorkers(nJobs, n)
	if workers == 1 {
		for i := 0; i < n; i++ {
			r, err := fn(i)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	errs := make([]error, n)
	ch := make(chan int, n)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ch {
				results[i], errs[i] = fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		ch <- i
	}
	close(ch)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Map is MapErr for task functions that cannot fail.
func Map[T any](nJobs, n int, fn func(i int) T) []T {
	results, _ := MapErr(nJobs, n, func(i int) (T, error) {
		return fn(i), nil
	})
	return results
}
