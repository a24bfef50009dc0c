package parallel

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedraiyani/skutil/pkg/errors"
)

func TestNumWorkers(t *testing.T) {
	cpus := runtime.NumCPU()

	tests := []struct {
		name  string
		nJobs int
		tasks int
		want  int
	}{
		{name: "one is sequential", nJobs: 1, tasks: 100, want: 1},
		{name: "zero defaults to sequential", nJobs: 0, tasks: 100, want: 1},
		{name: "minus one uses all CPUs", nJobs: -1, tasks: 1 << 30, want: cpus},
		{name: "explicit worker count", nJobs: 3, tasks: 100, want: 3},
		{name: "capped by task count", nJobs: 8, tasks: 2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NumWorkers(tt.nJobs, tt.tasks))
		})
	}

	t.Run("below minus one leaves CPUs free", func(t *testing.T) {
		want := cpus - 1
		if want < 1 {
			want = 1
		}
		assert.Equal(t, want, NumWorkers(-2, 1<<30))
	})

	t.Run("never below one", func(t *testing.T) {
		assert.Equal(t, 1, NumWorkers(-1000, 100))
	})
}

func TestMapErrPreservesOrder(t *testing.T) {
	for _, nJobs := range []int{1, 2, -1} {
		results, err := MapErr(nJobs, 50, func(i int) (int, error) {
			return i * i, nil
		})
		require.NoError(t, err, "n_jobs=%d", nJobs)
		require.Len(t, results, 50)
		for i, r := range results {
			assert.Equal(t, i*i, r, "n_jobs=%d index=%d", nJobs, i)
		}
	}
}

func TestMapErrReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")

	for _, nJobs := range []int{1, 4} {
		results, err := MapErr(nJobs, 10, func(i int) (int, error) {
			if i == 3 || i == 7 {
				return 0, errors.Wrapf(boom, "task %d", i)
			}
			return i, nil
		})
		require.Error(t, err, "n_jobs=%d", nJobs)
		assert.Nil(t, results)
		assert.True(t, errors.Is(err, boom))
		// The lowest-index failure wins regardless of scheduling.
		assert.Contains(t, err.Error(), "task 3")
	}
}

func TestMapErrEmpty(t *testing.T) {
	results, err := MapErr(4, 0, func(i int) (int, error) { return i, nil })
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMap(t *testing.T) {
	results := Map(-1, 8, func(i int) float64 { return float64(i) / 2 })
	require.Len(t, results, 8)
	for i, r := range results {
		assert.Equal(t, float64(i)/2, r)
	}
}

func TestParallelizeCoversAllItems(t *testing.T) {
	seen := make([]bool, 1000)
	Parallelize(1000, func(start, end int) {
		for i := start; i < end; i++ {
			seen[i] = true
		}
	})
	for i, s := range seen {
		require.True(t, s, "item %d not processed", i)
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(5, 10, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 5, end)
	})
	assert.Equal(t, 1, calls)
}
