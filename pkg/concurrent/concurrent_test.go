package concurrent

import (
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRun(t *testing.T) {
	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}

	wp := NewWorkerPool[int, int](4, 8)
	got := make([]int, 0, len(jobs))
	for res := range wp.Run(jobs, func(job int) int { return job * job }) {
		got = append(got, res)
	}

	sort.Ints(got)
	require.Len(t, got, len(jobs))
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

func TestGoroutinePoolSchedule(t *testing.T) {
	p := NewGoroutinePool(3, 1)
	p.Spawn(1)

	var (
		count int64
		wg    sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		require.NoError(t, p.Schedule(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		}))
	}
	wg.Wait()
	p.Close()

	assert.Equal(t, int64(50), count)
	assert.ErrorIs(t, p.Schedule(func() {}), ErrPoolClosed)
}

func TestGoroutinePoolScheduleTimeout(t *testing.T) {
	p := NewGoroutinePool(1, 0)
	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Schedule(func() {
		close(started)
		<-release
	}))
	<-started

	err := p.ScheduleTimeout(10*time.Millisecond, func() {})
	assert.ErrorIs(t, err, ErrScheduleTimeout)

	close(release)
	p.Close()
}
