package concurrent

import (
	"sync"
)

type JobFunc[T any, G any] func(job T) G

// WorkerPool. fan out jobs to a fixed set of goroutines. results are emitted in completion order, not job order.
type WorkerPool[T any, G any] struct {
	numWorkers int
	queueSize  int
}

func NewWorkerPool[T any, G any](numWorkers, queueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &WorkerPool[T, G]{numWorkers: numWorkers, queueSize: queueSize}
}

// Run. returned channel is closed after the last result, the caller must drain it.
func (wp *WorkerPool[T, G]) Run(jobs []T, jobFunc JobFunc[T, G]) <-chan G {
	queue := make(chan T, wp.queueSize)
	results := make(chan G, wp.queueSize)

	var wg sync.WaitGroup
	wg.Add(wp.numWorkers)
	for w := 0; w < wp.numWorkers; w++ {
		go func() {
			defer wg.Done()
			for job := range queue {
				results <- jobFunc(job)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			queue <- job
		}
		close(queue)
		wg.Wait()
		close(results)
	}()
	return results
}
