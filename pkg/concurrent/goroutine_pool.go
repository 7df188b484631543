package concurrent

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrScheduleTimeout = errors.New("schedule error: timed out")
	ErrPoolClosed      = errors.New("schedule error: pool closed")
)

/*
GoroutinePool. bounded set of long living goroutines, tasks are handed over through an unbuffered-ish queue.
ref: https://sergey.kamardin.org/articles/million-websocket-and-go/ (gopool)
*/
type GoroutinePool struct {
	sem  chan struct{}
	work chan func()

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewGoroutinePool. size = max goroutines, queue = pending tasks before Schedule blocks.
func NewGoroutinePool(size, queue int) *GoroutinePool {
	return &GoroutinePool{
		sem:  make(chan struct{}, size),
		work: make(chan func(), queue),
		done: make(chan struct{}),
	}
}

// Spawn. starts n goroutines upfront (capped at the pool size).
func (p *GoroutinePool) Spawn(n int) {
	for i := 0; i < n; i++ {
		select {
		case p.sem <- struct{}{}:
			p.wg.Add(1)
			go p.worker(func() {})
		default:
			return
		}
	}
}

func (p *GoroutinePool) Schedule(task func()) error {
	return p.schedule(task, nil)
}

// ScheduleTimeout. ErrScheduleTimeout when no goroutine frees up within timeout.
func (p *GoroutinePool) ScheduleTimeout(timeout time.Duration, task func()) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	return p.schedule(task, timer.C)
}

func (p *GoroutinePool) schedule(task func(), timeout <-chan time.Time) error {
	select {
	case <-p.done:
		return ErrPoolClosed
	default:
	}

	select {
	case <-p.done:
		return ErrPoolClosed
	case <-timeout:
		return ErrScheduleTimeout
	case p.work <- task:
		return nil
	case p.sem <- struct{}{}:
		p.wg.Add(1)
		go p.worker(task)
		return nil
	}
}

func (p *GoroutinePool) worker(task func()) {
	defer func() {
		<-p.sem
		p.wg.Done()
	}()

	task()
	for {
		select {
		case <-p.done:
			return
		case task := <-p.work:
			task()
		}
	}
}

// Close. stops accepting tasks & waits for the running ones. queued tasks that never started are dropped.
func (p *GoroutinePool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
}
