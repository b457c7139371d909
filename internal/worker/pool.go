package worker

import (
	"sync"

	"topup-pro/internal/metrics"
)

type task func()

// Pool is a bounded worker pool for fire-and-forget jobs.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan task
}

// NewPool starts n workers over a buffered queue.
func NewPool(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, 1024)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
				metrics.WorkerQueueDepth.Dec()
			}
		}()
	}
	return p
}

// Submit enqueues a job. Blocks when the queue is full.
func (p *Pool) Submit(f task) {
	metrics.WorkerQueueDepth.Inc()
	p.jobs <- f
}

// Stop drains the queue and waits for workers to exit.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}
