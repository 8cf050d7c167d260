// Package worker runs batches of pipeline jobs concurrently with per-domain
// rate limiting.
package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results are drained as they arrive, so Submit never blocks on unread results.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	collector  *ResultCollector
	collected  chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	startOnce  sync.Once
	queueOnce  sync.Once
	closeOnce  sync.Once
}

// NewPool creates a new worker pool whose jobs are cancelled with parent
func NewPool(parent context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		results:    make(chan Result, workers*2),
		collector:  NewResultCollector(),
		collected:  make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the workers and the result collector. Calling it again is a no-op.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.workers; i++ {
			p.wg.Add(1)
			go p.worker()
		}

		go func() {
			defer close(p.collected)
			for result := range p.results {
				p.collector.Add(result)
			}
		}()
	})
}

// worker is the worker goroutine that processes jobs
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- job.Execute(p.ctx)
		}
	}
}

// Submit submits a job to the pool for execution. It returns without
// queuing once the pool has been shut down or its context cancelled.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	default:
	}

	select {
	case <-p.ctx.Done():
	case p.jobQueue <- job:
	}
}

// Wait waits for all submitted jobs to complete and returns their results
// in completion order
func (p *Pool) Wait() []Result {
	p.Start()
	p.queueOnce.Do(func() { close(p.jobQueue) })
	p.wg.Wait()
	p.closeResults()
	<-p.collected
	p.cancelFunc()
	return p.collector.Results()
}

// Shutdown stops the pool immediately; queued jobs are dropped
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.Start()
	p.wg.Wait()
	p.closeResults()
	<-p.collected
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// ResultCollector collects results from concurrent producers
type ResultCollector struct {
	results []Result
	mu      sync.Mutex
}

// NewResultCollector creates a new result collector
func NewResultCollector() *ResultCollector {
	return &ResultCollector{
		results: make([]Result, 0),
	}
}

// Add adds a result to the collector (thread-safe)
func (c *ResultCollector) Add(result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

// Results returns a copy of all collected results
func (c *ResultCollector) Results() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Result, len(c.results))
	copy(out, c.results)
	return out
}
