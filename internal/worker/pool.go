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
// Results are gathered by a ResultCollector, so Submit never waits on a reader.
type Pool struct {
	workers    int
	jobQueue   chan Job
	collector  *ResultCollector
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
}

// NewPool creates a worker pool bound to ctx; cancelling ctx stops the workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2),
		collector:  NewResultCollector(),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

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
			p.collector.Add(job.Execute(p.ctx))
		}
	}
}

// Submit queues a job. It returns without queueing once the pool is cancelled.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait closes the queue, waits for the workers to drain it and returns the
// results in completion order
func (p *Pool) Wait() []Result {
	p.closeQueue()
	p.wg.Wait()
	p.cancelFunc()
	return p.collector.Results()
}

// Shutdown stops the workers without draining the queue
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
}

func (p *Pool) closeQueue() {
	p.closeOnce.Do(func() {
		close(p.jobQueue)
	})
}

// ResultCollector provides a safer way to collect results as they arrive
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

// indexedJob remembers the submission position of a job
type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

func (r *indexedResult) GetError() error {
	if r.result == nil {
		return nil
	}
	return r.result.GetError()
}

func (j *indexedJob) Execute(ctx context.Context) Result {
	return &indexedResult{index: j.index, result: j.job.Execute(ctx)}
}

// RunOrdered executes jobs on a pool of the given size and returns their
// results in submission order. Jobs skipped because ctx was cancelled
// leave a nil entry.
func RunOrdered(ctx context.Context, workers int, jobs []Job) []Result {
	out := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return out
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	pool := NewPool(ctx, workers)
	pool.Start()
	for i, job := range jobs {
		pool.Submit(&indexedJob{index: i, job: job})
	}
	for _, res := range pool.Wait() {
		ir := res.(*indexedResult)
		out[ir.index] = ir.result
	}
	return out
}
