// Package workerpool runs jobs on a fixed set of long-lived goroutines consuming one shared queue.
package workerpool

import (
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wtask/chatrelay/internal/chat/metrics"
)

// Job - unit of work, executed exactly once by exactly one worker.
type Job func()

// Pool - fixed number of workers sharing unbounded FIFO queue of jobs.
// At most Workers() jobs run at the same time.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool
	busy   int

	workers int
	wg      sync.WaitGroup

	log     zerolog.Logger
	metrics *metrics.Registry
}

// New - starts pool with given number of workers.
// Returns ErrNoWorkers if workers is not positive, no goroutine is started in such case.
func New(workers int, options ...Option) (*Pool, error) {
	if workers <= 0 {
		return nil, ErrNoWorkers
	}
	p := &Pool{
		workers: workers,
		log:     zerolog.Nop(),
	}
	p.cond = sync.NewCond(&p.mu)
	if err := setup(p, options...); err != nil {
		return nil, err
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p, nil
}

// Workers - returns number of pool workers.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending - returns number of queued jobs which are not picked by any worker yet.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Busy - returns number of workers executing a job right now.
func (p *Pool) Busy() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Submit - enqueues job for the next free worker. It never waits for a worker.
// Returns ErrClosed after Close was called.
func (p *Pool) Submit(job Job) error {
	if job == nil {
		return ErrNilJob
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.queue = append(p.queue, job)
	p.metrics.QueueDepth(len(p.queue))
	p.cond.Signal()
	return nil
}

// Close - stops accepting new jobs, lets workers drain the queue and blocks until all workers exited.
// Running jobs are not interrupted. Safe to call several times.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.log.With().Int("worker", id).Logger()
	log.Debug().Msg("worker started")
	for {
		job, ok := p.next()
		if !ok {
			log.Debug().Msg("worker stopped")
			return
		}
		p.execute(log, job)
		p.release()
	}
}

// next - blocks until job is available. Returns false when pool is closed and queue is drained.
func (p *Pool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	p.busy++
	p.metrics.QueueDepth(len(p.queue))
	p.metrics.WorkersBusy(p.busy)
	return job, true
}

func (p *Pool) release() {
	p.mu.Lock()
	p.busy--
	p.metrics.WorkersBusy(p.busy)
	p.mu.Unlock()
}

// execute - runs job and recovers its panic, so the worker keeps serving the queue.
func (p *Pool) execute(log zerolog.Logger, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic_value", r).
				Str("stack_trace", string(debug.Stack())).
				Msg("job panic recovered, worker continues")
			p.metrics.WorkerPanic()
		}
	}()
	job()
}
