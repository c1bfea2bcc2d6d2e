package transport

import (
	"errors"
	"sync"

	"github.com/eapache/queue"
)

var ErrPoolClosed = errors.New("worker pool is closed")

// Pool runs submitted tasks on a bounded number of workers. Workers are spawned lazily and stay
// alive until the pool is closed. Tasks that found no free worker wait in a FIFO queue of
// limited length; once it is full, Submit blocks.
type Pool struct {
	mu         sync.Mutex
	notEmpty   *sync.Cond
	notFull    *sync.Cond
	queue      *queue.Queue
	maxWorkers int
	maxPending int
	workers    int
	idle       int
	closed     bool
	tasks      sync.WaitGroup
}

func NewPool(maxWorkers, maxPending int) *Pool {
	p := &Pool{
		queue:      queue.New(),
		maxWorkers: max(maxWorkers, 1),
		maxPending: max(maxPending, 1),
	}
	p.notEmpty = sync.NewCond(&p.mu)
	p.notFull = sync.NewCond(&p.mu)

	return p
}

// Submit enqueues the task. It blocks while the queue is full and returns ErrPoolClosed if
// the pool was closed before the task could be accepted.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for !p.closed && p.queue.Length() >= p.maxPending {
		p.notFull.Wait()
	}

	if p.closed {
		return ErrPoolClosed
	}

	p.tasks.Add(1)
	p.queue.Add(task)

	switch {
	case p.idle > 0:
		// the woken worker is not idle anymore, even though it hasn't got the lock yet
		p.idle--
		p.notEmpty.Signal()
	case p.workers < p.maxWorkers:
		p.workers++
		go p.work()
	}

	return nil
}

// Pending returns the number of tasks waiting for a worker.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.queue.Length()
}

// Close stops accepting new tasks. Already queued ones are still run.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.idle = 0
	p.mu.Unlock()

	p.notEmpty.Broadcast()
	p.notFull.Broadcast()
}

// Wait blocks until every accepted task is done.
func (p *Pool) Wait() {
	p.tasks.Wait()
}

func (p *Pool) work() {
	p.mu.Lock()

	for {
		for p.queue.Length() == 0 && !p.closed {
			p.idle++
			p.notEmpty.Wait()
		}

		if p.queue.Length() == 0 {
			p.workers--
			p.mu.Unlock()
			return
		}

		task := p.queue.Remove().(func())
		p.notFull.Signal()
		p.mu.Unlock()
		p.run(task)
		p.mu.Lock()
	}
}

func (p *Pool) run(task func()) {
	defer p.tasks.Done()
	task()
}
