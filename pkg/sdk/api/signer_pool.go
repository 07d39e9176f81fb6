package api

import "sync"

// signerPool runs credential-handshake work on a small fixed set of workers
// so that signing never blocks the client's network path. Shutdown abandons
// queued work; it does not wait for it.
type signerPool struct {
	jobs chan func()
	stop chan struct{}
	once sync.Once
}

func newSignerPool(workers int) *signerPool {
	p := &signerPool{
		jobs: make(chan func(), workers),
		stop: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *signerPool) worker() {
	for {
		select {
		case <-p.stop:
			return
		case job := <-p.jobs:
			job()
		}
	}
}

// submit enqueues a job unless the pool is already shut down.
func (p *signerPool) submit(job func()) {
	select {
	case <-p.stop:
	case p.jobs <- job:
	}
}

func (p *signerPool) shutdown() {
	p.once.Do(func() { close(p.stop) })
}
