package box

import (
	"runtime"
	"sync"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drowse/sim"
)

// parallelThreshold is the minimum member count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 8

// job is a member snapshot plus the outcome computed for it.
type job struct {
	entity  ecs.Entity
	member  Member
	outcome Outcome
}

// workChunk represents a range of jobs for a worker to process.
type workChunk struct {
	start, end int
	opts       sim.Options
}

// workerPool holds persistent goroutines for simulating members.
type workerPool struct {
	jobs       []job
	numWorkers int

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newWorkerPool() *workerPool {
	return &workerPool{
		numWorkers: runtime.GOMAXPROCS(0),
		jobs:       make([]job, 0, 64),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *workerPool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *workerPool) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.computeChunk(chunk.start, chunk.end, chunk.opts)
			p.doneChan <- struct{}{}
		}
	}
}

// run simulates every job, in parallel when there are enough of them.
func (p *workerPool) run(opts sim.Options) {
	n := len(p.jobs)
	if n < parallelThreshold || p.numWorkers < 2 {
		p.computeChunk(0, n, opts)
		return
	}

	p.startWorkers()

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, opts: opts}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// computeChunk simulates jobs [i0, i1). Each job is written by one worker only.
func (p *workerPool) computeChunk(i0, i1 int, opts sim.Options) {
	for i := i0; i < i1; i++ {
		j := &p.jobs[i]
		start := time.Now()
		res, err := sim.Simulate(j.member.Params, j.member.Rates, j.member.Inventory, opts)
		j.outcome = Outcome{Result: res, Err: err, Elapsed: time.Since(start), Done: true}
	}
}
