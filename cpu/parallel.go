package cpu

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum row count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 32

// rowChunk is a half-open range of rows for a worker to process.
type rowChunk struct {
	start, end int
	fn         func(y0, y1 int)
}

// rowPool runs a kernel over disjoint row ranges on persistent workers.
// run returns only after every row has been written.
type rowPool struct {
	numWorkers int

	workChan chan rowChunk // sends work to workers
	doneChan chan struct{} // workers signal completion
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

func newRowPool(workers int) *rowPool {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &rowPool{numWorkers: workers}
}

// start launches persistent worker goroutines.
func (p *rowPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan rowChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *rowPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *rowPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// run applies fn to rows [0, rows), split into one chunk per worker.
func (p *rowPool) run(rows int, fn func(y0, y1 int)) {
	if rows < parallelThreshold || p.numWorkers == 1 {
		fn(0, rows)
		return
	}
	if !p.running {
		p.start()
	}

	chunkSize := (rows + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, rows)
		if start >= end {
			continue
		}
		p.workChan <- rowChunk{start: start, end: end, fn: fn}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
