// Package render runs the asynchronous page raster pipeline: a small
// worker pool fed by a ticker scheduler, a JPEG disk cache, and a single
// consumer that hands finished rasters back to the interactive side.
package render

import (
	"image"
	"log"
	"sync"
	"time"
)

// Document is a render handle for one open file. Handles are not safe
// for concurrent use; the pipeline gives each worker its own.
type Document interface {
	PageCount() int
	RenderPage(page int) (image.Image, error)
	Close() error
}

// OpenFunc opens an independent Document handle. Called once per worker
// at most.
type OpenFunc func() (Document, error)

// Status is the lifecycle of one page raster.
type Status int

const (
	StatusPlaceholder Status = iota
	StatusRendering
	StatusReady
	StatusFailed
)

// Result is one finished page, delivered to the consumer callback.
type Result struct {
	Page  int
	Image image.Image
	Err   error
}

const (
	// DefaultWorkers bounds concurrent renders. MuPDF contexts are
	// heavyweight and each worker holds its own.
	DefaultWorkers = 3
	// tickInterval paces the scheduler.
	tickInterval = 5 * time.Millisecond
	// stopTimeout bounds how long Stop waits for in-flight renders.
	stopTimeout = 500 * time.Millisecond
)

// Pipeline schedules page renders for one document generation. After
// Stop, late worker emits are dropped rather than delivered.
type Pipeline struct {
	open    OpenFunc
	cache   *Cache
	workers int
	deliver func(Result)

	mu      sync.Mutex
	status  []Status
	pending map[int]bool
	active  int
	closed  bool

	handles chan Document
	results chan Result
	cancel  chan struct{}
	wg      sync.WaitGroup
}

// New builds a pipeline over pageCount pages. deliver is invoked from
// the consumer goroutine; UI callers marshal onto their own thread.
func New(open OpenFunc, cache *Cache, pageCount, workers int, deliver func(Result)) *Pipeline {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Pipeline{
		open:    open,
		cache:   cache,
		workers: workers,
		deliver: deliver,
		status:  make([]Status, pageCount),
		pending: map[int]bool{},
		handles: make(chan Document, workers),
		results: make(chan Result, workers),
		cancel:  make(chan struct{}),
	}
}

// Start launches the scheduler and the consumer.
func (p *Pipeline) Start() {
	go p.consume()
	go p.schedule()
}

// Request queues a page unless it is already rendering or done.
func (p *Pipeline) Request(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || page < 0 || page >= len(p.status) {
		return
	}
	if p.status[page] == StatusPlaceholder || p.status[page] == StatusFailed {
		p.pending[page] = true
	}
}

// Status returns a page's current lifecycle state.
func (p *Pipeline) Status(page int) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page < 0 || page >= len(p.status) {
		return StatusFailed
	}
	return p.status[page]
}

// Stop cancels scheduling, waits briefly for in-flight renders and
// closes the pooled document handles. Safe to call twice.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.cancel)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(stopTimeout):
		log.Printf("Stop: render workers still busy after %v, detaching", stopTimeout)
	}

	for {
		select {
		case h := <-p.handles:
			h.Close()
		default:
			return
		}
	}
}

// schedule dispatches the lowest pending page whenever a worker slot is
// free, on a fixed tick.
func (p *Pipeline) schedule() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.cancel:
			return
		case <-ticker.C:
			p.dispatch()
		}
	}
}

func (p *Pipeline) dispatch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.active < p.workers {
		page := -1
		for q := range p.pending {
			if page < 0 || q < page {
				page = q
			}
		}
		if page < 0 {
			return
		}
		delete(p.pending, page)
		if p.status[page] != StatusPlaceholder && p.status[page] != StatusFailed {
			continue
		}
		p.status[page] = StatusRendering
		p.active++
		p.wg.Add(1)
		go p.renderOne(page)
	}
}

// renderOne runs on a worker goroutine: cache first, then a private
// document handle. The result is emitted, never applied, from here.
func (p *Pipeline) renderOne(page int) {
	defer p.wg.Done()
	res := Result{Page: page}

	if img, ok := p.cache.Read(page); ok {
		res.Image = img
		p.emit(res)
		return
	}

	select {
	case <-p.cancel:
		return
	default:
	}

	doc, err := p.handle()
	if err != nil {
		res.Err = err
		p.emit(res)
		return
	}
	img, err := doc.RenderPage(page)
	p.release(doc)
	if err != nil {
		res.Err = err
		p.emit(res)
		return
	}
	p.cache.WriteAsync(page, img)
	res.Image = img
	p.emit(res)
}

// handle takes a pooled document handle or opens a fresh one.
func (p *Pipeline) handle() (Document, error) {
	select {
	case h := <-p.handles:
		return h, nil
	default:
		return p.open()
	}
}

func (p *Pipeline) release(doc Document) {
	select {
	case p.handles <- doc:
	default:
		doc.Close()
	}
}

func (p *Pipeline) emit(res Result) {
	select {
	case p.results <- res:
	case <-p.cancel:
	}
}

// consume is the single goroutine allowed to apply results. It checks
// validity under the lock so emits racing a Stop are dropped.
func (p *Pipeline) consume() {
	for {
		select {
		case <-p.cancel:
			return
		case res := <-p.results:
			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				return
			}
			p.active--
			if res.Err != nil {
				p.status[res.Page] = StatusFailed
				log.Printf("render: page %d failed: %v", res.Page, res.Err)
			} else {
				p.status[res.Page] = StatusReady
			}
			p.mu.Unlock()
			if p.deliver != nil {
				p.deliver(res)
			}
		}
	}
}
