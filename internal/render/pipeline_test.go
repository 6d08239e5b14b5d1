package render

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeDoc struct {
	pages   int
	delay   time.Duration
	fail    map[int]bool
	active  *int32
	maxSeen *int32
}

func (d *fakeDoc) PageCount() int { return d.pages }
func (d *fakeDoc) Close() error   { return nil }

func (d *fakeDoc) RenderPage(page int) (image.Image, error) {
	n := atomic.AddInt32(d.active, 1)
	for {
		m := atomic.LoadInt32(d.maxSeen)
		if n <= m || atomic.CompareAndSwapInt32(d.maxSeen, m, n) {
			break
		}
	}
	time.Sleep(d.delay)
	atomic.AddInt32(d.active, -1)
	if d.fail[page] {
		return nil, errors.New("render refused")
	}
	return image.NewRGBA(image.Rect(0, 0, 30, 40)), nil
}

type collector struct {
	mu   sync.Mutex
	got  []Result
	done chan struct{}
	want int
}

func newCollector(want int) *collector {
	return &collector{done: make(chan struct{}), want: want}
}

func (c *collector) deliver(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, r)
	if len(c.got) == c.want {
		close(c.done)
	}
}

func (c *collector) wait(t *testing.T) []Result {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(5 * time.Second):
		t.Fatal("pipeline did not deliver in time")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.got...)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.got)
}

func TestPipelineRendersAllPagesBounded(t *testing.T) {
	const pages = 8
	var active, maxSeen int32
	open := func() (Document, error) {
		return &fakeDoc{pages: pages, delay: 10 * time.Millisecond, active: &active, maxSeen: &maxSeen}, nil
	}
	col := newCollector(pages)
	p := New(open, nil, pages, DefaultWorkers, col.deliver)
	p.Start()
	defer p.Stop()
	for i := 0; i < pages; i++ {
		p.Request(i)
	}

	col.wait(t)
	for i := 0; i < pages; i++ {
		if p.Status(i) != StatusReady {
			t.Errorf("page %d status %v, want ready", i, p.Status(i))
		}
	}
	if m := atomic.LoadInt32(&maxSeen); m > DefaultWorkers {
		t.Errorf("saw %d concurrent renders, cap is %d", m, DefaultWorkers)
	}
}

func TestPipelineFailedPageStaysFailed(t *testing.T) {
	var active, maxSeen int32
	open := func() (Document, error) {
		return &fakeDoc{pages: 3, fail: map[int]bool{1: true}, active: &active, maxSeen: &maxSeen}, nil
	}
	col := newCollector(3)
	p := New(open, nil, 3, 0, col.deliver)
	p.Start()
	defer p.Stop()
	for i := 0; i < 3; i++ {
		p.Request(i)
	}

	for _, r := range col.wait(t) {
		if r.Page == 1 && r.Err == nil {
			t.Error("page 1 should have failed")
		}
	}
	if p.Status(1) != StatusFailed {
		t.Errorf("page 1 status %v, want failed", p.Status(1))
	}
	if p.Status(0) != StatusReady || p.Status(2) != StatusReady {
		t.Error("healthy pages should be ready")
	}
}

func TestPipelineServesFromCache(t *testing.T) {
	dir := t.TempDir()
	var active, maxSeen int32
	open := func() (Document, error) {
		return &fakeDoc{pages: 1, active: &active, maxSeen: &maxSeen}, nil
	}
	col := newCollector(1)
	p := New(open, NewCache(dir), 1, 0, col.deliver)
	p.Start()
	p.Request(0)
	col.wait(t)
	p.Stop()

	// The cache write is fire-and-forget; wait for it to land.
	cachePath := filepath.Join(dir, "page_0.jpg")
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(cachePath); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("cache file never appeared")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A second generation whose document cannot render at all must still
	// produce the page from cache.
	broken := func() (Document, error) { return nil, errors.New("no document") }
	col2 := newCollector(1)
	p2 := New(broken, NewCache(dir), 1, 0, col2.deliver)
	p2.Start()
	defer p2.Stop()
	p2.Request(0)
	got := col2.wait(t)
	if got[0].Err != nil || got[0].Image == nil {
		t.Error("cached page should render without a document")
	}
	if p2.Status(0) != StatusReady {
		t.Errorf("status %v, want ready", p2.Status(0))
	}
}

func TestStopIsBoundedAndSilences(t *testing.T) {
	var active, maxSeen int32
	open := func() (Document, error) {
		return &fakeDoc{pages: 2, delay: 2 * time.Second, active: &active, maxSeen: &maxSeen}, nil
	}
	col := newCollector(2)
	p := New(open, nil, 2, 0, col.deliver)
	p.Start()
	p.Request(0)
	p.Request(1)
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	p.Stop()
	if elapsed := time.Since(start); elapsed > 1500*time.Millisecond {
		t.Errorf("Stop took %v, want bounded teardown", elapsed)
	}

	before := col.count()
	time.Sleep(2500 * time.Millisecond)
	if after := col.count(); after != before {
		t.Errorf("deliveries after Stop: %d -> %d", before, after)
	}
}

func TestRequestIgnoredOnceDone(t *testing.T) {
	var active, maxSeen int32
	renders := int32(0)
	open := func() (Document, error) {
		return &fakeDoc{pages: 1, active: &active, maxSeen: &maxSeen}, nil
	}
	col := newCollector(1)
	var p *Pipeline
	p = New(func() (Document, error) {
		atomic.AddInt32(&renders, 1)
		return open()
	}, nil, 1, 0, col.deliver)
	p.Start()
	defer p.Stop()
	p.Request(0)
	col.wait(t)

	p.Request(0)
	time.Sleep(50 * time.Millisecond)
	if col.count() != 1 {
		t.Error("ready page was re-rendered")
	}
}
