package crawler

import "sync"

// Entry is one unit of crawl work: a canonical URL and its discovery depth.
type Entry struct {
	// URL is the canonical absolute URL to visit.
	URL string

	// Depth is the distance from the seed (seed = 0).
	Depth int

	// Order is the discovery sequence number assigned at Offer time.
	// Results are sorted by it so output order is reproducible regardless
	// of which worker finishes first.
	Order int
}

// Frontier is the deduplicating work queue of URLs to visit.
//
// A URL enters the frontier at most once per crawl, no matter how many pages
// reference it. Entries are served FIFO in discovery order, which yields
// breadth-first traversal: everything offered at depth d precedes anything
// offered at depth d+1 because depth d+1 URLs are only discovered while
// processing depth d pages.
//
// Design decision: TakeNext blocks while the queue is empty but other
// workers are still mid-fetch, because those workers may yet enqueue more
// work. It returns done only when the queue is empty AND nothing is in
// flight, or after Close. A single mutex plus condition variable covers the
// queue, the visited set, and the in-flight count; the frontier is the only
// structure the worker pool contends on.
type Frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	// queue holds pending entries in discovery order.
	queue []Entry

	// seen tracks every URL ever accepted, visited or still pending.
	seen map[string]bool

	// maxDepth discards entries deeper than this bound.
	maxDepth int

	// maxPages caps the total number of accepted entries.
	maxPages int

	// accepted counts entries ever accepted (pending + dequeued).
	accepted int

	// inFlight counts entries dequeued but not yet marked done.
	inFlight int

	// closed stops all further work once set.
	closed bool
}

// NewFrontier creates a Frontier with the given depth and page bounds.
func NewFrontier(maxDepth, maxPages int) *Frontier {
	f := &Frontier{
		queue:    make([]Entry, 0, maxPages),
		seen:     make(map[string]bool),
		maxDepth: maxDepth,
		maxPages: maxPages,
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Offer adds a URL at the given depth.
// It returns false, without enqueueing, when the URL was already seen, the
// depth exceeds the bound, the page budget is exhausted, or the frontier is
// closed. The URL must already be canonical; dedup is by exact string.
func (f *Frontier) Offer(url string, depth int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed || f.seen[url] || depth > f.maxDepth || f.accepted >= f.maxPages {
		return false
	}

	f.seen[url] = true
	f.queue = append(f.queue, Entry{URL: url, Depth: depth, Order: f.accepted})
	f.accepted++
	f.cond.Signal()
	return true
}

// TakeNext returns the next entry in discovery order.
// It blocks while the queue is empty but work is still in flight. The second
// return value is false when the crawl is done: the queue drained with no
// worker mid-fetch, or the frontier was closed.
//
// Every successful TakeNext must be paired with a Done call.
func (f *Frontier) TakeNext() (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		if f.closed {
			return Entry{}, false
		}
		if len(f.queue) > 0 {
			entry := f.queue[0]
			f.queue = f.queue[1:]
			f.inFlight++
			return entry, true
		}
		if f.inFlight == 0 {
			return Entry{}, false
		}
		f.cond.Wait()
	}
}

// Done marks one dequeued entry as fully processed.
func (f *Frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight--
	// Waiters must re-check: the queue may have grown, or the crawl may
	// now be drained.
	f.cond.Broadcast()
}

// Close stops the frontier: pending entries are discarded and all blocked
// TakeNext calls return done. Used for cancellation.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.queue = nil
	f.cond.Broadcast()
}

// Seen reports whether a URL was ever accepted.
func (f *Frontier) Seen(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[url]
}

// Pending returns the number of queued entries.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
