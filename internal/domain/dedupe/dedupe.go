// Package dedupe remembers job request ids so a resubmitted request maps to
// the job it already created.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper records request ids with the job id they produced.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen. If it was, the
	// job id recorded for it is returned with true. Otherwise jobID is
	// recorded and ("", false) is returned.
	SeenAndRecord(ctx context.Context, id, jobID string) (string, bool)

	// Unrecord forgets id, e.g. when the job it claimed was never queued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

type entry struct {
	id    string
	jobID string
}

// inMemoryDeduper keeps at most maxSize ids and evicts the oldest first.
// maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		return el.Value.(*entry).jobID, true
	}
	if d.maxSize > 0 {
		for d.order.Len() >= d.maxSize {
			oldest := d.order.Front()
			delete(d.seen, oldest.Value.(*entry).id)
			d.order.Remove(oldest)
		}
	}
	d.seen[id] = d.order.PushBack(&entry{id: id, jobID: jobID})
	return "", false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[id]; ok {
		d.order.Remove(el)
		delete(d.seen, id)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
