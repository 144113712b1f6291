package session

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"
)

const (
	defaultNotifyWorkers = 4
	notifyBuffer         = 128
)

// changeDispatcher fans session change notifications out to a fixed set of
// workers using consistent hashing on the key, so notifications for the same
// session are always delivered in order while distinct sessions proceed in
// parallel.
type changeDispatcher struct {
	workers []chan string
	deliver func(key string)
	log     zerolog.Logger
}

func newChangeDispatcher(numWorkers int, deliver func(key string), log zerolog.Logger) *changeDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultNotifyWorkers
	}
	d := &changeDispatcher{
		workers: make([]chan string, numWorkers),
		deliver: deliver,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, notifyBuffer)
	}
	return d
}

// start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *changeDispatcher) start(ctx context.Context) {
	for _, ch := range d.workers {
		go d.runWorker(ctx, ch)
	}
}

// enqueue hands a key to the worker responsible for it. When the worker's
// buffer is full the notification is dropped: subscribers re-hydrate from the
// store, so a missed event costs a stale read, not a wrong one.
func (d *changeDispatcher) enqueue(key string) {
	ch := d.workers[d.shardIndex(key)]
	select {
	case ch <- key:
	default:
		d.log.Warn().Str("key", key).Msg("session notify buffer full, dropping event")
	}
}

func (d *changeDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *changeDispatcher) runWorker(ctx context.Context, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(key)
		}
	}
}
