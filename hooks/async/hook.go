// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery: 10, // sample logs: ~every 10th self-heal
//	})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	loader, _ := hairstrand.NewLoader(hairstrand.LoaderOptions{
//	    Provider: provider,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/hairstrand"
)

// Hooks forwards events to inner on worker goroutines. Events are dropped
// when the queue is full.
type Hooks struct {
	inner  hairstrand.Hooks
	q      chan func()
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex // guards closed against concurrent try
	closed bool
}

var _ hairstrand.Hooks = (*Hooks)(nil)

func New(inner hairstrand.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) TrailingBytes(off int64)          { h.try(func() { h.inner.TrailingBytes(off) }) }
func (h *Hooks) SelfHeal(k, r string)             { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) ProviderSetRejected(k string)     { h.try(func() { h.inner.ProviderSetRejected(k) }) }
func (h *Hooks) FormatRejected(s string, e error) { h.try(func() { h.inner.FormatRejected(s, e) }) }
func (h *Hooks) StrandCountMismatch(want, got int) {
	h.try(func() { h.inner.StrandCountMismatch(want, got) })
}
