package realtime

import (
	"context"
	"sync"
)

// プロセス内フィード。単一ノード構成とテストで使う。
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[int]*memorySub
	next int
}

type memorySub struct {
	tables  map[string]bool
	handler Handler
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: map[int]*memorySub{}}
}

func (f *MemoryFeed) Publish(_ context.Context, c Change) error {
	f.mu.Lock()
	handlers := make([]Handler, 0, len(f.subs))
	for _, s := range f.subs {
		if s.tables[c.Table] {
			handlers = append(handlers, s.handler)
		}
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(c)
	}
	return nil
}

func (f *MemoryFeed) Subscribe(_ string, tables []string, h Handler) (*Subscription, error) {
	set := make(map[string]bool, len(tables))
	for _, t := range tables {
		set[t] = true
	}

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = &memorySub{tables: set, handler: h}
	f.mu.Unlock()

	return newSubscription(func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}), nil
}
