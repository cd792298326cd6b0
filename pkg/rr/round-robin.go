package rr

import (
	"sync"
	"sync/atomic"
)

// RoundRobin cycles over a hot-swappable list of egress proxies.
type RoundRobin interface {
	Next() (string, bool)
	Count() int
}

type rr struct {
	data  *atomic.Pointer[[]string]
	mu    *sync.Mutex
	index *atomic.Uint32
}

func New(data *atomic.Pointer[[]string]) *rr {
	return &rr{
		data:  data,
		mu:    &sync.Mutex{},
		index: new(atomic.Uint32),
	}
}

func (rr *rr) Next() (string, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	proxies := *rr.data.Load()

	if len(proxies) == 0 {
		return "", false
	}

	n := rr.index.Add(1)
	target := proxies[(int(n)-1)%len(proxies)]

	return target, true
}

func (rr *rr) Count() int {
	proxies := *rr.data.Load()
	return len(proxies)
}
