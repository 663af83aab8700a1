package middleware

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerProbing
)

// storeBreaker keeps a failing primary store out of the request path.
// After failureThreshold consecutive errors it opens and every check goes to
// the fallback until cooldown has passed; then a single trial request goes to
// the primary. A successful trial closes the breaker, a failed one reopens it.
type storeBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failures         int
	openedAt         time.Time
	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
}

func newStoreBreaker(failureThreshold int, cooldown time.Duration) *storeBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	return &storeBreaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		now:              time.Now,
	}
}

// usePrimary reports whether the next check may hit the primary store.
func (b *storeBreaker) usePrimary() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case breakerClosed:
		return true
	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = breakerProbing
		return true
	default:
		// one trial request at a time
		return false
	}
}

// success reports whether this call closed a tripped breaker.
func (b *storeBreaker) success() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	recovered := b.state != breakerClosed
	b.state = breakerClosed
	b.failures = 0
	return recovered
}

// failure reports whether this call tripped the breaker.
func (b *storeBreaker) failure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.state == breakerProbing || (b.state == breakerClosed && b.failures >= b.failureThreshold) {
		b.state = breakerOpen
		b.openedAt = b.now()
		return true
	}
	return false
}
