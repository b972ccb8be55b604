package pool

import (
	"io"
	"sync"
)

// LockedReader serializes reads from an io.Reader, so that pool workers can
// share one randomness source.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// NewLockedReader wraps r. Wrapping a LockedReader returns it unchanged.
func NewLockedReader(r io.Reader) *LockedReader {
	if lr, ok := r.(*LockedReader); ok {
		return lr
	}
	return &LockedReader{r: r}
}

// Read reads from the wrapped reader while holding the lock.
func (l *LockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}
