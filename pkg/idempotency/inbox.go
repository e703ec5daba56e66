// Package idempotency provides deterministic content keys and an in-memory
// inbox that remembers the result of processing each key.
//
// Keys are Hash(parts...) over a "|"-joined list, so the same payload under
// the same processing parameters always maps to the same entry.
package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// GenerateKey creates a deterministic key from its parts.
func GenerateKey(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(hash[:])
}

// PayloadKey keys a raw payload processed under the given parameters.
func PayloadKey(payload []byte, params ...string) string {
	h := sha256.New()
	for _, p := range params {
		h.Write([]byte(p))
		h.Write([]byte{'|'})
	}
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// ProcessResult represents the result of idempotent processing
type ProcessResult[V any] struct {
	IsNew  bool
	Result V
}

// ProcessFunc computes the result for a key seen for the first time.
type ProcessFunc[V any] func() (V, error)

// Inbox remembers finished results by key. Failed processing is not
// remembered, so the next call with the same key runs again. When full, the
// oldest entry is evicted. Inbox is safe for concurrent use; two concurrent
// first calls for one key may both run fn.
type Inbox[V any] struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]V
	order    []string
	logger   *zap.Logger

	hits   int64
	misses int64
}

// NewInbox creates an inbox holding up to capacity results. A capacity of
// zero disables remembering.
func NewInbox[V any](capacity int, logger *zap.Logger) *Inbox[V] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Inbox[V]{
		capacity: max(capacity, 0),
		entries:  make(map[string]V),
		logger:   logger,
	}
}

// Process returns the remembered result for key, or runs fn and remembers
// its result when fn succeeds.
func (i *Inbox[V]) Process(key string, fn ProcessFunc[V]) (*ProcessResult[V], error) {
	if v, ok := i.get(key); ok {
		atomic.AddInt64(&i.hits, 1)
		return &ProcessResult[V]{Result: v}, nil
	}
	atomic.AddInt64(&i.misses, 1)

	v, err := fn()
	if err != nil {
		return nil, err
	}
	i.put(key, v)
	return &ProcessResult[V]{IsNew: true, Result: v}, nil
}

func (i *Inbox[V]) get(key string) (V, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	v, ok := i.entries[key]
	return v, ok
}

func (i *Inbox[V]) put(key string, v V) {
	if i.capacity == 0 {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.entries[key]; ok {
		i.entries[key] = v
		return
	}
	for len(i.order) >= i.capacity {
		oldest := i.order[0]
		i.order = i.order[1:]
		delete(i.entries, oldest)
		i.logger.Debug("inbox entry evicted", zap.String("key", oldest))
	}
	i.entries[key] = v
	i.order = append(i.order, key)
}

// InboxStats holds inbox statistics
type InboxStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Stats returns current inbox statistics
func (i *Inbox[V]) Stats() InboxStats {
	i.mu.Lock()
	n := len(i.entries)
	i.mu.Unlock()
	return InboxStats{
		Entries: n,
		Hits:    atomic.LoadInt64(&i.hits),
		Misses:  atomic.LoadInt64(&i.misses),
	}
}
