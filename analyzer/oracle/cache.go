package oracle

import (
	"context"
	"strings"
	"sync"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash returns highwayhash of data
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

// Cache memoizes successful estimates of the wrapped oracle
type Cache struct {
	oracle  Oracle
	mux     sync.RWMutex
	entries map[uint64]Distribution
}

// Estimate returns cached distribution or delegates to the wrapped oracle
func (c *Cache) Estimate(ctx context.Context, request *Request) (Distribution, error) {
	id, err := requestKey(request)
	if err != nil {
		return c.oracle.Estimate(ctx, request)
	}
	c.mux.RLock()
	cached, ok := c.entries[id]
	c.mux.RUnlock()
	if ok {
		return clone(cached), nil
	}
	dist, err := c.oracle.Estimate(ctx, request)
	if err != nil {
		return nil, err
	}
	c.mux.Lock()
	c.entries[id] = clone(dist)
	c.mux.Unlock()
	return dist, nil
}

// Len returns number of cached entries
func (c *Cache) Len() int {
	c.mux.RLock()
	defer c.mux.RUnlock()
	return len(c.entries)
}

func requestKey(request *Request) (uint64, error) {
	builder := strings.Builder{}
	builder.WriteString(request.Function)
	builder.WriteByte(0)
	builder.WriteString(strings.Join(request.Callers, "\x00"))
	builder.WriteByte(0)
	builder.WriteString(request.Context)
	return Hash([]byte(builder.String()))
}

func clone(dist Distribution) Distribution {
	result := make(Distribution, len(dist))
	for k, v := range dist {
		result[k] = v
	}
	return result
}

// NewCache creates a caching oracle
func NewCache(oracle Oracle) *Cache {
	return &Cache{oracle: oracle, entries: map[uint64]Distribution{}}
}
