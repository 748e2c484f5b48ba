package chain

import (
	"sync"

	"github.com/crytic/medusa-geth/common"
	"github.com/crytic/stylus-replay/trace"
	"github.com/pkg/errors"
)

// ErrCacheMiss is returned by txCache lookups for transactions that were never stored.
var ErrCacheMiss = errors.New("not found in cache")

// txCache provides a thread-safe in-memory store of mined transactions. Mined transactions never change, so entries
// never expire.
type txCache struct {
	lock  sync.RWMutex
	cache map[common.Hash]trace.TransactionInfo
}

func newTxCache() *txCache {
	return &txCache{cache: make(map[common.Hash]trace.TransactionInfo)}
}

// Get returns a copy of the cached transaction, or ErrCacheMiss.
func (c *txCache) Get(hash common.Hash) (*trace.TransactionInfo, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	tx, ok := c.cache[hash]
	if !ok {
		return nil, ErrCacheMiss
	}
	return &tx, nil
}

func (c *txCache) Write(tx trace.TransactionInfo) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.cache[tx.Hash] = tx
}
