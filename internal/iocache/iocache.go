// Package iocache is for caching forecast reports and tracking run history.
package iocache

import (
	"sync"

	"github.com/huangsam/stockcast/internal/contract"
)

// StoreManager manages the report cache and the history store.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.ReportCache
	history      contract.HistoryStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// NewStoreManager wraps already opened stores. Either may be nil.
func NewStoreManager(cache contract.ReportCache, history contract.HistoryStore) *StoreManager {
	return &StoreManager{cache: cache, history: history}
}

// GetReportCache returns the report cache.
func (mgr *StoreManager) GetReportCache() contract.ReportCache {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetHistoryStore returns the history store.
func (mgr *StoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}
