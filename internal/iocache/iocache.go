// Package iocache tracks analysis runs in a SQL store.
package iocache

import (
	"sync"

	"github.com/vcsinsight/hotspot/internal/contract"

	// Drivers for the supported backends.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// AnalysisStoreManager holds the process-wide AnalysisStore.
type AnalysisStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	analysis     contract.AnalysisStore
}

var _ contract.StoreManager = &AnalysisStoreManager{} // Compile-time check

// GetAnalysisStore returns the AnalysisStore, or nil when tracking is off.
func (mgr *AnalysisStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
