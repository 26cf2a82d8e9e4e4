// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/vcsinsight/hotspot/schema"
)

// StoreManager hands out the run tracking store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetAnalysisStore() AnalysisStore
}

// AnalysisStore defines the interface for tracking analysis runs and their results.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, repoPath string, configParams map[string]any) (int64, error)

	// RecordHotspots stores the ranked entries of a run
	RecordHotspots(analysisID int64, entries []schema.HotspotEntry) error

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, summary schema.RunSummary) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every tracked run ordered by ID
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllHotspotRecords returns every stored entry ordered by run and rank
	GetAllHotspotRecords() ([]schema.HotspotRecord, error)

	// Close closes the underlying connection
	Close() error
}
