package iocache

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	hsparquet "github.com/vcsinsight/hotspot/internal/parquet"
	"github.com/vcsinsight/hotspot/schema"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	t.Cleanup(func() {
		CloseStores()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
	})
}

func TestInitStores(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores("", ""))
		assert.Nil(t, Manager.GetAnalysisStore())
	})

	t.Run("sqlite", func(t *testing.T) {
		resetGlobals(t)
		dbPath := filepath.Join(t.TempDir(), "analysis.db")
		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		require.NotNil(t, Manager.GetAnalysisStore())

		_, err := os.Stat(dbPath)
		assert.NoError(t, err)

		CloseStores()
		assert.Nil(t, Manager.GetAnalysisStore())
		CloseStores() // idempotent
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		dbPath := filepath.Join(t.TempDir(), "analysis.db")
		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		first := Manager.GetAnalysisStore()
		require.NoError(t, InitStores(schema.SQLiteBackend, dbPath))
		assert.Same(t, first, Manager.GetAnalysisStore())
	})

	t.Run("bad backend", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores("oracle", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to initialize analysis store")
	})
}

func TestManagerConcurrentReads(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitStores(schema.SQLiteBackend, filepath.Join(t.TempDir(), "analysis.db")))

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			store := Manager.GetAnalysisStore()
			if assert.NotNil(t, store) {
				_, err := store.BeginAnalysis(base, "/repo", nil)
				assert.NoError(t, err)
			}
		})
	}
	wg.Wait()

	status, err := Manager.GetAnalysisStore().GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 10, status.TotalRuns)
}

func TestClearAnalysis(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "analysis.db")
		store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearAnalysis(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearAnalysis(schema.SQLiteBackend, "", ""))
	})

	t.Run("none", func(t *testing.T) {
		assert.NoError(t, ClearAnalysis(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, ClearAnalysis("oracle", "", ""))
	})
}

func TestExecuteAnalysisExport(t *testing.T) {
	store := newSQLiteStore(t)
	id, err := store.BeginAnalysis(base, "/src/widget", map[string]any{"top": 2})
	require.NoError(t, err)
	require.NoError(t, store.RecordHotspots(id, sampleEntries()))
	require.NoError(t, store.EndAnalysis(id, base.Add(2*time.Second), schema.RunSummary{FilesRanked: 2}))

	mgr := &AnalysisStoreManager{analysis: store}
	out := filepath.Join(t.TempDir(), "export")
	require.NoError(t, ExecuteAnalysisExport(mgr, out))

	runsFile, err := os.Open(out + ".analysis_runs.parquet")
	require.NoError(t, err)
	defer func() { _ = runsFile.Close() }()
	runsReader := parquet.NewGenericReader[hsparquet.AnalysisRun](runsFile)
	defer func() { _ = runsReader.Close() }()
	assert.Equal(t, int64(1), runsReader.NumRows())

	content, err := os.ReadFile(out + ".hotspots.parquet")
	require.NoError(t, err)
	hotspotsReader := parquet.NewGenericReader[hsparquet.Hotspot](bytes.NewReader(content))
	defer func() { _ = hotspotsReader.Close() }()
	assert.Equal(t, int64(2), hotspotsReader.NumRows())
}

func TestExecuteAnalysisExportErrors(t *testing.T) {
	t.Run("missing output file", func(t *testing.T) {
		err := ExecuteAnalysisExport(&MockStoreManager{}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output-file")
	})

	t.Run("tracking disabled", func(t *testing.T) {
		mgr := &MockStoreManager{}
		mgr.On("GetAnalysisStore").Return(nil)
		err := ExecuteAnalysisExport(mgr, "out")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disabled")
		mgr.AssertExpectations(t)
	})

	t.Run("no runs", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{Backend: "sqlite", Connected: true}, nil)
		mgr := &MockStoreManager{}
		mgr.On("GetAnalysisStore").Return(store)

		err := ExecuteAnalysisExport(mgr, filepath.Join(t.TempDir(), "out"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no analysis data")
		store.AssertExpectations(t)
	})
}

func TestPrintAnalysisStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend:          "sqlite",
		Connected:        true,
		TotalRuns:        2,
		LastRunID:        7,
		LastRunTime:      base,
		OldestRunTime:    base,
		TotalFilesRanked: 20,
		TableSizes:       map[string]int64{hotspotsTable: 20, analysisRunsTable: 2},
	})

	out := buf.String()
	assert.Contains(t, out, "Analysis Backend: sqlite")
	assert.Contains(t, out, "Last Run ID: 7")
	assert.Contains(t, out, "Last Run: 2025-03-01 09:30:00")
	assert.Contains(t, out, "Total Files Ranked: 20")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(analysisRunsTable)), bytes.Index(buf.Bytes(), []byte(hotspotsTable)))

	buf.Reset()
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{Backend: "none"})
	assert.NotContains(t, buf.String(), "Total Runs")
}
