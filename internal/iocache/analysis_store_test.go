package iocache

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vcsinsight/hotspot/schema"
)

var base = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newSQLiteStore(t *testing.T) *AnalysisStoreImpl {
	t.Helper()
	store, err := NewAnalysisStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "analysis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*AnalysisStoreImpl)
}

func sampleEntries() []schema.HotspotEntry {
	return []schema.HotspotEntry{
		{
			Path: "src/a.rs", ChangeCount: 4, AuthorCount: 2, Score: 8, Rank: 1,
			MainContributor: "alice <alice@example.com>",
			FirstChangedAt:  base.Add(-72 * time.Hour), LastChangedAt: base.Add(-time.Hour),
		},
		{
			Path: "src/b.rs", ChangeCount: 1, AuthorCount: 1, Score: 1, Rank: 2,
			FirstChangedAt: base.Add(-24 * time.Hour), LastChangedAt: base.Add(-24 * time.Hour),
		},
	}
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	analysisID, err := store.BeginAnalysis(base, "/repo", map[string]any{"top": 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), analysisID)

	assert.NoError(t, store.RecordHotspots(1, sampleEntries()))
	assert.NoError(t, store.EndAnalysis(1, base, schema.RunSummary{FilesRanked: 2}))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "none", status.Backend)

	assert.NoError(t, store.Close())
}

func TestAnalysisStore_UnsupportedBackend(t *testing.T) {
	_, err := NewAnalysisStore("oracle", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported backend")
}

func TestAnalysisStore_SQLiteRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	params := map[string]any{"mode": "product", "top": 10}
	analysisID, err := store.BeginAnalysis(base, "/src/widget", params)
	require.NoError(t, err)
	assert.Greater(t, analysisID, int64(0))

	require.NoError(t, store.RecordHotspots(analysisID, sampleEntries()))
	require.NoError(t, store.EndAnalysis(analysisID, base.Add(1500*time.Millisecond), schema.RunSummary{
		CommitsVisited: 12, CommitsKept: 10, FilesRanked: 2,
	}))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, analysisID, run.AnalysisID)
	assert.Equal(t, "/src/widget", run.RepoPath)
	assert.True(t, base.Equal(run.StartTime))
	require.NotNil(t, run.EndTime)
	assert.True(t, base.Add(1500*time.Millisecond).Equal(*run.EndTime))
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	require.NotNil(t, run.CommitsVisited)
	assert.Equal(t, int32(12), *run.CommitsVisited)
	require.NotNil(t, run.CommitsKept)
	assert.Equal(t, int32(10), *run.CommitsKept)
	assert.Equal(t, int32(2), run.FilesRanked)
	require.NotNil(t, run.ConfigParams)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(*run.ConfigParams), &decoded))
	assert.Equal(t, "product", decoded["mode"])

	records, err := store.GetAllHotspotRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "src/a.rs", records[0].FilePath)
	assert.Equal(t, int32(1), records[0].Rank)
	assert.Equal(t, int32(4), records[0].ChangeCount)
	assert.Equal(t, int32(2), records[0].AuthorCount)
	assert.Equal(t, 8.0, records[0].Score)
	require.NotNil(t, records[0].MainContributor)
	assert.Equal(t, "alice <alice@example.com>", *records[0].MainContributor)
	assert.True(t, base.Add(-72*time.Hour).Equal(records[0].FirstChangedAt))
	assert.Nil(t, records[1].MainContributor, "empty contributor is stored as NULL")
}

func TestAnalysisStore_UnfinishedRun(t *testing.T) {
	store := newSQLiteStore(t)

	_, err := store.BeginAnalysis(base, "/repo", nil)
	require.NoError(t, err)

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(0), runs[0].FilesRanked)
}

func TestAnalysisStore_RecordHotspotsIsAtomic(t *testing.T) {
	store := newSQLiteStore(t)
	analysisID, err := store.BeginAnalysis(base, "/repo", nil)
	require.NoError(t, err)

	entries := sampleEntries()
	entries[1].Path = entries[0].Path // primary key violation on the second row

	err = store.RecordHotspots(analysisID, entries)
	require.Error(t, err)

	records, err := store.GetAllHotspotRecords()
	require.NoError(t, err)
	assert.Empty(t, records, "a failed batch leaves nothing behind")
}

func TestAnalysisStore_RecordHotspotsEmpty(t *testing.T) {
	store := newSQLiteStore(t)
	assert.NoError(t, store.RecordHotspots(1, nil))
}

func TestAnalysisStore_EndUnknownRun(t *testing.T) {
	store := newSQLiteStore(t)
	err := store.EndAnalysis(42, base, schema.RunSummary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis 42")
}

func TestAnalysisStore_MultipleRunsAndStatus(t *testing.T) {
	store := newSQLiteStore(t)

	var ids []int64
	for i := range 3 {
		start := base.Add(time.Duration(i) * time.Hour)
		id, err := store.BeginAnalysis(start, "/repo", map[string]any{"run": i})
		require.NoError(t, err)
		ids = append(ids, id)
		require.NoError(t, store.RecordHotspots(id, sampleEntries()))
		require.NoError(t, store.EndAnalysis(id, start.Add(time.Second), schema.RunSummary{FilesRanked: 2}))
	}
	assert.IsIncreasing(t, ids)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 3, status.TotalRuns)
	assert.Equal(t, ids[2], status.LastRunID)
	assert.True(t, base.Add(2*time.Hour).Equal(status.LastRunTime))
	assert.True(t, base.Equal(status.OldestRunTime))
	assert.Equal(t, 6, status.TotalFilesRanked)
	assert.Equal(t, int64(3), status.TableSizes[analysisRunsTable])
	assert.Equal(t, int64(6), status.TableSizes[hotspotsTable])

	records, err := store.GetAllHotspotRecords()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, ids[0], records[0].AnalysisID)
	assert.Equal(t, int32(2), records[1].Rank)
	assert.Equal(t, ids[2], records[5].AnalysisID)
}

func TestAnalysisStore_EmptyStatus(t *testing.T) {
	store := newSQLiteStore(t)
	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 0, status.TotalRuns)
	assert.True(t, status.LastRunTime.IsZero())
	assert.Equal(t, int64(0), status.TableSizes[hotspotsTable])
}

func TestCreateQueriesPerBackend(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		want    []string
	}{
		{schema.SQLiteBackend, []string{`"hotspot_entries"`, "REAL", "rank INTEGER"}},
		{schema.MySQLBackend, []string{"`hotspot_entries`", "DOUBLE", "`rank` INT"}},
		{schema.PostgreSQLBackend, []string{`"hotspot_entries"`, "DOUBLE PRECISION", "rank INT"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			query := getCreateHotspotsQuery(tt.backend)
			for _, want := range tt.want {
				assert.Contains(t, query, want)
			}
			assert.Contains(t, getCreateAnalysisRunsQuery(tt.backend), "repo_path")
		})
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []any{"?", "?", "?"}, placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, []any{"?", "?"}, placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, []any{"$1", "$2", "$3"}, placeholders(schema.PostgreSQLBackend, 3))
}
