// Package parquet provides data structures and functions for exporting hotspot
// results and tracked analysis runs to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/vcsinsight/hotspot/schema"
)

// AnalysisRun represents a single tracked analysis run with metadata.
// This struct maps to the hotspot_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// RepoPath is the absolute path of the analyzed repository
	RepoPath string `parquet:"repo_path,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// CommitsVisited is the number of commits the walk looked at (nullable)
	CommitsVisited *int32 `parquet:"commits_visited,optional,snappy"`

	// CommitsKept is the number of commits that contributed to statistics (nullable)
	CommitsKept *int32 `parquet:"commits_kept,optional,snappy"`

	// FilesRanked is the number of entries in the final report
	FilesRanked int32 `parquet:"files_ranked,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Hotspot is one ranked file. Rows written straight from a report carry an
// AnalysisID of zero.
type Hotspot struct {
	AnalysisID      int64     `parquet:"analysis_id,snappy"`
	Rank            int32     `parquet:"rank,snappy"`
	FilePath        string    `parquet:"file_path,snappy"`
	ChangeCount     int32     `parquet:"change_count,snappy"`
	AuthorCount     int32     `parquet:"author_count,snappy"`
	Score           float64   `parquet:"score,snappy"`
	MainContributor *string   `parquet:"main_contributor,optional,snappy"`
	FirstChangedAt  time.Time `parquet:"first_changed_at,snappy"`
	LastChangedAt   time.Time `parquet:"last_changed_at,snappy"`
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteHotspotsParquet writes a slice of Hotspot structs to a Parquet file.
func WriteHotspotsParquet(data []Hotspot, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteHotspots streams rows to w.
func WriteHotspots(w io.Writer, data []Hotspot) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// write derives the schema from T's struct tags.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:     record.AnalysisID,
			RepoPath:       record.RepoPath,
			StartTime:      record.StartTime,
			EndTime:        record.EndTime,
			RunDurationMs:  record.RunDurationMs,
			CommitsVisited: record.CommitsVisited,
			CommitsKept:    record.CommitsKept,
			FilesRanked:    record.FilesRanked,
			ConfigParams:   record.ConfigParams,
		}
	}
	return result
}

// ConvertHotspotRecords converts stored hotspot rows for Parquet export.
func ConvertHotspotRecords(records []schema.HotspotRecord) []Hotspot {
	result := make([]Hotspot, len(records))
	for i, record := range records {
		result[i] = Hotspot{
			AnalysisID:      record.AnalysisID,
			Rank:            record.Rank,
			FilePath:        record.FilePath,
			ChangeCount:     record.ChangeCount,
			AuthorCount:     record.AuthorCount,
			Score:           record.Score,
			MainContributor: record.MainContributor,
			FirstChangedAt:  record.FirstChangedAt,
			LastChangedAt:   record.LastChangedAt,
		}
	}
	return result
}

// ConvertEntries converts a fresh report.
func ConvertEntries(entries []schema.HotspotEntry) []Hotspot {
	result := make([]Hotspot, len(entries))
	for i, e := range entries {
		var owner *string
		if e.MainContributor != "" {
			owner = &e.MainContributor
		}
		result[i] = Hotspot{
			Rank:            int32(e.Rank),
			FilePath:        e.Path,
			ChangeCount:     int32(e.ChangeCount),
			AuthorCount:     int32(e.AuthorCount),
			Score:           e.Score,
			MainContributor: owner,
			FirstChangedAt:  e.FirstChangedAt,
			LastChangedAt:   e.LastChangedAt,
		}
	}
	return result
}
