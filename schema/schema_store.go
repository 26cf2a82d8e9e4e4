package schema

import "time"

// AnalysisRunRecord represents a row from the hotspot_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID     int64
	RepoPath       string
	StartTime      time.Time
	EndTime        *time.Time
	RunDurationMs  *int32
	CommitsVisited *int32
	CommitsKept    *int32
	FilesRanked    int32
	ConfigParams   *string
}

// HotspotRecord represents a row from the hotspot_entries table.
type HotspotRecord struct {
	AnalysisID      int64
	Rank            int32
	FilePath        string
	ChangeCount     int32
	AuthorCount     int32
	Score           float64
	MainContributor *string
	FirstChangedAt  time.Time
	LastChangedAt   time.Time
}
