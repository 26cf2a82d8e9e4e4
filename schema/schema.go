// Package schema has models and enums shared by all parts of hotspot.
package schema

import "time"

// CommitRecord is a single retained commit as seen by the history walker.
// It is handed to the aggregator and dropped right after.
type CommitRecord struct {
	ID           string    // Hex commit hash
	Author       string    // Author identity key (see AuthorKey)
	When         time.Time // Committer timestamp
	IsMerge      bool      // True when the commit has more than one parent
	ChangedPaths []string  // Sorted, deduplicated repository-relative paths
}

// FileStats accumulates the activity of one path over the analysis window.
type FileStats struct {
	Path           string         // Repository-relative path
	ChangeCount    int            // Number of qualifying commits that touched the path
	Authors        map[string]int // Author identity to number of commits touching the path
	FirstChangedAt time.Time      // Oldest contributing commit
	LastChangedAt  time.Time      // Newest contributing commit
}

// NewFileStats returns an empty accumulator for path.
func NewFileStats(path string) *FileStats {
	return &FileStats{Path: path, Authors: make(map[string]int)}
}

// AuthorCount is the size of the deduplicated author set.
func (fs *FileStats) AuthorCount() int {
	return len(fs.Authors)
}

// Touch records one commit by author at when.
func (fs *FileStats) Touch(author string, when time.Time) {
	fs.ChangeCount++
	fs.Authors[author]++
	fs.extend(when)
}

// Absorb folds other into fs. Counts are summed, author sets are unioned
// and the time range grows to cover both.
func (fs *FileStats) Absorb(other *FileStats) {
	fs.ChangeCount += other.ChangeCount
	for author, n := range other.Authors {
		fs.Authors[author] += n
	}
	if !other.FirstChangedAt.IsZero() {
		fs.extend(other.FirstChangedAt)
	}
	if !other.LastChangedAt.IsZero() {
		fs.extend(other.LastChangedAt)
	}
}

func (fs *FileStats) extend(when time.Time) {
	if fs.FirstChangedAt.IsZero() || when.Before(fs.FirstChangedAt) {
		fs.FirstChangedAt = when
	}
	if fs.LastChangedAt.IsZero() || when.After(fs.LastChangedAt) {
		fs.LastChangedAt = when
	}
}

// MainContributor returns the author with the most commits on the path and
// that author's share of the commits as a percentage. Ties go to the
// lexicographically smallest identity.
func (fs *FileStats) MainContributor() (string, float64) {
	var top string
	best := 0
	total := 0
	for author, n := range fs.Authors {
		total += n
		if n > best || (n == best && author < top) {
			top, best = author, n
		}
	}
	if total == 0 {
		return "", 0
	}
	return top, float64(best) / float64(total) * 100
}

// HotspotEntry is one ranked row of the final report.
type HotspotEntry struct {
	Path        string  `json:"path"`
	ChangeCount int     `json:"change_count"`
	AuthorCount int     `json:"author_count"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`

	// Detail fields, only emitted with --detail.
	MainContributor       string    `json:"main_contributor,omitempty"`
	MainContributorShare  float64   `json:"main_contributor_share,omitempty"`
	KnowledgeDistribution float64   `json:"knowledge_distribution,omitempty"`
	FirstChangedAt        time.Time `json:"first_changed_at,omitzero"`
	LastChangedAt         time.Time `json:"last_changed_at,omitzero"`
}

// RunSummary reports what a single analysis did.
type RunSummary struct {
	Cutoff         time.Time     `json:"cutoff"`
	CommitsVisited int           `json:"commits_visited"`
	CommitsKept    int           `json:"commits_kept"`
	MergesSkipped  int           `json:"merges_skipped"`
	FilesTracked   int           `json:"files_tracked"`
	FilesRanked    int           `json:"files_ranked"`
	Duration       time.Duration `json:"duration"`
}
