package outwriter

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
)

// LogAnalysisHeader prints the repository and window being analyzed.
func LogAnalysisHeader(w io.Writer, cfg *contract.Config) {
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}

	_, _ = fmt.Fprintf(w, "🔎 Repo: %s (Mode: %s)\n", repoName, cfg.Mode)
	_, _ = fmt.Fprintf(w, "📅 Range: %s → %s (%d days)\n",
		cfg.Cutoff().Format(contract.DateTimeFormat), cfg.Now.Format(contract.DateTimeFormat), cfg.TimeWindowDays)
}

// LogRunSummary prints what the walk saw and how long the run took.
func LogRunSummary(w io.Writer, s schema.RunSummary, cfg *contract.Config) {
	_, _ = fmt.Fprintf(w, "Showing top %d of %s files (%s commits kept of %s visited, %s merges skipped)\n",
		s.FilesRanked,
		humanize.Comma(int64(s.FilesTracked)),
		humanize.Comma(int64(s.CommitsKept)),
		humanize.Comma(int64(s.CommitsVisited)),
		humanize.Comma(int64(s.MergesSkipped)))
	backend := cfg.AnalysisBackend
	if backend == "" {
		backend = schema.NoneBackend
	}
	_, _ = fmt.Fprintf(w, "Analysis completed in %v with %d workers. Tracking backend: %s\n",
		s.Duration, cfg.Workers, backend)
}
