package core

import (
	"context"
	"time"

	"github.com/vcsinsight/hotspot/core/agg"
	"github.com/vcsinsight/hotspot/core/algo"
	"github.com/vcsinsight/hotspot/core/filter"
	"github.com/vcsinsight/hotspot/core/walk"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
)

// GetHotspotResults walks the history of cfg.RepoPath inside the analysis
// window and returns the top entries in rank order with a summary of the run.
// An empty history is not an error. mgr may be nil, which disables tracking.
func GetHotspotResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.HotspotEntry, schema.RunSummary, error) {
	start := time.Now()
	log := contract.Debug()

	f, err := filter.New(filter.FromConfig(cfg))
	if err != nil {
		return nil, schema.RunSummary{}, err
	}
	score, err := algo.ScoreFor(cfg.Mode, cfg.Weights)
	if err != nil {
		return nil, schema.RunSummary{}, err
	}

	repo, err := walk.Open(cfg.RepoPath)
	if err != nil {
		return nil, schema.RunSummary{}, err
	}

	tracker := beginTracking(cfg, mgr, start)

	walker := walk.New(repo, walk.Options{
		Cutoff:        cfg.Cutoff(),
		IncludeMerges: cfg.IncludeMerges,
		AuthorKey:     cfg.AuthorKey,
	})
	log.Debug("walking history", "repo", cfg.RepoPath, "cutoff", cfg.Cutoff(), "workers", cfg.Workers,
		"includes", f.Includes(), "excludes", f.Excludes())

	stats, err := agg.AggregateStream(ctx, walker, f, cfg.Workers)
	if err != nil {
		return nil, schema.RunSummary{}, err
	}

	entries := algo.Rank(stats, cfg.TopN, score)

	ws := walker.Stats()
	summary := schema.RunSummary{
		Cutoff:         cfg.Cutoff(),
		CommitsVisited: ws.Visited,
		CommitsKept:    ws.Emitted,
		MergesSkipped:  ws.MergesSkipped,
		FilesTracked:   len(stats),
		FilesRanked:    len(entries),
		Duration:       time.Since(start),
	}
	log.Debug("analysis finished", "visited", ws.Visited, "kept", ws.Emitted,
		"files", len(stats), "ranked", len(entries), "duration", summary.Duration)

	tracker.finish(entries, summary)
	return entries, summary, nil
}

// runTracker records one analysis run. A nil tracker does nothing.
type runTracker struct {
	store contract.AnalysisStore
	id    int64
}

// beginTracking opens a run in the configured store. Failures are warnings;
// the analysis goes on untracked.
func beginTracking(cfg *contract.Config, mgr contract.StoreManager, start time.Time) *runTracker {
	if mgr == nil {
		return nil
	}
	store := mgr.GetAnalysisStore()
	if store == nil {
		return nil
	}
	id, err := store.BeginAnalysis(start, cfg.RepoPath, cfg.Params())
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return nil
	}
	if id <= 0 {
		return nil
	}
	return &runTracker{store: store, id: id}
}

func (rt *runTracker) finish(entries []schema.HotspotEntry, summary schema.RunSummary) {
	if rt == nil {
		return
	}
	if err := rt.store.RecordHotspots(rt.id, entries); err != nil {
		contract.LogWarn("Failed to record hotspots", err)
	}
	if err := rt.store.EndAnalysis(rt.id, time.Now(), summary); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}
