// Package core has core logic for analysis, scoring and ranking.
package core

import (
	"context"
	"os"

	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing an analysis.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

var _ ExecutorFunc = ExecuteHotspotAnalysis // Compile-time check

// ExecuteHotspotAnalysis runs the analysis and writes the ranked entries to
// stdout or cfg.OutputFile. The header and run summary go to stderr so
// stdout stays machine-readable.
func ExecuteHotspotAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	verbose := !shouldSuppressHeader(ctx)
	if verbose {
		outwriter.LogAnalysisHeader(os.Stderr, cfg)
	}

	entries, summary, err := GetHotspotResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	if err := outwriter.PrintHotspotResults(entries, cfg); err != nil {
		return err
	}

	if verbose {
		outwriter.LogRunSummary(os.Stderr, summary, cfg)
	}
	return nil
}
