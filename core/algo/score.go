// Package algo scores and ranks per-file activity statistics.
package algo

import (
	"fmt"

	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
)

// ScoreFunc maps finalized statistics to a score. Implementations must grow
// monotonically with both the change count and the author count.
type ScoreFunc func(*schema.FileStats) float64

// Product scores a file as change_count × author_count.
func Product(fs *schema.FileStats) float64 {
	return float64(fs.ChangeCount) * float64(fs.AuthorCount())
}

// Weighted returns a score of w.Changes × change_count + w.Authors × author_count.
func Weighted(w contract.ScoreWeights) ScoreFunc {
	return func(fs *schema.FileStats) float64 {
		return w.Changes*float64(fs.ChangeCount) + w.Authors*float64(fs.AuthorCount())
	}
}

// ScoreFor resolves a scoring mode to its function.
func ScoreFor(mode schema.ScoringMode, w contract.ScoreWeights) (ScoreFunc, error) {
	switch mode {
	case schema.ProductMode, "":
		return Product, nil
	case schema.WeightedMode:
		return Weighted(w), nil
	default:
		return nil, fmt.Errorf("%w: unknown scoring mode %q", contract.ErrInvalidConfig, mode)
	}
}
