package algo

import (
	"cmp"
	"math"
	"slices"

	"github.com/vcsinsight/hotspot/schema"
)

// Rank scores every file and returns the top min(topN, len(stats)) entries.
//
// Entries are ordered by score descending, then change count descending,
// then path ascending. Ranks are 1-based and consecutive; equal scores never
// share a rank. Scores are rounded to three decimals before ordering.
func Rank(stats map[string]*schema.FileStats, topN int, score ScoreFunc) []schema.HotspotEntry {
	if score == nil {
		score = Product
	}
	entries := make([]schema.HotspotEntry, 0, len(stats))
	for _, fs := range stats {
		entries = append(entries, newEntry(fs, roundScore(score(fs))))
	}

	slices.SortFunc(entries, compareEntries)

	if topN >= 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func compareEntries(a, b schema.HotspotEntry) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ChangeCount, a.ChangeCount); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

func newEntry(fs *schema.FileStats, score float64) schema.HotspotEntry {
	owner, share := fs.MainContributor()
	return schema.HotspotEntry{
		Path:                  fs.Path,
		ChangeCount:           fs.ChangeCount,
		AuthorCount:           fs.AuthorCount(),
		Score:                 score,
		MainContributor:       owner,
		MainContributorShare:  roundScore(share),
		KnowledgeDistribution: roundScore(1 - share/100),
		FirstChangedAt:        fs.FirstChangedAt,
		LastChangedAt:         fs.LastChangedAt,
	}
}

func roundScore(v float64) float64 {
	return math.Round(v*1000) / 1000
}
