// Package agg folds commit records into per-file activity statistics.
package agg

import (
	"context"
	"sync"

	"github.com/vcsinsight/hotspot/core/filter"
	"github.com/vcsinsight/hotspot/schema"
)

// Source yields commit records in some fixed order. The history walker
// satisfies it.
type Source interface {
	ForEach(ctx context.Context, fn func(*schema.CommitRecord) error) error
}

// Aggregator accumulates FileStats for the paths that pass its filter.
// It is not safe for concurrent use; parallel callers use one Aggregator
// per worker and Merge the results.
type Aggregator struct {
	filter   *filter.Filter
	stats    map[string]*schema.FileStats
	seen     map[string]bool     // memoized filter decisions
	inCommit map[string]struct{} // paths already counted for the current commit
}

// New returns an empty aggregator. A nil filter accepts every path.
func New(f *filter.Filter) *Aggregator {
	return &Aggregator{
		filter:   f,
		stats:    make(map[string]*schema.FileStats),
		seen:     make(map[string]bool),
		inCommit: make(map[string]struct{}),
	}
}

// Add records one commit. Each distinct path of the commit counts once.
func (a *Aggregator) Add(rec *schema.CommitRecord) {
	clear(a.inCommit)
	for _, p := range rec.ChangedPaths {
		if _, dup := a.inCommit[p]; dup {
			continue
		}
		a.inCommit[p] = struct{}{}
		if !a.included(p) {
			continue
		}
		fs, ok := a.stats[p]
		if !ok {
			fs = schema.NewFileStats(p)
			a.stats[p] = fs
		}
		fs.Touch(rec.Author, rec.When)
	}
}

func (a *Aggregator) included(path string) bool {
	if a.filter == nil {
		return true
	}
	ok, hit := a.seen[path]
	if !hit {
		ok = a.filter.IsIncluded(path)
		a.seen[path] = ok
	}
	return ok
}

// Len is the number of tracked paths so far.
func (a *Aggregator) Len() int {
	return len(a.stats)
}

// Result hands off the accumulated statistics. The aggregator must not be
// used afterwards.
func (a *Aggregator) Result() map[string]*schema.FileStats {
	out := a.stats
	a.stats = nil
	a.seen = nil
	return out
}

// Aggregate folds commits sequentially.
func Aggregate(commits []schema.CommitRecord, f *filter.Filter) map[string]*schema.FileStats {
	a := New(f)
	for i := range commits {
		a.Add(&commits[i])
	}
	return a.Result()
}

// Merge folds src into dst and returns dst. Counts are summed, author sets
// unioned and time ranges widened, so the operation is associative and
// commutative. src entries are copied, never aliased.
func Merge(dst, src map[string]*schema.FileStats) map[string]*schema.FileStats {
	if dst == nil {
		dst = make(map[string]*schema.FileStats, len(src))
	}
	for path, fs := range src {
		cur, ok := dst[path]
		if !ok {
			cur = schema.NewFileStats(path)
			dst[path] = cur
		}
		cur.Absorb(fs)
	}
	return dst
}

// AggregateStream consumes src. With one worker the records are folded
// inline as they are produced. With more, records are fanned out to workers
// that each own a partial map, and the partials are merged after every
// worker has finished.
func AggregateStream(ctx context.Context, src Source, f *filter.Filter, workers int) (map[string]*schema.FileStats, error) {
	if workers <= 1 {
		a := New(f)
		err := src.ForEach(ctx, func(rec *schema.CommitRecord) error {
			a.Add(rec)
			return nil
		})
		if err != nil {
			return nil, err
		}
		return a.Result(), nil
	}

	recCh := make(chan *schema.CommitRecord, workers*4)
	partials := make([]*Aggregator, workers)
	var wg sync.WaitGroup
	for i := range workers {
		partials[i] = New(f)
		wg.Go(func() {
			for rec := range recCh {
				partials[i].Add(rec)
			}
		})
	}

	err := src.ForEach(ctx, func(rec *schema.CommitRecord) error {
		select {
		case recCh <- rec:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	close(recCh)
	wg.Wait()
	if err != nil {
		return nil, err
	}

	var out map[string]*schema.FileStats
	for _, p := range partials {
		out = Merge(out, p.Result())
	}
	return out, nil
}
