// Package walk traverses the commit history of a local repository.
package walk

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/vcsinsight/hotspot/internal/contract"
	"github.com/vcsinsight/hotspot/schema"
)

// ErrStop can be returned by a ForEach callback to end the walk early without error.
var ErrStop = errors.New("stop walk")

// Options bound and shape the walk.
type Options struct {
	Cutoff        time.Time        // Commits older than this are dropped; the boundary itself is kept
	IncludeMerges bool             // Emit commits with more than one parent
	AuthorKey     schema.AuthorKey // How author identities are built
}

// Stats counts what a walk has seen so far.
type Stats struct {
	Visited       int
	Emitted       int
	MergesSkipped int
}

// Walker yields commits reachable from HEAD, newest first.
type Walker struct {
	repo  *git.Repository
	opts  Options
	stats Stats
}

// Open opens the repository rooted at path.
func Open(path string) (*git.Repository, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", contract.ErrRepositoryNotFound, path)
	}
	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s is not a repository root", contract.ErrRepositoryNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", contract.ErrCorruptHistory, path, err)
	}
	return repo, nil
}

// New returns a walker over repo.
func New(repo *git.Repository, opts Options) *Walker {
	return &Walker{repo: repo, opts: opts}
}

// Stats returns the counters of the walk so far.
func (w *Walker) Stats() Stats {
	return w.stats
}

// ForEach calls fn for every retained commit, newest to oldest by committer
// time, ties broken by hash. A repository without commits yields nothing.
//
// A commit older than the cutoff is dropped along with the ancestry reached
// only through it. Skipped merges still lead the walk to their parents.
// Shallow boundary commits are treated as roots.
func (w *Walker) ForEach(ctx context.Context, fn func(*schema.CommitRecord) error) error {
	head, err := w.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil
	}
	if err != nil {
		return corrupt("resolve HEAD", err)
	}

	shallow, err := w.repo.Storer.Shallow()
	if err != nil {
		return corrupt("read shallow boundary", err)
	}
	boundary := make(map[plumbing.Hash]struct{}, len(shallow))
	for _, h := range shallow {
		boundary[h] = struct{}{}
	}

	q := &commitQueue{}
	seen := make(map[plumbing.Hash]struct{})
	push := func(h plumbing.Hash) error {
		if _, ok := seen[h]; ok {
			return nil
		}
		seen[h] = struct{}{}
		c, err := w.repo.CommitObject(h)
		if err != nil {
			return corrupt("read commit "+h.String(), err)
		}
		heap.Push(q, c)
		return nil
	}

	if err := push(head.Hash()); err != nil {
		return err
	}

	for q.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		c := heap.Pop(q).(*object.Commit)
		w.stats.Visited++

		if c.Committer.When.Before(w.opts.Cutoff) {
			continue
		}
		parents := c.ParentHashes
		if _, ok := boundary[c.Hash]; ok {
			parents = nil
		}
		for _, p := range parents {
			if err := push(p); err != nil {
				return err
			}
		}

		isMerge := len(parents) > 1
		if isMerge && !w.opts.IncludeMerges {
			w.stats.MergesSkipped++
			continue
		}

		paths, err := w.changedPaths(ctx, c, len(parents) == 0)
		if err != nil {
			return err
		}
		w.stats.Emitted++
		rec := &schema.CommitRecord{
			ID:           c.Hash.String(),
			Author:       schema.Identity(w.opts.AuthorKey, c.Author.Name, c.Author.Email),
			When:         c.Committer.When,
			IsMerge:      isMerge,
			ChangedPaths: paths,
		}
		if err := fn(rec); err != nil {
			if errors.Is(err, ErrStop) {
				return nil
			}
			return err
		}
	}

	contract.Debug().Debug("history walk finished",
		"visited", w.stats.Visited, "emitted", w.stats.Emitted, "merges_skipped", w.stats.MergesSkipped)
	return nil
}

// Collect gathers every retained commit in walk order.
func (w *Walker) Collect(ctx context.Context) ([]schema.CommitRecord, error) {
	var out []schema.CommitRecord
	err := w.ForEach(ctx, func(rec *schema.CommitRecord) error {
		out = append(out, *rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// changedPaths lists the paths that differ from the first parent. A root
// commit reports every tracked path.
func (w *Walker) changedPaths(ctx context.Context, c *object.Commit, root bool) ([]string, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, corrupt("read tree of "+c.Hash.String(), err)
	}

	set := make(map[string]struct{})
	if root {
		err := tree.Files().ForEach(func(f *object.File) error {
			set[f.Name] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, corrupt("list files of "+c.Hash.String(), err)
		}
		return sortedKeys(set), nil
	}

	parent, err := c.Parent(0)
	if err != nil {
		return nil, corrupt("read parent of "+c.Hash.String(), err)
	}
	parentTree, err := parent.Tree()
	if err != nil {
		return nil, corrupt("read tree of "+parent.Hash.String(), err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, parentTree, tree, &object.DiffTreeOptions{})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, corrupt("diff "+c.Hash.String(), err)
	}
	for _, ch := range changes {
		if ch.From.Name != "" {
			set[ch.From.Name] = struct{}{}
		}
		if ch.To.Name != "" {
			set[ch.To.Name] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func corrupt(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", contract.ErrCorruptHistory, what, err)
}
