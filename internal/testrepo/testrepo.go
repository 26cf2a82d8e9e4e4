// Package testrepo builds small on-disk repositories for tests.
package testrepo

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// Repo is a scratch repository with a worktree under t.TempDir().
type Repo struct {
	Dir  string
	Repo *git.Repository

	t  testing.TB
	wt *git.Worktree
}

// New initializes an empty repository.
func New(t testing.TB) *Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &Repo{Dir: dir, Repo: repo, t: t, wt: wt}
}

// Signature builds the signature used for author and committer. The email is
// derived from the name.
func Signature(author string, when time.Time) *object.Signature {
	email := strings.ToLower(strings.ReplaceAll(author, " ", ".")) + "@example.com"
	return &object.Signature{Name: author, Email: email, When: when}
}

// Commit writes files (path to content) and commits them on top of HEAD.
func (r *Repo) Commit(author string, when time.Time, files map[string]string) plumbing.Hash {
	r.t.Helper()
	return r.commit(author, when, files, nil, nil)
}

// Delete removes paths and commits the deletion on top of HEAD.
func (r *Repo) Delete(author string, when time.Time, paths ...string) plumbing.Hash {
	r.t.Helper()
	return r.commit(author, when, nil, paths, nil)
}

// Merge commits files with the given parents, first parent first.
func (r *Repo) Merge(author string, when time.Time, parents []plumbing.Hash, files map[string]string) plumbing.Hash {
	r.t.Helper()
	require.Greater(r.t, len(parents), 1, "a merge needs at least two parents")
	return r.commit(author, when, files, nil, parents)
}

func (r *Repo) commit(author string, when time.Time, files map[string]string, deletes []string, parents []plumbing.Hash) plumbing.Hash {
	r.t.Helper()

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	for _, p := range paths {
		full := filepath.Join(r.Dir, filepath.FromSlash(p))
		require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(r.t, os.WriteFile(full, []byte(files[p]), 0o644))
		_, err := r.wt.Add(p)
		require.NoError(r.t, err)
	}
	for _, p := range deletes {
		_, err := r.wt.Remove(p)
		require.NoError(r.t, err)
	}

	hash, err := r.wt.Commit("change by "+author, &git.CommitOptions{
		Author:            Signature(author, when),
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	require.NoError(r.t, err)
	return hash
}
