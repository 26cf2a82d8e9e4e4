// Package filter decides which repository paths take part in an analysis.
package filter

import (
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vcsinsight/hotspot/internal/contract"
)

// sourceExtensions are the file types counted as source code by default.
var sourceExtensions = []string{
	"rs", "go", "py", "js", "jsx", "ts", "tsx", "java", "kt", "scala",
	"c", "cc", "cpp", "h", "hpp", "cs", "rb", "php", "swift", "m", "mm",
	"sh", "lua",
}

var defaultIncludes = func() []string {
	out := make([]string, 0, len(sourceExtensions))
	for _, ext := range sourceExtensions {
		out = append(out, "**/*."+ext)
	}
	return out
}()

var defaultExcludes = []string{
	"**/.git/**",
	"**/target/**",
	"**/node_modules/**",
	"**/dist/**",
	"**/build/**",
	"**/vendor/**",
	"**/*.min.*",
}

// DefaultIncludes returns a copy of the built-in include globs.
func DefaultIncludes() []string {
	return slices.Clone(defaultIncludes)
}

// DefaultExcludes returns a copy of the built-in exclude globs.
func DefaultExcludes() []string {
	return slices.Clone(defaultExcludes)
}

// PatternConfig carries the pattern settings of an analysis.
type PatternConfig struct {
	Include            []string
	Exclude            []string
	UseDefaultIncludes bool
	UseDefaultExcludes bool
}

// FromConfig extracts the pattern settings from a validated config.
func FromConfig(cfg *contract.Config) PatternConfig {
	return PatternConfig{
		Include:            cfg.IncludePatterns,
		Exclude:            cfg.ExcludePatterns,
		UseDefaultIncludes: cfg.UseDefaultIncludes,
		UseDefaultExcludes: cfg.UseDefaultExcludes,
	}
}

// Filter holds the effective include and exclude sets. It is immutable and
// safe for concurrent use.
type Filter struct {
	include []string
	exclude []string
}

// New builds the effective pattern sets and rejects malformed globs.
func New(pc PatternConfig) (*Filter, error) {
	f := &Filter{}
	if pc.UseDefaultIncludes {
		f.include = append(f.include, defaultIncludes...)
	}
	if pc.UseDefaultExcludes {
		f.exclude = append(f.exclude, defaultExcludes...)
	}
	for _, p := range pc.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, &contract.FieldError{Field: "include", Value: p, Reason: "is not a valid glob pattern"}
		}
		f.include = append(f.include, p)
	}
	for _, p := range pc.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, &contract.FieldError{Field: "exclude", Value: p, Reason: "is not a valid glob pattern"}
		}
		f.exclude = append(f.exclude, p)
	}
	return f, nil
}

// IsIncluded reports whether path takes part in the analysis. An empty
// include set admits every path, and a matching exclude always wins.
func (f *Filter) IsIncluded(path string) bool {
	if len(f.include) > 0 && !matchAny(f.include, path) {
		return false
	}
	return !matchAny(f.exclude, path)
}

// Includes returns the effective include set.
func (f *Filter) Includes() []string { return slices.Clone(f.include) }

// Excludes returns the effective exclude set.
func (f *Filter) Excludes() []string { return slices.Clone(f.exclude) }

// IsIncluded is the one-shot form of (*Filter).IsIncluded. A config with a
// malformed glob admits nothing.
func IsIncluded(path string, pc PatternConfig) bool {
	f, err := New(pc)
	if err != nil {
		return false
	}
	return f.IsIncluded(path)
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if doublestar.MatchUnvalidated(p, path) {
			return true
		}
	}
	return false
}
