package fs

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.trai.ch/verify/internal/core/ports"
)

var _ ports.Globber = (*Resolver)(nil)

// Resolver implements ports.Globber with doublestar-capable patterns that
// Go's stdlib filepath.Glob cannot express ("**" recursive segments). A
// pattern that matches nothing is not an error: the caller proceeds with
// the empty set (spec.md §4.1).
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// Resolve expands patterns (relative to root) to a sorted, de-duplicated
// set of project-relative, forward-slash file paths.
func (r *Resolver) Resolve(root string, patterns []string) ([]string, error) {
	unique := make(map[string]struct{})

	for _, pattern := range patterns {
		pattern = r.expandDirPattern(root, pattern)

		re, err := globToRegexp(pattern)
		if err != nil {
			return nil, err
		}

		for path := range r.walker.WalkFiles(root) {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if re.MatchString(rel) {
				unique[rel] = struct{}{}
			}
		}
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	sort.Strings(result)

	return result, nil
}

// expandDirPattern appends "/**" to a literal (non-glob) pattern that
// resolves to an existing directory, so naming a directory in cache_paths
// means "everything under it" rather than matching nothing.
func (r *Resolver) expandDirPattern(root, pattern string) string {
	if strings.ContainsAny(pattern, "*?[") {
		return pattern
	}
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil || !info.IsDir() {
		return pattern
	}
	return strings.TrimSuffix(pattern, "/") + "/**"
}

// globToRegexp translates a glob pattern into an anchored regexp matching
// forward-slash relative paths. Supported metacharacters: "**" (any number
// of path segments, including none), "*" (any run of characters excluding
// "/"), and "?" (a single non-"/" character).
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	pattern = filepath.ToSlash(pattern)
	segments := strings.Split(pattern, "/")

	var parts []string
	for i, seg := range segments {
		if seg == "**" {
			if i == len(segments)-1 {
				parts = append(parts, ".*")
			} else {
				parts = append(parts, "(?:.*/)?")
			}
			continue
		}
		parts = append(parts, globSegmentToRegexp(seg))
	}

	var b strings.Builder
	b.WriteString("^")
	for i, p := range parts {
		if i > 0 && parts[i-1] != "(?:.*/)?" {
			b.WriteString("/")
		}
		b.WriteString(p)
	}
	b.WriteString("$")

	return regexp.Compile(b.String())
}

func globSegmentToRegexp(seg string) string {
	var b strings.Builder
	for _, r := range seg {
		switch r {
		case '*':
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}
