// Package fs provides file system adapters: glob resolution and BLAKE3
// content fingerprinting.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker walks a directory tree yielding file paths, skipping VCS metadata
// directories.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every regular file under root, skipping .git and .jj.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				switch d.Name() {
				case ".git", ".jj":
					return filepath.SkipDir
				}
				return nil
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}
