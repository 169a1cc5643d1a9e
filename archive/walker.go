// Package archive builds Walk abstraction on top of "archive/zip".
package archive

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
)

// WalkFunc is called for each file in archive visited by Walk. The archive
// argument is path passed to Walk, files gives access to every entry of the
// archive so description could resolve images stored next to it. If an
// error is returned, processing stops.
type WalkFunc func(archive string, files fs.FS, file *zip.File) error

// Walk visits files in the archive which names start with prefix and satisfy
// match, in natural name order. Archives with absolute entry names or names
// containing ".." are rejected.
func Walk(archive, prefix string, match func(name string) bool, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	var selected []*zip.File
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		selected = append(selected, f)
	}
	slices.SortStableFunc(selected, func(a, b *zip.File) int {
		switch {
		case natural.Less(a.Name, b.Name):
			return -1
		case natural.Less(b.Name, a.Name):
			return 1
		}
		return 0
	})

	for _, f := range selected {
		if err := walkFn(archive, &r.Reader, f); err != nil {
			return err
		}
	}
	return nil
}

// Dir returns file system rooted at directory of archive entry, nil when it
// cannot be made.
func Dir(files fs.FS, file *zip.File) fs.FS {
	dir := path.Dir(file.Name)
	if dir == "." {
		return files
	}
	sub, err := fs.Sub(files, dir)
	if err != nil {
		return nil
	}
	return sub
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
