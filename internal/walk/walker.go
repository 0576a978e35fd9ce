// internal/walk/walker.go
package walk

import (
	"iter"
	"os"
	"path/filepath"

	fimerrors "fim/internal/errors"
)

type Kind int

const (
	File Kind = iota
	Dir
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Entry is one regular file or subdirectory found under a root.
type Entry struct {
	Path string
	Kind Kind
}

// Walk traverses root depth-first in pre-order and yields every regular file
// and every subdirectory below it. The root directory itself is not yielded;
// a root that is a regular file yields just that file.
//
// Directories named in skip are neither yielded nor entered. Symlinks,
// devices, sockets and the like are ignored. A directory that cannot be read
// is yielded once together with its error and the walk carries on with its
// siblings. Each range over the returned sequence starts a fresh traversal.
//
// Sibling order is whatever os.ReadDir returns; callers must not rely on it.
func Walk(root string, skip ...string) iter.Seq2[Entry, error] {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[s] = true
	}

	return func(yield func(Entry, error) bool) {
		info, err := os.Stat(root)
		if err != nil {
			yield(Entry{Path: root, Kind: File}, fimerrors.FileSystem(root, err))
			return
		}

		switch {
		case info.Mode().IsRegular():
			yield(Entry{Path: root, Kind: File}, nil)
			return
		case !info.IsDir():
			return
		case skipped[filepath.Base(root)]:
			return
		}

		stack := []Entry{{Path: root, Kind: Dir}}
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if e.Kind == File {
				if !yield(e, nil) {
					return
				}
				continue
			}

			if e.Path != root {
				if !yield(e, nil) {
					return
				}
			}

			entries, err := os.ReadDir(e.Path)
			if err != nil {
				if !yield(e, fimerrors.FileSystem(e.Path, err)) {
					return
				}
				continue
			}

			// Push in reverse so entries pop in listing order.
			for i := len(entries) - 1; i >= 0; i-- {
				d := entries[i]
				name := d.Name()
				if name == "." || name == ".." {
					continue
				}

				typ := d.Type()
				switch {
				case typ.IsDir():
					if skipped[name] {
						continue
					}
					stack = append(stack, Entry{Path: filepath.Join(e.Path, name), Kind: Dir})
				case typ.IsRegular():
					stack = append(stack, Entry{Path: filepath.Join(e.Path, name), Kind: File})
				}
			}
		}
	}
}

// Files is Walk restricted to regular files. Errors are still yielded.
func Files(root string, skip ...string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for e, err := range Walk(root, skip...) {
			if err == nil && e.Kind != File {
				continue
			}
			if !yield(e.Path, err) {
				return
			}
		}
	}
}
