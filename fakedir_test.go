package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeEntry is an fs.DirEntry with no backing file.
type fakeEntry struct {
	name string
	dir  bool
}

func (e fakeEntry) Name() string { return e.name }
func (e fakeEntry) IsDir() bool  { return e.dir }
func (e fakeEntry) Type() fs.FileMode {
	if e.dir {
		return fs.ModeDir
	}
	return 0
}
func (e fakeEntry) Info() (fs.FileInfo, error) { return nil, errors.ErrUnsupported }

// fakeDirs is an in-memory directory tree whose listings come back in exactly
// the order they were declared, unlike a real filesystem.
type fakeDirs struct {
	listings    map[string][]fs.DirEntry
	unavailable map[string]bool
	failAfter   map[string]int // entries returned before ReadDir errors
	opened      map[string]int
	closed      int
}

// newFakeDirs builds a tree from a layout of path -> children, where a child
// ending in "/" is a directory. Every path is relative to "/r".
func newFakeDirs(layout map[string][]string) *fakeDirs {
	f := &fakeDirs{
		listings:    make(map[string][]fs.DirEntry),
		unavailable: make(map[string]bool),
		failAfter:   make(map[string]int),
		opened:      make(map[string]int),
	}
	for dir, children := range layout {
		path := fakePath(dir)
		entries := make([]fs.DirEntry, 0, len(children))
		for _, c := range children {
			entries = append(entries, fakeEntry{name: strings.TrimSuffix(c, "/"), dir: strings.HasSuffix(c, "/")})
		}
		f.listings[path] = entries
	}
	return f
}

func fakePath(rel string) string {
	if rel == "" {
		return "/r"
	}
	return filepath.Join("/r", rel)
}

func (f *fakeDirs) open(path string) (dirHandle, error) {
	f.opened[path]++
	if f.unavailable[path] {
		return nil, fs.ErrPermission
	}
	// A directory declared as a child but never given a listing is empty.
	entries := f.listings[path]
	failAt := -1
	if n, ok := f.failAfter[path]; ok {
		failAt = n
	}
	return &fakeHandle{entries: entries, failAt: failAt, onClose: func() { f.closed++ }}, nil
}

func (f *fakeDirs) scanner() *Scanner {
	return &Scanner{open: f.open}
}

type fakeHandle struct {
	entries []fs.DirEntry
	pos     int
	failAt  int
	onClose func()
}

func (h *fakeHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	end := len(h.entries)
	if h.failAt >= 0 && h.failAt < end {
		end = h.failAt
	}
	if h.pos >= end {
		if h.failAt >= 0 && h.pos >= h.failAt {
			return nil, errors.New("input/output error")
		}
		return nil, io.EOF
	}
	stop := min(h.pos+n, end)
	out := h.entries[h.pos:stop]
	h.pos = stop
	return out, nil
}

func (h *fakeHandle) Close() error {
	h.onClose()
	return nil
}

// collect drains a render of /r into a slice.
func collect(t *testing.T, r *Renderer) []string {
	t.Helper()
	var lines []string
	for line := range r.Lines(t.Context(), "/r") {
		lines = append(lines, line)
	}
	return lines
}

// mkTree creates real directories and files under root. Paths ending in "/"
// are directories.
func mkTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(p, "/")))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", full, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(full), err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", full, err)
		}
	}
}
