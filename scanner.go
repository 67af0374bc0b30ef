package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
	"go.uber.org/zap"
)

var (
	// ErrScanUnavailable means the directory could not be opened for listing.
	ErrScanUnavailable = errors.New("directory unavailable")
	// ErrEnumeration means listing started but failed before the end.
	ErrEnumeration = errors.New("directory enumeration failed")
)

// readBatch is how many entries are pulled from a directory per ReadDir call.
const readBatch = 128

// dirHandle is the subset of *os.File the scanner needs.
type dirHandle interface {
	ReadDir(n int) ([]fs.DirEntry, error)
	Close() error
}

type openDirFunc func(path string) (dirHandle, error)

func openOSDir(path string) (dirHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Filter decides which entries are visible to the scanner.
type Filter struct {
	Exclude []string                // glob patterns matched against entry names
	Ignore  gitignore.IgnoreMatcher // optional .gitignore rules
}

// Scanner lists the immediate children of directories.
type Scanner struct {
	open   openDirFunc
	stat   func(path string) (fs.FileInfo, error) // resolves symlinks; nil leaves them as files
	filter Filter
}

// NewScanner creates a Scanner reading from the host filesystem.
func NewScanner(filter Filter) *Scanner {
	return &Scanner{open: openOSDir, stat: os.Stat, filter: filter}
}

// Scan lists path. Entries come back in enumeration order with "." and ".."
// removed. A directory that cannot be opened yields an empty result whose Err
// wraps ErrScanUnavailable; a listing that breaks off midway keeps what was
// read and wraps ErrEnumeration.
func (s *Scanner) Scan(path string) ScanResult {
	var res ScanResult
	res.Err = s.each(path, func(e DirEntry) bool {
		if e.IsDir {
			res.Dirs = append(res.Dirs, e)
		} else {
			res.Files = append(res.Files, e)
		}
		return true
	})
	return res
}

// HasAnyChildDirectory reports whether path contains at least one visible
// subdirectory. It stops reading at the first one found.
func (s *Scanner) HasAnyChildDirectory(path string) bool {
	found := false
	_ = s.each(path, func(e DirEntry) bool {
		if e.IsDir {
			found = true
			return false
		}
		return true
	})
	return found
}

// each feeds the visible entries of path to fn until fn returns false or the
// directory is exhausted.
func (s *Scanner) each(path string, fn func(DirEntry) bool) error {
	dir, err := s.open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrScanUnavailable, path, err)
	}
	defer dir.Close()

	started := false
	for {
		batch, err := dir.ReadDir(readBatch)
		for _, d := range batch {
			name := d.Name()
			if name == "." || name == ".." {
				continue
			}
			entry := DirEntry{Name: name, IsDir: s.isDir(path, d)}
			if s.hidden(path, entry) {
				continue
			}
			if !fn(entry) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// A handle that opened but cannot be read from the start (a
			// regular file, say) is as unavailable as one that failed to open.
			if !started && len(batch) == 0 {
				return fmt.Errorf("%w: %s: %v", ErrScanUnavailable, path, err)
			}
			return fmt.Errorf("%w: %s: %v", ErrEnumeration, path, err)
		}
		if len(batch) == 0 {
			return nil
		}
		started = true
	}
}

// isDir classifies d the way a directory listing reports it: a symlink
// counts as a directory when its target is one. A dangling link is a file.
func (s *Scanner) isDir(dir string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 || s.stat == nil {
		return d.IsDir()
	}
	info, err := s.stat(filepath.Join(dir, d.Name()))
	if err != nil {
		return false
	}
	return info.IsDir()
}

// hidden applies the exclude patterns and .gitignore rules.
func (s *Scanner) hidden(dir string, e DirEntry) bool {
	// Patterns were validated by newFilter.
	if excluded, _ := matchesAnyPattern(e.Name, s.filter.Exclude); excluded {
		return true
	}
	if s.filter.Ignore != nil && s.filter.Ignore.Match(filepath.Join(dir, e.Name), e.IsDir) {
		return true
	}
	return false
}

// newFilter builds a Filter for root. When useGitignore is set and root has a
// .gitignore, its rules are loaded; an unparsable file is logged and skipped.
func newFilter(root, excludePatterns string, useGitignore bool, logger *zap.Logger) (Filter, error) {
	f := Filter{Exclude: parsePatterns(excludePatterns)}
	for _, p := range f.Exclude {
		if _, err := filepath.Match(p, "a"); err != nil {
			return Filter{}, fmt.Errorf("invalid glob pattern '%s': %w", p, err)
		}
	}
	if !useGitignore {
		return f, nil
	}

	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err != nil {
		logger.Debug("no .gitignore at root", zap.String("path", gitIgnorePath))
		return f, nil
	}
	matcher, err := gitignore.NewGitIgnore(gitIgnorePath, root)
	if err != nil {
		logger.Warn("could not parse .gitignore", zap.String("path", gitIgnorePath), zap.Error(err))
		return f, nil
	}
	f.Ignore = matcher
	return f, nil
}

// parsePatterns splits a comma-separated string of patterns into a slice.
func parsePatterns(patterns string) []string {
	if strings.TrimSpace(patterns) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// joinPatterns appends extra patterns to a comma-separated pattern list.
func joinPatterns(patterns string, extra ...string) string {
	return strings.Join(append(parsePatterns(patterns), extra...), ",")
}

// matchesAnyPattern checks if the given name matches any of the provided glob patterns.
func matchesAnyPattern(name string, patterns []string) (bool, error) {
	for _, pattern := range patterns {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("invalid glob pattern '%s': %w", pattern, err)
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}
