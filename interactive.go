package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// previewLines caps how much of a candidate's tree the preview pane draws.
const previewLines = 200

// collectDirectories lists start and every directory below it that the
// scanner's filter lets through, in walk order.
func collectDirectories(start string, filter Filter) ([]string, error) {
	candidates := []string{start}
	visible := &Scanner{filter: filter}

	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directories are simply not offered.
			return nil
		}
		if path == start || !d.IsDir() {
			return nil
		}
		if visible.hidden(filepath.Dir(path), DirEntry{Name: d.Name(), IsDir: true}) {
			return fs.SkipDir
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for directories: %w", err)
	}
	return candidates, nil
}

// runInteractiveFinder lets the user pick a root directory below start with
// a fuzzy finder; the preview pane shows the candidate's tree. It returns ""
// when the user aborts.
func runInteractiveFinder(ctx context.Context, start string, renderer *Renderer) (string, error) {
	candidates, err := collectDirectories(start, renderer.scanner.filter)
	if err != nil {
		return "", err
	}

	idx, err := fuzzyfinder.Find(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select the folder to draw. Enter to confirm, Esc to cancel."
			}
			return previewTree(ctx, renderer, candidates[i], min(h, previewLines))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", fmt.Errorf("fuzzy finder error: %w", err)
	}
	return candidates[idx], nil
}

// previewTree renders at most limit lines of root's tree.
func previewTree(ctx context.Context, renderer *Renderer, root string, limit int) string {
	var b strings.Builder
	b.WriteString(root)
	b.WriteByte('\n')
	n := 0
	for line := range renderer.Lines(ctx, root) {
		if n == limit {
			b.WriteString("...\n")
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
		n++
	}
	return b.String()
}
