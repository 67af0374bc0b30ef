package main

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// errStopped unwinds a walk when the consumer of Lines stops pulling.
var errStopped = errors.New("render stopped")

// Renderer turns a directory hierarchy into tree-drawing lines.
type Renderer struct {
	scanner *Scanner
	opts    Options
	logger  *zap.Logger
}

// NewRenderer creates a Renderer. opts is copied and never modified.
func NewRenderer(scanner *Scanner, opts Options, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{scanner: scanner, opts: opts, logger: logger}
}

// RenderTree renders rootPath with the built-in glyphs and no filters.
func RenderTree(rootPath string, showFiles, useASCII bool) iter.Seq[string] {
	glyphs := UnicodeGlyphs
	if useASCII {
		glyphs = ASCIIGlyphs
	}
	r := NewRenderer(NewScanner(Filter{}), Options{ShowFiles: showFiles, Glyphs: glyphs}, nil)
	return r.Lines(context.Background(), rootPath)
}

// HasAnyChildDirectory reports whether rootPath has at least one subdirectory.
func HasAnyChildDirectory(rootPath string) bool {
	return NewScanner(Filter{}).HasAnyChildDirectory(rootPath)
}

// Lines returns the rendered lines of root as a one-shot sequence.
// Iteration ends early if ctx is cancelled.
func (r *Renderer) Lines(ctx context.Context, root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = r.Walk(ctx, root, func(line string) error {
			if !yield(line) {
				return errStopped
			}
			return nil
		})
	}
}

// Walk renders root depth-first, passing each line to emit in output order.
// It returns the first error from emit, or ctx.Err() if ctx is cancelled
// between directory scans.
func (r *Renderer) Walk(ctx context.Context, root string, emit func(line string) error) error {
	err := r.renderDir(ctx, root, RenderContext{}, emit)
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}

func (r *Renderer) renderDir(ctx context.Context, path string, rc RenderContext, emit func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	scan := r.scanner.Scan(path)
	r.logScanError(path, rc.Depth, scan.Err)

	g := r.opts.Glyphs
	prefix := rc.prefix(g)

	if r.opts.ShowFiles && len(scan.Files) > 0 {
		lead := g.column(scan.HasDirectories())
		// The trailing blank entry leaves a spacer line between files and subfolders.
		files := append(scan.Files, DirEntry{})
		for _, f := range files {
			if err := emit(prefix + lead + f.Name); err != nil {
				return err
			}
		}
	}

	for i, d := range scan.Dirs {
		last := i == len(scan.Dirs)-1
		if err := emit(prefix + g.connector(last) + d.Name); err != nil {
			return err
		}
		if err := r.renderDir(ctx, filepath.Join(path, d.Name), rc.descend(!last), emit); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) logScanError(path string, depth int, err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrEnumeration):
		r.logger.Warn("directory listing incomplete",
			zap.String("path", path),
			zap.Int("depth", depth),
			zap.Error(err))
	default:
		r.logger.Debug("directory unavailable, rendering as empty",
			zap.String("path", path),
			zap.Int("depth", depth),
			zap.Error(err))
	}
}

// prefix draws one indentation column per ancestor level.
func (c RenderContext) prefix(g GlyphSet) string {
	var b strings.Builder
	for _, continues := range c.AncestorContinues {
		b.WriteString(g.column(continues))
	}
	return b.String()
}
