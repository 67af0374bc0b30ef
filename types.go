package main

// DirEntry is a single child of a scanned directory.
type DirEntry struct {
	Name  string
	IsDir bool
}

// ScanResult holds the children of one directory, split by kind.
// Both slices keep the order the filesystem returned them in.
type ScanResult struct {
	Dirs  []DirEntry
	Files []DirEntry
	Err   error // Why the listing is empty or partial, if it is
}

// HasDirectories reports whether the scan found at least one subdirectory.
func (r ScanResult) HasDirectories() bool {
	return len(r.Dirs) > 0
}

// RenderContext is the indentation state threaded through recursion.
// AncestorContinues[d] is true when the ancestor at depth d still has
// sibling directories to draw below the current branch.
type RenderContext struct {
	Depth             int
	AncestorContinues []bool
}

// descend returns the context for a child directory. The returned value owns
// its own backing array, so sibling branches never share state.
func (c RenderContext) descend(continues bool) RenderContext {
	next := make([]bool, len(c.AncestorContinues)+1)
	copy(next, c.AncestorContinues)
	next[len(c.AncestorContinues)] = continues
	return RenderContext{Depth: c.Depth + 1, AncestorContinues: next}
}

// Options controls a single render. It is passed by value and never mutated.
type Options struct {
	ShowFiles bool
	Glyphs    GlyphSet
}
