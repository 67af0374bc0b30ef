package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// GlyphSet is the set of characters used to draw connectors.
// Each glyph occupies exactly one column.
type GlyphSet struct {
	Tee      string `yaml:"tee"`      // non-last sibling, e.g. ├
	Corner   string `yaml:"corner"`   // last sibling, e.g. └
	Branch   string `yaml:"branch"`   // horizontal run, e.g. ─
	Vertical string `yaml:"vertical"` // continuation column, e.g. │
	Blank    string `yaml:"blank"`
}

const (
	glyphSetUnicode = "unicode"
	glyphSetASCII   = "ascii"
)

var (
	UnicodeGlyphs = GlyphSet{Tee: "├", Corner: "└", Branch: "─", Vertical: "│", Blank: " "}
	ASCIIGlyphs   = GlyphSet{Tee: "+", Corner: "\\", Branch: "-", Vertical: "|", Blank: " "}
)

// ErrUnknownGlyphSet is returned when a named glyph set does not exist.
var ErrUnknownGlyphSet = errors.New("unknown glyph set")

// connector draws the four-column lead-in for a directory line.
func (g GlyphSet) connector(last bool) string {
	if last {
		return g.Corner + strings.Repeat(g.Branch, 3)
	}
	return g.Tee + strings.Repeat(g.Branch, 3)
}

// column draws one four-column indentation slot.
func (g GlyphSet) column(continues bool) string {
	if continues {
		return g.Vertical + strings.Repeat(g.Blank, 3)
	}
	return strings.Repeat(g.Blank, 4)
}

func (g GlyphSet) validate() error {
	for name, glyph := range map[string]string{
		"tee":      g.Tee,
		"corner":   g.Corner,
		"branch":   g.Branch,
		"vertical": g.Vertical,
		"blank":    g.Blank,
	} {
		if utf8.RuneCountInString(glyph) != 1 {
			return fmt.Errorf("glyph %q must be exactly one character, got %q", name, glyph)
		}
	}
	return nil
}

// GlyphRegistry maps glyph set names to their definitions.
type GlyphRegistry map[string]GlyphSet

// builtinGlyphs returns a registry holding only the built-in sets.
func builtinGlyphs() GlyphRegistry {
	return GlyphRegistry{
		glyphSetUnicode: UnicodeGlyphs,
		glyphSetASCII:   ASCIIGlyphs,
	}
}

// Lookup returns the named glyph set.
func (r GlyphRegistry) Lookup(name string) (GlyphSet, error) {
	g, ok := r[strings.ToLower(name)]
	if !ok {
		return GlyphSet{}, fmt.Errorf("%w: %s (available: %s)", ErrUnknownGlyphSet, name, strings.Join(r.Names(), ", "))
	}
	return g, nil
}

// Names lists the registered set names in alphabetical order.
func (r GlyphRegistry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loadGlyphFile merges the sets defined in a YAML file into the registry.
// Built-in names may be overridden.
func (r GlyphRegistry) loadGlyphFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading glyph file %s: %w", path, err)
	}

	var sets map[string]GlyphSet
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return fmt.Errorf("error parsing glyph file %s: %w", path, err)
	}

	for name, g := range sets {
		if g.Blank == "" {
			g.Blank = " "
		}
		if err := g.validate(); err != nil {
			return fmt.Errorf("glyph set %q in %s: %w", name, path, err)
		}
		r[strings.ToLower(name)] = g
	}
	return nil
}

// loadGlyphRegistry builds the registry from the built-ins plus an optional
// glyph file. When explicitPath is empty, glyphs.yml is looked up in the
// config directory and silently skipped if absent.
func loadGlyphRegistry(explicitPath string) (GlyphRegistry, error) {
	registry := builtinGlyphs()

	path := explicitPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return registry, nil
		}
		candidate := filepath.Join(home, ".config", appName, "glyphs.yml")
		if _, err := os.Stat(candidate); err != nil {
			return registry, nil
		}
		path = candidate
	}

	if err := registry.loadGlyphFile(path); err != nil {
		return nil, err
	}
	return registry, nil
}
