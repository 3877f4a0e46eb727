// Package tree prints an annotated dependency graph the way `cargo tree`
// does, with a Debian packaging marker in front of every line.
//
//	🔴 app v0.1.0 (/work/app)
//	   ├── serde v1.0.200 (in debian)
//	⌛ └── tokio v1.38.0 (outdated, 1.24.2 in debian)
//	🔴     └── mio v0.8.11
//
// Packages that are already in Debian are not expanded below the root
// unless Options.All is set. Each line can also be printed as a JSON object
// instead (Options.JSON).
package tree

import (
	"bufio"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/graph"
)

// DefaultFormat prints just the package.
const DefaultFormat = "{p}"

// Charset selects the symbols used to draw tree branches.
type Charset int

const (
	UTF8 Charset = iota
	ASCII
)

// ParseCharset parses "utf8" or "ascii".
func ParseCharset(s string) (Charset, error) {
	switch s {
	case "utf8":
		return UTF8, nil
	case "ascii":
		return ASCII, nil
	}
	return UTF8, errors.New(errors.ErrCodeInvalidInput, "invalid charset %q (expected utf8 or ascii)", s)
}

// Prefix selects what is printed between the status marker and the package.
type Prefix int

const (
	// PrefixIndent draws tree branches.
	PrefixIndent Prefix = iota
	// PrefixDepth prints the depth of the package.
	PrefixDepth
	// PrefixNone prints nothing.
	PrefixNone
)

// ColorMode controls ANSI colouring of human output.
type ColorMode int

const (
	ColorAuto ColorMode = iota
	ColorAlways
	ColorNever
)

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, errors.New(errors.ErrCodeInvalidInput, "invalid color mode %q (expected auto, always or never)", s)
}

type symbols struct {
	down, tee, ell, right string
}

var (
	utf8Symbols  = symbols{down: "│", tee: "├", ell: "└", right: "─"}
	asciiSymbols = symbols{down: "|", tee: "|", ell: "`", right: "-"}
)

// Options configures Print.
type Options struct {
	// Format is the per-package pattern, DefaultFormat when empty.
	Format  string
	Charset Charset
	Prefix  Prefix
	// Invert prints dependents instead of dependencies.
	Invert bool
	// Duplicates prints the inverted tree of every crate that occurs with
	// several versions.
	Duplicates bool
	// Package roots the tree at a "name[:version]" package.
	Package string
	// All expands packages that are already in Debian.
	All bool
	// JSON prints one JSON object per line instead of the tree.
	JSON  bool
	Color ColorMode
}

type printer struct {
	g         *graph.Graph
	w         *bufio.Writer
	pattern   Pattern
	dir       graph.Direction
	sym       symbols
	prefix    Prefix
	all, json bool
	styles    styles
	err       error
}

// Print writes one tree per root: the workspace roots of g, the package
// selected by Options.Package, or every duplicate with Options.Duplicates.
func Print(w io.Writer, g *graph.Graph, opts Options) error {
	format := opts.Format
	if format == "" {
		format = DefaultFormat
	}
	pattern, err := ParsePattern(format)
	if err != nil {
		return err
	}

	p := &printer{
		g:       g,
		w:       bufio.NewWriter(w),
		pattern: pattern,
		dir:     graph.Outgoing,
		sym:     utf8Symbols,
		prefix:  opts.Prefix,
		all:     opts.All,
		json:    opts.JSON,
		styles:  newStyles(renderer(w, opts.Color)),
	}
	if opts.Invert || opts.Duplicates {
		p.dir = graph.Incoming
	}
	if opts.Charset == ASCII {
		p.sym = asciiSymbols
	}

	roots, err := selectRoots(g, opts)
	if err != nil {
		return err
	}
	for i, root := range roots {
		if i > 0 && !p.json {
			p.writeString("\n")
		}
		p.printPackage(root, make(map[graph.NodeID]bool), nil)
	}
	if p.err != nil {
		return p.err
	}
	return p.w.Flush()
}

func renderer(w io.Writer, mode ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func selectRoots(g *graph.Graph, opts Options) ([]graph.NodeID, error) {
	switch {
	case opts.Duplicates:
		return graph.Duplicates(g), nil
	case opts.Package != "":
		id, err := graph.Find(g, opts.Package)
		if err != nil {
			return nil, err
		}
		return []graph.NodeID{id}, nil
	}
	roots := g.RootIDs()
	if len(roots) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "this command requires running against an actual package in this workspace")
	}
	return roots, nil
}

func (p *printer) writeString(s string) {
	if p.err == nil {
		_, p.err = p.w.WriteString(s)
	}
}

// printPackage prints id and, unless it is pruned, its dependencies.
// visited holds the packages on the path from the root, so a dependency
// cycle is printed once more and then cut.
func (p *printer) printPackage(id graph.NodeID, visited map[graph.NodeID]bool, levels []bool) {
	pkg := p.g.Node(id)

	if p.json {
		line, err := encodeLine(pkg, len(levels))
		if err != nil && p.err == nil {
			p.err = errors.Wrap(errors.ErrCodeInternal, err, "encode %s", pkg.Name)
		}
		p.writeString(line + "\n")
	} else {
		p.writeString(" " + Icon(pkg) + " " + p.treeline(levels) + p.styles.format(p.pattern, pkg) + "\n")
	}

	if !p.all && !showDependencies(pkg) && len(levels) > 0 {
		return
	}
	if visited[id] {
		return
	}
	visited[id] = true

	for _, kind := range graph.Kinds {
		p.printDependencies(id, kind, visited, levels)
	}
}

func (p *printer) treeline(levels []bool) string {
	switch p.prefix {
	case PrefixDepth:
		return strconv.Itoa(len(levels))
	case PrefixNone:
		return ""
	}
	if len(levels) == 0 {
		return ""
	}

	var b strings.Builder
	for _, continues := range levels[:len(levels)-1] {
		b.WriteString(p.continuation(continues))
	}
	c := p.sym.ell
	if levels[len(levels)-1] {
		c = p.sym.tee
	}
	b.WriteString(c + p.sym.right + p.sym.right + " ")
	return b.String()
}

func (p *printer) continuation(continues bool) string {
	if continues {
		return p.sym.down + "   "
	}
	return "    "
}

func (p *printer) printDependencies(id graph.NodeID, kind graph.Kind, visited map[graph.NodeID]bool, levels []bool) {
	deps := p.g.Neighbors(id, p.dir, kind)
	if len(deps) == 0 {
		return
	}
	slices.SortFunc(deps, func(a, b graph.NodeID) int {
		return strings.Compare(string(p.g.Node(a).ID), string(p.g.Node(b).ID))
	})

	if !p.json && p.prefix == PrefixIndent && kind != graph.KindNormal {
		header := "[build-dependencies]"
		if kind == graph.KindDevelopment {
			header = "[dev-dependencies]"
		}
		var b strings.Builder
		b.WriteString("    ")
		for _, continues := range levels {
			b.WriteString(p.continuation(continues))
		}
		p.writeString(b.String() + header + "\n")
	}

	for i, dep := range deps {
		p.printPackage(dep, maps.Clone(visited), append(levels, i < len(deps)-1))
	}
}
