package graph

import (
	"path/filepath"
	"slices"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/debstatus/pkg/cargo"
	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/udd"
)

// PackageID identifies a package (name, version and source).
type PackageID = cargo.PackageID

// NodeID is a stable handle into the vertex arena.
type NodeID int

// Kind is the dependency kind carried by an edge.
type Kind int

const (
	KindNormal Kind = iota
	KindBuild
	KindDevelopment
)

// Kinds lists every dependency kind in display order.
var Kinds = []Kind{KindNormal, KindBuild, KindDevelopment}

func (k Kind) String() string {
	switch k {
	case KindBuild:
		return "build"
	case KindDevelopment:
		return "dev"
	default:
		return "normal"
	}
}

// Direction selects which edges of a vertex to follow.
type Direction int

const (
	// Outgoing follows dependent → dependency.
	Outgoing Direction = iota
	// Incoming follows dependency → dependent.
	Incoming
)

// Package is a vertex of the graph.
type Package struct {
	ID           PackageID
	Name         string
	Version      *semver.Version
	Source       string
	ManifestPath string
	License      string
	Repository   string

	// Debian is nil until the package has been classified.
	Debian *udd.Info
}

// InDebian reports whether the package is in sid or in the NEW queue.
func (p *Package) InDebian() bool {
	return p.Debian != nil && (p.Debian.InUnstable() || p.Debian.InNew())
}

// Progress returns the packaging tier, Missing when unclassified.
func (p *Package) Progress() udd.Progress {
	if p.Debian == nil {
		return udd.Missing
	}
	return p.Debian.Progress()
}

// IsCratesIO reports whether the package comes from crates.io.
func (p *Package) IsCratesIO() bool { return cargo.IsCratesIO(p.Source) }

// IsPath reports whether the package is a local path dependency.
func (p *Package) IsPath() bool { return p.Source == "" }

// ManifestDir returns the directory containing the package's Cargo.toml.
func (p *Package) ManifestDir() string { return filepath.Dir(p.ManifestPath) }

// Spec returns "name:version", the form accepted by --package.
func (p *Package) Spec() string { return p.Name + ":" + p.Version.String() }

// Edge is a directed dependent → dependency arc.
type Edge struct {
	From NodeID
	To   NodeID
	Kind Kind
}

type edgeSlot struct {
	Edge
	live bool
}

// Graph is a dependency graph with an ordered root set.
// It is not safe for concurrent use.
type Graph struct {
	nodes []*Package // nil marks a removed vertex
	edges []edgeSlot
	out   [][]int
	in    [][]int
	index map[PackageID]NodeID

	// Roots are the workspace members the graph is displayed from.
	Roots []PackageID
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[PackageID]NodeID)}
}

// AddPackage adds p and returns its handle. Adding an id twice returns the
// existing handle and leaves the graph unchanged.
func (g *Graph) AddPackage(p *Package) NodeID {
	if id, ok := g.index[p.ID]; ok {
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, p)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.index[p.ID] = id
	return id
}

func (g *Graph) live(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id] != nil
}

// AddEdge adds a from → to edge of the given kind.
func (g *Graph) AddEdge(from, to NodeID, kind Kind) error {
	if !g.live(from) || !g.live(to) {
		return errors.New(errors.ErrCodeInternal, "edge %d -> %d references a missing vertex", from, to)
	}
	idx := len(g.edges)
	g.edges = append(g.edges, edgeSlot{Edge: Edge{From: from, To: to, Kind: kind}, live: true})
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
	return nil
}

// Node returns the package behind id, or nil for a removed or unknown id.
func (g *Graph) Node(id NodeID) *Package {
	if !g.live(id) {
		return nil
	}
	return g.nodes[id]
}

// Lookup returns the handle of a package id.
func (g *Graph) Lookup(pid PackageID) (NodeID, bool) {
	id, ok := g.index[pid]
	return id, ok
}

// Nodes returns the live handles in ascending order.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.index))
	for i, p := range g.nodes {
		if p != nil {
			ids = append(ids, NodeID(i))
		}
	}
	return ids
}

// Len returns the number of live vertices.
func (g *Graph) Len() int { return len(g.index) }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, e := range g.edges {
		if e.live {
			n++
		}
	}
	return n
}

// Edges returns the live edges of id in dir, in insertion order. When kinds
// are given only edges of those kinds are returned.
func (g *Graph) Edges(id NodeID, dir Direction, kinds ...Kind) []Edge {
	if !g.live(id) {
		return nil
	}
	adj := g.out[id]
	if dir == Incoming {
		adj = g.in[id]
	}

	var edges []Edge
	for _, idx := range adj {
		e := g.edges[idx]
		if !e.live {
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, e.Kind) {
			continue
		}
		edges = append(edges, e.Edge)
	}
	return edges
}

// Neighbors returns the distinct vertices at the other end of id's edges
// in dir, restricted to kinds when given.
func (g *Graph) Neighbors(id NodeID, dir Direction, kinds ...Kind) []NodeID {
	var ids []NodeID
	for _, e := range g.Edges(id, dir, kinds...) {
		other := e.To
		if dir == Incoming {
			other = e.From
		}
		if !slices.Contains(ids, other) {
			ids = append(ids, other)
		}
	}
	return ids
}

// RetainEdges drops every live edge for which keep returns false.
func (g *Graph) RetainEdges(keep func(Edge) bool) {
	for i := range g.edges {
		if g.edges[i].live && !keep(g.edges[i].Edge) {
			g.edges[i].live = false
		}
	}
	g.compact()
}

// RemoveNode removes a vertex and its edges. The handle is never reused.
func (g *Graph) RemoveNode(id NodeID) {
	if g.removeNode(id) {
		g.compact()
	}
}

// removeNode tombstones id and kills its edges without compacting the
// adjacency lists. It reports whether id was live.
func (g *Graph) removeNode(id NodeID) bool {
	if !g.live(id) {
		return false
	}
	for _, idx := range g.out[id] {
		g.edges[idx].live = false
	}
	for _, idx := range g.in[id] {
		g.edges[idx].live = false
	}
	delete(g.index, g.nodes[id].ID)
	g.nodes[id] = nil
	g.out[id] = nil
	g.in[id] = nil
	return true
}

// compact drops dead edge indices from the adjacency lists.
func (g *Graph) compact() {
	dead := func(idx int) bool { return !g.edges[idx].live }
	for i := range g.nodes {
		g.out[i] = slices.DeleteFunc(g.out[i], dead)
		g.in[i] = slices.DeleteFunc(g.in[i], dead)
	}
}

// SetDebian records the classification of a package.
func (g *Graph) SetDebian(id NodeID, info *udd.Info) {
	if p := g.Node(id); p != nil {
		p.Debian = info
	}
}

// Reachable returns every vertex reachable from start (inclusive) along
// edges in dir, using an explicit stack.
func (g *Graph) Reachable(dir Direction, start ...NodeID) map[NodeID]bool {
	seen := make(map[NodeID]bool)
	stack := make([]NodeID, 0, len(start))
	for _, id := range start {
		if g.live(id) && !seen[id] {
			seen[id] = true
			stack = append(stack, id)
		}
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range g.Neighbors(id, dir) {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return seen
}

// RootIDs returns the handles of the roots that are still in the graph.
func (g *Graph) RootIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.Roots))
	for _, pid := range g.Roots {
		if id, ok := g.index[pid]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
