package graph

import (
	"slices"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/debstatus/pkg/cargo"
	"github.com/matzehuels/debstatus/pkg/errors"
)

// BuildOptions selects the roots of a graph built from cargo metadata.
type BuildOptions struct {
	// Include keeps only the workspace members with these names as roots.
	Include []string
	// Exclude drops the workspace members with these names.
	Exclude []string
	// CollapseWorkspace drops roots that are reachable from another root.
	CollapseWorkspace bool
	// NoDevDependencies skips dev-dependency edges entirely.
	NoDevDependencies bool
}

const errOldCargo = "cargo tree requires cargo 1.41 or newer"

// Build converts cargo metadata into a pruned dependency graph.
func Build(md *cargo.Metadata, opts BuildOptions) (*Graph, error) {
	if md.Resolve == nil {
		return nil, errors.New(errors.ErrCodeInvalidMetadata, "cargo metadata has no resolve graph")
	}

	g := New()
	for i := range md.Packages {
		p := &md.Packages[i]
		v, err := semver.StrictNewVersion(p.Version)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidMetadata, err, "package %s has version %q", p.Name, p.Version)
		}
		g.AddPackage(&Package{
			ID:           p.ID,
			Name:         p.Name,
			Version:      v,
			Source:       p.Source,
			ManifestPath: p.ManifestPath,
			License:      p.License,
			Repository:   p.Repository,
		})
	}

	for _, node := range md.Resolve.Nodes {
		if len(node.Deps) != len(node.Dependencies) {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, errOldCargo)
		}
		from, ok := g.Lookup(node.ID)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, "resolve node references unknown package %s", node.ID)
		}
		for _, dep := range node.Deps {
			if len(dep.DepKinds) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidMetadata, errOldCargo)
			}
			to, ok := g.Lookup(dep.Pkg)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidMetadata, "dependency references unknown package %s", dep.Pkg)
			}
			for _, kind := range edgeKinds(dep.DepKinds) {
				if kind == KindDevelopment && opts.NoDevDependencies {
					continue
				}
				if err := g.AddEdge(from, to, kind); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, pid := range md.WorkspaceMembers {
		if _, ok := g.Lookup(pid); !ok {
			return nil, errors.New(errors.ErrCodeInvalidMetadata, "workspace member %s is not a known package", pid)
		}
	}
	g.Roots = slices.Clone(md.WorkspaceMembers)

	if len(opts.Include) > 0 {
		g.Roots = g.rootsNamed(opts.Include)
		if opts.CollapseWorkspace {
			g.collapse()
		}
	} else {
		if opts.CollapseWorkspace {
			g.collapse()
		}
		if len(opts.Exclude) > 0 {
			excluded := g.rootsNamed(opts.Exclude)
			g.Roots = slices.DeleteFunc(g.Roots, func(pid PackageID) bool {
				return slices.Contains(excluded, pid)
			})
		}
	}

	g.Prune()
	return g, nil
}

// edgeKinds maps cargo's (kind, target) pairs to distinct edge kinds.
// A dependency listed for several targets yields one edge per kind.
func edgeKinds(infos []cargo.DepKindInfo) []Kind {
	var kinds []Kind
	for _, info := range infos {
		var k Kind
		switch info.Kind {
		case cargo.KindBuild:
			k = KindBuild
		case cargo.KindDevelopment:
			k = KindDevelopment
		default:
			k = KindNormal
		}
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func (g *Graph) rootsNamed(names []string) []PackageID {
	var roots []PackageID
	for _, pid := range g.Roots {
		id, ok := g.Lookup(pid)
		if ok && slices.Contains(names, g.Node(id).Name) {
			roots = append(roots, pid)
		}
	}
	return roots
}

// collapse removes every root that another root depends on, directly or
// transitively.
func (g *Graph) collapse() {
	reached := make(map[PackageID]bool)
	for _, root := range g.RootIDs() {
		for id := range g.Reachable(Outgoing, root) {
			if id != root {
				reached[g.Node(id).ID] = true
			}
		}
	}
	g.Roots = slices.DeleteFunc(g.Roots, func(pid PackageID) bool { return reached[pid] })
}

// Prune removes every vertex that is not reachable from a root.
func (g *Graph) Prune() {
	keep := g.Reachable(Outgoing, g.RootIDs()...)
	removed := false
	for _, id := range g.Nodes() {
		if !keep[id] {
			removed = g.removeNode(id) || removed
		}
	}
	if removed {
		g.compact()
	}
}

// Find resolves a "name[:version]" package spec to a single vertex.
func Find(g *Graph, spec string) (NodeID, error) {
	name, version, hasVersion := strings.Cut(spec, ":")

	var want *semver.Version
	if hasVersion {
		v, err := semver.NewVersion(version)
		if err != nil {
			return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid version in package spec `%s`", spec)
		}
		want = v
	}

	var found []NodeID
	for _, id := range g.Nodes() {
		p := g.Node(id)
		if p.Name != name {
			continue
		}
		if want != nil && !p.Version.Equal(want) {
			continue
		}
		found = append(found, id)
	}

	switch len(found) {
	case 0:
		return 0, errors.New(errors.ErrCodePackageNotFound, "no crates found for package `%s`", spec)
	case 1:
		return found[0], nil
	default:
		specs := make([]string, len(found))
		for i, id := range found {
			specs[i] = g.Node(id).Spec()
		}
		sort.Strings(specs)
		return 0, errors.New(errors.ErrCodeInvalidInput, "multiple crates found for package `%s`: %s", spec, strings.Join(specs, ", "))
	}
}

// Duplicates returns the vertices whose crate name occurs with more than one
// version, ordered by package id.
func Duplicates(g *Graph) []NodeID {
	byName := make(map[string][]NodeID)
	for _, id := range g.Nodes() {
		name := g.Node(id).Name
		byName[name] = append(byName[name], id)
	}

	var dups []NodeID
	for _, ids := range byName {
		if len(ids) > 1 {
			dups = append(dups, ids...)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return g.Node(dups[i]).ID < g.Node(dups[j]).ID })
	return dups
}
