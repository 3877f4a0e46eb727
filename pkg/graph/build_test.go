package graph

import (
	"os"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/matzehuels/debstatus/pkg/cargo"
	"github.com/matzehuels/debstatus/pkg/errors"
)

func loadMetadata(t *testing.T, name string) *cargo.Metadata {
	t.Helper()
	f, err := os.Open("../cargo/testdata/" + name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	md, err := cargo.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return md
}

func names(g *Graph, ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		p := g.Node(id)
		out[i] = p.Name + "@" + p.Version.String()
	}
	sort.Strings(out)
	return out
}

func rootNames(g *Graph) []string { return names(g, g.RootIDs()) }

func TestBuildWorkspace(t *testing.T) {
	tests := []struct {
		name      string
		opts      BuildOptions
		roots     []string
		nodes     int
		edges     int
		notInTree []string
	}{
		{
			name:      "default",
			roots:     []string{"app@1.0.0", "util@1.0.0"},
			nodes:     7,
			edges:     8,
			notInTree: []string{"orphan"},
		},
		{
			name:      "no dev dependencies",
			opts:      BuildOptions{NoDevDependencies: true},
			roots:     []string{"app@1.0.0", "util@1.0.0"},
			nodes:     6,
			edges:     5,
			notInTree: []string{"orphan", "rand@0.8.5"},
		},
		{
			name:  "collapse",
			opts:  BuildOptions{CollapseWorkspace: true},
			roots: []string{"app@1.0.0"},
			nodes: 7,
			edges: 8,
		},
		{
			name:  "exclude",
			opts:  BuildOptions{Exclude: []string{"app"}},
			roots: []string{"util@1.0.0"},
			nodes: 2,
			edges: 2,
		},
		{
			name:  "include",
			opts:  BuildOptions{Include: []string{"util"}},
			roots: []string{"util@1.0.0"},
			nodes: 2,
			edges: 2,
		},
		{
			name:  "include ignores exclude",
			opts:  BuildOptions{Include: []string{"util"}, Exclude: []string{"util"}},
			roots: []string{"util@1.0.0"},
			nodes: 2,
			edges: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(loadMetadata(t, "workspace.json"), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := rootNames(g); !slices.Equal(got, tt.roots) {
				t.Errorf("roots = %v, want %v", got, tt.roots)
			}
			if g.Len() != tt.nodes {
				t.Errorf("Len() = %d, want %d (%v)", g.Len(), tt.nodes, names(g, g.Nodes()))
			}
			if g.EdgeCount() != tt.edges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.edges)
			}
			all := strings.Join(names(g, g.Nodes()), " ")
			for _, gone := range tt.notInTree {
				if strings.Contains(all, gone) {
					t.Errorf("%s should have been pruned: %s", gone, all)
				}
			}
		})
	}
}

func TestBuildDedupesKinds(t *testing.T) {
	g, err := Build(loadMetadata(t, "workspace.json"), BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	app, err := Find(g, "app")
	if err != nil {
		t.Fatal(err)
	}
	cc, err := Find(g, "cc")
	if err != nil {
		t.Fatal(err)
	}

	var toCC []Edge
	for _, e := range g.Edges(app, Outgoing) {
		if e.To == cc {
			toCC = append(toCC, e)
		}
	}
	if len(toCC) != 1 || toCC[0].Kind != KindBuild {
		t.Errorf("app -> cc edges = %v, want one build edge", toCC)
	}

	util, _ := Find(g, "util")
	if got := len(g.Edges(util, Outgoing)); got != 2 {
		t.Errorf("util edges = %d, want normal and dev", got)
	}
}

func TestBuildCommonDependency(t *testing.T) {
	g, err := Build(loadMetadata(t, "common_dependency.json"), BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 5 || g.EdgeCount() != 5 {
		t.Errorf("Len() = %d EdgeCount() = %d, want 5 and 5", g.Len(), g.EdgeCount())
	}
	b, _ := Find(g, "b")
	if got := names(g, g.Neighbors(b, Incoming)); !slices.Equal(got, []string{"a@1.0.0", "d@1.0.0"}) {
		t.Errorf("dependents of b = %v", got)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		md   string
	}{
		{"no resolve", `{"packages":[],"workspace_members":[],"resolve":null,"version":1}`},
		{"missing deps", `{
			"packages":[{"id":"a","name":"a","version":"1.0.0"},{"id":"b","name":"b","version":"1.0.0"}],
			"workspace_members":["a"],
			"resolve":{"nodes":[{"id":"a","dependencies":["b"]}]},"version":1}`},
		{"missing dep kinds", `{
			"packages":[{"id":"a","name":"a","version":"1.0.0"},{"id":"b","name":"b","version":"1.0.0"}],
			"workspace_members":["a"],
			"resolve":{"nodes":[{"id":"a","dependencies":["b"],"deps":[{"name":"b","pkg":"b","dep_kinds":[]}]}]},"version":1}`},
		{"unknown dependency", `{
			"packages":[{"id":"a","name":"a","version":"1.0.0"}],
			"workspace_members":["a"],
			"resolve":{"nodes":[{"id":"a","dependencies":["z"],"deps":[{"name":"z","pkg":"z","dep_kinds":[{"kind":null}]}]}]},"version":1}`},
		{"unknown member", `{
			"packages":[{"id":"a","name":"a","version":"1.0.0"}],
			"workspace_members":["q"],
			"resolve":{"nodes":[]},"version":1}`},
		{"bad version", `{
			"packages":[{"id":"a","name":"a","version":"one"}],
			"workspace_members":["a"],
			"resolve":{"nodes":[]},"version":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := cargo.DecodeString(tt.md)
			if err != nil {
				t.Fatal(err)
			}
			_, err = Build(md, BuildOptions{})
			if !errors.Is(err, errors.ErrCodeInvalidMetadata) {
				t.Fatalf("Build() error = %v, want INVALID_METADATA", err)
			}
		})
	}
}

func TestBuildOldCargoMessage(t *testing.T) {
	md, err := cargo.DecodeString(`{
		"packages":[{"id":"a","name":"a","version":"1.0.0"},{"id":"b","name":"b","version":"1.0.0"}],
		"workspace_members":["a"],
		"resolve":{"nodes":[{"id":"a","dependencies":["b"]}]},"version":1}`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Build(md, BuildOptions{})
	if got := errors.UserMessage(err); got != "cargo tree requires cargo 1.41 or newer" {
		t.Errorf("message = %q", got)
	}
}

func TestFind(t *testing.T) {
	g, err := Build(loadMetadata(t, "workspace.json"), BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}

	id, err := Find(g, "rand:0.8.5")
	if err != nil {
		t.Fatal(err)
	}
	if g.Node(id).Spec() != "rand:0.8.5" {
		t.Errorf("Find(rand:0.8.5) = %s", g.Node(id).Spec())
	}

	_, err = Find(g, "rand")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("Find(rand) error = %v", err)
	}
	if got := errors.UserMessage(err); got != "multiple crates found for package `rand`: rand:0.7.3, rand:0.8.5" {
		t.Errorf("message = %q", got)
	}

	_, err = Find(g, "orphan")
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("Find(orphan) error = %v, want PACKAGE_NOT_FOUND", err)
	}

	_, err = Find(g, "rand:x.y")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Find(rand:x.y) error = %v, want INVALID_INPUT", err)
	}
}

func TestDuplicates(t *testing.T) {
	g, err := Build(loadMetadata(t, "workspace.json"), BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	dups := Duplicates(g)
	var got []string
	for _, id := range dups {
		got = append(got, g.Node(id).Spec())
	}
	if !slices.Equal(got, []string{"rand:0.7.3", "rand:0.8.5"}) {
		t.Errorf("Duplicates() = %v", got)
	}
}
