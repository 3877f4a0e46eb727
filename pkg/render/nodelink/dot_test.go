package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/debstatus/pkg/graph"
	"github.com/matzehuels/debstatus/pkg/udd"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	app := g.AddPackage(&graph.Package{ID: "app 0.1.0", Name: "app", Version: semver.MustParse("0.1.0")})
	serde := g.AddPackage(&graph.Package{
		ID:      "serde 1.0.200",
		Name:    "serde",
		Version: semver.MustParse("1.0.200"),
		Debian:  &udd.Info{Unstable: udd.Match{Status: udd.Found, Version: "1.0.200"}},
	})
	cc := g.AddPackage(&graph.Package{ID: "cc 1.0.83", Name: "cc", Version: semver.MustParse("1.0.83")})
	for _, e := range []graph.Edge{{From: app, To: serde}, {From: app, To: cc, Kind: graph.KindBuild}, {From: cc, To: serde, Kind: graph.KindDevelopment}} {
		if err := g.AddEdge(e.From, e.To, e.Kind); err != nil {
			t.Fatal(err)
		}
	}
	g.Roots = []graph.PackageID{"app 0.1.0"}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{})

	for _, want := range []string{
		"digraph G",
		`"n0" [label="app v0.1.0", fillcolor="#ffcdd2", penwidth=3];`,
		`"n1" [label="serde v1.0.200", fillcolor="#c8e6c9"];`,
		`"n0" -> "n1";`,
		`"n0" -> "n2" [style=dashed];`,
		`"n2" -> "n1" [style=dotted];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(testGraph(t), Options{Detailed: true})

	if !strings.Contains(dot, `serde v1.0.200\n1.0.200 available`) {
		t.Errorf("ToDOT() detailed output missing status\n%s", dot)
	}
	if !strings.Contains(dot, `cc v1.0.83\nmissing`) {
		t.Errorf("ToDOT() detailed output missing tier of unclassified crate\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "rewrites header",
			svg:  `<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			svg:  `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.svg))); got != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testGraph(t), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}
