package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/filter"
	"github.com/matzehuels/debstatus/pkg/graph"
	"github.com/matzehuels/debstatus/pkg/render/tree"
	"github.com/matzehuels/debstatus/pkg/udd"
)

func TestResolveDefaults(t *testing.T) {
	isolate(t)
	cmd, opts := parseFlags(t)

	s, err := opts.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, 24, s.concurrency)
	assert.Equal(t, outputTree, s.output)
	assert.Equal(t, []filter.Filter{filter.All}, s.filters)
	assert.Equal(t, tree.UTF8, s.tree.Charset)
	assert.Equal(t, tree.PrefixIndent, s.tree.Prefix)
	assert.Equal(t, tree.DefaultFormat, s.tree.Format)
	assert.False(t, s.tree.JSON)
}

func TestResolveFlags(t *testing.T) {
	isolate(t)
	cmd, opts := parseFlags(t,
		"-j", "4",
		"--json",
		"--filter", "missing",
		"--charset", "ascii",
		"--prefix-depth",
		"--include", "app, util",
		"--no-dev-dependencies",
		"-w",
		"-p", "rand:0.8.5",
		"--features", "std,derive",
		"-Z", "bindeps",
		"--skip-cache",
	)

	s, err := opts.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, 4, s.concurrency)
	assert.Equal(t, outputJSON, s.output)
	assert.True(t, s.tree.JSON)
	assert.Equal(t, []filter.Filter{filter.Missing}, s.filters)
	assert.Equal(t, tree.ASCII, s.tree.Charset)
	assert.Equal(t, tree.PrefixDepth, s.tree.Prefix)
	assert.Equal(t, "rand:0.8.5", s.tree.Package)
	assert.Equal(t, graph.BuildOptions{
		Include:           []string{"app", "util"},
		CollapseWorkspace: true,
		NoDevDependencies: true,
	}, s.build)
	assert.Equal(t, []string{"std", "derive"}, s.cargo.Features)
	assert.Equal(t, []string{"bindeps"}, s.cargo.UnstableFlags)
	assert.True(t, s.skipCache)
}

func TestResolveConfigPrecedence(t *testing.T) {
	configDir, _ := isolate(t)
	writeConfig(t, configDir, `
database = "postgresql://from-config/udd"
concurrency = 8
`)

	cmd, opts := parseFlags(t)
	s, err := opts.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, 8, s.concurrency)
	assert.Equal(t, "postgresql://from-config/udd", s.cfg.Database)

	cmd, opts = parseFlags(t, "-j", "2", "--database", "postgresql://from-flag/udd")
	s, err = opts.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, s.concurrency)
	assert.Equal(t, "postgresql://from-flag/udd", s.cfg.Database)
}

func TestResolveWithoutConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cmd, opts := parseFlags(t, "--database", "postgresql://mine/udd", "--metrics-file", "/tmp/m.prom")
	s, err := opts.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "postgresql://mine/udd", s.cfg.Database)
	assert.Equal(t, "/tmp/m.prom", s.cfg.MetricsFile)
	assert.Equal(t, 24, s.concurrency)
}

func TestResolveExplicitConfigPath(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "concurrency = 3\n")

	cmd, opts := parseFlags(t, "--config", path)
	s, err := opts.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, s.concurrency)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"zero concurrency", []string{"-j", "0"}, "at least 1"},
		{"bad filter", []string{"--filter", "packaged"}, "packaged"},
		{"bad output", []string{"--output", "html"}, "unknown output"},
		{"bad charset", []string{"--charset", "latin1"}, "latin1"},
		{"bad color", []string{"--color", "sometimes"}, "sometimes"},
		{"bad package spec", []string{"-p", "rand:"}, "empty version"},
		{"bad include", []string{"--include", "app,9lives"}, "9lives"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cmd, opts := parseFlags(t, tt.args...)
			_, err := opts.resolve(cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotEmpty(t, errors.GetCode(err))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a,, b ,"))
	assert.Nil(t, splitList(""))
}

// auditGraph is app -> serde (packaged) and app -> cc (missing).
func auditGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	app := g.AddPackage(&graph.Package{ID: "app 0.1.0", Name: "app", Version: semver.MustParse("0.1.0")})
	serde := g.AddPackage(&graph.Package{
		ID:      "serde 1.0.200",
		Name:    "serde",
		Version: semver.MustParse("1.0.200"),
		Source:  "registry+https://github.com/rust-lang/crates.io-index",
		Debian:  &udd.Info{Unstable: udd.Match{Status: udd.Found, Version: "1.0.200"}},
	})
	cc := g.AddPackage(&graph.Package{
		ID:      "cc 1.0.83",
		Name:    "cc",
		Version: semver.MustParse("1.0.83"),
		Source:  "registry+https://github.com/rust-lang/crates.io-index",
		Debian:  &udd.Info{},
	})
	require.NoError(t, g.AddEdge(app, serde, graph.KindNormal))
	require.NoError(t, g.AddEdge(app, cc, graph.KindBuild))
	g.Roots = []graph.PackageID{"app 0.1.0"}
	return g
}

func TestWrite(t *testing.T) {
	ctx := context.Background()

	writeGraph := func(t *testing.T, g *graph.Graph, s *settings) string {
		t.Helper()
		var out bytes.Buffer
		c := New(&bytes.Buffer{}, LogInfo)
		c.Stdout = &out
		require.NoError(t, c.write(ctx, g, s))
		return out.String()
	}
	write := func(t *testing.T, s *settings) string {
		t.Helper()
		return writeGraph(t, auditGraph(t), s)
	}

	t.Run("tree", func(t *testing.T) {
		out := write(t, &settings{output: outputTree, tree: tree.Options{Color: tree.ColorNever}})
		assert.Contains(t, out, "app v0.1.0")
		assert.Contains(t, out, "serde v1.0.200 (in debian)")
		assert.Contains(t, out, "🔴")
		assert.Contains(t, out, "[build-dependencies]")
	})

	t.Run("tree compatible", func(t *testing.T) {
		g := auditGraph(t)
		id, ok := g.Lookup("serde 1.0.200")
		require.True(t, ok)
		g.SetDebian(id, &udd.Info{Unstable: udd.Match{Status: udd.Compatible, Version: "1.0.150"}})

		out := writeGraph(t, g, &settings{output: outputTree, tree: tree.Options{Color: tree.ColorNever}})
		assert.Contains(t, out, "serde v1.0.200 (1.0.150 in debian)")
	})

	t.Run("json", func(t *testing.T) {
		out := write(t, &settings{output: outputJSON, tree: tree.Options{JSON: true}})
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		for _, line := range lines {
			var v map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &v), line)
			assert.Contains(t, v, "name")
		}
	})

	t.Run("dot", func(t *testing.T) {
		out := write(t, &settings{output: outputDOT})
		assert.True(t, strings.HasPrefix(out, "digraph G"))
		assert.Contains(t, out, `"n0" -> "n2" [style=dashed];`)
	})
}
