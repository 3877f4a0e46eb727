package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/debstatus/pkg/classify"
	"github.com/matzehuels/debstatus/pkg/render/tree"
)

// Output formats for --output.
const (
	outputTree = "tree"
	outputJSON = "json"
	outputDOT  = "dot"
	outputSVG  = "svg"
)

// options holds the flags of the root command.
type options struct {
	// cargo metadata
	manifestPath      string
	features          []string
	allFeatures       bool
	noDefaultFeatures bool
	target            string
	allTargets        bool
	frozen            bool
	locked            bool
	offline           bool
	unstable          []string

	// graph
	pkg               string
	include           string
	exclude           string
	collapseWorkspace bool
	noDevDependencies bool
	filter            string

	// classification
	database    string
	concurrency int
	skipCache   bool
	configPath  string
	metricsFile string

	// output
	invert     bool
	noIndent   bool
	prefixDeep bool
	all        bool
	json       bool
	duplicates bool
	charset    string
	format     string
	color      string
	output     string

	verbose bool
	quiet   bool
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.pkg, "package", "p", "", "package to be used as the root of the tree (name[:version])")
	f.StringVar(&o.include, "include", "", "comma separated workspace members to use as roots")
	f.StringVar(&o.exclude, "exclude", "", "comma separated workspace members to leave out")
	f.StringSliceVar(&o.features, "features", nil, "comma separated list of features to activate (repeatable)")
	f.BoolVar(&o.allFeatures, "all-features", false, "activate all available features")
	f.BoolVar(&o.noDefaultFeatures, "no-default-features", false, "do not activate the default feature")
	f.StringVar(&o.target, "target", "", "set the target triple (defaults to the host)")
	f.BoolVar(&o.allTargets, "all-targets", false, "return dependencies for all targets")
	f.BoolVar(&o.skipCache, "skip-cache", false, "query the database even when a fresh cache entry exists")
	f.IntVarP(&o.concurrency, "concurrency", "j", classify.DefaultConcurrency, "number of concurrent database connections")
	f.BoolVar(&o.noDevDependencies, "no-dev-dependencies", false, "skip dev dependencies")
	f.StringVar(&o.filter, "filter", "all", "comma separated filters: all, missing")
	f.StringVar(&o.manifestPath, "manifest-path", "", "path to Cargo.toml")
	f.BoolVarP(&o.collapseWorkspace, "collapse-workspace", "w", false, "drop workspace members that other members depend on")
	f.BoolVarP(&o.invert, "invert", "i", false, "invert the tree direction")
	f.BoolVar(&o.noIndent, "no-indent", false, "display the dependencies as a list (rather than a tree)")
	f.BoolVar(&o.prefixDeep, "prefix-depth", false, "display the dependencies as a list with depth prefixes")
	f.BoolVarP(&o.all, "all", "a", false, "expand dependencies of crates that are already packaged")
	f.BoolVar(&o.json, "json", false, "print one JSON object per package (same as --output json)")
	f.BoolVarP(&o.duplicates, "duplicate", "d", false, "show only dependencies which come in multiple versions (implies -i)")
	f.StringVar(&o.charset, "charset", "utf8", "character set to use in output: utf8, ascii")
	f.StringVarP(&o.format, "format", "f", tree.DefaultFormat, "format string used for printing dependencies ({p}, {l}, {r})")
	f.StringVar(&o.color, "color", "auto", "coloring: auto, always, never")
	f.StringVar(&o.output, "output", outputTree, "output format: tree, json, dot, svg")
	f.BoolVar(&o.frozen, "frozen", false, "require Cargo.lock and cache are up to date")
	f.BoolVar(&o.locked, "locked", false, "require Cargo.lock is up to date")
	f.BoolVar(&o.offline, "offline", false, "run without accessing the network")
	f.StringArrayVarP(&o.unstable, "unstable-flags", "Z", nil, "unstable (nightly-only) flags to cargo")
	f.StringVar(&o.database, "database", "", "UDD connection string (defaults to the public mirror)")

	p := cmd.PersistentFlags()
	p.StringVar(&o.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cargo-debstatus/config.toml)")
	p.StringVar(&o.metricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	p.BoolVarP(&o.verbose, "verbose", "v", false, "log every database query")
	p.BoolVarP(&o.quiet, "quiet", "q", false, "only log errors")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}
