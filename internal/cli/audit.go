package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/debstatus/pkg/cargo"
	"github.com/matzehuels/debstatus/pkg/classify"
	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/filter"
	"github.com/matzehuels/debstatus/pkg/graph"
	"github.com/matzehuels/debstatus/pkg/observability/prom"
	"github.com/matzehuels/debstatus/pkg/render/nodelink"
	"github.com/matzehuels/debstatus/pkg/render/tree"
	"github.com/matzehuels/debstatus/pkg/udd"
)

// settings is the validated combination of flags and config file.
type settings struct {
	cfg         Config
	concurrency int
	skipCache   bool
	output      string
	cargo       cargo.Options
	build       graph.BuildOptions
	filters     []filter.Filter
	tree        tree.Options
}

// config loads the config file and applies the flags that override it.
func (o *options) config(cmd *cobra.Command) (Config, error) {
	path := o.configPath
	if path == "" {
		// Without a config directory there is no default file to read.
		path, _ = defaultConfigPath()
	}
	var cfg Config
	if path != "" {
		var err error
		if cfg, err = loadConfig(path); err != nil {
			return Config{}, err
		}
	}

	if cmd.Flags().Changed("database") {
		cfg.Database = o.database
	}
	if cmd.Flags().Changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
	return cfg, nil
}

func (o *options) resolve(cmd *cobra.Command) (*settings, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}

	s := &settings{cfg: cfg, skipCache: o.skipCache, output: o.output}

	s.concurrency = classify.DefaultConcurrency
	switch {
	case cmd.Flags().Changed("concurrency"):
		s.concurrency = o.concurrency
	case cfg.Concurrency > 0:
		s.concurrency = cfg.Concurrency
	}
	if s.concurrency < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "concurrency must be at least 1")
	}

	for _, list := range []string{o.include, o.exclude} {
		if list == "" {
			continue
		}
		if err := errors.ValidateNameList(list); err != nil {
			return nil, err
		}
	}
	if o.pkg != "" {
		if err := errors.ValidatePackageSpec(o.pkg); err != nil {
			return nil, err
		}
	}

	if s.filters, err = filter.ParseList(o.filter); err != nil {
		return nil, err
	}

	if o.json {
		s.output = outputJSON
	}
	switch s.output {
	case outputTree, outputJSON, outputDOT, outputSVG:
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown output %q (expected tree, json, dot or svg)", s.output)
	}

	s.cargo = cargo.Options{
		ManifestPath:      o.manifestPath,
		Features:          o.features,
		AllFeatures:       o.allFeatures,
		NoDefaultFeatures: o.noDefaultFeatures,
		Target:            o.target,
		AllTargets:        o.allTargets,
		Frozen:            o.frozen,
		Locked:            o.locked,
		Offline:           o.offline,
		UnstableFlags:     o.unstable,
	}
	s.build = graph.BuildOptions{
		Include:           splitList(o.include),
		Exclude:           splitList(o.exclude),
		CollapseWorkspace: o.collapseWorkspace,
		NoDevDependencies: o.noDevDependencies,
	}

	s.tree = tree.Options{
		Format:     o.format,
		Invert:     o.invert,
		Duplicates: o.duplicates,
		Package:    o.pkg,
		All:        o.all,
		JSON:       s.output == outputJSON,
	}
	if s.tree.Charset, err = tree.ParseCharset(o.charset); err != nil {
		return nil, err
	}
	if s.tree.Color, err = tree.ParseColorMode(o.color); err != nil {
		return nil, err
	}
	switch {
	case o.prefixDeep:
		s.tree.Prefix = tree.PrefixDepth
	case o.noIndent:
		s.tree.Prefix = tree.PrefixNone
	}
	return s, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// audit is the root command: load, classify, filter and print.
func (c *CLI) audit(cmd *cobra.Command, o *options) (err error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	s, err := o.resolve(cmd)
	if err != nil {
		return err
	}

	if path := s.cfg.MetricsFile; path != "" {
		hooks := prom.New()
		hooks.Install()
		defer func() {
			if werr := hooks.WriteTextfile(path); werr != nil && err == nil {
				err = errors.Wrap(errors.ErrCodeInternal, werr, "write metrics to %s", path)
			}
		}()
	}

	prog := startStage(logger)
	md, err := cargo.Load(ctx, s.cargo)
	if err != nil {
		return err
	}
	g, err := graph.Build(md, s.build)
	if err != nil {
		return err
	}
	prog.done("Loaded %d packages", g.Len())

	store, err := openCache(ctx, s.cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	prog = startStage(logger)
	spin := c.newSpinner(ctx, fmt.Sprintf("Classifying %d packages", g.Len()))
	spin.Start()
	err = classify.Run(ctx, g, classify.Options{
		Concurrency: s.concurrency,
		Connect: func(ctx context.Context) (classify.Classifier, error) {
			r, err := udd.Dial(ctx, udd.Config{
				DSN:       s.cfg.Database,
				Cache:     store,
				SkipCache: s.skipCache,
				Logger:    logger,
			})
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Progress: func(done, total int) {
			spin.Update(fmt.Sprintf("Classifying packages %d/%d", done, total))
		},
		Logger: logger,
	})
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done("Classified %d packages", g.Len())

	filter.Apply(g, s.filters)
	return c.write(ctx, g, s)
}

func (c *CLI) write(ctx context.Context, g *graph.Graph, s *settings) error {
	switch s.output {
	case outputDOT:
		_, err := fmt.Fprint(c.Stdout, nodelink.ToDOT(g, nodelink.Options{Detailed: true}))
		return err
	case outputSVG:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{Detailed: true}))
		if err != nil {
			return err
		}
		_, err = c.Stdout.Write(svg)
		return err
	}
	return tree.Print(c.Stdout, g, s.tree)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
