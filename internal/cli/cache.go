package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/debstatus/pkg/cache"
	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/udd"
)

// openCache opens the configured cache backend. A file cache whose
// directory cannot be determined degrades to no caching.
func openCache(ctx context.Context, cfg CacheConfig, logger *log.Logger) (cache.Cache, error) {
	switch cfg.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		r, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.NewScoped(r, appName), nil
	}

	dir, err := cacheDir(cfg)
	if err != nil {
		logger.Warn("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// cacheDir returns the configured file cache directory or the XDG default.
func cacheDir(cfg CacheConfig) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cache.DefaultDir()
}

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the packaging status cache",
	}

	cmd.AddCommand(c.cacheClearCommand(opts))
	cmd.AddCommand(c.cachePathCommand(opts))

	return cmd
}

// fileCacheDir resolves the file cache directory for the cache subcommands.
func fileCacheDir(cmd *cobra.Command, opts *options) (string, error) {
	cfg, err := opts.config(cmd)
	if err != nil {
		return "", err
	}
	if b := cfg.Cache.Backend; b != "" && b != backendFile {
		return "", errors.New(errors.ErrCodeInvalidInput, "cache backend is %q; only the file cache can be managed here", b)
	}
	dir, err := cacheDir(cfg.Cache)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeCacheIO, err, "locate cache directory")
	}
	return dir, nil
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(opts *options) *cobra.Command {
	var release string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached package statuses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch release {
			case "", udd.ReleaseSid, udd.ReleaseNew:
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown release %q (expected %s or %s)", release, udd.ReleaseSid, udd.ReleaseNew)
			}

			dir, err := fileCacheDir(cmd, opts)
			if err != nil {
				return err
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}

			count, err := fc.Clear(release)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if count == 0 {
				printInfo(out, "Cache is empty")
				return nil
			}
			printSuccess(out, "Cleared %d cached entries", count)
			printDetail(out, "Directory: %s", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&release, "release", "", "only clear entries of this release (sid or new)")

	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := fileCacheDir(cmd, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
