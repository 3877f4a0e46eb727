package udd

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/debstatus/pkg/cache"
	"github.com/matzehuels/debstatus/pkg/debver"
	"github.com/matzehuels/debstatus/pkg/errors"
	"github.com/matzehuels/debstatus/pkg/observability"
)

// Release tags used in cache keys, logs and metrics.
const (
	ReleaseSid = "sid"
	ReleaseNew = "new"
)

const (
	queryPackages = `SELECT version::text FROM packages WHERE package IN ($1, $2) AND release = 'sid';`
	queryProvides = `SELECT version::text FROM packages WHERE release = 'sid' AND (provides ~ $1 OR provides ~ $2);`
	querySources  = `SELECT version::text FROM sources WHERE source IN ($1, $2) AND release = 'sid';`
	queryNew      = `SELECT version::text FROM new_sources WHERE source IN ($1, $2);`
)

// Resolver classifies crate versions using one database connection.
// It is not safe for concurrent use; each worker owns its own Resolver.
type Resolver struct {
	db    Querier
	cache cache.Cache

	// SkipCache ignores cached entries on read. Fresh results are still
	// written back.
	SkipCache bool

	Logger *log.Logger
}

// NewResolver returns a Resolver that queries db and caches in c.
// A nil cache disables caching.
func NewResolver(db Querier, c cache.Cache) *Resolver {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Resolver{db: db, cache: c}
}

// Config describes how to open a Resolver backed by a Postgres connection.
type Config struct {
	DSN       string
	Cache     cache.Cache
	SkipCache bool
	Logger    *log.Logger
}

// Dial connects to cfg.DSN (or DefaultDSN) and returns a Resolver owning
// that connection.
func Dial(ctx context.Context, cfg Config) (*Resolver, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultDSN
	}
	conn, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	r := NewResolver(conn, cfg.Cache)
	r.SkipCache = cfg.SkipCache
	r.Logger = cfg.Logger
	return r, nil
}

// Close closes the underlying connection if it has one. The cache is
// shared between resolvers and stays open.
func (r *Resolver) Close() error {
	if c, ok := r.db.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// Classify looks the crate up in sid and, when it is absent there, in the
// NEW queue.
func (r *Resolver) Classify(ctx context.Context, name, version string) (*Info, error) {
	sid, err := r.Search(ctx, name, version)
	if err != nil {
		return nil, err
	}
	info := &Info{Unstable: sid}
	if sid.Status != NotFound {
		return info, nil
	}

	info.New, err = r.SearchNew(ctx, name, version)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// Search classifies a crate version against sid. Binary packages are tried
// first, then Provides entries, then source packages; the first query that
// returns rows decides.
func (r *Resolver) Search(ctx context.Context, name, version string) (Match, error) {
	v, err := parseCrateVersion(name, version)
	if err != nil {
		return Match{}, err
	}

	return r.cached(ctx, ReleaseSid, name, version, func() (Match, error) {
		bins := PackageNames(name, v)
		steps := []struct {
			table string
			query string
			args  []any
		}{
			{"packages", queryPackages, []any{bins[0], bins[1]}},
			{"provides", queryProvides, []any{providesPattern(bins[0]), providesPattern(bins[1])}},
			{"sources", querySources, stringArgs(SourceNames(name, v))},
		}

		for _, step := range steps {
			rows, err := r.query(ctx, ReleaseSid, step.table, name, step.query, step.args...)
			if err != nil {
				return Match{}, err
			}
			if len(rows) > 0 {
				return score(rows, v)
			}
		}
		return Match{Status: NotFound}, nil
	})
}

// SearchNew classifies a crate version against the NEW queue.
func (r *Resolver) SearchNew(ctx context.Context, name, version string) (Match, error) {
	v, err := parseCrateVersion(name, version)
	if err != nil {
		return Match{}, err
	}

	return r.cached(ctx, ReleaseNew, name, version, func() (Match, error) {
		rows, err := r.query(ctx, ReleaseNew, "new_sources", name, queryNew, stringArgs(SourceNames(name, v))...)
		if err != nil {
			return Match{}, err
		}
		if len(rows) == 0 {
			return Match{Status: NotFound}, nil
		}
		return score(rows, v)
	})
}

// cached serves (release, name, version) from the cache or computes it
// with fetch and stores the result.
func (r *Resolver) cached(ctx context.Context, release, name, version string, fetch func() (Match, error)) (Match, error) {
	key := cache.StatusKey(release, name, version)
	hooks := observability.Cache()

	if !r.SkipCache {
		data, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			return Match{}, err
		}
		if ok {
			var m Match
			if err := json.Unmarshal(data, &m); err == nil {
				hooks.OnCacheHit(ctx, release)
				return m, nil
			}
			if err := r.cache.Delete(ctx, key); err != nil {
				return Match{}, err
			}
		}
		hooks.OnCacheMiss(ctx, release)
	}

	m, err := fetch()
	if err != nil {
		return Match{}, err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return Match{}, errors.Wrap(errors.ErrCodeInternal, err, "encode status of %s", name)
	}
	if err := r.cache.Set(ctx, key, data, cache.TTL); err != nil {
		return Match{}, err
	}
	hooks.OnCacheSet(ctx, release, len(data))
	return m, nil
}

func (r *Resolver) query(ctx context.Context, release, table, name, q string, args ...any) ([]string, error) {
	r.logger().Debug("querying", "release", release, "table", table, "package", name)

	start := time.Now()
	rows, err := r.db.QueryVersions(ctx, q, args...)
	observability.Query().OnQuery(ctx, release, table, len(rows), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQuery, err, "query %s for %s", table, name)
	}
	return rows, nil
}

// score picks the best match for crate version v among Debian versions.
//
// A row satisfying ^v wins immediately. Otherwise the last row satisfying
// the relaxed ^suffix requirement is kept as Compatible. While nothing
// compatible has been seen, the highest remaining row is tracked as
// Outdated; ties keep the first. An Outdated result that is newer than
// every bound of ^v becomes TooRecent.
func score(rows []string, v *semver.Version) (Match, error) {
	exact := debver.CaretRequirement(v)
	relaxed := debver.RelaxedRequirement(v)

	best := Match{Status: NotFound}
	var bestVersion *semver.Version

	for _, row := range rows {
		dv, err := debver.Normalize(row)
		if err != nil {
			return Match{}, err
		}
		display := debver.Upstream(row)

		if exact.Matches(dv) {
			return Match{Status: Found, Version: display}, nil
		}
		if relaxed.Matches(dv) {
			best = Match{Status: Compatible, Version: display}
			continue
		}
		if best.Status <= Outdated && (bestVersion == nil || dv.GreaterThan(bestVersion)) {
			best = Match{Status: Outdated, Version: display}
			bestVersion = dv
		}
	}

	if best.Status == Outdated && exact.TooRecent(bestVersion) {
		best.Status = TooRecent
	}
	return best, nil
}

func parseCrateVersion(name, version string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeVersionParse, err, "parse version %q of %s", version, name)
	}
	return v, nil
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}
