package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/netspec/internal/config"
	"github.com/aretw0/netspec/pkg/adapters/file"
	loamAdapter "github.com/aretw0/netspec/pkg/adapters/loam"
	"github.com/aretw0/netspec/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/netspec/pkg/adapters/redis"
	"github.com/aretw0/netspec/pkg/adapters/sqlite"
	"github.com/aretw0/netspec/pkg/codec"
	"github.com/aretw0/netspec/pkg/observability"
	"github.com/aretw0/netspec/pkg/persistence/middleware"
	"github.com/aretw0/netspec/pkg/ports"
	"github.com/aretw0/netspec/pkg/registry"
	backend "github.com/redis/go-redis/v9"
)

// StoreOptions configures OpenStore.
type StoreOptions struct {
	Redis   config.Redis
	Logger  *slog.Logger
	Metrics *observability.Metrics
	// Validate rejects invalid specs on Save, checking selectors against Registry when set.
	Validate bool
	Registry *registry.Registry
}

// OpenStore builds a SpecStore from a URI:
//
//	mem://                      in-memory, lost on exit
//	file://DIR[?format=json]    one file per spec (default yaml); a bare path means the same
//	redis://[:PASS@]HOST:PORT[/DB]
//	sqlite://PATH
//	loam://DIR                  read-only markdown workspace
//
// The returned close function releases connections and is never nil.
func OpenStore(uri string, opts StoreOptions) (ports.SpecStore, func() error, error) {
	scheme, rest := "file", uri
	if i := strings.Index(uri, "://"); i >= 0 {
		scheme, rest = strings.ToLower(uri[:i]), uri[i+3:]
	}
	nop := func() error { return nil }

	var (
		store    ports.SpecStore
		closeFn  = nop
		readOnly bool
	)
	switch scheme {
	case "mem", "memory":
		store = memory.NewStore()
	case "file":
		dir, query, _ := strings.Cut(rest, "?")
		var format codec.Format
		if query != "" {
			key, value, _ := strings.Cut(query, "=")
			if key != "format" {
				return nil, nop, fmt.Errorf("file store: unknown option %q", key)
			}
			f, err := codec.ParseFormat(value)
			if err != nil {
				return nil, nop, fmt.Errorf("file store: %w", err)
			}
			format = f
		}
		store = file.New(dir, format)
	case "redis", "rediss":
		redisOpts, err := backend.ParseURL(uri)
		if err != nil {
			return nil, nop, fmt.Errorf("redis store: %w", err)
		}
		if redisOpts.Password == "" {
			redisOpts.Password = opts.Redis.Password
		}
		if !strings.Contains(rest, "/") && opts.Redis.DB != 0 {
			redisOpts.DB = opts.Redis.DB
		}
		ropts := []redisAdapter.Option{redisAdapter.WithTTL(opts.Redis.TTL)}
		if opts.Redis.Prefix != "" {
			ropts = append(ropts, redisAdapter.WithPrefix(opts.Redis.Prefix))
		}
		rs := redisAdapter.NewFromClient(backend.NewClient(redisOpts), ropts...)
		store, closeFn = rs, rs.Close
	case "sqlite":
		ss, err := sqlite.Open(rest)
		if err != nil {
			return nil, nop, err
		}
		store, closeFn = ss, ss.Close
	case "loam":
		loader, err := loamAdapter.Open(rest)
		if err != nil {
			return nil, nop, err
		}
		store, readOnly = ports.ReadOnly(loader), true
	default:
		return nil, nop, fmt.Errorf("unknown store scheme %q (want mem, file, redis, sqlite or loam)", scheme)
	}

	var mws []middleware.Middleware
	if opts.Logger != nil {
		mws = append(mws, middleware.NewLoggingMiddleware(opts.Logger.With("store", scheme)))
	}
	if opts.Metrics != nil {
		mws = append(mws, middleware.NewMetricsMiddleware(opts.Metrics))
	}
	if opts.Validate && !readOnly {
		var vopts []middleware.ValidationOption
		if opts.Registry != nil {
			vopts = append(vopts, middleware.WithRegistry(opts.Registry))
		}
		mws = append(mws, middleware.NewValidationMiddleware(vopts...))
	}
	return middleware.Chain(store, mws...), closeFn, nil
}
