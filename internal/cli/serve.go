package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackchart/internal/server"
	"github.com/matzehuels/stackchart/pkg/cache"
	"github.com/matzehuels/stackchart/pkg/pipeline"
)

// Cache backends selectable with serve --cache.
const (
	backendMemory = "memory"
	backendFile   = "file"
	backendRedis  = "redis"
	backendMongo  = "mongo"
	backendNone   = "none"
)

const (
	defaultMemoryEntries = 4096
	defaultMemoryMaxAge  = 24 * time.Hour
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	backend   string
	redisURL  string
	mongoURI  string
	mongoDB   string
	keyPrefix string
	maxCharts int
	maxBody   int64
	entries   int
	maxAge    time.Duration
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      ":8080",
		backend:   backendMemory,
		maxCharts: server.DefaultMaxCharts,
		maxBody:   server.DefaultMaxBodyBytes,
		entries:   defaultMemoryEntries,
		maxAge:    defaultMemoryMaxAge,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart HTTP API",
		Example: `  stackchart serve --addr :8080
  stackchart serve --cache redis --redis-url redis://localhost:6379/0
  stackchart serve --cache mongo --mongo-uri mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd.OutOrStdout(), &opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", opts.addr, "listen address")
	f.StringVar(&opts.backend, "cache", opts.backend, "cache backend: memory, file, redis, mongo, none")
	f.StringVar(&opts.redisURL, "redis-url", "", "Redis URL (redis backend)")
	f.StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI (mongo backend)")
	f.StringVar(&opts.mongoDB, "mongo-db", "", "MongoDB database (mongo backend)")
	f.StringVar(&opts.keyPrefix, "key-prefix", "", "namespace for cache keys shared with other deployments")
	f.IntVar(&opts.maxCharts, "max-charts", opts.maxCharts, "maximum number of live charts")
	f.Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body in bytes")
	f.IntVar(&opts.entries, "memory-entries", opts.entries, "maximum entries of the memory cache")
	f.DurationVar(&opts.maxAge, "memory-max-age", opts.maxAge, "maximum age of memory cache entries (0 keeps them until evicted)")

	completeChoices(cmd, "cache", []string{backendMemory, backendFile, backendRedis, backendMongo, backendNone})

	return cmd
}

func (c *CLI) runServe(ctx context.Context, w io.Writer, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	store, err := openBackend(ctx, opts)
	if err != nil {
		return fmt.Errorf("open %s cache: %w", opts.backend, err)
	}
	var keyer cache.Keyer
	if opts.keyPrefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.keyPrefix)
	}
	runner := pipeline.NewRunner(store, keyer, logger)
	defer runner.Close()

	logger.Info("cache ready", "backend", opts.backend)
	srv := server.New(runner,
		server.WithLogger(logger),
		server.WithMaxCharts(opts.maxCharts),
		server.WithMaxBodyBytes(opts.maxBody),
	)
	newPrinter(w).info("Serving on %s", StyleHighlight.Render(opts.addr))
	return srv.ListenAndServe(ctx, opts.addr)
}

// openBackend connects the selected cache backend.
func openBackend(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	switch opts.backend {
	case backendMemory:
		return cache.NewMemoryCache(opts.entries, opts.maxAge), nil
	case backendFile:
		dir, err := cacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{URL: opts.redisURL, Prefix: appName + ":"})
	case backendMongo:
		return cache.NewMongoCache(ctx, cache.MongoConfig{URI: opts.mongoURI, Database: opts.mongoDB})
	case backendNone:
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be memory, file, redis, mongo or none)", opts.backend)
	}
}
