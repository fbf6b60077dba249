// Package cmd contains helpers common to all CLI implementations.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/blampe/bookshelf/internal"
	charm "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// PGConfig configured a PostGres connection.
type PGConfig struct {
	PostgresHost         string `default:"localhost" env:"POSTGRES_HOST" help:"Postgres host."`
	PostgresUser         string `default:"postgres" env:"POSTGRES_USER" help:"Postgres user."`
	PostgresPassword     string `xor:"db-auth" env:"POSTGRES_PASSWORD" help:"Postgres password."`
	PostgresPasswordFile []byte `type:"filecontent" xor:"db-auth" env:"POSTGRES_PASSWORD_FILE" help:"File with the Postgres password."`
	PostgresPort         int    `default:"5432" env:"POSTGRES_PORT" help:"Postgres port."`
	PostgresDatabase     string `default:"bookshelf" env:"POSTGRES_DATABASE" help:"Postgres database to use."`
}

// DSN returns the database's DSN based on the provided flags.
func (c *PGConfig) DSN() string {
	if len(c.PostgresPasswordFile) > 0 {
		c.PostgresPassword = string(bytes.TrimSpace(c.PostgresPasswordFile))
	}

	dsn := fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresDatabase,
		c.PostgresHost,
	)

	// Unix sockets don't need a port.
	if !filepath.IsAbs(c.PostgresHost) {
		dsn = fmt.Sprintf("%s port=%d", dsn, c.PostgresPort)
	}

	return dsn
}

// RedisConfig configures a Redis connection.
type RedisConfig struct {
	RedisAddr     string `default:"localhost:6379" env:"REDIS_ADDR" help:"Redis address."`
	RedisPassword string `env:"REDIS_PASSWORD" help:"Redis password."`
	RedisDB       int    `default:"0" env:"REDIS_DB" help:"Redis database number."`
	RedisPrefix   string `default:"bookshelf:" env:"REDIS_PREFIX" help:"Prefix for every Redis key."`
}

// StorageConfig configures the tiered store.
type StorageConfig struct {
	PGConfig
	RedisConfig

	CacheDir string `default:"cache" env:"CACHE_DIR" help:"Directory for the local storage tier."`
	Remote   string `default:"none" enum:"none,postgres,redis" env:"REMOTE_STORAGE" help:"Durable remote tier (none, postgres, redis)."`
}

// Backend builds the tiered store. The returned func releases any remote
// connections.
func (c *StorageConfig) Backend(ctx context.Context, reg prometheus.Registerer) (*internal.TieredBackend, func(), error) {
	local, err := internal.NewLocalBackend(c.CacheDir)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up local storage: %w", err)
	}

	var remote internal.Backend
	cleanup := func() {}

	switch c.Remote {
	case "postgres":
		pg, err := internal.NewPostgresBackend(ctx, c.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("setting up postgres: %w", err)
		}
		remote, cleanup = pg, func() { _ = pg.Close() }
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		r, err := internal.NewRedisBackend(ctx, client, c.RedisPrefix)
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("setting up redis: %w", err)
		}
		remote, cleanup = r, func() { _ = r.Close() }
	case "none", "":
	default:
		return nil, nil, fmt.Errorf("unknown remote storage %q", c.Remote)
	}

	internal.Log(ctx).Debug("storage ready", "dir", c.CacheDir, "remote", c.Remote)

	return internal.NewTieredBackend(local, remote, reg), cleanup, nil
}

// FetchConfig configures upstream access.
type FetchConfig struct {
	Concurrency    int           `default:"10" env:"FETCH_CONCURRENCY" help:"Maximum concurrent page requests per shelf."`
	BooksMaxAge    time.Duration `default:"72h" env:"BOOKS_MAX_AGE" help:"How long a fetched shelf stays fresh."`
	DetailAttempts int           `default:"3" env:"DETAIL_ATTEMPTS" help:"Attempts per product detail lookup."`
	DetailDelay    time.Duration `default:"1s" env:"DETAIL_DELAY" help:"Delay between detail lookup attempts."`

	ReadingHost string  `default:"bookmeter.com" env:"READING_HOST" help:"Reading log host."`
	BiblioHost  string  `default:"api.openbd.jp" env:"BIBLIO_HOST" help:"Bibliographic metadata host."`
	StoreHost   string  `default:"www.amazon.co.jp" env:"STORE_HOST" help:"Product page host."`
	RPS         float64 `default:"3" env:"RPS" help:"Maximum upstream requests per second, per host."`
	Proxy       string  `default:"" env:"PROXY" help:"HTTP proxy URL to use for upstream requests."`
}

// Client builds the upstream client.
func (c *FetchConfig) Client() (*internal.Client, error) {
	var base http.RoundTripper
	if c.Proxy != "" {
		proxy, err := url.Parse(c.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = http.ProxyURL(proxy)
		base = t
	}
	return internal.NewClient(internal.UpstreamConfig{
		ReadingHost: c.ReadingHost,
		BiblioHost:  c.BiblioHost,
		StoreHost:   c.StoreHost,
		RPS:         c.RPS,
	}, base)
}

// LogConfig configures logging.
type LogConfig struct {
	Verbose bool `env:"VERBOSE" help:"increase log verbosity"`
}

// Run sets logging to DEBUG if verbose is enabled.
func (c *LogConfig) Run() error {
	if c.Verbose {
		internal.SetLogLevel(charm.DebugLevel)
	}
	return nil
}

// ServiceConfig is everything needed to stand up a Service.
type ServiceConfig struct {
	StorageConfig
	FetchConfig
	LogConfig
}

// Run builds a Service, restores its snapshot, calls fn and waits for any
// background writes before returning.
func (c *ServiceConfig) Run(fn func(context.Context, *internal.Service) error) error {
	_ = c.LogConfig.Run()

	ctx := internal.WithTrace(context.Background(), uuid.NewString())
	reg := prometheus.NewRegistry()

	store, cleanup, err := c.Backend(ctx, reg)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := c.Client()
	if err != nil {
		return err
	}

	svc, err := internal.NewService(store, client, internal.Config{
		Concurrency:    c.Concurrency,
		BooksMaxAge:    c.BooksMaxAge,
		DetailAttempts: c.DetailAttempts,
		DetailDelay:    c.DetailDelay,
	}, reg)
	if err != nil {
		return err
	}

	if err := svc.Load(ctx); err != nil {
		// We can still serve from upstream.
		internal.Log(ctx).Warn("problem loading snapshot", "err", err)
	}

	err = fn(ctx, svc)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if serr := svc.Shutdown(shutdownCtx); serr != nil {
		err = errors.Join(err, fmt.Errorf("waiting for snapshot: %w", serr))
	}

	logMetrics(ctx, reg)

	return err
}

// logMetrics dumps every non-zero counter at debug level.
func logMetrics(ctx context.Context, reg prometheus.Gatherer) {
	families, err := reg.Gather()
	if err != nil {
		internal.Log(ctx).Warn("problem gathering metrics", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}
			attrs := []any{"name", mf.GetName(), "value", v}
			for _, l := range m.GetLabel() {
				attrs = append(attrs, l.GetName(), l.GetValue())
			}
			internal.Log(ctx).Debug("metric", attrs...)
		}
	}
}

func init() {
	// Limit our memory to 90% of what's free.
	_, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.9),
		memlimit.WithLogger(slog.Default()),
		memlimit.WithProvider(
			memlimit.ApplyFallback(
				memlimit.FromCgroup,
				memlimit.FromSystem,
			),
		),
	)
	if err != nil {
		panic(err)
	}
}
