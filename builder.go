package blogClient

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/blogClient/api"
	"github.com/MrEthical07/blogClient/gateway"
	"github.com/MrEthical07/blogClient/guard"
	"github.com/MrEthical07/blogClient/internal/audit"
	"github.com/MrEthical07/blogClient/internal/metrics"
	"github.com/MrEthical07/blogClient/session"
)

// Builder configures a Client. It is single use.
type Builder struct {
	config Config

	storage    session.Storage
	redis      redis.UniversalClient
	httpClient *http.Client
	sink       EventSink
	logger     *slog.Logger
	routes     *guard.Table
	clock      func() time.Time

	built bool
}

// New returns a Builder with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStorage injects the durable credential storage and overrides
// Config.Storage.
func (b *Builder) WithStorage(s session.Storage) *Builder {
	b.storage = s
	return b
}

// WithRedis supplies the client used when Config.Storage.Kind is redis. The
// caller keeps ownership of it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// WithRouteTable replaces guard.DefaultTable.
func (b *Builder) WithRouteTable(t *guard.Table) *Builder {
	b.routes = t
	return b
}

// WithClock sets the time source for token expiry checks and event
// timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, opens storage and wires the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := b.config
	if b.storage != nil {
		cfg.Storage.Kind = StorageMemory
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:     cfg,
		custom:  b.storage != nil,
		sink:    b.sink,
		logger:  b.logger,
		now:     b.clock,
		metrics: metrics.New(metrics.Config{
			Enabled:                 cfg.Metrics.Enabled,
			EnableLatencyHistograms: cfg.Metrics.EnableLatencyHistograms,
		}),
	}
	if c.sink == nil {
		c.sink = NoOpSink{}
	}
	if c.logger == nil {
		c.logger = slogutil.NewDiscardLogger()
	}
	if c.now == nil {
		c.now = time.Now
	}

	storage := b.storage
	if storage == nil {
		var err error
		storage, err = b.openStorage(c, cfg.Storage)
		if err != nil {
			return nil, err
		}
	}

	gw, err := gateway.New(cfg.Gateway, gateway.Deps{
		HTTPClient: b.httpClient,
		Handler:    gateway.ErrorHandlerFunc(c.HandleError),
		Metrics:    c.metrics,
		Logger:     c.logger.With(slogutil.KeyPrefix, "gateway"),
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.gateway = gw

	c.session = session.NewStore(cfg.Session, gw, session.Deps{
		Storage:   storage,
		Metrics:   c.metrics,
		Logger:    c.logger.With(slogutil.KeyPrefix, "session"),
		Clock:     c.now,
		OnRestore: c.onRestore,
	})
	gw.SetTokenSource(gateway.TokenFunc(c.session.Token))

	c.guard = guard.New(c.session, guard.Options{
		Table:   b.routes,
		Metrics: c.metrics,
		Logger:  c.logger.With(slogutil.KeyPrefix, "guard"),
		Notify:  c.onGuardNotice,
	})
	c.api = api.New(c, api.Options{})

	c.dispatch = audit.NewDispatcher[Event](audit.Config{
		Enabled:    cfg.Events.Async,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, c.sink)

	b.built = true

	return c, nil
}

func (b *Builder) openStorage(c *Client, sc StorageConfig) (session.Storage, error) {
	switch sc.Kind {
	case StorageFile:
		return session.NewFileStorage(sc.Path), nil
	case StorageBolt:
		bs, err := session.OpenBoltStorage(sc.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		c.closers = append(c.closers, bs.Close)
		return bs, nil
	case StorageRedis:
		rdb := b.redis
		if rdb == nil {
			owned := redis.NewClient(&redis.Options{
				Addr:     sc.RedisAddr,
				Password: sc.RedisPassword,
				DB:       sc.RedisDB,
			})
			c.closers = append(c.closers, owned.Close)
			rdb = owned
		}
		return session.NewRedisStorage(rdb, sc.RedisPrefix, sc.RedisTTL), nil
	default:
		return session.NewMemoryStorage(), nil
	}
}
