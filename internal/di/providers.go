package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"AstroCore/internal/domain/models"
	"AstroCore/internal/domain/repository"
	"AstroCore/internal/domain/service"
	"AstroCore/internal/handler/api"
	"AstroCore/internal/handler/ws"
	internalrepo "AstroCore/internal/repository"
	"AstroCore/internal/service/ratelimit"
	"AstroCore/internal/services/aspects"
	"AstroCore/internal/services/ephemeris"
	"AstroCore/internal/services/timeconv"
	"AstroCore/internal/usecase"
	"AstroCore/pkg/cache"
	pkgch "AstroCore/pkg/clickhouse"
	"AstroCore/pkg/config"
	xhttp "AstroCore/pkg/http"
	pkgkafka "AstroCore/pkg/kafka"
	"AstroCore/pkg/logger"
	"AstroCore/pkg/metrics"
	"AstroCore/pkg/server"
)

// Optional infrastructure providers return nil when disabled in config.

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("service", "astrocore"), logger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.Noop{}
	}
	return metrics.NewWithRegisterer(reg)
}

// ProvideEphemeris selects the adapter named by ephemeris.provider.
func ProvideEphemeris(cfg *config.Config) (repository.Ephemeris, error) {
	switch cfg.Ephemeris.Provider {
	case "http":
		eph, err := ephemeris.NewHTTPEphemeris(ephemeris.HTTPConfig{
			BaseURL:  cfg.Ephemeris.URL,
			Timeout:  cfg.Ephemeris.Timeout,
			Attempts: cfg.Ephemeris.Retries + 1,
			Backoff:  cfg.Ephemeris.Backoff,
		})
		if err != nil {
			return nil, fmt.Errorf("http ephemeris: %w", err)
		}
		return eph, nil
	case "", "approximate":
		return ephemeris.NewApproximateEphemeris(), nil
	default:
		return nil, fmt.Errorf("unknown ephemeris provider %q", cfg.Ephemeris.Provider)
	}
}

// ProvideCacheStore creates the chart cache: in-process memory, or memory
// in front of Redis.
func ProvideCacheStore(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MemorySize),
			cache.WithMemoryCleanup(time.Minute),
		), nil
	case "layered":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx,
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.PoolSize/4, 4*time.Second),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc,
			cache.WithLayeredMemorySize(cfg.Cache.MemorySize),
			cache.WithLayeredL1TTL(cfg.Cache.L1TTL),
		), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideAspectEngine creates the aspect engine with the default pair multipliers.
func ProvideAspectEngine() *aspects.Engine {
	return aspects.NewEngine()
}

// ProvideNormalizer creates the local-time to Julian day converter.
func ProvideNormalizer() *timeconv.Normalizer {
	return timeconv.NewNormalizer()
}

func calcOptions(cfg *config.Config, log *logger.Logger, m repository.Metrics) []usecase.CalcOption {
	return []usecase.CalcOption{
		usecase.WithCalcTimeout(cfg.Charts.CalcTimeout),
		usecase.WithCalcLogger(log),
		usecase.WithCalcMetrics(m),
	}
}

// ProvideNatalCalculator creates the uncached natal calculator.
func ProvideNatalCalculator(
	cfg *config.Config,
	eph repository.Ephemeris,
	tc *timeconv.Normalizer,
	engine *aspects.Engine,
	log *logger.Logger,
	m repository.Metrics,
) *usecase.NatalCalculator {
	return usecase.NewNatalCalculator(eph, tc, engine, calcOptions(cfg, log, m)...)
}

func memoizer(store cache.Service, namespace string, log *logger.Logger, m repository.Metrics) *cache.Memoizer {
	return cache.NewMemoizer(store, namespace,
		cache.WithLookupHook(m.RecordCacheLookup),
		cache.WithMemoLogger(log),
	)
}

// ProvideNatalCharter wraps the natal calculator with the chart cache.
func ProvideNatalCharter(
	cfg *config.Config,
	calc *usecase.NatalCalculator,
	eph repository.Ephemeris,
	store cache.Service,
	auditor *usecase.ChartAuditor,
	log *logger.Logger,
	m repository.Metrics,
) service.NatalCharter {
	return usecase.NewCachedNatal(calc, memoizer(store, usecase.NamespaceNatal, log, m), eph.Accuracy(),
		usecase.WithTTL(cfg.Cache.NatalTTL),
		usecase.WithComputedHook(auditor.Hook()),
	)
}

// ProvideTransitCharter creates the cached transit charter.
func ProvideTransitCharter(
	cfg *config.Config,
	eph repository.Ephemeris,
	engine *aspects.Engine,
	store cache.Service,
	auditor *usecase.ChartAuditor,
	log *logger.Logger,
	m repository.Metrics,
) service.TransitCharter {
	calc := usecase.NewTransitCalculator(eph, engine, calcOptions(cfg, log, m)...)
	return usecase.NewCachedTransit(calc, memoizer(store, usecase.NamespaceTransit, log, m), eph.Accuracy(),
		usecase.WithTTL(cfg.Cache.TransitTTL),
		usecase.WithComputedHook(auditor.Hook()),
	)
}

// ProvideCompositeCharter creates the cached composite charter. Its natal
// inputs come from the uncached calculator so they are not audited as charts
// of their own.
func ProvideCompositeCharter(
	cfg *config.Config,
	natal *usecase.NatalCalculator,
	eph repository.Ephemeris,
	engine *aspects.Engine,
	store cache.Service,
	auditor *usecase.ChartAuditor,
	log *logger.Logger,
	m repository.Metrics,
) service.CompositeCharter {
	calc := usecase.NewCompositeCalculator(natal, engine, calcOptions(cfg, log, m)...)
	return usecase.NewCachedComposite(calc, memoizer(store, usecase.NamespaceComposite, log, m), eph.Accuracy(),
		usecase.WithTTL(cfg.Cache.CompositeTTL),
		usecase.WithComputedHook(auditor.Hook()),
	)
}

// ProvideClickHouseClient connects to ClickHouse and creates the database.
func ProvideClickHouseClient(cfg *config.Config, log *logger.Logger) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", cfg.ClickHouse.Database),
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	log.Info("clickhouse ready", logger.String("database", cfg.ClickHouse.Database), logger.String("table", cfg.ClickHouse.Table))
	return client, nil
}

// ProvideChartArchive creates the ClickHouse chart archive and its table.
func ProvideChartArchive(client *pkgch.Client, cfg *config.Config, log *logger.Logger) (repository.ChartArchive, error) {
	if client == nil {
		return nil, nil
	}
	archive := internalrepo.NewClickHouseChartArchive(client.DB(), cfg.ClickHouse.Table, log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config, log *logger.Logger, reg *prometheus.Registry) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.Producer.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithProducerLogger(log),
		pkgkafka.WithProducerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher publishes chart-computed events.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideChartAuditor creates the archive/publish hook for fresh charts.
func ProvideChartAuditor(
	archive repository.ChartArchive,
	publisher repository.EventPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.ChartAuditor {
	return usecase.NewChartAuditor(archive, publisher, m, log)
}

// ProvideKafkaConsumer creates the precompute consumer with its handler registered.
func ProvideKafkaConsumer(
	cfg *config.Config,
	natal service.NatalCharter,
	m repository.Metrics,
	log *logger.Logger,
	reg *prometheus.Registry,
) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Consumer.Enabled {
		return nil, nil
	}
	c := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
		pkgkafka.WithConsumerLogger(log),
		pkgkafka.WithConsumerRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TracingHook(log)))
	consumer.RegisterHandler(usecase.NewPrecomputeHandler(c.PrecomputeTopic, natal, m, log))
	return consumer, nil
}

// ProvideRateLimiter creates the per-client limiter for the chart API.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit, cfg.Server.RateBurst)
}

// ProvideChartsHandler creates the chart HTTP endpoints.
func ProvideChartsHandler(
	cfg *config.Config,
	log *logger.Logger,
	natal service.NatalCharter,
	transit service.TransitCharter,
	composite service.CompositeCharter,
	limiter *ratelimit.Limiter,
) (*api.ChartsEchoHandler, error) {
	hs, err := models.ParseHouseSystem(cfg.Charts.DefaultHouseSystem)
	if err != nil {
		return nil, fmt.Errorf("charts.default_house_system: %w", err)
	}
	return api.NewChartsEchoHandler(log, natal, transit, composite,
		api.WithDefaultHouseSystem(hs),
		api.WithRouteMiddleware(limiter.Middleware()),
	), nil
}

// ProvideTransitFeed creates the websocket transit feed.
func ProvideTransitFeed(cfg *config.Config, log *logger.Logger, transit service.TransitCharter) *ws.TransitFeed {
	if !cfg.Stream.Enabled {
		return nil
	}
	return ws.NewTransitFeed(transit,
		ws.WithIntervals(cfg.Stream.DefaultInterval, cfg.Stream.MinInterval),
		ws.WithWriteTimeout(cfg.Stream.WriteTimeout),
		ws.WithFeedLogger(log),
	)
}

// ProvideArchiveHandler exposes archived points when the archive is enabled.
func ProvideArchiveHandler(log *logger.Logger, archive repository.ChartArchive) *api.ArchiveEchoHandler {
	if archive == nil {
		return nil
	}
	return api.NewArchiveEchoHandler(log, archive)
}

// ProvideHTTPServer creates the Echo server with every route registered.
func ProvideHTTPServer(
	cfg *config.Config,
	log *logger.Logger,
	reg *prometheus.Registry,
	charts *api.ChartsEchoHandler,
	feed *ws.TransitFeed,
	archive *api.ArchiveEchoHandler,
) *xhttp.Server {
	handlers := []xhttp.Handler{charts}
	if feed != nil {
		handlers = append(handlers, feed)
	}
	if archive != nil {
		handlers = append(handlers, archive)
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithServerLogger(log),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Metrics.Path))
	} else {
		opts = append(opts, xhttp.WithMetrics(nil, ""))
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	auditor *usecase.ChartAuditor,
	limiter *ratelimit.Limiter,
	store cache.Service,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
) *server.App {
	opts := []server.Option{
		server.WithDrainer(auditor),
		server.WithSweeper(limiter),
		server.WithCloser("cache", store),
	}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer))
	}
	if producer != nil {
		opts = append(opts, server.WithCloser("kafka producer", producer))
	}
	if chClient != nil {
		opts = append(opts, server.WithCloser("clickhouse", chClient))
	}
	return server.New(cfg, log, httpServer, opts...)
}
