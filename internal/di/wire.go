//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"AstroCore/pkg/config"
	"AstroCore/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideEphemeris,
		ProvideCacheStore,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideChartArchive,
		ProvideEventPublisher,

		// Use cases
		ProvideNormalizer,
		ProvideAspectEngine,
		ProvideChartAuditor,
		ProvideNatalCalculator,
		ProvideNatalCharter,
		ProvideTransitCharter,
		ProvideCompositeCharter,
		ProvideKafkaConsumer,

		// HTTP
		ProvideRateLimiter,
		ProvideChartsHandler,
		ProvideTransitFeed,
		ProvideArchiveHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
