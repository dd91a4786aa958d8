//go:build !wireinject
// +build !wireinject

package di

import (
	"AstroCore/pkg/config"
	"AstroCore/pkg/server"
)

// InitializeApp mirrors the provider set in wire.go. Keep the two in step,
// or regenerate this file with wire.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	loggerLogger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	registry := ProvideRegistry()
	metrics := ProvideMetrics(cfg, registry)
	ephemeris, err := ProvideEphemeris(cfg)
	if err != nil {
		return nil, err
	}
	normalizer := ProvideNormalizer()
	engine := ProvideAspectEngine()
	natalCalculator := ProvideNatalCalculator(cfg, ephemeris, normalizer, engine, loggerLogger, metrics)
	service, err := ProvideCacheStore(cfg)
	if err != nil {
		return nil, err
	}
	client, err := ProvideClickHouseClient(cfg, loggerLogger)
	if err != nil {
		return nil, err
	}
	chartArchive, err := ProvideChartArchive(client, cfg, loggerLogger)
	if err != nil {
		return nil, err
	}
	producer, err := ProvideKafkaProducer(cfg, loggerLogger, registry)
	if err != nil {
		return nil, err
	}
	eventPublisher := ProvideEventPublisher(producer, cfg)
	chartAuditor := ProvideChartAuditor(chartArchive, eventPublisher, metrics, loggerLogger)
	natalCharter := ProvideNatalCharter(cfg, natalCalculator, ephemeris, service, chartAuditor, loggerLogger, metrics)
	transitCharter := ProvideTransitCharter(cfg, ephemeris, engine, service, chartAuditor, loggerLogger, metrics)
	compositeCharter := ProvideCompositeCharter(cfg, natalCalculator, ephemeris, engine, service, chartAuditor, loggerLogger, metrics)
	limiter := ProvideRateLimiter(cfg)
	chartsEchoHandler, err := ProvideChartsHandler(cfg, loggerLogger, natalCharter, transitCharter, compositeCharter, limiter)
	if err != nil {
		return nil, err
	}
	transitFeed := ProvideTransitFeed(cfg, loggerLogger, transitCharter)
	archiveEchoHandler := ProvideArchiveHandler(loggerLogger, chartArchive)
	httpServer := ProvideHTTPServer(cfg, loggerLogger, registry, chartsEchoHandler, transitFeed, archiveEchoHandler)
	consumer, err := ProvideKafkaConsumer(cfg, natalCharter, metrics, loggerLogger, registry)
	if err != nil {
		return nil, err
	}
	app := ProvideApp(cfg, loggerLogger, httpServer, consumer, chartAuditor, limiter, service, producer, client)
	return app, nil
}
