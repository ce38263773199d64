//go:build wireinject
// +build wireinject

package di

import (
	"PowerCast/pkg/config"
	"PowerCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvidePayloadCache,

		// Event delivery
		ProvideHub,
		ProvideEventPipeline,
		ProvideEventSink,

		// Use cases
		ProvidePredictionSource,
		ProvideReplayService,
		ProvideUploadUseCase,

		// Application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
