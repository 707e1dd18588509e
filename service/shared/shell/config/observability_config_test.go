package config_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"

	"github.com/AntonStoeckl/library-loans-go/service/shared/shell/config"
)

func Test_NewObservabilityProviders_InstallsLoggerProvider(t *testing.T) {
	// act
	providers, err := config.NewObservabilityProviders(context.Background(), "localhost:4317", "test")

	// assert
	require.NoError(t, err)
	defer func() { _ = providers.Shutdown() }()

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.LoggerProvider, "Should create a logger provider")
	assert.Same(t, providers.LoggerProvider, global.GetLoggerProvider(), "Should install the logger provider globally")
}
