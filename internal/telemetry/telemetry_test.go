package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khusa71/agritech-chat-assistant/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	provider, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: "agritech-api",
		Enabled:     false,
	})
	require.NoError(t, err)
	require.NotNil(t, provider)

	// Noop provider carries no SDK providers but still hands out
	// usable tracer and meter instances.
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestTracerAndMeter_Global(t *testing.T) {
	assert.NotNil(t, telemetry.Tracer("test"))
	assert.NotNil(t, telemetry.Meter("test"))
}
