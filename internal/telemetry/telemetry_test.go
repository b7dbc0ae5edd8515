package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agenthands/kinship/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{ServiceName: "kinship"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_RequiresEndpoint(t *testing.T) {
	_, err := Init(context.Background(), config.TelemetryConfig{Tracing: true, ServiceName: "kinship"})
	assert.Error(t, err)
}

func TestResource(t *testing.T) {
	res := Resource("kinship")
	v, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "kinship", v.AsString())
}

func TestGRPCTarget(t *testing.T) {
	tests := []struct {
		endpoint string
		target   string
		insecure bool
	}{
		{"localhost:4317", "localhost:4317", true},
		{"http://collector:4317", "collector:4317", true},
		{"https://otel.example.com:4317/", "otel.example.com:4317", false},
	}
	for _, tt := range tests {
		target, insecure, err := grpcTarget(tt.endpoint)
		require.NoError(t, err, tt.endpoint)
		assert.Equal(t, tt.target, target, tt.endpoint)
		assert.Equal(t, tt.insecure, insecure, tt.endpoint)
	}

	_, _, err := grpcTarget("ftp://collector:4317")
	assert.Error(t, err)
	_, _, err = grpcTarget("http://")
	assert.Error(t, err)
}

func TestInit_EndpointURL(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{
		Tracing:      true,
		OTLPEndpoint: "http://localhost:4317",
		ServiceName:  "kinship",
	})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
