package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		endpoint, enabled string
		want              bool
	}{
		{"", "", false},
		{"http://localhost:4318", "", true},
		{"http://localhost:4318", "FALSE", false},
		{"http://localhost:4318", "true", true},
		{"", "true", false},
	}
	for _, tt := range tests {
		t.Setenv(EnvEndpoint, tt.endpoint)
		t.Setenv(EnvEnabled, tt.enabled)
		if got := Enabled(); got != tt.want {
			t.Errorf("Enabled() with endpoint=%q enabled=%q = %v, want %v", tt.endpoint, tt.enabled, got, tt.want)
		}
	}
}

func TestSetupDisabledIsNoop(t *testing.T) {
	t.Setenv(EnvEndpoint, "")

	shutdown, err := Setup(context.Background(), "focusflow", "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupEnabled(t *testing.T) {
	t.Setenv(EnvEndpoint, "http://127.0.0.1:4318")
	t.Setenv(EnvEnabled, "")

	shutdown, err := Setup(context.Background(), "focusflow", "test")
	require.NoError(t, err)

	// Nothing was recorded, so shutdown has nothing to flush.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
