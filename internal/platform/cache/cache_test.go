package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/pai-progress/internal/platform/config"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"invalid-scheme", "http://localhost:6379", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			assert.Equal(t, tt.wantErr, err != nil, "ParseURL() error = %v", err)
		})
	}
}

func TestClientOptions(t *testing.T) {
	opts, err := clientOptions(config.CacheConfig{URL: "redis://localhost:6379/2", Channel: "learner:7"})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, dialTimeout, opts.DialTimeout)
	assert.Equal(t, ioTimeout, opts.ReadTimeout)
	assert.Equal(t, ioTimeout, opts.WriteTimeout)

	_, err = clientOptions(config.CacheConfig{URL: "redis://localhost:6379"})
	assert.Error(t, err, "empty channel")
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	_, err := New(t.Context(), config.CacheConfig{URL: "redis://localhost:59999", Channel: "pai:progress:snapshots"})
	require.Error(t, err)
}

func TestNilCache(t *testing.T) {
	c := &Cache{}
	require.Error(t, c.HealthCheck(t.Context()))
	assert.Equal(t, "cache", c.Name())
	assert.NoError(t, c.Close())
}
