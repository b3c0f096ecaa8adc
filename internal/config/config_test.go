package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/feedstream/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, domain.DefaultPolicy(), cfg.Policy)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedstream.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
fetch_latency: 250ms
policy:
  trigger_immediate_pagination: true
  consume_synthetic_tokens_while_restoring: "true"
http:
  addr: 127.0.0.1:9000
store:
  driver: redis
  redis:
    addr: cache:6379
    db: 2
    ttl: 1h
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchLatency)
	assert.True(t, cfg.Policy.TriggerImmediatePagination)
	assert.True(t, cfg.Policy.ConsumeSyntheticTokens, "unset keys keep their default")
	assert.True(t, cfg.Policy.ConsumeSyntheticTokensWhileRestoring)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.Metrics)
	assert.Equal(t, StoreRedis, cfg.Store.Driver)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Store.Redis.TTL)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "log_level: [\n"},
		{"unknown key", "colour: blue\n"},
		{"unknown driver", "store:\n  driver: etcd\n"},
		{"negative latency", "fetch_latency: -1s\n"},
		{"bad duration", "fetch_latency: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
