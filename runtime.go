package rabbit

import (
	"context"
	"sync"
)

type RuntimeConfig struct {
	MaxSourceBytes     int
	MaxExpressionDepth int
	CacheEntries       int64
	LogRunExecution    bool
}

var (
	runtimeConfigMu sync.RWMutex
	runtimeConfig   = RuntimeConfig{
		MaxSourceBytes:     1 << 20,
		MaxExpressionDepth: 256,
		CacheEntries:       1024,
		LogRunExecution:    true,
	}
)

type runtimeConfigContextKey struct{}

type RuntimeConfigOverride struct {
	MaxSourceBytes     *int
	MaxExpressionDepth *int
	CacheEntries       *int64
	LogRunExecution    *bool
}

func SetRuntimeConfig(cfg RuntimeConfig) {
	runtimeConfigMu.Lock()
	defer runtimeConfigMu.Unlock()
	runtimeConfig = cfg
}

func GetRuntimeConfig() RuntimeConfig {
	runtimeConfigMu.RLock()
	defer runtimeConfigMu.RUnlock()
	return runtimeConfig
}

func WithRuntimeConfigOverride(ctx context.Context, override RuntimeConfigOverride) context.Context {
	return context.WithValue(ctx, runtimeConfigContextKey{}, override)
}

func effectiveRuntimeConfig(ctx context.Context) RuntimeConfig {
	cfg := GetRuntimeConfig()
	ov, ok := ctx.Value(runtimeConfigContextKey{}).(RuntimeConfigOverride)
	if !ok {
		return cfg
	}
	if ov.MaxSourceBytes != nil {
		cfg.MaxSourceBytes = *ov.MaxSourceBytes
	}
	if ov.MaxExpressionDepth != nil {
		cfg.MaxExpressionDepth = *ov.MaxExpressionDepth
	}
	if ov.CacheEntries != nil {
		cfg.CacheEntries = *ov.CacheEntries
	}
	if ov.LogRunExecution != nil {
		cfg.LogRunExecution = *ov.LogRunExecution
	}
	return cfg
}
