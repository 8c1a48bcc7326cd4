package platform

import (
	"strings"

	"github.com/aretw0/grove/pkg/adapters/cache"
	"github.com/aretw0/grove/pkg/core"
)

// InitCache builds the local cache for dsn. Path-based DSNs are sandboxed when
// running under `go run`/`go test` unless dev safety is disabled.
func InitCache(dsn string, opts ...Option) (core.Cache, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initCache(dsn, o)
}

func initCache(dsn string, o *options) (core.Cache, error) {
	if o.cache != nil {
		return o.cache, nil
	}

	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	// Default to true (safe) if not present.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	useTemp := tempDir || (IsDevRun() && devSafety)
	resolved := resolveDSN(strings.TrimSpace(dsn), useTemp)

	if o.logger != nil && IsDevRun() {
		if devSafety {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "dsn", resolved)
		} else {
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "dsn", resolved)
		}
	}

	if mustExist && !strings.Contains(resolved, "://") {
		return cache.NewFile(cache.FileConfig{Path: resolved, MustExist: true, Logger: o.logger})
	}
	return cache.BuildFromDSN(resolved, o.logger)
}
