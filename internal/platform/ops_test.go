package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/grove/internal/platform"
	"github.com/aretw0/grove/pkg/adapters/cache"
)

func TestInitCache(t *testing.T) {
	t.Run("Bare Path Creates File Cache", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache")

		c, err := platform.InitCache(path, platform.WithForceTemp(true))
		if err != nil {
			t.Fatalf("InitCache failed: %v", err)
		}
		f, ok := c.(*cache.File)
		if !ok {
			t.Fatalf("Expected file cache, got %T", c)
		}
		if f.Path != path {
			t.Errorf("Expected path %s, got %s", path, f.Path)
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			t.Errorf("Cache directory not created")
		}
	})

	t.Run("MustExist Fails If Directory Missing", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing")
		if _, err := platform.InitCache(path, platform.WithMustExist(true), platform.WithForceTemp(true)); err == nil {
			t.Error("Expected failure for missing directory")
		}
	})

	t.Run("Injected Cache Wins", func(t *testing.T) {
		mem := cache.NewMemory()
		c, err := platform.InitCache("ignored://", platform.WithCache(mem))
		if err != nil {
			t.Fatalf("InitCache failed: %v", err)
		}
		if c != mem {
			t.Errorf("Expected injected cache")
		}
	})

	t.Run("Bolt DSN", func(t *testing.T) {
		c, err := platform.InitCache("bolt://"+filepath.Join(t.TempDir(), "grove.db"), platform.WithDevSafety(false))
		if err != nil {
			t.Fatalf("InitCache failed: %v", err)
		}
		defer c.Close()
		if _, ok := c.(*cache.Bolt); !ok {
			t.Fatalf("Expected bolt cache, got %T", c)
		}
	})
}
