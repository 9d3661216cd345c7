package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"reviewd/internal/infrastructure/persistence/sqlite/model"
)

func setupSQLiteCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cache.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&model.AgentCache{}); err != nil {
		t.Fatalf("auto migrate agent_cache: %v", err)
	}

	return NewSQLiteCache(db)
}

func TestSQLiteCacheSetGetDelete(t *testing.T) {
	cache := setupSQLiteCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "review:abc123", `{"overall_score": 8}`, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := cache.Get(ctx, "review:abc123")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatalf("Get() expected found=true")
	}
	if value != `{"overall_score": 8}` {
		t.Fatalf("Get() value = %q", value)
	}

	if err := cache.Set(ctx, "review:abc123", `{"overall_score": 9}`, 0); err != nil {
		t.Fatalf("Set(update) error = %v", err)
	}

	value, found, err = cache.Get(ctx, "review:abc123")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != `{"overall_score": 9}` {
		t.Fatalf("Get() after update = %q, found=%v", value, found)
	}

	if err := cache.Delete(ctx, "review:abc123"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, found, err = cache.Get(ctx, "review:abc123")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if found {
		t.Fatalf("Get() expected found=false after delete")
	}
}

func TestSQLiteCacheExpiresEntries(t *testing.T) {
	cache := setupSQLiteCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "review:stale", "old", time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Set(ctx, "review:live", "fresh", time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(time.Millisecond)

	_, found, err := cache.Get(ctx, "review:stale")
	if err != nil {
		t.Fatalf("Get(stale) error = %v", err)
	}
	if found {
		t.Fatal("Get(stale) found=true, want miss after ttl elapsed")
	}

	value, found, err := cache.Get(ctx, "review:live")
	if err != nil {
		t.Fatalf("Get(live) error = %v", err)
	}
	if !found || value != "fresh" {
		t.Fatalf("Get(live) = %q, found=%v", value, found)
	}

	// Eviction removed the row, so re-setting without a ttl resurrects the
	// key permanently.
	if err := cache.Set(ctx, "review:stale", "new", 0); err != nil {
		t.Fatalf("Set(re-add) error = %v", err)
	}
	value, found, err = cache.Get(ctx, "review:stale")
	if err != nil {
		t.Fatalf("Get(re-add) error = %v", err)
	}
	if !found || value != "new" {
		t.Fatalf("Get(re-add) = %q, found=%v", value, found)
	}
}

func TestSQLiteCacheSetRefreshesExpiry(t *testing.T) {
	cache := setupSQLiteCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "review:k", "v1", time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Set(ctx, "review:k", "v2", time.Hour); err != nil {
		t.Fatalf("Set(refresh) error = %v", err)
	}
	time.Sleep(time.Millisecond)

	value, found, err := cache.Get(ctx, "review:k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found || value != "v2" {
		t.Fatalf("Get() after refresh = %q, found=%v, want v2 still cached", value, found)
	}
}

func TestSQLiteCacheRejectsEmptyKey(t *testing.T) {
	cache := setupSQLiteCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "", "v", 0); err == nil {
		t.Fatalf("Set() expected error for empty key")
	}
	if _, _, err := cache.Get(ctx, ""); err == nil {
		t.Fatalf("Get() expected error for empty key")
	}
	if err := cache.Delete(ctx, ""); err == nil {
		t.Fatalf("Delete() expected error for empty key")
	}
}
