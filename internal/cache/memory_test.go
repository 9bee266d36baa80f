package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache(10, time.Minute)
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found, err := mc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !found || string(val) != "v" {
		t.Errorf("Get = %q, %v; want %q, true", val, found, "v")
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache(10, time.Minute)
	defer mc.Close()

	_, found, err := mc.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Error("found a key that was never set")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache(10, time.Minute)
	defer mc.Close()
	ctx := context.Background()

	mc.Set(ctx, "k", []byte("v"), -time.Second)

	_, found, _ := mc.Get(ctx, "k")
	if found {
		t.Error("expired entry still served")
	}
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache(10, time.Minute)
	defer mc.Close()
	ctx := context.Background()

	mc.Set(ctx, "k", []byte("v"), time.Minute)
	if err := mc.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, found, _ := mc.Get(ctx, "k")
	if found {
		t.Error("deleted entry still served")
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	mc := NewMemoryCache(2, time.Hour)
	defer mc.Close()
	ctx := context.Background()

	// Staggered TTLs so cleanup evicts the earliest-expiring entries first
	mc.Set(ctx, "a", []byte("1"), time.Minute)
	mc.Set(ctx, "b", []byte("2"), 2*time.Minute)
	mc.Set(ctx, "c", []byte("3"), 3*time.Minute)

	mc.cleanup()

	if _, found, _ := mc.Get(ctx, "a"); found {
		t.Error("oldest entry survived eviction")
	}
	if _, found, _ := mc.Get(ctx, "c"); !found {
		t.Error("newest entry was evicted")
	}
}
