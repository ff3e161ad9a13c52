package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"result":"0"}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("Get(k) = hit %v, err %v", hit, err)
	}
	if string(data) != `{"result":"0"}` {
		t.Errorf("Get(k) = %s", data)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of a missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missing")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after Clear", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := ExpressionKeyOpts{Format: "modern", DepthLimit: 50, ReferenceCounting: true}
	key := k.ExpressionKey("abc", base)
	if !strings.HasPrefix(key, "expr:") {
		t.Errorf("ExpressionKey = %q, want expr: prefix", key)
	}
	if key != k.ExpressionKey("abc", base) {
		t.Error("ExpressionKey should be deterministic")
	}

	variants := []ExpressionKeyOpts{
		{Format: "compact", DepthLimit: 50, ReferenceCounting: true},
		{Format: "modern", DepthLimit: 10, ReferenceCounting: true},
		{Format: "modern", DepthLimit: 50, ReferenceCounting: false},
	}
	for _, opts := range variants {
		if k.ExpressionKey("abc", opts) == key {
			t.Errorf("options %+v do not change the key", opts)
		}
	}
	if k.ExpressionKey("abd", base) == key {
		t.Error("input hash does not change the key")
	}

	ok1 := k.OptimizeKey("abc", OptimizeKeyOpts{DepthLimit: 50})
	ok2 := k.OptimizeKey("abc", OptimizeKeyOpts{DepthLimit: 50, ReferenceCounting: true})
	if ok1 == ok2 || !strings.HasPrefix(ok1, "opt:") {
		t.Errorf("OptimizeKey: %q, %q", ok1, ok2)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	opts := ExpressionKeyOpts{Format: "modern"}
	if got, want := scoped.ExpressionKey("h", opts), "user:123:"+inner.ExpressionKey("h", opts); got != want {
		t.Errorf("ExpressionKey = %q, want %q", got, want)
	}
	if got := scoped.OptimizeKey("h", OptimizeKeyOpts{}); !strings.HasPrefix(got, "user:123:opt:") {
		t.Errorf("OptimizeKey = %q", got)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.ExpressionKey("h", opts); got != "p:"+inner.ExpressionKey("h", opts) {
		t.Errorf("nil inner keyer: %q", got)
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	retryDelay = time.Millisecond
	defer func() { retryDelay = 100 * time.Millisecond }()

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	if err := Retryable(ErrNetwork); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}

	calls := 0
	err := retry(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry = %v after %d calls, want success after 2", err, calls)
	}

	permanent := errors.New("permanent")
	calls = 0
	if err := retry(ctx, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("retry = %v after %d calls, want permanent after 1", err, calls)
	}

	calls = 0
	if err := retry(ctx, func() error { calls++; return Retryable(ErrNetwork) }); !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("retry = %v after %d calls, want ErrNetwork after 3", err, calls)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := retry(cancelled, func() error { return Retryable(ErrNetwork) }); err != context.Canceled {
		t.Errorf("retry with cancelled context = %v", err)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("GEOEXPR_TEST_REDIS")
	if url == "" {
		t.Skip("GEOEXPR_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "geoexpr-test:" + Hash([]byte(t.Name()))
	defer c.Delete(ctx, key)

	if _, hit, err := c.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get before Set: hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get after Set = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("entry survived Delete")
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-url"); err == nil {
		t.Error("NewRedisCache accepted a malformed url")
	}
}
