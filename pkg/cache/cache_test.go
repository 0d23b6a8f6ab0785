package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCacheDropsEverything(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "result:abc", []byte("lockfile"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, hit, err := c.Get(ctx, "result:abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit || data != nil {
		t.Errorf("Get() = (%q, %v), want miss", data, hit)
	}
	if err := c.Delete(ctx, "result:abc"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	payload := []byte(`{"name":"app","lockfileVersion":1}`)

	if _, hit, _ := c.Get(ctx, "result:abc"); hit {
		t.Error("Get() before Set() should miss")
	}
	if err := c.Set(ctx, "result:abc", payload, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, hit, err := c.Get(ctx, "result:abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() after Set() should hit")
	}
	if string(data) != string(payload) {
		t.Errorf("Get() = %q, want %q", data, payload)
	}

	if err := c.Delete(ctx, "result:abc"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "result:abc"); hit {
		t.Error("Get() after Delete() should miss")
	}
	if err := c.Delete(ctx, "result:absent"); err != nil {
		t.Errorf("Delete() of absent key: %v", err)
	}
}

func TestFileCacheExpiredEntryPruned(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "result:abc", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, hit, err := c.Get(ctx, "result:abc"); err != nil || hit {
		t.Errorf("Get() = (hit=%v, err=%v), want pruned miss", hit, err)
	}
	if files := cacheFiles(t, dir); len(files) != 0 {
		t.Errorf("expired entry left on disk: %v", files)
	}
}

func TestFileCacheCorruptEntryPruned(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "result:abc", []byte("good"), time.Hour); err != nil {
		t.Fatal(err)
	}
	files := cacheFiles(t, dir)
	if len(files) != 1 {
		t.Fatalf("expected one entry file, got %v", files)
	}
	if err := os.WriteFile(files[0], []byte("{torn write"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "result:abc"); err != nil || hit {
		t.Errorf("Get() = (hit=%v, err=%v), want miss on corrupt entry", hit, err)
	}
	if files := cacheFiles(t, dir); len(files) != 0 {
		t.Errorf("corrupt entry left on disk: %v", files)
	}
}

func TestFileCacheGroupsEntriesByKind(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "result:abc", []byte("r"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "snapshot:def", []byte("s"), 0); err != nil {
		t.Fatal(err)
	}

	for _, kind := range []string{"result", "snapshot"} {
		if _, err := os.Stat(filepath.Join(dir, kind)); err != nil {
			t.Errorf("no %s/ subdirectory: %v", kind, err)
		}
	}
}

// cacheFiles lists every entry file under a cache directory.
func cacheFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestHash(t *testing.T) {
	h := Hash([]byte(`{"name":"app"}`))
	if len(h) != 64 {
		t.Errorf("Hash() length = %d, want 64 hex chars", len(h))
	}
	if h != Hash([]byte(`{"name":"app"}`)) {
		t.Error("Hash() should be deterministic")
	}
	if h == Hash([]byte(`{"name":"other"}`)) {
		t.Error("different documents should hash differently")
	}
}

func TestResultKey(t *testing.T) {
	k := NewDefaultKeyer()
	base := k.ResultKey("prevhash", "currhash", ResultKeyOpts{})

	if !strings.HasPrefix(base, "result:") {
		t.Errorf("ResultKey() = %q, want result: prefix", base)
	}
	if base != k.ResultKey("prevhash", "currhash", ResultKeyOpts{}) {
		t.Error("ResultKey() should be deterministic")
	}
	if base == k.ResultKey("otherhash", "currhash", ResultKeyOpts{}) {
		t.Error("previous snapshot hash should change the key")
	}
	if base == k.ResultKey("prevhash", "currhash", ResultKeyOpts{ProjectModules: []string{"^@acme/"}}) {
		t.Error("project-module patterns should change the key")
	}
}

func TestResultKeyIgnoresPatternOrder(t *testing.T) {
	k := NewDefaultKeyer()
	ab := k.ResultKey("p", "c", ResultKeyOpts{ProjectModules: []string{"^@acme/", "^internal-"}})
	ba := k.ResultKey("p", "c", ResultKeyOpts{ProjectModules: []string{"^internal-", "^@acme/"}})
	if ab != ba {
		t.Errorf("pattern order changed the key: %q vs %q", ab, ba)
	}
}

func TestSnapshotKey(t *testing.T) {
	k := NewDefaultKeyer()
	if got := k.SnapshotKey("abc"); got != "snapshot:abc" {
		t.Errorf("SnapshotKey() = %q", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:42:")

	if got := scoped.SnapshotKey("abc"); got != "tenant:42:snapshot:abc" {
		t.Errorf("SnapshotKey() = %q", got)
	}
	if got := scoped.ResultKey("p", "c", ResultKeyOpts{}); !strings.HasPrefix(got, "tenant:42:result:") {
		t.Errorf("ResultKey() = %q, want tenant prefix", got)
	}

	// nil inner falls back to the default keyer
	fallback := NewScopedKeyer(nil, "x:")
	if got := fallback.SnapshotKey("abc"); got != "x:snapshot:abc" {
		t.Errorf("SnapshotKey() with nil inner = %q", got)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should stay nil")
	}

	cause := errors.New("connection reset")
	wrapped := Retryable(cause)
	if !IsRetryable(wrapped) {
		t.Error("IsRetryable() should see the wrapper")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("wrapper should unwrap to the cause")
	}
	if IsRetryable(cause) {
		t.Error("a bare error is not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("first try succeeds", func(t *testing.T) {
		calls := 0
		if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil {
			t.Fatalf("error = %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		permanent := errors.New("bad request")
		calls := 0
		err := RetryWithBackoff(ctx, func() error { calls++; return permanent })
		if !errors.Is(err, permanent) {
			t.Errorf("error = %v, want %v", err, permanent)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("transient error retried until success", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 2 {
				return Retryable(errors.New("timeout"))
			}
			return nil
		})
		if err != nil {
			t.Fatalf("error = %v", err)
		}
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("attempts exhausted returns last error", func(t *testing.T) {
		cause := errors.New("backend down")
		calls := 0
		err := RetryWithBackoff(ctx, func() error { calls++; return Retryable(cause) })
		if !errors.Is(err, cause) {
			t.Errorf("error = %v, want %v", err, cause)
		}
		if calls != retryAttempts {
			t.Errorf("calls = %d, want %d", calls, retryAttempts)
		}
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(cancelled, func() error {
			return Retryable(errors.New("timeout"))
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}
