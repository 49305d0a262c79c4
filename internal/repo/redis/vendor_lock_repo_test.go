package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newLockRepo(t *testing.T) (*VendorLockRepo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewVendorLockRepo(client, time.Second), mr
}

func TestWithVendorLockRunsCallback(t *testing.T) {
	repo, _ := newLockRepo(t)

	called := false
	err := repo.WithVendorLock(context.Background(), 42, func(context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("with vendor lock: %v", err)
	}
	if !called {
		t.Fatalf("expected callback to run")
	}
}

func TestWithVendorLockReleasesAfterCallback(t *testing.T) {
	repo, mr := newLockRepo(t)

	if err := repo.WithVendorLock(context.Background(), 42, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if mr.Exists("lock:vendor:42") {
		t.Fatalf("lock key should be released after callback")
	}

	// Second acquisition must succeed immediately.
	if err := repo.WithVendorLock(context.Background(), 42, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("second lock: %v", err)
	}
}

func TestWithVendorLockBlocksConcurrentHolder(t *testing.T) {
	repo, mr := newLockRepo(t)
	repo.maxWait = 100 * time.Millisecond
	repo.retryInterval = 10 * time.Millisecond

	mr.Set("lock:vendor:7", "someone-else")

	err := repo.WithVendorLock(context.Background(), 7, func(context.Context) error { return nil })
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired, got %v", err)
	}
}

func TestWithVendorLockDoesNotReleaseForeignToken(t *testing.T) {
	repo, mr := newLockRepo(t)
	repo.maxWait = 50 * time.Millisecond
	repo.retryInterval = 10 * time.Millisecond

	mr.Set("lock:vendor:9", "foreign")

	_ = repo.WithVendorLock(context.Background(), 9, func(context.Context) error { return nil })

	got, err := mr.Get("lock:vendor:9")
	if err != nil {
		t.Fatalf("lock key disappeared: %v", err)
	}
	if got != "foreign" {
		t.Fatalf("foreign lock token was overwritten: %s", got)
	}
}

func TestWithVendorLockCallbackErrorStillReleases(t *testing.T) {
	repo, mr := newLockRepo(t)

	wantErr := errors.New("boom")
	err := repo.WithVendorLock(context.Background(), 11, func(context.Context) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if mr.Exists("lock:vendor:11") {
		t.Fatalf("lock key should be released after failing callback")
	}
}
