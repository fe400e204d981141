package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
	t.Cleanup(Reset)
	return mr
}

func TestLockerExclusive(t *testing.T) {
	setupMiniRedis(t)
	locker := NewLocker()
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "checkout:1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock should succeed, ok=%v err=%v", ok, err)
	}
	if _, ok, err := locker.TryLock(ctx, "checkout:1", time.Minute); err != nil || ok {
		t.Fatalf("second lock should fail while held, ok=%v err=%v", ok, err)
	}

	release()
	release2, ok, err := locker.TryLock(ctx, "checkout:1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("lock after release should succeed, ok=%v err=%v", ok, err)
	}
	release2()
}

func TestLockerExpires(t *testing.T) {
	mr := setupMiniRedis(t)
	locker := NewLocker()
	ctx := context.Background()

	if _, ok, _ := locker.TryLock(ctx, "checkout:2", time.Second); !ok {
		t.Fatalf("lock should succeed")
	}
	mr.FastForward(2 * time.Second)
	if _, ok, _ := locker.TryLock(ctx, "checkout:2", time.Second); !ok {
		t.Fatalf("expired lock should be re-acquirable")
	}
}

func TestLockerDisabledAlwaysSucceeds(t *testing.T) {
	Reset()
	release, ok, err := NewLocker().TryLock(context.Background(), "checkout:3", time.Second)
	if err != nil || !ok || release == nil {
		t.Fatalf("disabled cache should grant lock, ok=%v err=%v", ok, err)
	}
	release()
}

func TestAuthStateRoundTrip(t *testing.T) {
	setupMiniRedis(t)
	ctx := context.Background()
	if err := SetUserAuthState(ctx, &UserAuthState{UserID: 9, Status: "active", TokenVersion: 3}); err != nil {
		t.Fatalf("set state failed: %v", err)
	}
	state, hit, err := GetUserAuthState(ctx, 9)
	if err != nil || !hit {
		t.Fatalf("expected cache hit, hit=%v err=%v", hit, err)
	}
	if state.TokenVersion != 3 {
		t.Fatalf("unexpected token version: %d", state.TokenVersion)
	}
}
