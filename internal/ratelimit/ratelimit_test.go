package ratelimit

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestMemoryBurstThenDeny(t *testing.T) {
	m := NewMemory(1, 3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("request %d denied: %v", i, err)
		}
	}
	if ok, _ := m.Allow(ctx, "1.2.3.4"); ok {
		t.Fatal("fourth request allowed")
	}
	if ok, _ := m.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatal("other key denied")
	}
}

func TestUnlimited(t *testing.T) {
	for i := 0; i < 100; i++ {
		if ok, _ := (Unlimited{}).Allow(context.Background(), "k"); !ok {
			t.Fatal("denied")
		}
	}
}

func TestRedisFixedWindow(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("CB_TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("set CB_TEST_REDIS_ADDR to run redis rate limit tests")
	}
	ctx := context.Background()
	rdb, err := Dial(ctx, addr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer rdb.Close()

	r := NewRedis(rdb, 2, time.Minute, "chalkboard:test:"+uuid.NewString())
	fixed := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	r.now = func() time.Time { return fixed }
	for i, want := range []bool{true, true, false} {
		ok, err := r.Allow(ctx, "k")
		if err != nil || ok != want {
			t.Fatalf("request %d: ok=%v err=%v", i, ok, err)
		}
	}
	r.now = func() time.Time { return fixed.Add(time.Minute) }
	if ok, _ := r.Allow(ctx, "k"); !ok {
		t.Fatal("next window denied")
	}
}
