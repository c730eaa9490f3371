package redis

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	client := NewMemory()

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first request allowed with count 1, got allowed=%v count=%d", allowed, count)
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newMemoryStore(func() time.Time { return now })
	client := &Client{store: store}

	if err := client.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got, err := client.Get(ctx, "k"); err != nil || got != "v" {
		t.Fatalf("expected v, got %q err=%v", got, err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := client.Get(ctx, "k"); !errors.Is(err, ErrNil) {
		t.Fatalf("expected ErrNil after expiry, got %v", err)
	}
}

func TestSetNXAndDel(t *testing.T) {
	ctx := context.Background()
	client := NewMemory()

	ok, err := client.SetNX(ctx, "lock", "owner-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first SetNX to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "lock", "owner-b", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second SetNX to lose, ok=%v err=%v", ok, err)
	}
	if err := client.Del(ctx, "lock"); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, "lock"); !errors.Is(err, ErrNil) {
		t.Fatalf("expected ErrNil after del, got %v", err)
	}
}

func TestIncrIsMonotonic(t *testing.T) {
	ctx := context.Background()
	client := NewMemory()
	for want := int64(1); want <= 3; want++ {
		got, err := client.Incr(ctx, client.ListTicketKey("s1", "agents"))
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d got %d", want, got)
		}
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	cases := map[string]string{
		client.IdempotencyKey("leads", "abc"):        "sl:idempotency:leads:abc",
		client.RateLimitKey("login:email:a@b.c"):     "sl:rate_limit:login:email:a@b.c",
		client.SessionKey("sess-1"):                  "sl:session:sess-1",
		client.ListStateKey("sess-1", "agents"):      "sl:list:sess-1:agents:state",
		client.ListTicketKey("sess-1", "agents"):     "sl:list:sess-1:agents:seq",
		client.DraftKey("lead", "sess-1", "d1"):      "sl:draft:lead:sess-1:d1",
		client.DraftKey("permissions", "sess-1", ""): "sl:draft:permissions:sess-1",
		client.LockKey("cron:audit-retention"):       "sl:lock:cron:audit-retention",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("expected %s got %s", want, got)
		}
	}
}

func TestUninitializedClient(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client should be a no-op, got %v", err)
	}
}
