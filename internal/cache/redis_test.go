package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type listing struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := newRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got listing
	hit, err := c.Get(ctx, "page=1", &got)
	if err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	want := listing{IDs: []string{"a", "b"}, Total: 2}
	if err := c.Set(ctx, "page=1", want); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("articles:list:page=1") {
		t.Fatal("key not stored under the listing prefix")
	}
	if ttl := mr.TTL("articles:list:page=1"); ttl != time.Minute {
		t.Errorf("ttl = %v", ttl)
	}

	hit, err = c.Get(ctx, "page=1", &got)
	if err != nil || !hit {
		t.Fatalf("cached listing: hit=%v err=%v", hit, err)
	}
	if got.Total != 2 || len(got.IDs) != 2 || got.IDs[1] != "b" {
		t.Fatalf("got %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if hit, _ := c.Get(ctx, "page=1", &got); hit {
		t.Fatal("expired listing still served")
	}
}

func TestRedisCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	if err := mr.Set("articles:list:bad", "{not json"); err != nil {
		t.Fatal(err)
	}
	var got listing
	if hit, err := c.Get(context.Background(), "bad", &got); err == nil || hit {
		t.Fatalf("corrupt entry: hit=%v err=%v", hit, err)
	}
}

func TestRedisCache_InvalidateKeepsOtherKeys(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"page=1", "page=2", "category=event"} {
		if err := c.Set(ctx, k, listing{Total: 1}); err != nil {
			t.Fatal(err)
		}
	}
	if err := mr.Set("session:xyz", "keep"); err != nil {
		t.Fatal(err)
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	for _, k := range []string{"page=1", "page=2", "category=event"} {
		if mr.Exists("articles:list:" + k) {
			t.Errorf("%s survived invalidation", k)
		}
	}
	if !mr.Exists("session:xyz") {
		t.Error("unrelated key removed")
	}

	// Nothing left to drop.
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("second invalidate: %v", err)
	}
}
