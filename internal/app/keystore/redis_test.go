package keystore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedis_AddThenHas(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	store := NewRedis(ctx, client)
	key := "v1|course/go-101/aff-9"

	seen, err := store.Has(ctx, key)
	if err != nil {
		t.Fatalf("Has returned error: %v", err)
	}
	if seen {
		t.Fatal("fresh store must not contain the key")
	}

	if err := store.Add(ctx, key); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	seen, err = store.Has(ctx, key)
	if err != nil {
		t.Fatalf("Has returned error: %v", err)
	}
	if !seen {
		t.Fatal("key must be present after Add")
	}
}

func TestRedis_PersistedKeysSurviveRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	first := NewRedis(ctx, client)
	key := "v1|course/go-101/aff-9"
	if err := first.Add(ctx, key); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	// A new store over the same Redis stands in for a process restart. Its
	// prefilter must be rebuilt from the persisted set, so the key recorded
	// by the previous process is still reported present.
	second := NewRedis(ctx, client)
	seen, err := second.Has(ctx, key)
	if err != nil {
		t.Fatalf("Has returned error: %v", err)
	}
	if !seen {
		t.Fatal("persisted key reported absent after restart")
	}

	seen, err = second.Has(ctx, "v2|course/go-101/aff-9")
	if err != nil {
		t.Fatalf("Has returned error: %v", err)
	}
	if seen {
		t.Fatal("unrecorded key reported present")
	}
}

func TestRedis_UnseededFilterBypassed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	key := "v1|ebook/ebook-7/aff-2"
	if err := client.SAdd(ctx, defaultSetKey, key).Err(); err != nil {
		t.Fatalf("SAdd returned error: %v", err)
	}

	// Seeding never succeeded: lookups must go to Redis instead of trusting
	// the empty filter.
	store := NewRedis(ctx, client)
	store.mu.Lock()
	store.seeded = false
	store.filter.ClearAll()
	store.mu.Unlock()

	seen, err := store.Has(ctx, key)
	if err != nil {
		t.Fatalf("Has returned error: %v", err)
	}
	if !seen {
		t.Fatal("unseeded store must consult Redis directly")
	}
}
