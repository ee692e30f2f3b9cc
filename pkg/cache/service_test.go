package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventbook/internal/shared/config"
	"eventbook/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type profile struct {
	Name string `json:"name"`
}

func newService(t *testing.T) (Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(client, logger.Discard()), mr
}

func TestSetGetDelete(t *testing.T) {
	svc, mr := newService(t)
	ctx := context.Background()

	var got profile
	if err := svc.Get(ctx, "p:1", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get on empty cache = %v, want ErrCacheMiss", err)
	}

	if err := svc.Set(ctx, "p:1", profile{Name: "Ada"}, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := svc.Get(ctx, "p:1", &got); err != nil || got.Name != "Ada" {
		t.Fatalf("Get = %+v, %v; want Ada", got, err)
	}
	if ttl := mr.TTL("p:1"); ttl != time.Minute {
		t.Fatalf("TTL = %v, want 1m", ttl)
	}

	if err := svc.Delete(ctx, "p:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, err := svc.Exists(ctx, "p:1"); err != nil || ok {
		t.Fatalf("Exists after Delete = %v, %v; want false", ok, err)
	}
}

func TestExistsHonoursExpiry(t *testing.T) {
	svc, mr := newService(t)
	ctx := context.Background()

	if err := svc.Set(ctx, "k", true, time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ok, _ := svc.Exists(ctx, "k"); !ok {
		t.Fatal("Exists = false, want true before expiry")
	}
	mr.FastForward(2 * time.Second)
	if ok, _ := svc.Exists(ctx, "k"); ok {
		t.Fatal("Exists = true, want false after expiry")
	}
}

func TestGetOrSetCallsFetcherOnce(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return profile{Name: "Grace"}, nil
	}

	for i := 0; i < 3; i++ {
		var got profile
		if err := svc.GetOrSet(ctx, "p:2", time.Minute, fetch, &got); err != nil {
			t.Fatalf("GetOrSet #%d: %v", i+1, err)
		}
		if got.Name != "Grace" {
			t.Fatalf("GetOrSet #%d = %+v, want Grace", i+1, got)
		}
	}
	if calls != 1 {
		t.Fatalf("fetcher called %d times, want 1", calls)
	}
}

func TestGetOrSetFallsBackWhenRedisIsDown(t *testing.T) {
	svc, mr := newService(t)
	mr.Close()

	var got profile
	err := svc.GetOrSet(context.Background(), "p:3", time.Minute, func() (interface{}, error) {
		return profile{Name: "Linus"}, nil
	}, &got)
	if err != nil || got.Name != "Linus" {
		t.Fatalf("GetOrSet with Redis down = %+v, %v; want Linus", got, err)
	}
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_ = client.Close()

	mr.Close()
	if _, err := NewClient(config.RedisConfig{Addr: mr.Addr()}); err == nil {
		t.Fatal("NewClient against a closed server succeeded")
	}
}
