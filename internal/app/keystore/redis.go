package keystore

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/redis/go-redis/v9"
)

const defaultSetKey = "attribution:recorded"

// Bloom sizing: enough for ~1M keys at a 1% false-positive rate. A false
// positive only costs one extra Redis round trip.
const (
	bloomCapacity = 1_000_000
	bloomFPRate   = 0.01
)

// Redis is a KeyStore backed by a Redis set with an in-process bloom filter
// in front of it. A definite bloom miss skips the network round trip; a
// possible hit is confirmed against Redis.
//
// The filter is rebuilt from the persisted set on construction so keys
// recorded by an earlier process are still seen. Until that seeding has
// succeeded the filter is bypassed and every lookup goes to Redis.
type Redis struct {
	client *redis.Client
	setKey string

	mu     sync.Mutex
	seeded bool
	filter *bloom.BloomFilter
}

// NewRedis returns a Redis-backed key store on the default set key, with the
// bloom prefilter seeded from the keys already in the set.
func NewRedis(ctx context.Context, client *redis.Client) *Redis {
	s := &Redis{
		client: client,
		setKey: defaultSetKey,
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFPRate),
	}
	s.seed(ctx)
	return s
}

// seed walks the persisted set into the filter. On scan failure the filter
// stays unseeded, which disables the prefilter rather than the store.
func (s *Redis) seed(ctx context.Context) {
	iter := s.client.SScan(ctx, s.setKey, 0, "", 1000).Iterator()
	for iter.Next(ctx) {
		s.filter.AddString(iter.Val())
	}
	if err := iter.Err(); err != nil {
		return
	}
	s.mu.Lock()
	s.seeded = true
	s.mu.Unlock()
}

func (s *Redis) Has(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	maybe := !s.seeded || s.filter.TestString(key)
	s.mu.Unlock()
	if !maybe {
		return false, nil
	}

	ok, err := s.client.SIsMember(ctx, s.setKey, key).Result()
	if err != nil {
		// Fail open: an unreadable store means "not recorded", so attribution
		// is re-attempted instead of silently lost.
		return false, err
	}
	return ok, nil
}

func (s *Redis) Add(ctx context.Context, key string) error {
	if err := s.client.SAdd(ctx, s.setKey, key).Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.filter.AddString(key)
	s.mu.Unlock()
	return nil
}

var _ KeyStore = (*Redis)(nil)
