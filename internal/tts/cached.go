package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cached memoizes another client's output by text.
type Cached struct {
	next  Client
	cache *cache.Cache
}

// NewCached wraps next with an in-memory cache whose entries expire after
// ttl.
func NewCached(next Client, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Synthesize returns the cached audio for text or asks the wrapped client.
func (c *Cached) Synthesize(ctx context.Context, text string) ([]byte, error) {
	key := cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		return v.([]byte), nil
	}
	audio, err := c.next.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, audio)
	return audio, nil
}
