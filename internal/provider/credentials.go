// Package provider is the stateful DVLA Print API client: TTL-cached
// credentials, JWT session management and locked credential rotation.
package provider

import (
	"context"
	"time"

	"github.com/govnotify/letterpipe/internal/cache"
	"github.com/govnotify/letterpipe/internal/secrets"
)

// Credential is a TTL-cached handle on one named secret. Reads within the
// TTL are served from process memory; a Set writes through and refreshes
// the cache so the next read does not re-fetch.
type Credential struct {
	name  string
	ttl   time.Duration
	store secrets.Store
	cache *cache.TTLCache[string, string]
}

func NewCredential(store secrets.Store, name string, ttl time.Duration) *Credential {
	return &Credential{
		name:  name,
		ttl:   ttl,
		store: store,
		cache: cache.New[string, string](),
	}
}

// NewCredentialWithNow injects the clock used for cache expiry.
func NewCredentialWithNow(store secrets.Store, name string, ttl time.Duration, now func() time.Time) *Credential {
	return &Credential{
		name:  name,
		ttl:   ttl,
		store: store,
		cache: cache.NewWithNow[string, string](now),
	}
}

func (c *Credential) Get(ctx context.Context) (string, error) {
	if value, ok := c.cache.Get(c.name); ok {
		return value, nil
	}
	value, err := c.store.GetSecret(ctx, c.name)
	if err != nil {
		return "", err
	}
	c.cache.Set(c.name, value, c.ttl)
	return value, nil
}

func (c *Credential) Set(ctx context.Context, value string) error {
	if err := c.store.SetSecret(ctx, c.name, value); err != nil {
		return err
	}
	c.cache.Set(c.name, value, c.ttl)
	return nil
}
