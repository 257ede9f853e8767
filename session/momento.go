package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/momentohq/client-sdk-go/auth"
	"github.com/momentohq/client-sdk-go/config"
	"github.com/momentohq/client-sdk-go/momento"
	"github.com/momentohq/client-sdk-go/responses"
)

const sessionKey = "user"

// sessionCache is the raw blob storage behind MomentoStore. load
// returns nil when no session is cached.
type sessionCache interface {
	load(ctx context.Context) ([]byte, error)
	store(ctx context.Context, blob []byte) error
	clear(ctx context.Context) error
}

// MomentoStore keeps the session blob in a Momento cache under a fixed
// key, so the session survives process restarts.
type MomentoStore struct {
	cache sessionCache
}

// NewMomentoStore requires MOMENTO_AUTH_TOKEN; the cache name comes
// from SESSION_CACHE_NAME and defaults to codereviewhub-cache.
func NewMomentoStore() (*MomentoStore, error) {
	if os.Getenv("MOMENTO_AUTH_TOKEN") == "" {
		return nil, fmt.Errorf("MOMENTO_AUTH_TOKEN not set")
	}

	credentialProvider, err := auth.NewEnvMomentoTokenProvider("MOMENTO_AUTH_TOKEN")
	if err != nil {
		return nil, fmt.Errorf("failed to load Momento auth token: %v", err)
	}

	client, err := momento.NewCacheClient(config.LaptopLatest(), credentialProvider, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to create Momento client: %v", err)
	}

	cacheName := os.Getenv("SESSION_CACHE_NAME")
	if cacheName == "" {
		cacheName = "codereviewhub-cache"
	}

	return &MomentoStore{cache: &momentoCache{client: client, cacheName: cacheName}}, nil
}

// newMomentoStoreWithCache wires an explicit blob cache, used by tests.
func newMomentoStoreWithCache(cache sessionCache) *MomentoStore {
	return &MomentoStore{cache: cache}
}

func (m *MomentoStore) Load(ctx context.Context) (map[string]interface{}, error) {
	blob, err := m.cache.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %v", err)
	}
	if blob == nil {
		return map[string]interface{}{}, nil
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(blob, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse session: %v", err)
	}
	return fields, nil
}

func (m *MomentoStore) Merge(ctx context.Context, fields map[string]interface{}) (map[string]interface{}, error) {
	current, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		current[k] = v
	}

	blob, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %v", err)
	}
	if err := m.cache.store(ctx, blob); err != nil {
		return nil, fmt.Errorf("failed to store session: %v", err)
	}
	return current, nil
}

func (m *MomentoStore) Clear(ctx context.Context) error {
	if err := m.cache.clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %v", err)
	}
	return nil
}

// momentoCache adapts the Momento cache client to the blob interface.
type momentoCache struct {
	client    momento.CacheClient
	cacheName string
}

func (c *momentoCache) load(ctx context.Context) ([]byte, error) {
	resp, err := c.client.Get(ctx, &momento.GetRequest{
		CacheName: c.cacheName,
		Key:       momento.String(sessionKey),
	})
	if err != nil {
		return nil, err
	}

	switch r := resp.(type) {
	case *responses.GetHit:
		return r.ValueByte(), nil
	default:
		return nil, nil
	}
}

func (c *momentoCache) store(ctx context.Context, blob []byte) error {
	_, err := c.client.Set(ctx, &momento.SetRequest{
		CacheName: c.cacheName,
		Key:       momento.String(sessionKey),
		Value:     momento.Bytes(blob),
	})
	return err
}

func (c *momentoCache) clear(ctx context.Context) error {
	_, err := c.client.Delete(ctx, &momento.DeleteRequest{
		CacheName: c.cacheName,
		Key:       momento.String(sessionKey),
	})
	return err
}
