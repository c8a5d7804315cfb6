package api

import (
	"context"
	"net/http"
	"sync"

	"storefront/internal/pricing"
)

type storeConfigCache struct {
	mu    sync.RWMutex
	rules *pricing.Rules
}

func (c *storeConfigCache) get() (pricing.Rules, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rules == nil {
		return pricing.Rules{}, false
	}
	return *c.rules, true
}

func (c *storeConfigCache) set(r pricing.Rules) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = &r
}

// StoreConfig returns the store-wide tax and shipping rules. The first
// successful response is cached; concurrent callers share one request.
func (c *Client) StoreConfig(ctx context.Context) (pricing.Rules, error) {
	if r, ok := c.configCache.get(); ok {
		return r, nil
	}

	v, err, _ := c.configGroup.Do("config", func() (any, error) {
		var res pricing.Rules
		if err := c.do(ctx, http.MethodGet, "/config/", nil, &res); err != nil {
			return nil, err
		}
		c.configCache.set(res)
		return res, nil
	})
	if err != nil {
		return pricing.Rules{}, err
	}
	return v.(pricing.Rules), nil
}
