package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/engine"
)

// keyPrefix namespaces decision keys so Flush cannot touch unrelated data
// on a shared Redis.
const keyPrefix = "atrium:decision:"

// DecisionCache memoizes resolution decisions per request-context
// fingerprint. Cache failures are never surfaced: a read error falls
// through to the resolver, a write error only costs the memoization.
type DecisionCache struct {
	client   redis.UniversalClient
	resolver *engine.Resolver
	ttl      time.Duration
	logger   *slog.Logger
}

// Config contains configuration for the decision cache.
type Config struct {
	// TTL is how long a cached decision stays valid. Default: 1 minute.
	TTL time.Duration
}

// New creates a decision cache over the resolver.
func New(client redis.UniversalClient, resolver *engine.Resolver, cfg *Config, logger *slog.Logger) *DecisionCache {
	ttl := time.Minute
	if cfg != nil && cfg.TTL > 0 {
		ttl = cfg.TTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DecisionCache{
		client:   client,
		resolver: resolver,
		ttl:      ttl,
		logger:   logger,
	}
}

// Resolve returns the cached decision for the request context, resolving
// and caching on a miss.
func (c *DecisionCache) Resolve(ctx context.Context, rctx *template.RequestContext) template.Decision {
	key := keyPrefix + rctx.Fingerprint()

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var d template.Decision
		if jsonErr := json.Unmarshal(data, &d); jsonErr == nil {
			return d
		}
		// Corrupt entry: drop it and re-resolve.
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.Warn("decision cache read failed", "error", err)
	}

	d := c.resolver.Resolve(ctx, rctx)

	payload, err := json.Marshal(d)
	if err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("decision cache write failed", "error", err)
		}
	}
	return d
}

// ResolveForLocation delegates to the engine. Slot lookups are already
// scoped by classification and cheap enough that memoizing them has not
// been worth the extra invalidation surface.
func (c *DecisionCache) ResolveForLocation(ctx context.Context, rctx *template.RequestContext, location template.Category) template.ID {
	return c.resolver.ResolveForLocation(ctx, rctx, location)
}

// Classify delegates to the engine.
func (c *DecisionCache) Classify(ctx context.Context, id template.ID) (template.Category, error) {
	return c.resolver.Classify(ctx, id)
}

// Flush removes every cached decision. Called after template writes so
// authored changes take effect ahead of TTL expiry.
func (c *DecisionCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
