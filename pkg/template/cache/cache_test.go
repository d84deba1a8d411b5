package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stencil-hq/atrium/pkg/template"
	"stencil-hq/atrium/pkg/template/conditions"
	"stencil-hq/atrium/pkg/template/engine"
	"stencil-hq/atrium/pkg/template/store"
)

func newTestCache(t *testing.T) (*DecisionCache, *miniredis.Miniredis, *store.MemoryStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	resolver := engine.NewResolver(st, engine.NewEvaluator(conditions.NewRegistry(), nil))
	c := New(client, resolver, &Config{TTL: time.Minute}, nil)
	return c, mr, st
}

func seedFrontPage(t *testing.T, st *store.MemoryStore) template.ID {
	t.Helper()
	id, err := st.Create(context.Background(), &template.Template{
		Title:  "Landing",
		Status: template.StatusActive,
		Conditions: []template.Condition{
			{Kind: template.KindFrontPage},
		},
	})
	require.NoError(t, err)
	return id
}

func TestDecisionCacheMissThenHit(t *testing.T) {
	c, mr, st := newTestCache(t)
	ctx := context.Background()
	id := seedFrontPage(t, st)
	rctx := &template.RequestContext{IsFrontPage: true}

	d := c.Resolve(ctx, rctx)
	assert.Equal(t, id, d.TemplateID)

	key := keyPrefix + rctx.Fingerprint()
	require.True(t, mr.Exists(key), "decision should be cached after a miss")

	// A hit serves the cached decision even after the template disappears.
	require.NoError(t, st.Delete(ctx, id))
	cached := c.Resolve(ctx, rctx)
	assert.Equal(t, id, cached.TemplateID)
}

func TestDecisionCacheSeparatesVisitorSignals(t *testing.T) {
	c, _, st := newTestCache(t)
	ctx := context.Background()

	id, err := st.Create(ctx, &template.Template{
		Title:  "Mobile Banner",
		Status: template.StatusActive,
		Conditions: []template.Condition{
			{Kind: template.KindDevice, Value: "mobile"},
		},
	})
	require.NoError(t, err)

	mobile := &template.RequestContext{
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1",
	}
	desktop := &template.RequestContext{
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0 Safari/537.36",
	}
	require.NotEqual(t, mobile.Fingerprint(), desktop.Fingerprint(),
		"contexts differing in user agent must not share a cache key")

	d := c.Resolve(ctx, mobile)
	require.Equal(t, id, d.TemplateID)

	// The desktop visitor must not be served the cached mobile decision.
	d = c.Resolve(ctx, desktop)
	assert.False(t, d.Matched())
}

func TestDecisionCacheTTL(t *testing.T) {
	c, mr, st := newTestCache(t)
	ctx := context.Background()
	id := seedFrontPage(t, st)
	rctx := &template.RequestContext{IsFrontPage: true}

	c.Resolve(ctx, rctx)
	require.NoError(t, st.Delete(ctx, id))

	// Past the TTL the cached decision expires and resolution runs again.
	mr.FastForward(2 * time.Minute)
	d := c.Resolve(ctx, rctx)
	assert.False(t, d.Matched())
}

func TestDecisionCacheCorruptEntry(t *testing.T) {
	c, mr, st := newTestCache(t)
	ctx := context.Background()
	id := seedFrontPage(t, st)
	rctx := &template.RequestContext{IsFrontPage: true}

	key := keyPrefix + rctx.Fingerprint()
	require.NoError(t, mr.Set(key, "not json"))

	d := c.Resolve(ctx, rctx)
	assert.Equal(t, id, d.TemplateID, "corrupt entry falls through to the resolver")

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.NotEqual(t, "not json", got, "corrupt entry is overwritten")
}

func TestDecisionCacheRedisDownFallsThrough(t *testing.T) {
	c, mr, st := newTestCache(t)
	ctx := context.Background()
	id := seedFrontPage(t, st)

	mr.Close()

	d := c.Resolve(ctx, &template.RequestContext{IsFrontPage: true})
	assert.Equal(t, id, d.TemplateID, "cache outage must not break resolution")
}

func TestDecisionCacheFlush(t *testing.T) {
	c, mr, st := newTestCache(t)
	ctx := context.Background()
	seedFrontPage(t, st)

	c.Resolve(ctx, &template.RequestContext{IsFrontPage: true})
	c.Resolve(ctx, &template.RequestContext{IsSearch: true})
	require.NoError(t, mr.Set("unrelated:key", "keep"))

	require.NoError(t, c.Flush(ctx))

	keys := mr.Keys()
	assert.Equal(t, []string{"unrelated:key"}, keys, "flush only removes decision keys")

	// Flushing an empty cache is fine.
	require.NoError(t, c.Flush(ctx))
	require.NoError(t, c.Flush(ctx))
}

func TestDecisionCacheDelegation(t *testing.T) {
	c, _, st := newTestCache(t)
	ctx := context.Background()

	id, err := st.Create(ctx, &template.Template{
		Title:  "Promo Header",
		Status: template.StatusActive,
		Conditions: []template.Condition{
			{Kind: template.KindFrontPage},
		},
	})
	require.NoError(t, err)

	got := c.ResolveForLocation(ctx, &template.RequestContext{IsFrontPage: true}, template.CategoryHeader)
	assert.Equal(t, id, got)

	category, err := c.Classify(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, template.CategoryHeader, category)
}

func TestFlusherLifecycle(t *testing.T) {
	c, _, _ := newTestCache(t)

	f := NewFlusher(c, "* * * * *", nil)
	require.NoError(t, f.Start(context.Background()))
	require.NoError(t, f.Start(context.Background()), "start is idempotent")
	f.Stop()
	f.Stop()
}

func TestFlusherEmptyScheduleIsNoop(t *testing.T) {
	c, _, _ := newTestCache(t)

	f := NewFlusher(c, "", nil)
	require.NoError(t, f.Start(context.Background()))
	f.Stop()
}

func TestFlusherRejectsBadSchedule(t *testing.T) {
	c, _, _ := newTestCache(t)

	f := NewFlusher(c, "not a schedule", nil)
	assert.Error(t, f.Start(context.Background()))
}
