package tagcache

import (
	"context"

	"github.com/inboxtools/sigscrub/internal/tagger"
)

// CachedTagger wraps a Tagger with read-through caching. Cache errors are
// swallowed: a broken cache degrades to calling the inner tagger, never to
// a classification failure.
type CachedTagger struct {
	inner tagger.Tagger
	cache *Cache
}

// WrapTagger returns t with results memoized in cache.
func WrapTagger(t tagger.Tagger, cache *Cache) *CachedTagger {
	return &CachedTagger{inner: t, cache: cache}
}

// Name implements tagger.Tagger.
func (c *CachedTagger) Name() string {
	return c.inner.Name()
}

// Tag implements tagger.Tagger.
func (c *CachedTagger) Tag(ctx context.Context, text string) (tagger.Tag, error) {
	if tag, ok, err := c.cache.Get(ctx, c.inner.Name(), text); err == nil && ok {
		return tag, nil
	}

	tag, err := c.inner.Tag(ctx, text)
	if err != nil {
		return tagger.Tag{}, err
	}

	// Best effort; a failed write just means re-tagging next time.
	_ = c.cache.Put(ctx, c.inner.Name(), text, tag)

	return tag, nil
}
