package tagcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/inboxtools/sigscrub/internal/tagger"
)

func TestCacheGetPut(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "lexical", "Jane Doe"); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	want := tagger.Tag{Label: tagger.ContactLike, Confidence: 0.93}
	if err := c.Put(ctx, "lexical", "Jane Doe", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(ctx, "lexical", "Jane Doe")
	if err != nil || !ok {
		t.Fatalf("Get after Put: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// Same text under another model is a distinct entry.
	if _, ok, _ := c.Get(ctx, "spacy/en_core_web_sm", "Jane Doe"); ok {
		t.Error("model must be part of the cache key")
	}
}

func TestCacheOverwrite(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Put(ctx, "m", "x", tagger.Tag{Label: tagger.Ordinary, Confidence: 0.1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(ctx, "m", "x", tagger.Tag{Label: tagger.SalutationLike, Confidence: 0.8}); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, ok, err := c.Get(ctx, "m", "x")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Label != tagger.SalutationLike || got.Confidence != 0.8 {
		t.Errorf("got %+v after overwrite", got)
	}

	n, err := c.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestCachePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if err := c.Put(ctx, "m", "Best regards", tagger.Tag{Label: tagger.SalutationLike, Confidence: 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()

	if _, ok, err := c2.Get(ctx, "m", "Best regards"); err != nil || !ok {
		t.Fatalf("entry lost across reopen: ok=%v err=%v", ok, err)
	}
}

// countingTagger records how often the inner tagger actually runs.
type countingTagger struct {
	calls int
	tag   tagger.Tag
	err   error
}

func (c *countingTagger) Name() string { return "counting" }

func (c *countingTagger) Tag(_ context.Context, _ string) (tagger.Tag, error) {
	c.calls++
	return c.tag, c.err
}

func TestCachedTaggerMemoizes(t *testing.T) {
	cache, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	inner := &countingTagger{tag: tagger.Tag{Label: tagger.ContactLike, Confidence: 0.9}}
	ct := WrapTagger(inner, cache)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := ct.Tag(ctx, "Jane Doe")
		if err != nil {
			t.Fatalf("Tag: %v", err)
		}
		if got != inner.tag {
			t.Errorf("got %+v", got)
		}
	}

	if inner.calls != 1 {
		t.Errorf("inner tagger ran %d times, want 1", inner.calls)
	}
}

func TestCachedTaggerPropagatesErrors(t *testing.T) {
	cache, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer cache.Close()

	inner := &countingTagger{err: tagger.ErrUnavailable}
	ct := WrapTagger(inner, cache)

	if _, err := ct.Tag(context.Background(), "Jane Doe"); !errors.Is(err, tagger.ErrUnavailable) {
		t.Fatalf("error %v does not wrap ErrUnavailable", err)
	}

	// Failures are not cached.
	if n, _ := cache.Count(context.Background()); n != 0 {
		t.Errorf("cache has %d entries after failure", n)
	}
}
