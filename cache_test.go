package bedrock

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/bedrock/content"
)

func TestPostCacheListPostsCachesFeed(t *testing.T) {
	src := &stubCMS{posts: samplePosts()}
	c := NewPostCache(src, time.Minute, 50)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		posts, err := c.ListPosts(ctx, "")
		require.NoError(t, err)
		assert.Len(t, posts, 4)
	}
	assert.Equal(t, 1, src.listCalls)

	c.Invalidate()
	_, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.listCalls)
}

func TestPostCacheToleratesCategoriesFailure(t *testing.T) {
	src := &stubCMS{posts: samplePosts(), categoriesErr: errors.New("categories: 500")}
	c := NewPostCache(src, time.Minute, 50)
	c.Logger.SetOutput(io.Discard)
	ctx := context.Background()

	posts, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, posts, 4)
	categories, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestPostCacheExpires(t *testing.T) {
	src := &stubCMS{posts: samplePosts()}
	c := NewPostCache(src, 20*time.Millisecond, 50)
	ctx := context.Background()

	_, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.listCalls)
}

func TestPostCacheCategoryFilter(t *testing.T) {
	c := NewPostCache(&stubCMS{posts: samplePosts()}, time.Minute, 50)
	ctx := context.Background()

	slugs := func(posts []content.Post) []string {
		var out []string
		for _, p := range posts {
			out = append(out, p.Slug)
		}
		return out
	}

	posts, err := c.ListPosts(ctx, " OnChain ")
	require.NoError(t, err)
	assert.Equal(t, []string{"mars", "moon", "titan"}, slugs(posts))

	posts, err = c.ListPosts(ctx, "all")
	require.NoError(t, err)
	assert.Len(t, posts, 4)

	posts, err = c.ListPosts(ctx, "culture")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPostCacheGetPost(t *testing.T) {
	src := &stubCMS{posts: samplePosts()}
	c := NewPostCache(src, time.Minute, 50)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		p, err := c.GetPost(ctx, "moon")
		require.NoError(t, err)
		assert.Equal(t, "Moon Mining", p.Title)
	}
	assert.Equal(t, 1, src.slugCalls)

	_, err := c.GetPost(ctx, "pluto")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.GetPost(ctx, "pluto")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 3, src.slugCalls, "misses are not cached")
}

func TestPostCacheLoadError(t *testing.T) {
	src := &stubCMS{listErr: errors.New("cms down")}
	c := NewPostCache(src, time.Minute, 50)

	_, err := c.ListPosts(context.Background(), "")
	assert.Error(t, err)

	src.listErr = nil
	src.posts = samplePosts()
	posts, err := c.ListPosts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, posts, 4)
}

func TestHasCategory(t *testing.T) {
	p := content.Post{Categories: []content.CategoryRef{{Title: "Consumer Tech"}}}
	assert.True(t, HasCategory(p, "consumer-tech"))
	assert.False(t, HasCategory(p, "consumer"))

	p = content.Post{Category: &content.CategoryRef{Slug: "onchain", Title: "Chain"}}
	assert.True(t, HasCategory(p, "ONCHAIN"))
	assert.False(t, HasCategory(p, "chain"))
}
