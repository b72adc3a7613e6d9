package api

import (
	"context"
	"errors"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ResolveStoryID(t *testing.T) {
	c := newTestClient(t)
	mockSearch("brandons.me/blog/my-post", "4242", "1")

	id, found, err := c.ResolveStoryID(context.Background(), "my-post")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 4242, id)
	assert.True(t, gock.IsDone())
}

func TestClient_ResolveStoryID_OldDomain(t *testing.T) {
	c := newTestClient(t)
	mockSearch("brandons.me/blog/my-post")
	mockSearch("brandonsmith.ninja/blog/my-post", "99")

	id, found, err := c.ResolveStoryID(context.Background(), "my-post")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 99, id)
	assert.True(t, gock.IsDone())
}

func TestClient_ResolveStoryID_NotFound(t *testing.T) {
	c := newTestClient(t)
	mockSearch("brandons.me/blog/my-post")
	mockSearch("brandonsmith.ninja/blog/my-post")

	_, found, err := c.ResolveStoryID(context.Background(), "my-post")
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, gock.IsDone())
}

func TestClient_ResolveStoryID_CustomDomains(t *testing.T) {
	c := newTestClient(t, WithBlogDomains("example.org"))
	mockSearch("example.org/blog/hello", "5")

	id, found, err := c.ResolveStoryID(context.Background(), "hello")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 5, id)
}

func TestClient_ResolveStoryID_SearchFailure(t *testing.T) {
	c := newTestClient(t)
	gock.New(testSearchHost).Get("/api/v1/search").Reply(500)

	_, found, err := c.ResolveStoryID(context.Background(), "my-post")
	require.Error(t, err)
	assert.False(t, found)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
}

func TestClient_ResolveStoryID_BadObjectID(t *testing.T) {
	c := newTestClient(t)
	mockSearch("brandons.me/blog/my-post", "not-a-number")

	_, _, err := c.ResolveStoryID(context.Background(), "my-post")
	require.Error(t, err)
}
