package cache

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/brundonsmith/website/internal/api"
)

// StoryLoader loads a post's thread from HN: it finds the story that links
// to the post, fetches its comment tree and renders the top-level comments.
type StoryLoader struct {
	Client   *api.Client
	Renderer Renderer
}

// Renderer turns top-level comments into an HTML fragment.
type Renderer interface {
	Render(nodes []*api.Comment) string
}

// Load implements Loader.
func (l *StoryLoader) Load(ctx context.Context, slug string) (*Thread, error) {
	id, found, err := l.Client.ResolveStoryID(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("resolve story: %w", err)
	}
	if !found {
		log.WithField("slug", slug).Debug("[cache] no HN story for post")
		return nil, nil
	}

	root, err := l.Client.FetchCommentTree(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch story %d: %w", id, err)
	}
	if root == nil {
		return nil, nil
	}

	log.WithFields(log.Fields{"slug": slug, "story": id, "comments": root.Count()}).Debug("[cache] loaded thread")
	return &Thread{StoryID: id, HTML: l.Renderer.Render(root.Children)}, nil
}
