package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// AlgoliaResponse is the search response from the Algolia HN API.
type AlgoliaResponse struct {
	Hits []AlgoliaHit `json:"hits"`
}

// AlgoliaHit is a single search result.
type AlgoliaHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
}

// SearchStories runs a story search against Algolia.
func (c *Client) SearchStories(ctx context.Context, query string) ([]AlgoliaHit, error) {
	u := fmt.Sprintf("%s/search?tags=story&query=%s", c.searchURL, url.QueryEscape(query))

	var resp AlgoliaResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("searching stories: %w", err)
	}
	return resp.Hits, nil
}

// ResolveStoryID finds the HN story submitted for the blog post with the
// given slug. Each blog domain is searched in order and the first one with
// a hit wins. found is false when no domain has a matching story.
func (c *Client) ResolveStoryID(ctx context.Context, slug string) (id int, found bool, err error) {
	for _, domain := range c.domains {
		hits, err := c.SearchStories(ctx, domain+"/blog/"+slug)
		if err != nil {
			return 0, false, err
		}
		if len(hits) == 0 {
			continue
		}

		id, err := strconv.Atoi(hits[0].ObjectID)
		if err != nil {
			return 0, false, fmt.Errorf("parsing story id %q: %w", hits[0].ObjectID, err)
		}
		log.WithFields(log.Fields{"slug": slug, "domain": domain, "story": id}).Debug("[api] resolved story")
		return id, true, nil
	}
	return 0, false, nil
}
