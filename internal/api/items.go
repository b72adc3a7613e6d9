package api

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FetchCommentTree fetches the item with the given ID and, recursively, all
// of its descendants. Children are fetched concurrently and kept in the
// order the API lists them. Children with no text and no remaining
// descendants are pruned.
//
// It returns nil without an error when the item does not exist. A failure
// anywhere in the tree fails the whole call.
func (c *Client) FetchCommentTree(ctx context.Context, id int) (*Comment, error) {
	item, err := c.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	node := &Comment{
		ID:       item.ID,
		Author:   item.By,
		PostedAt: item.Time,
	}
	if node.ID == 0 {
		node.ID = id
	}
	if item.HasText() {
		node.Text = NormalizeText(item.Text)
	}

	if len(item.Kids) == 0 {
		return node, nil
	}

	children := make([]*Comment, len(item.Kids))
	g, gctx := errgroup.WithContext(ctx)
	for i, kid := range item.Kids {
		i, kid := i, kid
		g.Go(func() error {
			child, err := c.FetchCommentTree(gctx, kid)
			if err != nil {
				return err
			}
			children[i] = child
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, child := range children {
		if child != nil && child.retained() {
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}
