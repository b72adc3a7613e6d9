package api

// Item is an HN item as returned by the Firebase item endpoint. Only the
// fields the comment pipeline reads are decoded.
type Item struct {
	ID      int    `json:"id"`
	Type    string `json:"type"`
	By      string `json:"by"`
	Time    int64  `json:"time"`
	Text    string `json:"text"`
	Parent  int    `json:"parent"`
	Dead    bool   `json:"dead"`
	Deleted bool   `json:"deleted"`
	Kids    []int  `json:"kids"`
}

// HasText reports whether the item carries a body worth showing.
// Deleted and flagged items are treated as empty.
func (it *Item) HasText() bool {
	return it.Text != "" && !it.Dead && !it.Deleted
}

// Comment is one node of a fetched comment tree.
type Comment struct {
	ID       int
	Author   string
	Text     string // normalized HN HTML, empty if the item has no body
	PostedAt int64  // unix seconds
	Children []*Comment
}

// retained reports whether c should be kept in its parent's Children.
// A node without text stays only as a passthrough for descendants that
// have text.
func (c *Comment) retained() bool {
	return c.Text != "" || len(c.Children) > 0
}

// Count returns the number of nodes in the subtree below c, excluding c.
func (c *Comment) Count() int {
	n := 0
	for _, child := range c.Children {
		n += 1 + child.Count()
	}
	return n
}
