package render

import (
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brundonsmith/website/internal/api"
)

const hnBaseURL = "https://news.ycombinator.com"

// CommentRenderer turns comment trees into the HTML fragment shown under a
// blog post. It does no I/O and keeps no state between calls.
type CommentRenderer struct {
	// Owner is the site owner's HN handle. Their comments get an avatar
	// and the "me" class.
	Owner string
	// Avatar is the image source used for the owner's avatar.
	Avatar string
	// Now returns the reference time for relative labels. Defaults to
	// time.Now.
	Now func() time.Time
}

// Render renders each node, and its descendants, in order.
func (r *CommentRenderer) Render(nodes []*api.Comment) string {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	var sb strings.Builder
	for _, c := range nodes {
		r.renderComment(&sb, c, now)
	}
	return sb.String()
}

func (r *CommentRenderer) renderComment(sb *strings.Builder, c *api.Comment, now time.Time) {
	isMe := r.Owner != "" && c.Author == r.Owner

	// Text-less nodes are kept only for their replies and render as a bare
	// children container, except that the owner's avatar is still shown.
	if c.Text != "" || isMe {
		sb.WriteString(`<div class="comment-heading`)
		if isMe {
			sb.WriteString(` me`)
		}
		sb.WriteString(`">`)
		if isMe {
			sb.WriteString(`<img class="me" src="`)
			sb.WriteString(html.EscapeString(r.Avatar))
			sb.WriteString(`" />`)
		}
		if c.Text != "" {
			sb.WriteString(`<a class="by" href="`)
			sb.WriteString(hnBaseURL + "/user?id=" + url.QueryEscape(c.Author))
			sb.WriteString(`" target="_blank">`)
			sb.WriteString(html.EscapeString(c.Author))
			sb.WriteString(`</a> | <a class="time" href="`)
			sb.WriteString(hnBaseURL + "/item?id=" + strconv.Itoa(c.ID))
			sb.WriteString(`" target="_blank">`)
			sb.WriteString(Ago(now.Sub(time.Unix(c.PostedAt, 0))))
			sb.WriteString(`</a>`)
		}
		sb.WriteString(`</div>`)
	}

	if c.Text != "" {
		sb.WriteString(`<div class="text`)
		if isMe {
			sb.WriteString(` me`)
		}
		sb.WriteString(`">`)
		sb.WriteString(c.Text)
		sb.WriteString(`</div>`)
	}

	if len(c.Children) > 0 {
		sb.WriteString(`<div class="children">`)
		for _, child := range c.Children {
			r.renderComment(sb, child, now)
		}
		sb.WriteString(`</div>`)
	}
}
