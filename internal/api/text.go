package api

import (
	"strings"

	xhtml "golang.org/x/net/html"
)

// NormalizeText rewrites HN paragraph markup into line breaks so the text
// can be dropped into a page without re-parsing it. An opening <p> becomes
// <br><br> and a closing </p> is removed. Everything else, including
// entities, is passed through untouched.
func NormalizeText(raw string) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	sb.Grow(len(raw))

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return sb.String()

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			// TagName lower-cases the name in place, so copy the raw bytes first.
			b := append([]byte(nil), tokenizer.Raw()...)
			name, _ := tokenizer.TagName()
			if string(name) == "p" {
				sb.WriteString("<br><br>")
				continue
			}
			sb.Write(b)

		case xhtml.EndTagToken:
			b := append([]byte(nil), tokenizer.Raw()...)
			name, _ := tokenizer.TagName()
			if string(name) == "p" {
				continue
			}
			sb.Write(b)

		default:
			sb.Write(tokenizer.Raw())
		}
	}
}
