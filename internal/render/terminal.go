package render

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/brundonsmith/website/internal/api"
)

var (
	depthColors = []lipgloss.Color{
		"#FF6600", "#828282", "#00BFFF", "#32CD32", "#FFD700", "#FF69B4", "#9370DB", "#20B2AA",
	}

	authorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600")).Bold(true)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	ownerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(lipgloss.Color("#FF6600")).Bold(true)
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Italic(true)
)

const maxIndent = 30

// TerminalRenderer draws comment trees as indented, colored text for
// previewing a thread from the command line.
type TerminalRenderer struct {
	Owner string
	Width int
	Now   func() time.Time
}

// Render draws every node and its descendants.
func (r *TerminalRenderer) Render(nodes []*api.Comment) string {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	width := r.Width
	if width < 20 {
		width = 80
	}

	var sb strings.Builder
	var walk func(c *api.Comment, depth int)
	walk = func(c *api.Comment, depth int) {
		indentStr := strings.Repeat(" ", min(depth*2, maxIndent))
		bar := lipgloss.NewStyle().Foreground(depthColors[depth%len(depthColors)]).Render("│")

		if c.Text == "" {
			sb.WriteString(indentStr + bar + " " + removedStyle.Render("[removed]") + "\n\n")
		} else {
			header := authorStyle.Render(c.Author)
			header += " " + metaStyle.Render(Ago(now.Sub(time.Unix(c.PostedAt, 0))))
			if r.Owner != "" && c.Author == r.Owner {
				header += " " + ownerStyle.Render(" me ")
			}
			sb.WriteString(indentStr + bar + " " + header + "\n")

			bodyWidth := max(width-len(indentStr)-4, 20)
			for _, line := range strings.Split(PlainText(c.Text, bodyWidth), "\n") {
				sb.WriteString(indentStr + bar + " " + line + "\n")
			}
			sb.WriteString("\n")
		}

		for _, child := range c.Children {
			walk(child, depth+1)
		}
	}
	for _, c := range nodes {
		walk(c, 0)
	}
	return strings.TrimRight(sb.String(), "\n")
}
