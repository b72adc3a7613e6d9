// Command hnthread prints the HN discussion of a blog post to the terminal.
//
//	hnthread [-width 100] <slug>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/brundonsmith/website/internal/api"
	"github.com/brundonsmith/website/internal/config"
	"github.com/brundonsmith/website/internal/render"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	width := flag.Int("width", 100, "wrap width")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hnthread [-config file] [-width n] <slug>")
		os.Exit(2)
	}
	slug := flag.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[hnthread] failed to load config: %v", err)
	}
	log.SetLevel(cfg.Server.Level())

	hn := cfg.Comments
	client := api.NewClient(
		api.WithTimeout(hn.UpstreamTimeout),
		api.WithMaxConcurrent(hn.MaxConcurrent),
		api.WithRateLimit(hn.RequestsPerSecond),
		api.WithEndpoints(hn.ItemURL, hn.SearchURL),
		api.WithBlogDomains(hn.BlogDomains...),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	id, found, err := client.ResolveStoryID(ctx, slug)
	if err != nil {
		log.Fatalf("[hnthread] resolving %q: %v", slug, err)
	}
	if !found {
		fmt.Fprintf(os.Stderr, "no HN story links to %q\n", slug)
		os.Exit(1)
	}

	root, err := client.FetchCommentTree(ctx, id)
	if err != nil {
		log.Fatalf("[hnthread] fetching story %d: %v", id, err)
	}
	if root == nil {
		fmt.Fprintf(os.Stderr, "story %d not found\n", id)
		os.Exit(1)
	}

	fmt.Printf("https://news.ycombinator.com/item?id=%d (%d comments)\n\n", id, root.Count())
	r := &render.TerminalRenderer{Owner: hn.Owner, Width: *width}
	fmt.Println(r.Render(root.Children))
}
