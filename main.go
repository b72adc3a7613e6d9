package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/brundonsmith/website/internal/api"
	"github.com/brundonsmith/website/internal/cache"
	"github.com/brundonsmith/website/internal/config"
	"github.com/brundonsmith/website/internal/render"
	"github.com/brundonsmith/website/internal/server"
	"github.com/brundonsmith/website/internal/static"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[server] failed to load config: %v", err)
	}
	log.SetLevel(cfg.Server.Level())

	site, err := static.Load(cfg.Server.StaticDir)
	if err != nil {
		log.Fatalf("[server] failed to load site: %v", err)
	}

	hn := cfg.Comments
	client := api.NewClient(
		api.WithTimeout(hn.UpstreamTimeout),
		api.WithMaxConcurrent(hn.MaxConcurrent),
		api.WithRateLimit(hn.RequestsPerSecond),
		api.WithEndpoints(hn.ItemURL, hn.SearchURL),
		api.WithBlogDomains(hn.BlogDomains...),
	)
	comments := cache.New(
		&cache.StoryLoader{
			Client:   client,
			Renderer: &render.CommentRenderer{Owner: hn.Owner, Avatar: hn.OwnerAvatar},
		},
		cache.WithLifetime(hn.Lifetime),
		cache.WithRefreshTimeout(hn.RefreshTimeout),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	if hn.Prefetch {
		// Warm the cache for every post on startup.
		go comments.Prefetch(ctx, site.Slugs())
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.New(comments, site).Router(),
	}

	go func() {
		log.Infof("[server] starting on %v", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[server] failed to start: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	stop()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	done := make(chan struct{})
	go func() {
		comments.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Warn("[server] gave up waiting for comment refreshes")
	}
}
