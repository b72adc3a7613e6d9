// Package metrics holds the Prometheus collectors shared by the comment
// pipeline and the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts comment cache lookups by the state the entry was in.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "website",
		Subsystem: "hn_comments",
		Name:      "cache_lookups_total",
		Help:      "Comment cache lookups by entry state (miss, fresh, stale).",
	}, []string{"state"})

	// CacheRefreshes counts background refreshes by outcome.
	CacheRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "website",
		Subsystem: "hn_comments",
		Name:      "cache_refreshes_total",
		Help:      "Background comment refreshes by result (ok, error, panic).",
	}, []string{"result"})

	// UpstreamRequests counts requests made to the HN and Algolia APIs.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "website",
		Subsystem: "hn_comments",
		Name:      "upstream_requests_total",
		Help:      "Requests to the HN item and Algolia search APIs by result.",
	}, []string{"result"})
)

// HTTPRequests counts served requests by route template and status code.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "website",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by route and status code.",
}, []string{"route", "code"})
