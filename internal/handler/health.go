package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/manicvanity/storefront/internal/middleware"
)

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// Health runs every check concurrently and answers 200 when all pass, 503
// otherwise. Failure details are logged, not returned.
func Health(checks map[string]HealthCheck, timeout time.Duration) http.HandlerFunc {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		results := make([]error, len(names))
		var g errgroup.Group
		for i, name := range names {
			g.Go(func() error {
				results[i] = checks[name](ctx)
				return nil
			})
		}
		_ = g.Wait()

		status := http.StatusOK
		body := map[string]string{}
		for i, name := range names {
			if results[i] != nil {
				status = http.StatusServiceUnavailable
				body[name] = "down"
				middleware.GetLogger(r.Context()).Error("health check failed", "check", name, "error", results[i])
				continue
			}
			body[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		JSON(w, status, map[string]any{"status": overall, "checks": body})
	}
}
