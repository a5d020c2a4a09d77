package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/storefront-console/internal/metrics"
)

// unmatched — метка маршрута для запросов мимо роутера (reverse proxy).
const unmatched = "proxy"

// Metrics учитывает запрос по шаблону маршрута chi, чтобы
// id и query не раздували кардинальность меток.
func Metrics(m *metrics.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			route := unmatched
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" && p != "/*" {
					route = p
				}
			}

			m.ObserveHTTP(route, r.Method, sw.code(), time.Since(start))
		})
	}
}
