package middleware

import (
	"net/http"

	"github.com/pribylovaa/storefront-console/internal/upstream"
)

// Session пробрасывает заголовок Cookie браузера в контекст:
// клиент апстрима отправит его как есть, и сессия апстрима
// (JSESSIONID) работает сквозь консоль.
func Session() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c := r.Header.Get("Cookie"); c != "" {
				r = r.WithContext(upstream.WithSession(r.Context(), c))
			}
			next.ServeHTTP(w, r)
		})
	}
}
