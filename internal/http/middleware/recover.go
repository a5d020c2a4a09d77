package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
)

// Recover перехватывает panic и отвечает 500.
// page рисует страницу ошибки; nil — унифицированный JSON-ответ.
// Детали паники не утекают на клиент.
func Recover(page http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logctx.From(r.Context()).
					LogAttrs(r.Context(), slog.LevelError, "panic",
						slog.String("path", r.URL.Path),
						slog.Any("reason", rec),
					)

				if page != nil {
					page.ServeHTTP(w, r)
					return
				}
				apierrors.WriteError(w, r, fmt.Errorf("internal"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
