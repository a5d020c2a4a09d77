package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
)

// Timeout навешивает deadline d на запрос, если его ещё нет.
// Истёк дедлайн, а обработчик ничего не записал — отвечает page
// (nil — JSON 504). d <= 0 делает мидлвар no-op.
func Timeout(d time.Duration, page http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := ctx.Deadline(); !ok {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, d)
				defer cancel()
			}

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			if sw.status != 0 || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return
			}

			logctx.From(ctx).LogAttrs(ctx, slog.LevelWarn, "request_timeout",
				slog.String("path", r.URL.Path),
			)

			// Страница рисуется без истёкшего дедлайна.
			if page != nil {
				page.ServeHTTP(sw, r.WithContext(context.WithoutCancel(ctx)))
				return
			}
			apierrors.WriteError(sw, r, context.DeadlineExceeded)
		})
	}
}
