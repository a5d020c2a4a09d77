package upstream

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/storefront-console/internal/metrics"
	"github.com/pribylovaa/storefront-console/internal/pkg/log"
)

// Middleware — обёртка над http.RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain применяет обёртки к транспорту в порядке перечисления:
// первая в списке видит запрос первой.
func Chain(rt http.RoundTripper, mws ...Middleware) http.RoundTripper {
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}

	return rt
}

// WithMetadata добавляет в исходящий запрос заголовки:
//   - X-Request-Id (из контекста, иначе новый uuid);
//   - Cookie браузера (если есть в контексте и запрос ещё без Cookie);
//   - User-Agent (если передан параметром).
//
// Исходный *http.Request не модифицируется.
func WithMetadata(userAgent string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())

			rid := stringValue(r.Context(), CtxRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}
			r.Header.Set("X-Request-Id", rid)

			if c := stringValue(r.Context(), CtxCookie); c != "" && r.Header.Get("Cookie") == "" {
				r.Header.Set("Cookie", c)
			}
			if userAgent != "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next.RoundTrip(r)
		})
	}
}

// WithTimeout навешивает таймаут d на запрос, если у контекста ещё нет дедлайна.
//
// Контракт:
//  1. d <= 0 — запрос уходит как есть;
//  2. у ctx уже есть deadline — оставляем его;
//  3. иначе cancel вызывается при закрытии тела ответа (или сразу при ошибке),
//     чтобы вызывающий успел дочитать тело.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if d <= 0 {
			return next
		}

		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if _, ok := r.Context().Deadline(); ok {
				return next.RoundTrip(r)
			}

			ctx, cancel := context.WithTimeout(r.Context(), d)
			resp, err := next.RoundTrip(r.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}

			resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// WithLogging пишет одну запись уровня Info на каждый запрос к апстриму:
// msg="upstream", method, path, status, dur (и err при транспортной ошибке).
// Логгер берётся из контекста запроса (там уже request_id), иначе base.
//
// Безопасность: тело и заголовки Cookie не логируются.
func WithLogging(base *slog.Logger) Middleware {
	if base == nil {
		base = slog.Default()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()

			l := base
			if ctxL := log.From(r.Context()); ctxL != slog.Default() {
				l = ctxL
			}

			resp, err := next.RoundTrip(r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.RequestURI()),
				slog.Duration("dur", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("err", err.Error()))
				l.LogAttrs(r.Context(), slog.LevelWarn, "upstream", attrs...)
				return nil, err
			}

			attrs = append(attrs, slog.Int("status", resp.StatusCode))
			l.LogAttrs(r.Context(), slog.LevelInfo, "upstream", attrs...)

			return resp, nil
		})
	}
}

// WithMetrics учитывает запрос в console_upstream_* (m == nil — no-op).
func WithMetrics(m *metrics.Metrics) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}

		return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			code := 0
			if err == nil {
				code = resp.StatusCode
			}
			m.ObserveUpstream(r.Method, code, time.Since(start))

			return resp, err
		})
	}
}
