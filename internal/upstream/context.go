package upstream

import "context"

type CtxKey string

const (
	// CtxRequestID — X-Request-Id входящего запроса консоли.
	CtxRequestID CtxKey = "request_id"
	// CtxCookie — сырой заголовок Cookie браузера (сессия апстрима).
	CtxCookie CtxKey = "cookie"
)

// WithSession кладёт в контекст заголовок Cookie, который уйдёт в апстрим.
func WithSession(ctx context.Context, cookie string) context.Context {
	if cookie == "" {
		return ctx
	}

	return context.WithValue(ctx, CtxCookie, cookie)
}

// WithRequestID кладёт в контекст идентификатор запроса.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}

	return context.WithValue(ctx, CtxRequestID, id)
}

func stringValue(ctx context.Context, k CtxKey) string {
	if v, ok := ctx.Value(k).(string); ok {
		return v
	}

	return ""
}
