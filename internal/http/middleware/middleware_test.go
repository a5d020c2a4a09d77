package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/storefront-console/internal/metrics"
	"github.com/pribylovaa/storefront-console/internal/upstream"
)

// Unit-тесты мидлваров консоли:
//   - Chain: порядок вызова;
//   - RequestID: генерация, проброс существующего, контекст апстрима;
//   - Session: Cookie браузера попадает в контекст апстрима;
//   - Timeout: дедлайн ставится только при отсутствии, по истечении — страница 504;
//   - Recover: JSON по умолчанию и страница ошибки, если задана;
//   - Logging: одна запись "http" с атрибутами и request_id;
//   - Metrics: метка маршрута — шаблон chi, а не сырой путь.

// capHandler — тестовый slog.Handler, который:
//   - аккумулирует базовые attrs, приходящие через Logger.With(...);
//   - собирает attrs из каждой записи в map[string]any;
//   - не создаёт реальных I/O.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	lastLvl slog.Level
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.lastLvl = r.Level
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func makeReq(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = (&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}).String()
	return req
}

type errEnvelope struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func ctxString(ctx context.Context, k upstream.CtxKey) string {
	v, _ := ctx.Value(k).(string)
	return v
}

func TestChain_Order(t *testing.T) {
	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	Chain(final, m1, m2).ServeHTTP(rr, makeReq("/chain"))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_GenerateAndPropagate(t *testing.T) {
	var seenID, seenCtxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = r.Header.Get(HeaderRequestID)
		seenCtxID = ctxString(r.Context(), upstream.CtxRequestID)
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	Chain(h, RequestID()).ServeHTTP(rr, makeReq("/rid"))

	respID := rr.Header().Get(HeaderRequestID)
	require.Len(t, respID, 32)
	require.NotContains(t, respID, "-")

	require.Equal(t, respID, seenID)
	require.Equal(t, respID, seenCtxID)
}

func TestRequestID_UseExisting(t *testing.T) {
	const given = "abc123-existing-id"
	var seenCtxID string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCtxID = ctxString(r.Context(), upstream.CtxRequestID)
	})

	rr := httptest.NewRecorder()
	req := makeReq("/rid2")
	req.Header.Set(HeaderRequestID, given)
	Chain(h, RequestID()).ServeHTTP(rr, req)

	require.Equal(t, given, rr.Header().Get(HeaderRequestID))
	require.Equal(t, given, seenCtxID)
}

func TestSession_ForwardsCookie(t *testing.T) {
	var cookie string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = ctxString(r.Context(), upstream.CtxCookie)
	})
	chain := Chain(h, Session())

	req := makeReq("/profile")
	req.Header.Set("Cookie", "JSESSIONID=abc; console_flash=x")
	chain.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "JSESSIONID=abc; console_flash=x", cookie)

	cookie = "stale"
	chain.ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.Empty(t, cookie)
}

func TestTimeout_SetsDeadline_WhenAbsent(t *testing.T) {
	var hasDeadline bool
	var left time.Duration

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dl, ok := r.Context().Deadline()
		hasDeadline = ok
		if ok {
			left = time.Until(dl)
		}
	})

	Chain(h, Timeout(50*time.Millisecond, nil)).ServeHTTP(httptest.NewRecorder(), makeReq("/timeout"))

	require.True(t, hasDeadline)
	require.Greater(t, left, time.Duration(0))
}

func TestTimeout_DoesNotOverrideExistingDeadline(t *testing.T) {
	var childDL time.Time

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		childDL, _ = r.Context().Deadline()
	})

	parent, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := makeReq("/timeout2").WithContext(parent)

	Chain(h, Timeout(time.Second, nil)).ServeHTTP(httptest.NewRecorder(), req)

	parentDL, _ := parent.Deadline()
	require.WithinDuration(t, parentDL, childDL, time.Millisecond)
}

func TestTimeout_ZeroIsNoop(t *testing.T) {
	var has bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, has = r.Context().Deadline()
	})

	Chain(h, Timeout(0, nil)).ServeHTTP(httptest.NewRecorder(), makeReq("/"))
	require.False(t, has)
}

// Обработчик дождался дедлайна и ничего не записал — отвечает страница.
func TestTimeout_Expired_RendersPage(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = io.WriteString(w, "<h1>Request timed out</h1>")
	})

	rr := httptest.NewRecorder()
	Chain(slow, Timeout(20*time.Millisecond, page)).ServeHTTP(rr, makeReq("/admin"))

	require.Equal(t, http.StatusGatewayTimeout, rr.Code)
	require.Contains(t, rr.Body.String(), "Request timed out")
}

func TestTimeout_Expired_JSONWithoutPage(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	rr := httptest.NewRecorder()
	Chain(slow, Timeout(20*time.Millisecond, nil)).ServeHTTP(rr, makeReq("/admin/options"))

	require.Equal(t, http.StatusGatewayTimeout, rr.Code)

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "deadline_exceeded", env.Error.Code)
}

// Ответ уже начат — страница таймаута его не перезаписывает.
func TestTimeout_Expired_KeepsWrittenResponse(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "partial")
		<-r.Context().Done()
	})
	called := false
	page := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })

	rr := httptest.NewRecorder()
	Chain(slow, Timeout(20*time.Millisecond, page)).ServeHTTP(rr, makeReq("/"))

	require.False(t, called)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "partial", rr.Body.String())
}

func TestRecover_ConvertsPanicTo500(t *testing.T) {
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	Chain(panicHandler, Recover(nil)).ServeHTTP(rr, makeReq("/panic"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var env errEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "internal", env.Error.Code)
	require.NotContains(t, rr.Body.String(), "boom")
}

func TestRecover_RendersPage(t *testing.T) {
	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "<h1>Something went wrong</h1>")
	})
	panicHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	Chain(panicHandler, Recover(page)).ServeHTTP(rr, makeReq("/admin"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Contains(t, rr.Body.String(), "Something went wrong")
}

func TestLogging_WritesRecord_WithStatusDurBytesAndRequestID(t *testing.T) {
	h := &capHandler{}
	logger := slog.New(h)

	const rid = "rid-456"
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Не вызываем WriteHeader — статус должен стать 200 после Write.
		_, _ = w.Write([]byte("0123456789"))
	})

	// RequestID до Logging, чтобы id попал в attrs лога.
	handler := Chain(final, RequestID(), Logging(logger))

	rr := httptest.NewRecorder()
	req := makeReq("/log")
	req.Header.Set(HeaderRequestID, rid)
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, h.count)
	require.Equal(t, "http", h.lastMsg)

	method, _ := h.attrs["method"].(string)
	path, _ := h.attrs["path"].(string)
	status, _ := h.attrs["status"].(int64)
	bytes, _ := h.attrs["bytes"].(int64)
	ridAttr, _ := h.attrs["request_id"].(string)

	require.Equal(t, http.MethodGet, method)
	require.Equal(t, "/log", path)
	require.EqualValues(t, http.StatusOK, status)
	require.EqualValues(t, 10, bytes)
	require.Equal(t, rid, ridAttr)

	_, hasDur := h.attrs["dur"]
	require.True(t, hasDur)
}

func TestLogging_RedirectWithoutBody(t *testing.T) {
	h := &capHandler{}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/delete?id=1&type=brand", nil)
	Chain(final, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), req)

	status, _ := h.attrs["status"].(int64)
	require.EqualValues(t, http.StatusSeeOther, status)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(Metrics(m))
	r.Get("/cart/items/{id}/quantity", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), makeReq("/cart/items/42/quantity"))
	r.ServeHTTP(httptest.NewRecorder(), makeReq("/cart/items/43/quantity"))

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, makeReq("/metrics"))
	body := rr.Body.String()

	require.Contains(t, body,
		`console_http_requests_total{code="204",method="GET",route="/cart/items/{id}/quantity"} 2`)
	require.False(t, strings.Contains(body, `route="/cart/items/42/quantity"`))
}

func TestStatusWriter_CountsBytes_AndDefaultStatus200(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := newStatusWriter(rr)

	_, _ = sw.Write([]byte("abcd"))

	require.Equal(t, http.StatusOK, sw.status)
	require.Equal(t, 4, sw.count)
	require.Same(t, sw, newStatusWriter(sw))
}

func TestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/admin", http.StatusOK, slog.LevelInfo},
		{"/admin", http.StatusSeeOther, slog.LevelInfo},
		{"/assets/console.js", http.StatusOK, slog.LevelDebug},
		{"/admin/add-product", http.StatusUnprocessableEntity, slog.LevelWarn},
		{"/assets/missing.js", http.StatusNotFound, slog.LevelWarn},
		{"/profile", http.StatusInternalServerError, slog.LevelError},
	}

	for _, tt := range tests {
		h := &capHandler{}
		final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})

		Chain(final, Logging(slog.New(h))).ServeHTTP(httptest.NewRecorder(), makeReq(tt.path))
		require.Equal(t, tt.want, h.lastLvl, tt.path)
	}
}
