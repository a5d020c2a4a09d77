package handlers

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
)

// Proxy отдаёт апстриму всё, что консоль не рисует сама:
// страницу логина, изображения товаров и прочие ассеты.
func Proxy(baseURL string) (http.Handler, error) {
	const op = "handlers.Proxy"

	target, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Host = target.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logctx.From(r.Context()).Warn("proxy_failed", "path", r.URL.Path, "err", err)
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		},
	}

	return rp, nil
}
