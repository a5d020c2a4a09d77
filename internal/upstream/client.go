// upstream — HTTP-клиент REST API магазина.
//
// Все исходящие запросы проходят цепочку транспорта
// metadata -> timeout -> logging -> metrics, а ответы маппятся
// в таксономию internal/errors:
//   - транспортная ошибка или битый JSON -> NetworkFailure;
//   - 401 -> UnauthorizedFailure, 403 -> ForbiddenFailure;
//   - прочий не-2xx -> ServerRejection с телом ответа дословно.
//
// Ничего не ретраится.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pribylovaa/storefront-console/internal/config"
	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/metrics"
)

// Максимальный размер читаемого тела ответа.
const maxBody = 4 << 20

//go:generate mockgen -source=client.go -destination=../../mocks/mock_fetcher.go -package=mocks

// Fetcher — то, что нужно контроллерам от апстрима.
type Fetcher interface {
	// GetJSON выполняет GET path и декодирует JSON-ответ в out.
	GetJSON(ctx context.Context, path string, out any) error
	// Send выполняет мутирующий запрос. Не-2xx возвращается ошибкой.
	Send(ctx context.Context, method, path string, p Payload) (*Reply, error)
}

// Reply — успешный ответ апстрима.
type Reply struct {
	Status int
	Body   string
	Header http.Header
}

type Client struct {
	base string
	hc   *http.Client
}

var _ Fetcher = (*Client)(nil)

// New собирает клиент поверх rt (nil — http.DefaultTransport).
func New(cfg config.UpstreamConfig, log *slog.Logger, m *metrics.Metrics, rt http.RoundTripper) (*Client, error) {
	const op = "upstream.New"

	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url %q must be absolute", op, cfg.BaseURL)
	}

	if rt == nil {
		rt = http.DefaultTransport
	}

	chain := Chain(rt,
		WithMetadata(cfg.UserAgent),
		WithTimeout(cfg.Timeout),
		WithLogging(log),
		WithMetrics(m),
	)

	return &Client{
		base: strings.TrimRight(u.String(), "/"),
		hc: &http.Client{
			Transport: chain,
			// Редиректы апстрима (например, на страницу логина) не следуем:
			// статус интерпретирует вызывающий.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// BaseURL — корень апстрима (для reverse proxy).
func (c *Client) BaseURL() string { return c.base }

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	const op = "upstream.GetJSON"

	reply, err := c.do(ctx, http.MethodGet, path, Payload{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal([]byte(reply.Body), out); err != nil {
		return fmt.Errorf("%s: %w", op, apierrors.Network(fmt.Errorf("decode %s: %w", path, err)))
	}

	return nil
}

func (c *Client) Send(ctx context.Context, method, path string, p Payload) (*Reply, error) {
	const op = "upstream.Send"

	reply, err := c.do(ctx, method, path, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return reply, nil
}

func (c *Client) do(ctx context.Context, method, path string, p Payload) (*Reply, error) {
	body, contentType, err := p.encode("")
	if err != nil {
		return nil, apierrors.Network(fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, apierrors.Network(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, apierrors.Network(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, apierrors.Network(fmt.Errorf("read body: %w", err))
	}

	// Сессия истекла: апстрим уводит на форму логина вместо 401.
	if resp.StatusCode >= 300 && resp.StatusCode < 400 && strings.Contains(resp.Header.Get("Location"), "/login") {
		return nil, apierrors.FromStatus(http.StatusUnauthorized, string(raw))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apierrors.FromStatus(resp.StatusCode, string(raw))
	}

	return &Reply{Status: resp.StatusCode, Body: string(raw), Header: resp.Header}, nil
}
