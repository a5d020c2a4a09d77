package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/storefront-console/internal/http/handlers"
	"github.com/pribylovaa/storefront-console/internal/http/middleware"
	"github.com/pribylovaa/storefront-console/internal/metrics"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	Metrics *metrics.Metrics
	// Fallback получает всё, что консоль не обслуживает (reverse proxy апстрима).
	Fallback http.Handler
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(http.HandlerFunc(h.ErrorPage)), // страница 500 вместо обрыва соединения
		middleware.RequestID(),                            // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),                   // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Metrics),                  // метрики по шаблону маршрута
		middleware.Session(),                              // Cookie браузера уходит в апстрим
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout, http.HandlerFunc(h.TimeoutPage)))
	}

	registerRoutes(root, h)

	root.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(view.Static()))))

	if opts.Fallback != nil {
		root.NotFound(opts.Fallback.ServeHTTP)
	}

	return root
}

// registerRoutes — единая точка регистрации всех страниц консоли.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// storefront
	r.Get("/", h.Home)
	r.Get("/products", h.Catalog)
	r.Get("/product", h.Product)

	// cart
	r.Post("/cart/add", h.AddToCart)
	r.Post("/cart/items/{id}/quantity", h.UpdateQuantity)
	r.Get("/cart/items/{id}/remove", h.RemoveItem)
	r.Post("/cart/items/{id}/remove", h.RemoveItem)
	r.Get("/cart/clear", h.ClearCart)
	r.Post("/cart/clear", h.ClearCart)
	r.Post("/cart/order", h.PlaceOrder)

	// account
	r.Get("/profile", h.Profile)
	r.Post("/profile", h.UpdateProfile)
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)

	// admin
	r.Route("/admin", func(r chi.Router) {
		r.Get("/", h.Admin)
		r.Get("/manage", h.Manage)
		r.Get("/edit", h.EditForm)
		r.Post("/edit", h.EditSubmit)
		r.Get("/add-product", h.CreateForm)
		r.Post("/add-product", h.CreateSubmit)
		r.Get("/delete", h.Delete)
		r.Post("/delete", h.Delete)
		r.Get("/options", h.Options)
	})
}
