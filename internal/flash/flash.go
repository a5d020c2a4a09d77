package flash

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// CookieName — cookie с id ожидающего флеша.
const CookieName = "console_flash"

// Flasher связывает хранилище с cookie ответа.
type Flasher struct {
	store Store
}

func New(store Store) *Flasher {
	return &Flasher{store: store}
}

// Set откладывает сообщение до следующей страницы. nil — ничего не делает.
// Ошибка хранилища только логируется: флеш не стоит упавшего редиректа.
func (f *Flasher) Set(ctx context.Context, w http.ResponseWriter, a *view.Alert) {
	if a == nil {
		return
	}

	id := uuid.NewString()
	if err := f.store.Put(ctx, id, *a); err != nil {
		logctx.From(ctx).Warn("flash_put_failed", "err", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Take забирает отложенное сообщение запроса r и стирает cookie.
func (f *Flasher) Take(ctx context.Context, w http.ResponseWriter, r *http.Request) *view.Alert {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if _, err := uuid.Parse(c.Value); err != nil {
		return nil
	}

	a, err := f.store.Pop(ctx, c.Value)
	if err != nil {
		logctx.From(ctx).Warn("flash_pop_failed", "err", err)
		return nil
	}

	return a
}

func (f *Flasher) Close() error { return f.store.Close() }
