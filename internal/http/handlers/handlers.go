package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pribylovaa/storefront-console/internal/controller"
	"github.com/pribylovaa/storefront-console/internal/flash"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/storefront"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Предел тела multipart-формы в памяти (изображения товаров).
const maxForm = 32 << 20

// Handlers агрегирует зависимости страниц консоли.
type Handlers struct {
	ctl   *controller.Controller
	shop  *storefront.Service
	view  *view.Renderer
	flash *flash.Flasher
}

func New(ctl *controller.Controller, shop *storefront.Service, r *view.Renderer, f *flash.Flasher) *Handlers {
	return &Handlers{ctl: ctl, shop: shop, view: r, flash: f}
}

// newRegion — регион контента запроса; закрывается вместе с контекстом,
// так что запоздавшая загрузка уже ничего не запишет.
func newRegion(ctx context.Context) (*view.Region, func()) {
	region := view.NewRegion()
	stop := context.AfterFunc(ctx, region.Close)

	return region, func() {
		stop()
		region.Close()
	}
}

// layout — параметры страницы вокруг региона.
type layout struct {
	title string
	admin bool
	// inline — сообщение исхода без редиректа (например, "Updated successfully").
	inline *view.Alert
	status int
	// anonymous — шапка без запроса user info.
	anonymous bool
}

// page рисует страницу с регионом. Страница собирается в буфер,
// чтобы ошибка шаблона не оставила полуответ.
func (h *Handlers) page(w http.ResponseWriter, r *http.Request, region *view.Region, l layout) {
	ctx := r.Context()
	if expired(ctx) {
		return
	}

	// Неизвестный тип админки не должен стоить ни одного запроса к апстриму.
	if _, ok := region.Fragment().(view.InvalidType); ok {
		l.anonymous = true
	}

	hdr := storefront.GuestHeader()
	if !l.anonymous {
		hdr = h.shop.Header(ctx)
	}
	hdr.Query = r.URL.Query().Get("query")

	p := view.Page{
		Title:   l.title,
		Header:  hdr,
		Flash:   h.flash.Take(ctx, w, r),
		Content: region.Fragment(),
	}
	if l.inline != nil {
		p.Flash = l.inline
	}
	if l.admin {
		p.Nav = h.ctl.Nav()
	}

	var buf bytes.Buffer
	if err := h.view.Page(&buf, p); err != nil {
		logctx.From(ctx).Error("page_render_failed", "title", l.title, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := l.status
	if status == 0 {
		status = http.StatusOK
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// finish завершает мутирующую операцию: редирект 303 с флешем
// или страница с регионом и сообщением исхода.
func (h *Handlers) finish(w http.ResponseWriter, r *http.Request, region *view.Region, out controller.Outcome, l layout) {
	if out.Redirect != "" {
		h.flash.Set(r.Context(), w, out.Flash)
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
		return
	}

	l.inline = out.Flash
	if out.State == controller.StateInvalid {
		l.status = http.StatusUnprocessableEntity
	}
	h.page(w, r, region, l)
}

// fragment отдаёт только фрагмент региона (XHR).
func (h *Handlers) fragment(w http.ResponseWriter, r *http.Request, region *view.Region) {
	if expired(r.Context()) {
		return
	}

	var buf bytes.Buffer
	if err := h.view.Fragment(&buf, region.Fragment()); err != nil {
		logctx.From(r.Context()).Error("fragment_render_failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// expired — дедлайн запроса истёк; ответ пишет middleware.Timeout.
func expired(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

// ErrorPage — страница 500 (для Recover).
func (h *Handlers) ErrorPage(w http.ResponseWriter, r *http.Request) {
	region := view.NewRegion()
	region.Commit(region.Begin(), view.Alert{
		Level:   view.LevelDanger,
		Title:   "Something went wrong",
		Message: "An unexpected error occurred. Please try again.",
	})

	h.page(w, r, region, layout{title: "Error", status: http.StatusInternalServerError})
}

// TimeoutPage — страница 504 (для Timeout). Шапка берётся без апстрима:
// время запроса уже вышло.
func (h *Handlers) TimeoutPage(w http.ResponseWriter, r *http.Request) {
	region := view.NewRegion()
	region.Commit(region.Begin(), view.Alert{
		Level:   view.LevelDanger,
		Title:   "Request timed out",
		Message: "The server took too long to respond. Please try again.",
	})

	h.page(w, r, region, layout{title: "Error", status: http.StatusGatewayTimeout, anonymous: true})
}

// submission разбирает тело формы: multipart или urlencoded.
func submission(r *http.Request) (controller.Submission, error) {
	err := r.ParseMultipartForm(maxForm)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		return controller.Submission{}, err
	}

	sub := controller.Submission{Values: url.Values{}, Files: map[string]upstream.File{}}
	for k, v := range r.PostForm {
		sub.Values[k] = v
	}

	if r.MultipartForm == nil {
		return sub, nil
	}

	for name, headers := range r.MultipartForm.File {
		if len(headers) == 0 || headers[0].Filename == "" {
			continue
		}

		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			return controller.Submission{}, err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return controller.Submission{}, err
		}

		sub.Files[name] = upstream.File{
			Field:       name,
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		}
	}

	return sub, nil
}

// badForm — тело формы не разобралось.
func (h *Handlers) badForm(w http.ResponseWriter, r *http.Request, err error, l layout) {
	logctx.From(r.Context()).Warn("form_parse_failed", "path", r.URL.Path, "err", err)

	region := view.NewRegion()
	region.Commit(region.Begin(), view.Alert{Level: view.LevelDanger, Message: "Invalid form data."})

	l.status = http.StatusBadRequest
	h.page(w, r, region, l)
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// invalidID кладёт в регион сообщение о некорректном id.
func invalidID(region *view.Region) {
	region.Commit(region.Begin(), view.Alert{Level: view.LevelDanger, Message: "Invalid id provided."})
}

// back — путь страницы, с которой пришёл POST (только свой origin).
func back(r *http.Request, fallback string) string {
	ref := r.Referer()
	if ref == "" {
		return fallback
	}

	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return fallback
	}

	if p := u.RequestURI(); len(p) > 0 && p[0] == '/' && (len(p) == 1 || p[1] != '/') {
		return p
	}

	return fallback
}
