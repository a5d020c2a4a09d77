package handlers

import (
	"net/http"
	"strconv"

	"github.com/pribylovaa/storefront-console/internal/entity"
)

var adminLayout = layout{title: "Admin Panel", admin: true}

// Admin — /admin: без type профиль администратора, иначе список записей.
func (h *Handlers) Admin(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	q := r.URL.Query()
	tag := q.Get("type")
	if tag == "" {
		h.shop.AdminInfo(r.Context(), region)
		h.page(w, r, region, adminLayout)
		return
	}

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}

	h.ctl.RenderList(r.Context(), region, tag, page)
	h.page(w, r, region, adminLayout)
}

// Manage — карточка записи.
func (h *Handlers) Manage(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	q := r.URL.Query()
	if id, ok := parseID(q.Get("id")); ok {
		h.ctl.RenderDetail(r.Context(), region, q.Get("type"), id)
	} else {
		invalidID(region)
	}

	h.page(w, r, region, adminLayout)
}

// EditForm — форма редактирования записи.
func (h *Handlers) EditForm(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	q := r.URL.Query()
	if id, ok := parseID(q.Get("id")); ok {
		h.ctl.RenderForm(r.Context(), region, q.Get("type"), id)
	} else {
		invalidID(region)
	}

	h.page(w, r, region, adminLayout)
}

func (h *Handlers) EditSubmit(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	q := r.URL.Query()
	id, ok := parseID(q.Get("id"))
	if !ok {
		invalidID(region)
		h.page(w, r, region, adminLayout)
		return
	}

	sub, err := submission(r)
	if err != nil {
		h.badForm(w, r, err, adminLayout)
		return
	}

	out := h.ctl.Submit(r.Context(), region, q.Get("type"), id, sub)
	h.finish(w, r, region, out, adminLayout)
}

// CreateForm — пустая форма создания записи.
func (h *Handlers) CreateForm(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	h.ctl.RenderForm(r.Context(), region, r.URL.Query().Get("type"), 0)
	h.page(w, r, region, adminLayout)
}

func (h *Handlers) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	sub, err := submission(r)
	if err != nil {
		h.badForm(w, r, err, adminLayout)
		return
	}

	out := h.ctl.Submit(r.Context(), region, r.URL.Query().Get("type"), 0, sub)
	h.finish(w, r, region, out, adminLayout)
}

// Delete — GET показывает подтверждение, POST с confirmed=true удаляет.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	q := r.URL.Query()
	id, ok := parseID(q.Get("id"))
	if !ok {
		invalidID(region)
		h.page(w, r, region, adminLayout)
		return
	}

	confirmed := r.Method == http.MethodPost && r.PostFormValue("confirmed") == "true"

	out := h.ctl.Delete(r.Context(), region, q.Get("type"), id, confirmed)
	h.finish(w, r, region, out, adminLayout)
}

// Options — опции select для асинхронной подгрузки (только фрагмент).
func (h *Handlers) Options(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	q := r.URL.Query()
	h.ctl.RenderOptions(r.Context(), region,
		q.Get("type"),
		q.Get("field"),
		entity.Mode(q.Get("mode")),
		q.Get("selected"),
		q.Get("value"),
	)

	h.fragment(w, r, region)
}
