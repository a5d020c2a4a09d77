package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/storefront-console/internal/controller"
	"github.com/pribylovaa/storefront-console/internal/storefront"
)

func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	h.shop.Home(r.Context(), region)
	h.page(w, r, region, layout{title: "Home"})
}

func (h *Handlers) Catalog(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	h.shop.Catalog(r.Context(), region, storefront.ParseCatalogQuery(r.URL.Query()))
	h.page(w, r, region, layout{title: "Products"})
}

func (h *Handlers) Product(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	if id, ok := parseID(r.URL.Query().Get("id")); ok {
		h.shop.Product(r.Context(), region, id)
	} else {
		invalidID(region)
	}

	h.page(w, r, region, layout{title: "Product"})
}

// AddToCart возвращает покупателя на страницу, с которой он пришёл.
func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.PostFormValue("productId"))
	if !ok {
		http.Redirect(w, r, back(r, "/"), http.StatusSeeOther)
		return
	}

	out := h.shop.AddToCart(r.Context(), id, back(r, storefront.ProductPath(id)))
	h.flash.Set(r.Context(), w, out.Flash)
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

func (h *Handlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, storefront.ProfilePath(storefront.ViewCart), http.StatusSeeOther)
		return
	}

	out := h.shop.UpdateQuantity(r.Context(), id, r.PostFormValue("quantity"))
	h.flash.Set(r.Context(), w, out.Flash)
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

// RemoveItem — без confirmed=true рисует подтверждение.
func (h *Handlers) RemoveItem(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	l := layout{title: "Cart"}

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		invalidID(region)
		h.page(w, r, region, l)
		return
	}

	confirmed := r.Method == http.MethodPost && r.PostFormValue("confirmed") == "true"
	h.finish(w, r, region, h.shop.RemoveItem(r.Context(), region, id, confirmed), l)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	confirmed := r.Method == http.MethodPost && r.PostFormValue("confirmed") == "true"
	h.finish(w, r, region, h.shop.ClearCart(r.Context(), region, confirmed), layout{title: "Cart"})
}

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	l := layout{title: "Checkout"}

	sub, err := submission(r)
	if err != nil {
		h.badForm(w, r, err, l)
		return
	}

	h.finish(w, r, region, h.shop.PlaceOrder(r.Context(), region, sub), l)
}

// Profile — /profile?view=edit|cart|checkout|orders.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	out := h.shop.Profile(r.Context(), region, r.URL.Query().Get("view"))
	h.finish(w, r, region, out, layout{title: "Profile"})
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	l := layout{title: "Profile"}

	sub, err := submission(r)
	if err != nil {
		h.badForm(w, r, err, l)
		return
	}

	h.finish(w, r, region, h.shop.UpdateProfile(r.Context(), region, sub), l)
}

func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	h.shop.RegisterForm(region)
	h.page(w, r, region, layout{title: "Register"})
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	region, done := newRegion(r.Context())
	defer done()

	l := layout{title: "Register"}

	sub, err := submission(r)
	if err != nil {
		h.badForm(w, r, err, l)
		return
	}

	h.finish(w, r, region, h.shop.Register(r.Context(), region, sub), l)
}

// Имя cookie сессии апстрима.
const sessionCookie = "JSESSIONID"

// Logout пересылает браузеру Set-Cookie апстрима (сброс сессии).
// Если апстрим ответил редиректом без cookie, сессию сбрасываем сами.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	out, hdr := h.shop.Logout(r.Context())

	cookies := hdr.Values("Set-Cookie")
	for _, c := range cookies {
		w.Header().Add("Set-Cookie", c)
	}
	if len(cookies) == 0 && out.State == controller.StateSucceeded {
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}

	h.flash.Set(r.Context(), w, out.Flash)
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}
