// storefront — страницы покупателя: витрина, каталог, товар, корзина,
// заказы, профиль, регистрация и выход.
//
// Как и controller, операции пишут фрагменты в view.Region по билету,
// а мутирующие возвращают controller.Outcome с редиректом и флешем.
package storefront

import (
	"net/url"
	"strconv"

	"github.com/pribylovaa/storefront-console/internal/controller"
	"github.com/pribylovaa/storefront-console/internal/entity"
	"github.com/pribylovaa/storefront-console/internal/models"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/validate"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Пути апстрима витрины.
const (
	pathHome        = "/home/get"
	pathProducts    = "/home/getAllProducts"
	pathCategories  = "/home/categories"
	pathBrands      = "/home/brands"
	pathProduct     = "/home/product/"
	pathCartItems   = "/customer/cart/items"
	pathCartItem    = "/customer/carts/items/"
	pathCartClear   = "/customer/cart/clear"
	pathCustomer    = "/customer/info"
	pathOrders      = "/customer/orders"
	pathUserInfo    = "/api/user/info"
	pathAdminInfo   = "/admin/info"
	pathLogout      = "/logout"
	pathLoginPage   = "/login"
	pathProfilePage = "/profile"
)

// Имена отдельных форм в реестре.
const (
	FormRegister = "register"
	FormProfile  = "profile"
	FormDelivery = "delivery"
)

type Service struct {
	reg *entity.Registry
	api upstream.Fetcher
}

func New(reg *entity.Registry, api upstream.Fetcher) *Service {
	return &Service{reg: reg, api: api}
}

// ProductPath — адрес страницы товара в консоли.
func ProductPath(id int64) string {
	return "/product?" + url.Values{"id": {strconv.FormatInt(id, 10)}}.Encode()
}

// ProfilePath — профиль с под-видом name ("" — без под-вида).
func ProfilePath(name string) string {
	if name == "" {
		return pathProfilePage
	}

	return pathProfilePage + "?" + url.Values{"view": {name}}.Encode()
}

func card(p models.Product) view.ProductCard {
	return view.ProductCard{
		ID:         p.ID,
		Name:       p.Name,
		Image:      p.ImageURL,
		Price:      view.Money(p.Price),
		OutOfStock: p.OutOfStock(),
		DetailURL:  ProductPath(p.ID),
	}
}

func cards(ps []models.Product) []view.ProductCard {
	out := make([]view.ProductCard, 0, len(ps))
	for _, p := range ps {
		out = append(out, card(p))
	}

	return out
}

// formSpec — поля и оформление отдельной формы витрины.
type formSpec struct {
	form      *entity.Form
	action    string
	submit    string
	cancelURL string
}

func (s *Service) spec(name string) formSpec {
	f, err := s.reg.Form(name)
	if err != nil {
		// Формы встроены в бинарник; отсутствие — ошибка сборки.
		panic(err)
	}

	fs := formSpec{form: f}
	switch name {
	case FormRegister:
		fs.action, fs.submit = "/register", "Register"
	case FormProfile:
		fs.action, fs.submit, fs.cancelURL = pathProfilePage, "Save Changes", pathProfilePage
	case FormDelivery:
		fs.action, fs.submit, fs.cancelURL = "/cart/order", "Confirm Order", ProfilePath("cart")
	}

	return fs
}

// render строит FormView; value отдаёт значение поля.
func (fs formSpec) render(value func(f entity.FieldSpec) string, res validate.Result, validated bool) view.FormView {
	fv := view.FormView{
		Title:     fs.form.Title,
		Action:    fs.action,
		Multipart: true,
		Validated: validated,
		Submit:    fs.submit,
		CancelURL: fs.cancelURL,
	}

	for _, f := range fs.form.Fields {
		ff := controller.FormField(f)
		if value != nil && f.Kind != entity.KindPassword {
			ff.Value = value(f)
		}
		if msg, bad := res.Message(f.Name); bad {
			ff.Invalid = true
			ff.Feedback = msg
		}
		fv.Fields = append(fv.Fields, ff)
	}

	return fv
}

func fromSubmission(sub controller.Submission) func(entity.FieldSpec) string {
	return func(f entity.FieldSpec) string { return sub.Get(f.Name) }
}

func fromCustomer(info models.CustomerInfo) func(entity.FieldSpec) string {
	rec := models.Record{
		"email":       info.Email,
		"fullName":    info.FullName,
		"address":     info.Address,
		"phoneNumber": info.PhoneNumber,
	}

	return func(f entity.FieldSpec) string { return rec.String(f.SourceKey()) }
}

func alert(level, title, msg string) *view.Alert {
	return &view.Alert{Level: level, Title: title, Message: msg}
}
