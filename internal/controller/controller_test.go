package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/storefront-console/internal/entity"
	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/view"
	"github.com/pribylovaa/storefront-console/mocks"
)

// Файл unit-тестов контроллера сущностей.
//
// Покрываем:
//  - неизвестный тип: InvalidType и ни одного запроса;
//  - список с пагинацией и без, ошибку загрузки;
//  - карточку клиента с вложенной историей заказов;
//  - удаление с подтверждением и без;
//  - форму: проверку без сети, создание, редактирование, ошибки апстрима;
//  - сериализацию чекбоксов и round-trip формы редактирования;
//  - подгрузку опций select;
//  - отбрасывание устаревших результатов.

func newCtrl(t *testing.T) (*Controller, *mocks.MockFetcher) {
	t.Helper()

	mc := gomock.NewController(t)
	t.Cleanup(mc.Finish)

	api := mocks.NewMockFetcher(mc)
	return New(entity.MustDefault(), api), api
}

// respond декодирует body в out так же, как это делает upstream.Client.
func respond(body string) func(context.Context, string, any) error {
	return func(_ context.Context, _ string, out any) error {
		return json.Unmarshal([]byte(body), out)
	}
}

func productsPage(n, number, total int) string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(`{"id":%d,"name":"P%d","price":1.5,"quantity":%d,"isActive":true}`, i, i, i))
	}

	return fmt.Sprintf(`{"content":[%s],"number":%d,"totalPages":%d}`, strings.Join(items, ","), number, total)
}

func TestUnknownType_NoNetwork(t *testing.T) {
	t.Parallel()

	// Мок без ожиданий: любой вызов апстрима провалит тест.
	c, _ := newCtrl(t)
	ctx := context.Background()

	ops := map[string]func(*view.Region){
		"list":    func(r *view.Region) { c.RenderList(ctx, r, "widget", 0) },
		"detail":  func(r *view.Region) { c.RenderDetail(ctx, r, "widget", 1) },
		"form":    func(r *view.Region) { c.RenderForm(ctx, r, "widget", 0) },
		"edit":    func(r *view.Region) { c.RenderForm(ctx, r, "widget", 3) },
		"options": func(r *view.Region) { c.RenderOptions(ctx, r, "widget", "x", entity.ModeEdit, "", "") },
		"submit":  func(r *view.Region) { c.Submit(ctx, r, "widget", 0, Submission{}) },
		"delete":  func(r *view.Region) { c.Delete(ctx, r, "widget", 1, true) },
	}

	for name, op := range ops {
		r := view.NewRegion()
		op(r)
		require.Equal(t, view.InvalidType{Tag: "widget"}, r.Fragment(), name)
	}
}

func TestRenderForm_OrderNotCreatable(t *testing.T) {
	t.Parallel()

	c, _ := newCtrl(t)
	r := view.NewRegion()

	c.RenderForm(context.Background(), r, "order", 0)
	require.IsType(t, view.InvalidType{}, r.Fragment())
}

func TestRenderList_PaginatedProducts(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/products?page=0", gomock.Any()).
		DoAndReturn(respond(productsPage(10, 0, 3)))

	r := view.NewRegion()
	c.RenderList(context.Background(), r, "product", 0)

	lv, ok := r.Fragment().(view.ListView)
	require.True(t, ok)
	require.Equal(t, "Products List", lv.Title)
	require.Len(t, lv.Rows, 10)
	require.Equal(t, "/admin/manage?id=1&type=product", lv.Rows[0].Link)

	require.NotNil(t, lv.Pager)
	require.False(t, lv.Pager.HasPrev())
	require.True(t, lv.Pager.HasNext())
	require.Equal(t, "/admin?page=1&type=product#content", lv.Pager.NextURL())
}

func TestRenderList_NotPaginatedBrands(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/brands", gomock.Any()).
		DoAndReturn(respond(`[{"id":1,"name":"Acme","description":null}]`))

	r := view.NewRegion()
	c.RenderList(context.Background(), r, "brand", 4)

	lv := r.Fragment().(view.ListView)
	require.Nil(t, lv.Pager)
	require.Len(t, lv.Rows, 1)
	require.Equal(t, []view.Cell{{Text: "1"}, {Text: "Acme"}, {Text: "No description"}}, lv.Rows[0].Cells)
}

func TestRenderList_LoadFailure(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/orders?page=2", gomock.Any()).
		Return(apierrors.Network(errors.New("connection refused")))

	r := view.NewRegion()
	c.RenderList(context.Background(), r, "order", 2)

	require.Equal(t, view.Alert{Level: view.LevelDanger, Message: "Error loading data: connection refused"}, r.Fragment())
}

func TestRenderList_StaleResultDiscarded(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	r := view.NewRegion()

	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/brands", gomock.Any()).
		DoAndReturn(func(ctx context.Context, path string, out any) error {
			// Пользователь ушёл со страницы, пока запрос был в полёте.
			r.Close()
			return respond(`[]`)(ctx, path, out)
		})

	c.RenderList(context.Background(), r, "brand", 0)
	require.Nil(t, r.Fragment())
}

func TestRenderDetail_CustomerWithHistory(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/customers/3", gomock.Any()).
		DoAndReturn(respond(`{"id":3,"fullName":"Ann Lee","email":"ann@example.com","phoneNumber":null,"role":"USER"}`))
	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/customer-orders?customerId=3", gomock.Any()).
		DoAndReturn(respond(`[{"id":9,"customerEmail":"ann@example.com","status":"NEW","totalPrice":12,"orderItems":[{"productName":"P","productPrice":6,"quantity":2}]}]`))

	r := view.NewRegion()
	c.RenderDetail(context.Background(), r, "customer", 3)

	dv, ok := r.Fragment().(view.DetailView)
	require.True(t, ok)
	require.Equal(t, "User Details", dv.Header)
	require.Equal(t, "/admin/edit?id=3&type=customer", dv.EditURL)
	require.Equal(t, "/admin/delete?id=3&type=customer", dv.DeleteURL)
	require.Equal(t, view.Cell{Text: "Not provided"}, dv.Fields[3].Cell)

	hist, ok := dv.History.(view.ListView)
	require.True(t, ok)
	require.Len(t, hist.Rows, 1)
	require.Equal(t, "/admin/manage?id=9&type=order", hist.Rows[0].Link)
	require.Equal(t, []view.ItemLine{{Name: "P", Price: "$6.00", Quantity: 2}}, hist.Rows[0].Items)
}

func TestRenderDetail_Failure(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/brands/8", gomock.Any()).
		Return(apierrors.FromStatus(http.StatusNotFound, "Brand not found"))

	r := view.NewRegion()
	c.RenderDetail(context.Background(), r, "brand", 8)

	require.Equal(t, view.Alert{Level: view.LevelDanger, Message: "Error loading details: Brand not found"}, r.Fragment())
}

func TestDelete_UnconfirmedAsksFirst(t *testing.T) {
	t.Parallel()

	c, _ := newCtrl(t)
	r := view.NewRegion()

	out := c.Delete(context.Background(), r, "brand", 5, false)
	require.Empty(t, out.Redirect)

	cf, ok := r.Fragment().(view.Confirm)
	require.True(t, ok)
	require.Equal(t, "Are you sure you want to delete this brand?", cf.Message)
	require.Equal(t, "/admin/delete?id=5&type=brand", cf.Action)
}

func TestDelete_ConfirmedBrand(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		Send(gomock.Any(), http.MethodDelete, "/admin/brands/5", upstream.Payload{}).
		Return(&upstream.Reply{Status: http.StatusOK}, nil)

	out := c.Delete(context.Background(), view.NewRegion(), "brand", 5, true)

	require.Equal(t, StateSucceeded, out.State)
	require.Equal(t, "/admin", out.Redirect)
	require.Equal(t, "Brand deleted successfully!", out.Flash.Message)
}

func TestDelete_CategoryURL(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		Send(gomock.Any(), http.MethodDelete, "/admin/categories/2", gomock.Any()).
		Return(&upstream.Reply{Status: http.StatusOK}, nil)

	out := c.Delete(context.Background(), view.NewRegion(), "category", 2, true)
	require.Equal(t, "Category deleted successfully!", out.Flash.Message)
}

func TestDelete_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "server text verbatim", err: apierrors.FromStatus(http.StatusConflict, "Brand is in use"), want: "Failed to delete brand: Brand is in use"},
		{name: "network", err: apierrors.Network(errors.New("eof")), want: "An error occurred while deleting the brand."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, api := newCtrl(t)
			api.EXPECT().Send(gomock.Any(), http.MethodDelete, "/admin/brands/5", gomock.Any()).Return(nil, tt.err)

			out := c.Delete(context.Background(), view.NewRegion(), "brand", 5, true)

			require.Equal(t, StateFailed, out.State)
			require.Equal(t, "/admin/manage?id=5&type=brand", out.Redirect)
			require.Equal(t, view.LevelDanger, out.Flash.Level)
			require.Equal(t, tt.want, out.Flash.Message)
		})
	}
}

func TestSubmit_InvalidCategoryNoNetwork(t *testing.T) {
	t.Parallel()

	c, _ := newCtrl(t)
	r := view.NewRegion()

	c.RenderForm(context.Background(), r, "category", 0)
	fv := r.Fragment().(view.FormView)
	require.False(t, fv.Validated)
	require.Len(t, fv.Fields, 2)

	out := c.Submit(context.Background(), r, "category", 0, Submission{
		Values: url.Values{"name": {"A"}, "description": {""}},
	})
	require.Equal(t, StateInvalid, out.State)

	fv = r.Fragment().(view.FormView)
	require.True(t, fv.Validated)
	require.True(t, fv.Fields[0].Invalid)
	require.Equal(t, "Category name must be between 2 and 40 characters.", fv.Fields[0].Feedback)
	require.False(t, fv.Fields[1].Invalid)
	require.Equal(t, "A", fv.Fields[0].Value)
}

func TestSubmit_CreateUserAlias(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)

	var got upstream.Payload
	api.EXPECT().
		Send(gomock.Any(), http.MethodPost, "/admin/customers", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, p upstream.Payload) (*upstream.Reply, error) {
			got = p
			return &upstream.Reply{Status: http.StatusCreated}, nil
		})

	out := c.Submit(context.Background(), view.NewRegion(), "user", 0, Submission{Values: url.Values{
		"email":       {"new@example.com"},
		"password":    {"secret1"},
		"fullName":    {"New User"},
		"role":        {"ADMIN"},
		"phoneNumber": {"+12345678901"},
	}})

	require.Equal(t, StateSucceeded, out.State)
	require.Equal(t, "/admin", out.Redirect)
	require.Equal(t, "User added successfully!", out.Flash.Message)

	require.Equal(t, upstream.EncodingMultipart, got.Encoding)
	names := make([]string, 0, len(got.Fields))
	for _, f := range got.Fields {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"email", "password", "fullName", "role", "address", "phoneNumber"}, names)
}

func TestSubmit_CreateFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "rejection", err: apierrors.FromStatus(http.StatusBadRequest, "Brand already exists"), want: "Failed to add brand: Brand already exists"},
		{name: "network", err: apierrors.Network(errors.New("dial tcp")), want: "An error occurred while adding the brand."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, api := newCtrl(t)
			api.EXPECT().Send(gomock.Any(), http.MethodPost, "/admin/brands", gomock.Any()).Return(nil, tt.err)

			r := view.NewRegion()
			out := c.Submit(context.Background(), r, "brand", 0, Submission{Values: url.Values{"name": {"Acme"}}})

			require.Equal(t, StateFailed, out.State)
			require.Empty(t, out.Redirect)

			fv := r.Fragment().(view.FormView)
			require.Equal(t, tt.want, fv.Alert.Message)
			require.Equal(t, "Acme", fv.Fields[0].Value)
		})
	}
}

// Логгер с атрибутами формы уходит в контекст запроса к апстриму.
func TestSubmit_UpstreamContextCarriesFormLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logctx.Into(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)))

	c, api := newCtrl(t)
	api.EXPECT().Send(gomock.Any(), http.MethodPost, "/admin/brands", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _, _ string, _ upstream.Payload) (*upstream.Reply, error) {
			logctx.From(ctx).Info("upstream_call")
			return &upstream.Reply{Status: http.StatusCreated}, nil
		})

	out := c.Submit(ctx, view.NewRegion(), "brand", 0, Submission{Values: url.Values{"name": {"Acme"}}})
	require.Equal(t, StateSucceeded, out.State)

	line := buf.String()
	require.Contains(t, line, `"msg":"upstream_call"`)
	require.Contains(t, line, `"op":"controller.Submit"`)
	require.Contains(t, line, `"type":"brand"`)
	require.Contains(t, line, `"mode":"create"`)
}

func TestSubmit_OrderStatusInQueryAndBody(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)
	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/orders/7", gomock.Any()).
		DoAndReturn(respond(`{"id":7,"status":"NEW"}`))

	var got upstream.Payload
	api.EXPECT().
		Send(gomock.Any(), http.MethodPut, "/admin/orders/7?orderStatus=SHIPPED", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, p upstream.Payload) (*upstream.Reply, error) {
			got = p
			return &upstream.Reply{Status: http.StatusOK}, nil
		})

	r := view.NewRegion()
	c.RenderForm(context.Background(), r, "order", 7)

	fv := r.Fragment().(view.FormView)
	require.Len(t, fv.Fields, 1)
	require.Equal(t, "NEW", fv.Fields[0].Value)
	require.Equal(t, "/admin/options?field=status&mode=edit&selected=NEW&type=order&value=NEW", fv.Fields[0].OptionsURL)

	out := c.Submit(context.Background(), r, "order", 7, Submission{Values: url.Values{"status": {"SHIPPED"}}})
	require.Equal(t, StateSucceeded, out.State)
	require.Equal(t, []string{"SHIPPED"}, got.Get("status"))

	fv = r.Fragment().(view.FormView)
	require.Equal(t, "Updated successfully", fv.Alert.Message)
}

func TestSubmit_EditFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "rejection", err: apierrors.FromStatus(http.StatusBadRequest, "Invalid status"), want: "Failed: Invalid status"},
		{name: "network", err: apierrors.Network(errors.New("timeout")), want: "An error occurred: timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, api := newCtrl(t)
			api.EXPECT().Send(gomock.Any(), http.MethodPut, "/admin/orders/7?orderStatus=DONE", gomock.Any()).Return(nil, tt.err)

			r := view.NewRegion()
			out := c.Submit(context.Background(), r, "order", 7, Submission{Values: url.Values{"status": {"DONE"}}})

			require.Equal(t, StateFailed, out.State)
			require.Equal(t, tt.want, r.Fragment().(view.FormView).Alert.Message)
		})
	}
}

func validProduct(active bool) Submission {
	v := url.Values{
		"name":        {"Phone"},
		"description": {"Nice"},
		"price":       {"10.5"},
		"quantity":    {"3"},
		"categoryId":  {"1"},
		"brandId":     {"2"},
	}
	if active {
		v.Set("isActive", "true")
	}

	return Submission{Values: v}
}

func TestSubmit_CheckboxAlwaysSerialized(t *testing.T) {
	t.Parallel()

	for _, active := range []bool{false, true} {
		t.Run(fmt.Sprintf("active=%v", active), func(t *testing.T) {
			c, api := newCtrl(t)

			var payloads []upstream.Payload
			api.EXPECT().
				Send(gomock.Any(), http.MethodPut, "/admin/products/4", gomock.Any()).
				DoAndReturn(func(_ context.Context, _, _ string, p upstream.Payload) (*upstream.Reply, error) {
					payloads = append(payloads, p)
					return &upstream.Reply{Status: http.StatusOK}, nil
				}).
				Times(2)

			for i := 0; i < 2; i++ {
				out := c.Submit(context.Background(), view.NewRegion(), "product", 4, validProduct(active))
				require.Equal(t, StateSucceeded, out.State)
			}

			require.Len(t, payloads, 2)
			require.Equal(t, []string{fmt.Sprint(active)}, payloads[0].Get("isActive"))
			if diff := cmp.Diff(payloads[0], payloads[1]); diff != "" {
				t.Fatalf("payloads differ (-first +second):\n%s", diff)
			}
		})
	}
}

func TestSubmit_EditRoundTrip(t *testing.T) {
	t.Parallel()

	c, api := newCtrl(t)

	const record = `{"id":4,"name":"Phone","description":"Nice","price":10.5,"quantity":3,
		"isActive":true,"categoryId":1,"categoryName":"Phones","brandId":2,"brandName":"Acme"}`

	api.EXPECT().
		GetJSON(gomock.Any(), "/admin/products/4", gomock.Any()).
		DoAndReturn(respond(record))

	var got upstream.Payload
	api.EXPECT().
		Send(gomock.Any(), http.MethodPut, "/admin/products/4", gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, p upstream.Payload) (*upstream.Reply, error) {
			got = p
			return &upstream.Reply{Status: http.StatusOK}, nil
		})

	r := view.NewRegion()
	c.RenderForm(context.Background(), r, "product", 4)
	fv := r.Fragment().(view.FormView)

	// Отправляем форму как есть: так сделал бы браузер.
	sub := Submission{Values: url.Values{}}
	for _, f := range fv.Fields {
		switch {
		case f.Kind == string(entity.KindCheckbox):
			if f.Checked {
				sub.Values.Set(f.Name, "true")
			}
		default:
			sub.Values.Set(f.Name, f.Value)
		}
	}

	out := c.Submit(context.Background(), r, "product", 4, sub)
	require.Equal(t, StateSucceeded, out.State)

	want := map[string]string{
		"name":        "Phone",
		"description": "Nice",
		"price":       "10.5",
		"quantity":    "3",
		"isActive":    "true",
	}
	for name, v := range want {
		require.Equal(t, []string{v}, got.Get(name), name)
	}
}

func TestRenderOptions(t *testing.T) {
	t.Parallel()

	t.Run("entities by display name", func(t *testing.T) {
		c, api := newCtrl(t)
		api.EXPECT().
			GetJSON(gomock.Any(), "/home/categories", gomock.Any()).
			DoAndReturn(respond(`[{"id":1,"name":"Laptops"},{"id":2,"name":"Phones"}]`))

		r := view.NewRegion()
		c.RenderOptions(context.Background(), r, "product", "categoryId", entity.ModeEdit, "Phones", "")

		want := view.OptionsView{
			Placeholder: "Select a category",
			Options: []view.OptionView{
				{Value: "1", Label: "Laptops"},
				{Value: "2", Label: "Phones", Selected: true},
			},
		}
		require.Equal(t, want, r.Fragment())
	})

	t.Run("values by submitted value", func(t *testing.T) {
		c, api := newCtrl(t)
		api.EXPECT().
			GetJSON(gomock.Any(), "/admin/order-statuses", gomock.Any()).
			DoAndReturn(respond(`["NEW","SHIPPED"]`))

		r := view.NewRegion()
		c.RenderOptions(context.Background(), r, "order", "status", entity.ModeEdit, "", "SHIPPED")

		ov := r.Fragment().(view.OptionsView)
		require.False(t, ov.Options[0].Selected)
		require.True(t, ov.Options[1].Selected)
	})

	t.Run("static without network", func(t *testing.T) {
		c, _ := newCtrl(t)

		r := view.NewRegion()
		c.RenderOptions(context.Background(), r, "customer", "role", entity.ModeCreate, "", "USER")

		ov := r.Fragment().(view.OptionsView)
		require.Equal(t, []view.OptionView{{Value: "USER", Label: "User", Selected: true}, {Value: "ADMIN", Label: "Admin"}}, ov.Options)
	})

	t.Run("load failure keeps placeholder", func(t *testing.T) {
		c, api := newCtrl(t)
		api.EXPECT().
			GetJSON(gomock.Any(), "/home/brands", gomock.Any()).
			Return(apierrors.Network(errors.New("refused")))

		r := view.NewRegion()
		c.RenderOptions(context.Background(), r, "product", "brandId", entity.ModeCreate, "", "")

		require.Equal(t, view.OptionsView{Placeholder: "Select a brand"}, r.Fragment())
	})
}

func TestNav(t *testing.T) {
	t.Parallel()

	c, _ := newCtrl(t)
	nav := c.Nav()

	byLabel := map[string]view.NavItem{}
	for _, n := range nav {
		byLabel[n.Label] = n
	}

	require.Equal(t, "/admin?type=product", byLabel["Products"].ListURL)
	require.Equal(t, "/admin/add-product?type=product", byLabel["Products"].CreateURL)
	require.Empty(t, byLabel["Orders"].CreateURL)
}
