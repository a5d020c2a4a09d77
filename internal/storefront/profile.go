package storefront

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/storefront-console/internal/controller"
	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/models"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/validate"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Под-виды профиля (?view=).
const (
	ViewEdit     = "edit"
	ViewCart     = "cart"
	ViewOrders   = "orders"
	ViewCheckout = "checkout"
)

// Profile грузит сведения о пользователе и под-вид name параллельно.
// Без сессии уводит на страницу логина.
func (s *Service) Profile(ctx context.Context, region *view.Region, name string) controller.Outcome {
	const op = "storefront.Profile"

	tk := region.Begin()
	log := logctx.From(ctx).With("op", op, "view", name)

	var (
		info    models.CustomerInfo
		cart    []models.CartItem
		orders  []models.Order
		subErr  error
		subWhat string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.api.GetJSON(gctx, pathCustomer, &info)
	})

	switch name {
	case ViewCart, ViewCheckout:
		subWhat = "Error loading cart items: "
		g.Go(func() error {
			subErr = s.api.GetJSON(gctx, pathCartItems, &cart)
			return nil
		})
	case ViewOrders:
		subWhat = "Error loading order history: "
		g.Go(func() error {
			subErr = s.api.GetJSON(gctx, pathOrders, &orders)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if apierrors.KindOf(err) == apierrors.UnauthorizedFailure {
			return controller.Outcome{Redirect: pathLoginPage}
		}
		log.Warn("profile_load_failed", "kind", apierrors.KindOf(err).String(), "err", err)
		region.Commit(tk, view.Alert{Level: view.LevelDanger, Message: "Error loading customer info: " + apierrors.Detail(err)})
		return controller.Outcome{}
	}

	pv := view.ProfileView{
		Email:       info.Email,
		FullName:    info.FullName,
		Address:     info.Address,
		PhoneNumber: info.PhoneNumber,
	}

	switch {
	case subErr != nil:
		log.Warn("profile_view_load_failed", "err", subErr)
		pv.Content = view.Alert{Level: view.LevelDanger, Message: subWhat + apierrors.Detail(subErr)}
	case name == ViewEdit:
		pv.Content = s.spec(FormProfile).render(fromCustomer(info), validate.Result{}, false)
	case name == ViewCart:
		pv.Content = cartView(cart)
	case name == ViewCheckout:
		cv := cartView(cart)
		if cv.Empty() {
			pv.Content = cv
			break
		}
		pv.Content = view.CheckoutView{
			Total: cv.Total,
			Form:  s.spec(FormDelivery).render(fromCustomer(info), validate.Result{}, false),
		}
	case name == ViewOrders:
		pv.Content = ordersView(orders)
	}

	region.Commit(tk, pv)
	return controller.Outcome{}
}

func ordersView(orders []models.Order) view.OrdersView {
	ov := view.OrdersView{}
	for _, o := range orders {
		ov.Orders = append(ov.Orders, view.OrderRow{
			ID:        o.ID,
			Total:     view.Money(o.TotalPrice),
			Status:    o.Status,
			CreatedAt: view.DateTime(o.CreatedAt.Time),
			UpdatedAt: view.DateTime(o.UpdatedAt.Time),
			Address:   o.DeliveryAddress,
			FullName:  o.DeliveryFullName,
			Phone:     o.DeliveryPhoneNumber,
			Items:     view.OrderItems(o.OrderItems),
		})
	}

	return ov
}

// UpdateProfile сохраняет изменённые сведения о пользователе.
func (s *Service) UpdateProfile(ctx context.Context, region *view.Region, sub controller.Submission) controller.Outcome {
	const op = "storefront.UpdateProfile"

	tk := region.Begin()
	fs := s.spec(FormProfile)

	res := validate.Check(fs.form.Fields, sub, sub)
	if !res.OK() {
		region.Commit(tk, fs.render(fromSubmission(sub), res, true))
		return controller.Outcome{State: controller.StateInvalid}
	}

	if _, err := s.api.Send(ctx, http.MethodPut, fs.form.Path, controller.Payload(fs.form.Fields, sub)); err != nil {
		logctx.From(ctx).Warn("profile_update_failed", "op", op, "kind", apierrors.KindOf(err).String(), "err", err)

		fv := fs.render(fromSubmission(sub), validate.Result{}, false)
		fv.Alert = alert(view.LevelDanger, "Error", "Failed to update information: "+apierrors.Detail(err))
		region.Commit(tk, fv)
		return controller.Outcome{State: controller.StateFailed}
	}

	return controller.Outcome{
		State:    controller.StateSucceeded,
		Redirect: pathProfilePage,
		Flash:    alert(view.LevelSuccess, "Success", "Information updated successfully!"),
	}
}
