package storefront

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/pribylovaa/storefront-console/internal/controller"
	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/models"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/validate"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// AddToCart кладёт товар в корзину и возвращает флеш для страницы back.
// 401 и 403 разбираются отдельно: только здесь вид ошибки меняет реакцию.
func (s *Service) AddToCart(ctx context.Context, productID int64, back string) controller.Outcome {
	const op = "storefront.AddToCart"

	payload := upstream.Form(upstream.Field{Name: "productId", Value: strconv.FormatInt(productID, 10)})

	_, err := s.api.Send(ctx, http.MethodPost, pathCartItems, payload)
	if err == nil {
		return controller.Outcome{
			State:    controller.StateSucceeded,
			Redirect: back,
			Flash:    alert(view.LevelSuccess, "", "Product added to cart"),
		}
	}

	logctx.From(ctx).Warn("cart_add_failed",
		"op", op,
		"product_id", productID,
		"kind", apierrors.KindOf(err).String(),
		"err", err,
	)

	out := controller.Outcome{State: controller.StateFailed, Redirect: back}
	switch apierrors.KindOf(err) {
	case apierrors.UnauthorizedFailure:
		out.Flash = &view.Alert{
			Level:     view.LevelWarning,
			Title:     "Not logged in",
			Message:   "You need to log in to add items to the cart.",
			Link:      pathLoginPage,
			LinkLabel: "Log in",
		}
	case apierrors.ForbiddenFailure:
		out.Flash = alert(view.LevelDanger, "Access Denied", "You do not have permission to add items to the cart.")
	case apierrors.NetworkFailure:
		out.Flash = alert(view.LevelDanger, "Error", "Something went wrong!")
	default:
		out.Flash = alert(view.LevelDanger, "Something went wrong", apierrors.Detail(err))
	}

	return out
}

// cartView — содержимое корзины и итог Σ цена × количество.
func cartView(items []models.CartItem) view.CartView {
	total := decimal.Zero

	cv := view.CartView{}
	for _, it := range items {
		total = total.Add(it.LineTotal())
		cv.Lines = append(cv.Lines, view.CartLine{
			ID:          it.ID,
			Name:        it.Product.Name,
			Image:       it.Product.ImageURL,
			Price:       view.Money(it.Product.Price),
			Quantity:    it.Quantity,
			MaxQuantity: it.Product.Quantity,
		})
	}
	cv.Total = view.Money(total)

	return cv
}

// UpdateQuantity меняет количество строки корзины.
func (s *Service) UpdateQuantity(ctx context.Context, itemID int64, quantity string) controller.Outcome {
	const op = "storefront.UpdateQuantity"

	back := ProfilePath("cart")

	n, err := strconv.Atoi(quantity)
	if err != nil || n < 1 {
		return controller.Outcome{
			State:    controller.StateInvalid,
			Redirect: back,
			Flash:    alert(view.LevelDanger, "", "Quantity must be at least 1."),
		}
	}

	path := pathCartItem + strconv.FormatInt(itemID, 10) + "?" + url.Values{"newQuantity": {strconv.Itoa(n)}}.Encode()
	if _, err := s.api.Send(ctx, http.MethodPut, path, upstream.Payload{}); err != nil {
		logctx.From(ctx).Warn("cart_quantity_failed", "op", op, "item_id", itemID, "err", err)
		return controller.Outcome{
			State:    controller.StateFailed,
			Redirect: back,
			Flash:    alert(view.LevelDanger, "", "Failed to update information: "+apierrors.Detail(err)),
		}
	}

	return controller.Outcome{State: controller.StateSucceeded, Redirect: back}
}

// RemoveItem удаляет строку корзины после подтверждения.
func (s *Service) RemoveItem(ctx context.Context, region *view.Region, itemID int64, confirmed bool) controller.Outcome {
	const op = "storefront.RemoveItem"

	tk := region.Begin()
	back := ProfilePath("cart")

	if !confirmed {
		region.Commit(tk, view.Confirm{
			Title:     "Are you sure?",
			Message:   "Do you want to remove this item from the cart?",
			Action:    "/cart/items/" + strconv.FormatInt(itemID, 10) + "/remove",
			Submit:    "Yes, remove it!",
			CancelURL: back,
		})
		return controller.Outcome{}
	}

	_, err := s.api.Send(ctx, http.MethodDelete, pathCartItem+strconv.FormatInt(itemID, 10), upstream.Payload{})
	if err == nil {
		return controller.Outcome{
			State:    controller.StateSucceeded,
			Redirect: back,
			Flash:    alert(view.LevelSuccess, "Removed!", "Item has been removed from the cart."),
		}
	}

	logctx.From(ctx).Warn("cart_remove_failed", "op", op, "item_id", itemID, "err", err)

	msg := "Failed to remove item."
	if apierrors.KindOf(err) == apierrors.NetworkFailure {
		msg = "Failed to remove item: " + apierrors.Detail(err)
	}

	return controller.Outcome{State: controller.StateFailed, Redirect: back, Flash: alert(view.LevelDanger, "Error", msg)}
}

// ClearCart очищает корзину после подтверждения.
func (s *Service) ClearCart(ctx context.Context, region *view.Region, confirmed bool) controller.Outcome {
	const op = "storefront.ClearCart"

	tk := region.Begin()
	back := ProfilePath("cart")

	if !confirmed {
		region.Commit(tk, view.Confirm{
			Title:     "Are you sure?",
			Message:   "You won't be able to revert this!",
			Action:    "/cart/clear",
			Submit:    "Yes, clear it!",
			CancelURL: back,
		})
		return controller.Outcome{}
	}

	if _, err := s.api.Send(ctx, http.MethodDelete, pathCartClear, upstream.Payload{}); err != nil {
		logctx.From(ctx).Warn("cart_clear_failed", "op", op, "err", err)
		return controller.Outcome{
			State:    controller.StateFailed,
			Redirect: back,
			Flash:    alert(view.LevelDanger, "Error", "Failed to clear the cart: "+apierrors.Detail(err)),
		}
	}

	return controller.Outcome{
		State:    controller.StateSucceeded,
		Redirect: back,
		Flash:    alert(view.LevelSuccess, "Cleared!", "Your cart has been cleared."),
	}
}

// PlaceOrder оформляет заказ из корзины по форме доставки.
// Невалидная форма возвращается в регион без единого запроса.
func (s *Service) PlaceOrder(ctx context.Context, region *view.Region, sub controller.Submission) controller.Outcome {
	const op = "storefront.PlaceOrder"

	tk := region.Begin()
	fs := s.spec(FormDelivery)

	res := validate.Check(fs.form.Fields, sub, sub)
	if !res.OK() {
		region.Commit(tk, view.CheckoutView{Form: fs.render(fromSubmission(sub), res, true)})
		return controller.Outcome{State: controller.StateInvalid}
	}

	_, err := s.api.Send(ctx, http.MethodPost, fs.form.Path, controller.Payload(fs.form.Fields, sub))
	if err == nil {
		logctx.From(ctx).Info("order_placed", "op", op)
		return controller.Outcome{
			State:    controller.StateSucceeded,
			Redirect: ProfilePath("cart"),
			Flash:    alert(view.LevelSuccess, "Order Created!", "Your order has been placed successfully!"),
		}
	}

	logctx.From(ctx).Warn("order_failed", "op", op, "kind", apierrors.KindOf(err).String(), "err", err)

	msg := "Failed to create order: " + apierrors.Detail(err)
	if apierrors.KindOf(err) == apierrors.NetworkFailure {
		msg = "Error creating order: " + apierrors.Detail(err)
	}

	fv := fs.render(fromSubmission(sub), validate.Result{}, false)
	fv.Alert = alert(view.LevelDanger, "Error", msg)
	region.Commit(tk, view.CheckoutView{Form: fv})

	return controller.Outcome{State: controller.StateFailed}
}
