package storefront

import (
	"context"
	"net/http"

	"github.com/pribylovaa/storefront-console/internal/controller"
	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/models"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/pkg/redact"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/validate"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Header — шапка по роли пользователя. Ошибка апстрима даёт анонимную шапку.
func (s *Service) Header(ctx context.Context) view.Header {
	var info models.UserInfo
	if err := s.api.GetJSON(ctx, pathUserInfo, &info); err != nil {
		logctx.From(ctx).Debug("user_info_failed", "err", err)
		return GuestHeader()
	}

	switch {
	case !info.Authenticated:
		return GuestHeader()
	case info.IsAdmin():
		return view.Header{ProfileURL: controller.AdminRoot, Authenticated: true}
	default:
		return view.Header{ProfileURL: pathProfilePage, ShowCart: true, Authenticated: true}
	}
}

// GuestHeader — шапка гостя: вход и корзина.
func GuestHeader() view.Header {
	return view.Header{ProfileURL: pathLoginPage, ShowCart: true}
}

// AdminInfo — профиль текущего администратора на главной админки.
func (s *Service) AdminInfo(ctx context.Context, region *view.Region) {
	const op = "storefront.AdminInfo"

	tk := region.Begin()

	var info models.CustomerInfo
	if err := s.api.GetJSON(ctx, pathAdminInfo, &info); err != nil {
		logctx.From(ctx).Warn("admin_info_failed", "op", op, "err", err)
		region.Commit(tk, view.Alert{Level: view.LevelDanger, Message: "Error loading admin info: " + apierrors.Detail(err)})
		return
	}

	region.Commit(tk, view.AdminInfoView{
		Email:       info.Email,
		FullName:    info.FullName,
		Address:     info.Address,
		PhoneNumber: info.PhoneNumber,
	})
}

// RegisterForm — пустая форма регистрации.
func (s *Service) RegisterForm(region *view.Region) {
	tk := region.Begin()
	region.Commit(tk, view.RegisterView{Form: s.spec(FormRegister).render(nil, validate.Result{}, false)})
}

// Register создаёт аккаунт; успех уводит на страницу логина.
func (s *Service) Register(ctx context.Context, region *view.Region, sub controller.Submission) controller.Outcome {
	const op = "storefront.Register"

	tk := region.Begin()
	fs := s.spec(FormRegister)

	res := validate.Check(fs.form.Fields, sub, sub)
	if !res.OK() {
		region.Commit(tk, view.RegisterView{Form: fs.render(fromSubmission(sub), res, true)})
		return controller.Outcome{State: controller.StateInvalid}
	}

	log := logctx.From(ctx).With("op", op, "email", redact.Email(sub.Get("email")))

	_, err := s.api.Send(ctx, http.MethodPost, fs.form.Path, controller.Payload(fs.form.Fields, sub))
	if err == nil {
		log.Info("customer_registered")
		return controller.Outcome{State: controller.StateSucceeded, Redirect: pathLoginPage}
	}

	log.Warn("register_failed", "kind", apierrors.KindOf(err).String(), "err", err)

	msg := apierrors.Detail(err)
	if apierrors.KindOf(err) == apierrors.NetworkFailure {
		msg = "An unexpected error occurred. Please try again."
	}

	fv := fs.render(fromSubmission(sub), validate.Result{}, false)
	fv.Alert = alert(view.LevelDanger, "", msg)
	region.Commit(tk, view.RegisterView{Form: fv})

	return controller.Outcome{State: controller.StateFailed}
}

// Logout завершает сессию в апстриме.
// Возвращает заголовки ответа апстрима для пересылки Set-Cookie.
// Редирект апстрима на /login после выхода тоже считается успехом.
func (s *Service) Logout(ctx context.Context) (controller.Outcome, http.Header) {
	const op = "storefront.Logout"

	reply, err := s.api.Send(ctx, http.MethodPost, pathLogout, upstream.Payload{})
	switch {
	case err == nil:
		var h http.Header
		if reply != nil {
			h = reply.Header
		}
		return controller.Outcome{State: controller.StateSucceeded, Redirect: pathLoginPage}, h
	case apierrors.KindOf(err) == apierrors.UnauthorizedFailure:
		return controller.Outcome{State: controller.StateSucceeded, Redirect: pathLoginPage}, nil
	}

	logctx.From(ctx).Warn("logout_failed", "op", op, "err", err)

	return controller.Outcome{
		State:    controller.StateFailed,
		Redirect: pathProfilePage,
		Flash:    alert(view.LevelDanger, "", "Error when logging out of the system"),
	}, nil
}
