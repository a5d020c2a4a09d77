// controller — универсальный контроллер представлений сущностей админки.
//
// Один контроллер обслуживает все типы из entity.Registry: список, карточку,
// форму создания/редактирования и удаление. Каждая операция пишет результат
// в переданный view.Region по билету, взятому до сетевого запроса, так что
// устаревшие ответы отбрасываются. Неизвестный тег типа даёт фрагмент
// view.InvalidType без единого запроса к апстриму.
package controller

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pribylovaa/storefront-console/internal/entity"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Корень админки: сюда уводят после создания и удаления.
const AdminRoot = "/admin"

// State — состояние формы после попытки отправки.
//
//	Unsubmitted -> Validating -> {Invalid | Submitting -> {Succeeded | Failed}}
//
// Validating и Submitting транзитны и наружу не возвращаются.
type State int

const (
	StateUnsubmitted State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unsubmitted"
	}
}

// Outcome — итог мутирующей операции.
// Непустой Redirect означает навигацию (303) с флешем Flash.
type Outcome struct {
	State    State
	Redirect string
	Flash    *view.Alert
}

type Controller struct {
	reg *entity.Registry
	api upstream.Fetcher
}

func New(reg *entity.Registry, api upstream.Fetcher) *Controller {
	return &Controller{reg: reg, api: api}
}

// Nav — меню админки по всем типам реестра.
func (c *Controller) Nav() []view.NavItem {
	all := c.reg.All()
	out := make([]view.NavItem, 0, len(all))
	for _, d := range all {
		item := view.NavItem{Label: d.Plural, ListURL: ListPath(d.Tag)}
		if d.Creatable {
			item.CreateURL = CreatePath(d.Tag)
		}
		out = append(out, item)
	}

	return out
}

// Адреса страниц консоли (совпадают с адресами исходного фронтенда).

func ListPath(tag string) string {
	return AdminRoot + "?" + url.Values{"type": {tag}}.Encode()
}

func ManagePath(tag string, id int64) string {
	return AdminRoot + "/manage?" + typeID(tag, id)
}

func EditPath(tag string, id int64) string {
	return AdminRoot + "/edit?" + typeID(tag, id)
}

func CreatePath(tag string) string {
	return AdminRoot + "/add-product?" + url.Values{"type": {tag}}.Encode()
}

func DeletePath(tag string, id int64) string {
	return AdminRoot + "/delete?" + typeID(tag, id)
}

func typeID(tag string, id int64) string {
	return url.Values{"type": {tag}, "id": {strconv.FormatInt(id, 10)}}.Encode()
}

// normTag — тег как его ввёл пользователь, для текстов подтверждений.
func normTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func danger(msg string) *view.Alert {
	return &view.Alert{Level: view.LevelDanger, Message: msg}
}

func success(msg string) *view.Alert {
	return &view.Alert{Level: view.LevelSuccess, Message: msg}
}
