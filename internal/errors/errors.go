// errors описывает таксономию ошибок консоли и их отображение в HTTP.
//
// Виды ошибок:
//   - NetworkFailure — запрос к апстриму не завершился (транспорт, разбор JSON);
//   - UnauthorizedFailure — апстрим ответил 401;
//   - ForbiddenFailure — апстрим ответил 403;
//   - ServerRejection — любой другой не-2xx, тело ответа — текст для человека;
//   - LocalValidationFailure — нарушение ограничений формы до какого-либо запроса;
//   - UnknownEntityType — неизвестный тег типа сущности.
//
// Ничего не ретраится: ошибка либо рендерится в регион, либо уходит во флеш.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

type Kind int

const (
	KindUnknown Kind = iota
	NetworkFailure
	UnauthorizedFailure
	ForbiddenFailure
	ServerRejection
	LocalValidationFailure
	UnknownEntityType
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network_failure"
	case UnauthorizedFailure:
		return "unauthorized"
	case ForbiddenFailure:
		return "forbidden"
	case ServerRejection:
		return "server_rejection"
	case LocalValidationFailure:
		return "local_validation"
	case UnknownEntityType:
		return "unknown_entity_type"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownType = &Error{Kind: UnknownEntityType, Detail: "invalid type"}
	ErrValidation  = &Error{Kind: LocalValidationFailure, Detail: "validation failed"}
)

// Error — ошибка консоли.
// Status — HTTP-статус ответа апстрима (0, если ответа не было).
// Detail — текст, показываемый пользователю (для ServerRejection — тело ответа как есть).
type Error struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Detail != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по виду: errors.Is(err, ErrUnknownType) истинно для любой
// ошибки вида UnknownEntityType.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && t.Status == 0 && t.Err == nil
}

// Network оборачивает транспортную ошибку.
func Network(err error) error {
	return &Error{Kind: NetworkFailure, Err: err}
}

// FromStatus строит ошибку по не-2xx ответу апстрима.
// body — тело ответа, уже прочитанное как текст.
func FromStatus(status int, body string) error {
	switch status {
	case http.StatusUnauthorized:
		return &Error{Kind: UnauthorizedFailure, Status: status, Detail: body}
	case http.StatusForbidden:
		return &Error{Kind: ForbiddenFailure, Status: status, Detail: body}
	default:
		return &Error{Kind: ServerRejection, Status: status, Detail: body}
	}
}

// KindOf извлекает вид ошибки; для nil и чужих ошибок — KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// Detail возвращает текст для пользователя.
// Для ServerRejection/401/403 — тело ответа апстрима дословно,
// для NetworkFailure — текст транспортной ошибки.
func Detail(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if !stderrors.As(err, &e) {
		return err.Error()
	}

	if e.Detail != "" {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}

	return e.Kind.String()
}

// APIError — формат JSON-ответа для XHR-эндпоинтов консоли.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP даёт собственный HTTP-статус консоли для страницы/ответа с ошибкой.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal;
//   - отмена клиентом — 499, дедлайн — 504;
//   - NetworkFailure — 502, 401/403 — как есть;
//   - ServerRejection — 4xx апстрима как есть, прочее — 502;
//   - LocalValidationFailure — 422, UnknownEntityType — 404.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, internal()
	}

	switch {
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, resp("canceled", "canceled")
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, resp("deadline_exceeded", "deadline exceeded")
	}

	var e *Error
	if !stderrors.As(err, &e) {
		return http.StatusInternalServerError, internal()
	}

	switch e.Kind {
	case NetworkFailure:
		return http.StatusBadGateway, resp(e.Kind.String(), "upstream unavailable")
	case UnauthorizedFailure:
		return http.StatusUnauthorized, resp(e.Kind.String(), "unauthenticated")
	case ForbiddenFailure:
		return http.StatusForbidden, resp(e.Kind.String(), "permission denied")
	case ServerRejection:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status, resp(e.Kind.String(), e.Detail)
		}
		return http.StatusBadGateway, resp(e.Kind.String(), e.Detail)
	case LocalValidationFailure:
		return http.StatusUnprocessableEntity, resp(e.Kind.String(), Detail(e))
	case UnknownEntityType:
		return http.StatusNotFound, resp(e.Kind.String(), "invalid type")
	default:
		return http.StatusInternalServerError, internal()
	}
}

// WriteError — хелпер для XHR-хендлеров.
// Пишет статус и JSON-тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		body.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func resp(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

func internal() ErrorResponse {
	return resp("internal", "internal error")
}
