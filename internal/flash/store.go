// flash — одноразовые сообщения между POST и следующей страницей (PRG).
//
// Сообщение лежит в хранилище под случайным id, id — в cookie браузера.
// Первое чтение удаляет сообщение.
package flash

import (
	"context"
	"errors"

	"github.com/pribylovaa/storefront-console/internal/view"
)

var ErrEmptyID = errors.New("flash: empty id")

// Store — минимальный контракт хранилища флешей.
type Store interface {
	// Put сохраняет сообщение под id с TTL хранилища.
	Put(ctx context.Context, id string, a view.Alert) error
	// Pop возвращает и удаляет сообщение; nil, если его нет или оно истекло.
	Pop(ctx context.Context, id string) (*view.Alert, error)
	// Close освобождает ресурсы хранилища.
	Close() error
}
