// view — типизированные представления консоли и их рендеринг.
//
// Region — область контента, которой владеет ровно одно представление.
// Каждая загрузка берёт билет (Begin), а результат записывается только если
// билет всё ещё текущий и представление не закрыто (Commit). Поздние ответы
// устаревших загрузок молча отбрасываются.
package view

import "sync"

// Fragment — типизированное содержимое региона.
// Template — имя шаблона, которым фрагмент рендерится.
type Fragment interface {
	Template() string
}

// Ticket — поколение загрузки, выданное регионом.
type Ticket struct {
	gen uint64
}

type Region struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
	frag   Fragment
}

func NewRegion() *Region { return &Region{} }

// Begin начинает новую загрузку и делает все выданные ранее билеты устаревшими.
func (r *Region) Begin() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	return Ticket{gen: r.gen}
}

// Commit записывает фрагмент, если билет текущий и регион не закрыт.
func (r *Region) Commit(t Ticket, f Fragment) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || t.gen != r.gen {
		return false
	}

	r.frag = f
	return true
}

// Active — можно ли ещё писать по билету t.
func (r *Region) Active(t Ticket) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return !r.closed && t.gen == r.gen
}

// Close помечает представление как покинутое: дальнейшие Commit отбрасываются.
func (r *Region) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
}

// Fragment — текущее содержимое (nil, если ничего не записано).
func (r *Region) Fragment() Fragment {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.frag
}
