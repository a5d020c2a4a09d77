package view

import (
	"net/url"
	"strconv"
)

// Anchor, к которому прокручивается страница после перехода по пейджеру.
const ContentAnchor = "#content"

// Pager — состояние пагинации одного списка.
// Живёт во вью-модели списка и пересоздаётся при каждой загрузке.
type Pager struct {
	Current int
	Total   int

	base  string
	query url.Values
}

// NewPager строит пейджер по ответу {number, totalPages}.
// base и query — адрес страницы консоли, к которому добавляется page=N.
func NewPager(current, total int, base string, query url.Values) *Pager {
	q := url.Values{}
	for k, v := range query {
		if k == "page" {
			continue
		}
		q[k] = append([]string(nil), v...)
	}

	return &Pager{Current: current, Total: total, base: base, query: q}
}

func (p *Pager) HasPrev() bool { return p.Current > 0 }

func (p *Pager) HasNext() bool { return p.Current < p.Total-1 }

func (p *Pager) PrevPage() int { return p.Current - 1 }

func (p *Pager) NextPage() int { return p.Current + 1 }

// PrevURL — ссылка на предыдущую страницу ("" если кнопка выключена).
func (p *Pager) PrevURL() string {
	if !p.HasPrev() {
		return ""
	}

	return p.link(p.PrevPage())
}

// NextURL — ссылка на следующую страницу ("" если кнопка выключена).
func (p *Pager) NextURL() string {
	if !p.HasNext() {
		return ""
	}

	return p.link(p.NextPage())
}

func (p *Pager) link(page int) string {
	q := url.Values{}
	for k, v := range p.query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))

	return p.base + "?" + q.Encode() + ContentAnchor
}
