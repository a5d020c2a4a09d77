// Модели ответов REST API магазина.
package models

// Page — пагинированный ответ апстрима (Spring Page).
// Number — номер текущей страницы с нуля, TotalPages >= 0.
type Page[T any] struct {
	Content    []T `json:"content"`
	Number     int `json:"number"`
	TotalPages int `json:"totalPages"`
}

// Named — элемент справочника для select: {id, name}.
type Named struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
