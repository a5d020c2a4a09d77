package view

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pribylovaa/storefront-console/internal/entity"
	"github.com/pribylovaa/storefront-console/internal/models"
)

// Формат дат в таблицах и карточках.
const DateTimeLayout = "2006-01-02 15:04:05"

var title = cases.Title(language.English)

// Capitalize — "brand" -> "Brand" для подтверждений.
func Capitalize(s string) string {
	return title.String(s)
}

// Money — "$19.10".
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// DateTime — время в DateTimeLayout, "" для нулевого.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(DateTimeLayout)
}

// CellFor форматирует значение колонки col из записи rec.
func CellFor(col entity.Column, rec models.Record) Cell {
	raw := rec.String(col.Key)

	switch col.Format {
	case "image":
		return Cell{Image: raw, Alt: rec.String(col.Alt)}
	case "money":
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return Cell{Text: fallback(raw, col.Fallback)}
		}
		return Cell{Text: Money(d)}
	case "datetime":
		if t, err := models.ParseLocalTime(raw); err == nil {
			return Cell{Text: DateTime(t)}
		}
		return Cell{Text: fallback(raw, col.Fallback)}
	case "status":
		if rec.Bool(col.Key) {
			return Cell{Text: "Active"}
		}
		return Cell{Text: "Inactive", Class: "text-danger"}
	case "bool":
		if rec.Bool(col.Key) {
			return Cell{Text: "true"}
		}
		return Cell{Text: "false", Class: "text-danger"}
	default:
		return Cell{Text: fallback(raw, col.Fallback)}
	}
}

// ItemsOf достаёт состав заказа из записи по ключу key.
func ItemsOf(rec models.Record, key string) []ItemLine {
	raw, ok := rec[key].([]any)
	if !ok {
		return nil
	}

	out := make([]ItemLine, 0, len(raw))
	for _, x := range raw {
		m, ok := x.(map[string]any)
		if !ok {
			continue
		}
		it := models.Record(m)

		price := it.String("productPrice")
		if d, err := decimal.NewFromString(price); err == nil {
			price = Money(d)
		}

		qty := 0
		if n, ok := it["quantity"].(json.Number); ok {
			if v, err := n.Int64(); err == nil {
				qty = int(v)
			}
		}

		out = append(out, ItemLine{
			Name:     it.String("productName"),
			Image:    it.String("imageUrl"),
			Price:    price,
			Quantity: qty,
		})
	}

	return out
}

// OrderItems — то же для типизированного заказа витрины.
func OrderItems(items []models.OrderItem) []ItemLine {
	out := make([]ItemLine, 0, len(items))
	for _, it := range items {
		out = append(out, ItemLine{
			Name:     it.ProductName,
			Image:    it.ImageURL,
			Price:    Money(it.ProductPrice),
			Quantity: it.Quantity,
		})
	}

	return out
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}

	return s
}
