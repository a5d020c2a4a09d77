package controller

import (
	"context"
	"net/url"

	"github.com/pribylovaa/storefront-console/internal/entity"
	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/models"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// RenderList загружает страницу page списка tag в регион.
// Состояние пагинации живёт только в возвращаемом ListView.
func (c *Controller) RenderList(ctx context.Context, region *view.Region, tag string, page int) {
	const op = "controller.RenderList"

	tk := region.Begin()

	d, err := c.reg.Lookup(tag)
	if err != nil {
		region.Commit(tk, view.InvalidType{Tag: tag})
		return
	}

	lv := view.ListView{
		Title:    d.ListTitle(),
		Tag:      d.Tag,
		Headers:  headers(d.Columns),
		HasItems: d.Items != "",
		Empty:    "No " + d.Plural + " found.",
	}

	var rows []models.Record
	if d.Paginated {
		var p models.Page[models.Record]
		err = c.api.GetJSON(ctx, d.ListURL(page), &p)
		rows = p.Content
		if err == nil {
			lv.Pager = view.NewPager(p.Number, p.TotalPages, AdminRoot, url.Values{"type": {d.Tag}})
		}
	} else {
		var list models.Records
		err = c.api.GetJSON(ctx, d.ListURL(page), &list)
		rows = list
	}
	if err != nil {
		logctx.From(ctx).Warn("list_load_failed",
			"op", op,
			"type", d.Tag,
			"page", page,
			"kind", apierrors.KindOf(err).String(),
			"err", err,
		)
		region.Commit(tk, view.Alert{Level: view.LevelDanger, Message: "Error loading data: " + apierrors.Detail(err)})
		return
	}

	lv.Rows = buildRows(d.Tag, d.Columns, d.Items, rows)
	region.Commit(tk, lv)
}

func headers(cols []entity.Column) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		out = append(out, col.Label)
	}

	return out
}

// buildRows — строки таблицы; link — тег карточки, на которую ведёт строка.
func buildRows(link string, cols []entity.Column, itemsKey string, recs []models.Record) []view.Row {
	out := make([]view.Row, 0, len(recs))
	for _, rec := range recs {
		id, _ := rec.ID()

		row := view.Row{ID: id, Link: ManagePath(link, id)}
		for _, col := range cols {
			row.Cells = append(row.Cells, view.CellFor(col, rec))
		}
		if itemsKey != "" {
			row.Items = view.ItemsOf(rec, itemsKey)
		}

		out = append(out, row)
	}

	return out
}
