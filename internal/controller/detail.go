package controller

import (
	"context"

	"golang.org/x/sync/errgroup"

	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/models"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// RenderDetail загружает карточку записи id.
// Если у типа есть вложенная история (заказы клиента), она грузится
// параллельно с записью; её ошибка не мешает показать карточку.
func (c *Controller) RenderDetail(ctx context.Context, region *view.Region, tag string, id int64) {
	const op = "controller.RenderDetail"

	tk := region.Begin()

	d, err := c.reg.Lookup(tag)
	if err != nil {
		region.Commit(tk, view.InvalidType{Tag: tag})
		return
	}

	var (
		rec     models.Record
		history []models.Record
		histErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.api.GetJSON(gctx, d.DetailURL(id), &rec)
	})
	if d.History != nil {
		g.Go(func() error {
			var list models.Records
			histErr = c.api.GetJSON(gctx, d.History.URL(id), &list)
			history = list
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logctx.From(ctx).Warn("detail_load_failed",
			"op", op,
			"type", d.Tag,
			"id", id,
			"kind", apierrors.KindOf(err).String(),
			"err", err,
		)
		region.Commit(tk, view.Alert{Level: view.LevelDanger, Message: "Error loading details: " + apierrors.Detail(err)})
		return
	}

	dv := view.DetailView{
		Header:    d.DetailsHeader(),
		Tag:       d.Tag,
		ID:        id,
		EditURL:   EditPath(d.Tag, id),
		DeleteURL: DeletePath(d.Tag, id),
	}
	for _, col := range d.Details {
		dv.Fields = append(dv.Fields, view.DetailField{Label: col.Label, Cell: view.CellFor(col, rec)})
	}

	if h := d.History; h != nil {
		dv.HistoryTitle = h.Title
		if histErr != nil {
			logctx.From(ctx).Warn("history_load_failed", "op", op, "id", id, "err", histErr)
			dv.History = view.Alert{Level: view.LevelDanger, Message: "Error loading orders: " + apierrors.Detail(histErr)}
		} else {
			dv.History = view.ListView{
				Headers:  headers(h.Columns),
				Rows:     buildRows(h.Link, h.Columns, h.Items, history),
				HasItems: h.Items != "",
				Empty:    "No orders found.",
			}
		}
	}

	region.Commit(tk, dv)
}
