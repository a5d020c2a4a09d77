package controller

import (
	"context"
	"net/http"

	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Delete удаляет запись id после подтверждения.
// Без подтверждения в регион пишется Confirm и сети нет.
func (c *Controller) Delete(ctx context.Context, region *view.Region, tag string, id int64, confirmed bool) Outcome {
	const op = "controller.Delete"

	tk := region.Begin()

	d, err := c.reg.Lookup(tag)
	if err != nil {
		region.Commit(tk, view.InvalidType{Tag: tag})
		return Outcome{}
	}

	name := normTag(tag)

	if !confirmed {
		region.Commit(tk, view.Confirm{
			Title:     "Delete " + view.Capitalize(name),
			Message:   "Are you sure you want to delete this " + name + "?",
			Action:    DeletePath(name, id),
			Submit:    "Delete",
			CancelURL: ManagePath(d.Tag, id),
		})
		return Outcome{}
	}

	_, err = c.api.Send(ctx, http.MethodDelete, d.DeleteURL(id), upstream.Payload{})
	if err == nil {
		logctx.From(ctx).Info("entity_deleted", "op", op, "type", d.Tag, "id", id)
		return Outcome{
			State:    StateSucceeded,
			Redirect: AdminRoot,
			Flash:    success(view.Capitalize(name) + " deleted successfully!"),
		}
	}

	logctx.From(ctx).Warn("entity_delete_failed",
		"op", op,
		"type", d.Tag,
		"id", id,
		"kind", apierrors.KindOf(err).String(),
		"err", err,
	)

	msg := "Failed to delete " + name + ": " + apierrors.Detail(err)
	if apierrors.KindOf(err) == apierrors.NetworkFailure {
		msg = "An error occurred while deleting the " + name + "."
	}

	return Outcome{State: StateFailed, Redirect: ManagePath(d.Tag, id), Flash: danger(msg)}
}
