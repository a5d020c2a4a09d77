package controller

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pribylovaa/storefront-console/internal/entity"
	apierrors "github.com/pribylovaa/storefront-console/internal/errors"
	"github.com/pribylovaa/storefront-console/internal/models"
	logctx "github.com/pribylovaa/storefront-console/internal/pkg/log"
	"github.com/pribylovaa/storefront-console/internal/upstream"
	"github.com/pribylovaa/storefront-console/internal/validate"
	"github.com/pribylovaa/storefront-console/internal/view"
)

// Submission — отправленная форма: текстовые значения и файлы.
type Submission struct {
	Values url.Values
	Files  map[string]upstream.File
}

func (s Submission) Get(name string) string { return s.Values.Get(name) }

// Has — пришёл ли непустой файл поля name.
func (s Submission) Has(name string) bool {
	f, ok := s.Files[name]
	return ok && len(f.Data) > 0
}

// Checked — отмечен ли чекбокс. Неотмеченный чекбокс браузер не присылает.
func (s Submission) Checked(name string) bool {
	switch strings.ToLower(s.Values.Get(name)) {
	case "true", "on", "1":
		return true
	default:
		return false
	}
}

// OptionsPath — адрес асинхронной подгрузки опций поля.
func OptionsPath(tag, field string, mode entity.Mode, selected, value string) string {
	q := url.Values{"type": {tag}, "field": {field}, "mode": {string(mode)}}
	if selected != "" {
		q.Set("selected", selected)
	}
	if value != "" {
		q.Set("value", value)
	}

	return AdminRoot + "/options?" + q.Encode()
}

// RenderForm рендерит форму создания (id == 0) или редактирования записи id.
func (c *Controller) RenderForm(ctx context.Context, region *view.Region, tag string, id int64) {
	const op = "controller.RenderForm"

	tk := region.Begin()

	d, mode, ok := c.formDescriptor(tag, id)
	if !ok {
		region.Commit(tk, view.InvalidType{Tag: tag})
		return
	}

	if mode == entity.ModeCreate {
		region.Commit(tk, formView(d, tag, id, mode, nil, validate.Result{}, false))
		return
	}

	var rec models.Record
	if err := c.api.GetJSON(ctx, d.DetailURL(id), &rec); err != nil {
		logctx.From(ctx).Warn("form_load_failed",
			"op", op,
			"type", d.Tag,
			"id", id,
			"kind", apierrors.KindOf(err).String(),
			"err", err,
		)
		region.Commit(tk, view.Alert{Level: view.LevelDanger, Message: "Error loading details: " + apierrors.Detail(err)})
		return
	}

	region.Commit(tk, formView(d, tag, id, mode, recordSource{rec}, validate.Result{}, false))
}

// RenderOptions отдаёт опции select-поля field.
// Выбранная опция определяется по отображаемому имени selected, а если
// его нет, по значению value (повторный показ отправленной формы).
// Две опции с одинаковым именем неразличимы: выбирается каждая совпавшая.
func (c *Controller) RenderOptions(ctx context.Context, region *view.Region, tag, field string, mode entity.Mode, selected, value string) {
	const op = "controller.RenderOptions"

	tk := region.Begin()

	d, err := c.reg.Lookup(tag)
	if err != nil {
		region.Commit(tk, view.InvalidType{Tag: tag})
		return
	}

	f, ok := d.Field(field, mode)
	if !ok || f.Kind != entity.KindSelect {
		region.Commit(tk, view.OptionsView{})
		return
	}

	ov := view.OptionsView{Placeholder: f.Placeholder}
	match := func(v, label string) bool {
		if selected != "" {
			return label == selected
		}
		return value != "" && v == value
	}

	switch f.OptionsKind {
	case entity.OptionsStatic:
		for _, o := range f.Static {
			ov.Options = append(ov.Options, view.OptionView{Value: o.Value, Label: o.Label, Selected: match(o.Value, o.Label)})
		}

	case entity.OptionsValues:
		var list []string
		if err := c.api.GetJSON(ctx, f.OptionsSource, &list); err != nil {
			logctx.From(ctx).Warn("options_load_failed", "op", op, "source", f.OptionsSource, "err", err)
			break
		}
		for _, v := range list {
			ov.Options = append(ov.Options, view.OptionView{Value: v, Label: v, Selected: match(v, v)})
		}

	default:
		var list []models.Named
		if err := c.api.GetJSON(ctx, f.OptionsSource, &list); err != nil {
			logctx.From(ctx).Warn("options_load_failed", "op", op, "source", f.OptionsSource, "err", err)
			break
		}
		for _, n := range list {
			v := strconv.FormatInt(n.ID, 10)
			ov.Options = append(ov.Options, view.OptionView{Value: v, Label: n.Name, Selected: match(v, n.Name)})
		}
	}

	region.Commit(tk, ov)
}

// Submit проводит форму через машину состояний:
// проверка -> (Invalid без сети) | отправка -> Succeeded | Failed.
// id == 0 — создание, иначе редактирование записи id.
func (c *Controller) Submit(ctx context.Context, region *view.Region, tag string, id int64, sub Submission) Outcome {
	const op = "controller.Submit"

	tk := region.Begin()

	d, mode, ok := c.formDescriptor(tag, id)
	if !ok {
		region.Commit(tk, view.InvalidType{Tag: tag})
		return Outcome{State: StateUnsubmitted}
	}

	// Атрибуты формы попадают и в логи транспорта апстрима.
	ctx, log := logctx.With(ctx, "op", op, "type", d.Tag, "mode", string(mode))
	fields := d.FieldsFor(mode)

	res := validate.Check(fields, sub, sub)
	if !res.OK() {
		log.Debug("form_invalid", "failures", len(res.Failures))
		region.Commit(tk, formView(d, tag, id, mode, submissionSource{sub}, res, true))
		return Outcome{State: StateInvalid}
	}

	payload := Payload(fields, sub)
	name := normTag(tag)

	var err error
	if mode == entity.ModeCreate {
		_, err = c.api.Send(ctx, http.MethodPost, d.CreateURL(), payload)
	} else {
		_, err = c.api.Send(ctx, http.MethodPut, d.UpdateURL(id, d.UpdateParams(sub.Get)), payload)
	}

	fv := formView(d, tag, id, mode, submissionSource{sub}, validate.Result{}, false)

	if err != nil {
		log.Warn("form_submit_failed", "kind", apierrors.KindOf(err).String(), "err", err)
		fv.Alert = danger(submitFailure(mode, name, err))
		region.Commit(tk, fv)
		return Outcome{State: StateFailed}
	}

	if mode == entity.ModeCreate {
		log.Info("entity_created")
		return Outcome{
			State:    StateSucceeded,
			Redirect: AdminRoot,
			Flash:    success(view.Capitalize(name) + " added successfully!"),
		}
	}

	log.Info("entity_updated", "id", id)
	fv.Alert = success("Updated successfully")
	region.Commit(tk, fv)
	return Outcome{State: StateSucceeded}
}

func submitFailure(mode entity.Mode, name string, err error) string {
	network := apierrors.KindOf(err) == apierrors.NetworkFailure

	switch {
	case mode == entity.ModeCreate && network:
		return "An error occurred while adding the " + name + "."
	case mode == entity.ModeCreate:
		return "Failed to add " + name + ": " + apierrors.Detail(err)
	case network:
		return "An error occurred: " + apierrors.Detail(err)
	default:
		return "Failed: " + apierrors.Detail(err)
	}
}

// Payload собирает тело запроса из полей формы в порядке объявления.
// Каждый чекбокс даёт ровно одно значение "true" или "false".
func Payload(fields []entity.FieldSpec, sub Submission) upstream.Payload {
	var (
		out   []upstream.Field
		files []upstream.File
	)

	for _, f := range fields {
		switch f.Kind {
		case entity.KindFile:
			if file, ok := sub.Files[f.Name]; ok && len(file.Data) > 0 {
				file.Field = f.Name
				files = append(files, file)
			}
		case entity.KindCheckbox:
			out = append(out, upstream.Field{Name: f.Name, Value: strconv.FormatBool(sub.Checked(f.Name))})
		default:
			out = append(out, upstream.Field{Name: f.Name, Value: sub.Get(f.Name)})
		}
	}

	return upstream.Multipart(out, files...)
}

func (c *Controller) formDescriptor(tag string, id int64) (*entity.Descriptor, entity.Mode, bool) {
	d, err := c.reg.Lookup(tag)
	if err != nil {
		return nil, "", false
	}

	if id == 0 {
		if !d.Creatable {
			return nil, "", false
		}
		return d, entity.ModeCreate, true
	}

	return d, entity.ModeEdit, true
}

// fieldSource — откуда форма берёт значения полей.
type fieldSource interface {
	value(f entity.FieldSpec) string
	checked(f entity.FieldSpec) bool
	selectedName(f entity.FieldSpec) string
}

type recordSource struct{ rec models.Record }

func (s recordSource) value(f entity.FieldSpec) string {
	if f.Kind == entity.KindPassword || f.Kind == entity.KindFile {
		return ""
	}

	return s.rec.String(f.SourceKey())
}

func (s recordSource) checked(f entity.FieldSpec) bool { return s.rec.Bool(f.SourceKey()) }

func (s recordSource) selectedName(f entity.FieldSpec) string {
	if f.SelectedBy == "" {
		return ""
	}

	return s.rec.String(f.SelectedBy)
}

type submissionSource struct{ sub Submission }

func (s submissionSource) value(f entity.FieldSpec) string {
	if f.Kind == entity.KindFile {
		return ""
	}

	return s.sub.Get(f.Name)
}

func (s submissionSource) checked(f entity.FieldSpec) bool { return s.sub.Checked(f.Name) }

func (submissionSource) selectedName(entity.FieldSpec) string { return "" }

func formView(d *entity.Descriptor, tag string, id int64, mode entity.Mode, src fieldSource, res validate.Result, validated bool) view.FormView {
	name := normTag(tag)

	fv := view.FormView{
		Multipart: true,
		Validated: validated,
	}
	if mode == entity.ModeCreate {
		fv.Title = "Add " + d.Title
		fv.Action = CreatePath(name)
		fv.Submit = "Add " + d.Title
		fv.CancelURL = ListPath(d.Tag)
	} else {
		fv.Title = "Edit " + d.Title
		fv.Action = EditPath(name, id)
		fv.Submit = "Save Changes"
		fv.CancelURL = ManagePath(d.Tag, id)
	}

	for _, f := range d.FieldsFor(mode) {
		ff := FormField(f)

		var value, selected string
		if src != nil {
			value = src.value(f)
			selected = src.selectedName(f)
			ff.Checked = src.checked(f)
		}
		ff.Value = value

		if f.Kind == entity.KindSelect {
			ff.Options, ff.OptionsURL = selectOptions(d.Tag, f, mode, selected, value)
		}

		if msg, bad := res.Message(f.Name); bad {
			ff.Invalid = true
			ff.Feedback = msg
		}

		fv.Fields = append(fv.Fields, ff)
	}

	return fv
}

// selectOptions — начальные опции select. Статические рендерятся сразу,
// остальные подгружаются по OptionsURL; текущее значение сохраняется
// отдельной опцией, чтобы форма без подгрузки отправила его же.
func selectOptions(tag string, f entity.FieldSpec, mode entity.Mode, selected, value string) ([]view.OptionView, string) {
	if f.OptionsKind == entity.OptionsStatic {
		out := make([]view.OptionView, 0, len(f.Static))
		for _, o := range f.Static {
			out = append(out, view.OptionView{Value: o.Value, Label: o.Label, Selected: o.Value == value})
		}
		return out, ""
	}

	var out []view.OptionView
	if value != "" {
		label := selected
		if label == "" {
			label = value
		}
		out = append(out, view.OptionView{Value: value, Label: label, Selected: true})
	}

	return out, OptionsPath(tag, f.Name, mode, selected, value)
}

// FormField переносит ограничения поля в атрибуты HTML-формы.
func FormField(f entity.FieldSpec) view.FormField {
	c := f.Constraints

	ff := view.FormField{
		Name:        f.Name,
		Label:       f.Label,
		Kind:        string(f.Kind),
		Placeholder: f.Placeholder,
		Required:    c.Required,
		Step:        c.Step,
		Pattern:     c.Pattern,
		Feedback:    f.Feedback,
	}
	if c.MinLength != nil {
		ff.MinLength = strconv.Itoa(*c.MinLength)
	}
	if c.MaxLength != nil {
		ff.MaxLength = strconv.Itoa(*c.MaxLength)
	}
	if c.Min != nil {
		ff.Min = strconv.FormatFloat(*c.Min, 'f', -1, 64)
	}
	if c.Max != nil {
		ff.Max = strconv.FormatFloat(*c.Max, 'f', -1, 64)
	}

	return ff
}
