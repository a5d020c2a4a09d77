// entity — реестр дескрипторов сущностей админки.
//
// Дескриптор описывает для одного тега типа (product, customer, ...) эндпоинты
// REST API, колонки списка, поля карточки и поля формы с ограничениями.
// Реестр собирается один раз при старте из встроенного entities.yaml и дальше
// только читается, поэтому безопасен для конкурентного использования.
package entity

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed entities.yaml
var defaultTable []byte

var (
	ErrUnknownType = errors.New("unknown entity type")
	ErrUnknownForm = errors.New("unknown form")
)

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindNumber   Kind = "number"
	KindEmail    Kind = "email"
	KindPassword Kind = "password"
	KindTel      Kind = "tel"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindFile     Kind = "file"
)

func (k Kind) valid() bool {
	switch k {
	case KindText, KindTextarea, KindNumber, KindEmail, KindPassword,
		KindTel, KindSelect, KindCheckbox, KindFile:
		return true
	}

	return false
}

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// OptionsKind — форма ответа источника опций select.
type OptionsKind string

const (
	// OptionsEntities — [{id, name}].
	OptionsEntities OptionsKind = "entities"
	// OptionsValues — ["NEW", "SHIPPED", ...].
	OptionsValues OptionsKind = "values"
	// OptionsStatic — опции зашиты в дескриптор.
	OptionsStatic OptionsKind = "static"
)

// Constraints — декларативные ограничения поля (семантика HTML-форм).
// Pattern задаётся без якорей: при проверке он обязан совпасть целиком.
type Constraints struct {
	Required  bool     `yaml:"required"`
	MinLength *int     `yaml:"minLength"`
	MaxLength *int     `yaml:"maxLength"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	Step      string   `yaml:"step"`
	Pattern   string   `yaml:"pattern"`
}

type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type FieldSpec struct {
	Name        string      `yaml:"name"`
	Label       string      `yaml:"label"`
	Kind        Kind        `yaml:"kind"`
	Constraints Constraints `yaml:"constraints"`
	Feedback    string      `yaml:"feedback"`
	Placeholder string      `yaml:"placeholder"`

	OptionsSource string      `yaml:"options_source"`
	OptionsKind   OptionsKind `yaml:"options_kind"`
	Static        []Option    `yaml:"static"`
	// SelectedBy — ключ записи с отображаемым значением выбранной опции
	// (categoryName для categoryId). Сопоставление идёт по имени, не по id.
	SelectedBy string `yaml:"selected_by"`

	// Source — ключ записи для предзаполнения; по умолчанию Name.
	Source string `yaml:"source"`
	Modes  []Mode `yaml:"modes"`

	re *regexp.Regexp
}

// In сообщает, участвует ли поле в форме режима m (пустой Modes — во всех).
func (f FieldSpec) In(m Mode) bool {
	if len(f.Modes) == 0 {
		return true
	}

	for _, x := range f.Modes {
		if x == m {
			return true
		}
	}

	return false
}

// SourceKey — ключ записи, из которого берётся значение при редактировании.
func (f FieldSpec) SourceKey() string {
	if f.Source != "" {
		return f.Source
	}

	return f.Name
}

// Regexp — скомпилированный якорный шаблон или nil.
func (f FieldSpec) Regexp() *regexp.Regexp { return f.re }

// Column — колонка списка или строка карточки.
type Column struct {
	Key      string `yaml:"key"`
	Label    string `yaml:"label"`
	Format   string `yaml:"format"` // text|money|datetime|bool|status|image
	Fallback string `yaml:"fallback"`
	Alt      string `yaml:"alt"`
}

// QueryParam — поле формы, дублируемое в query-строку URL обновления.
type QueryParam struct {
	Param string `yaml:"param"`
	Field string `yaml:"field"`
}

// History — вложенный под-список в карточке (заказы клиента).
type History struct {
	Title   string   `yaml:"title"`
	Path    string   `yaml:"path"`
	Param   string   `yaml:"param"`
	Link    string   `yaml:"link"`
	Items   string   `yaml:"items"`
	Columns []Column `yaml:"columns"`
}

// URL под-списка для записи id.
func (h History) URL(id int64) string {
	return h.Path + "?" + url.Values{h.Param: {strconv.FormatInt(id, 10)}}.Encode()
}

type Descriptor struct {
	Tag         string       `yaml:"tag"`
	Aliases     []string     `yaml:"aliases"`
	Title       string       `yaml:"title"`
	Plural      string       `yaml:"plural"`
	DetailTitle string       `yaml:"detail_title"`
	Base        string       `yaml:"base"`
	Paginated   bool         `yaml:"paginated"`
	Creatable   bool         `yaml:"creatable"`
	Items       string       `yaml:"items"`
	Columns     []Column     `yaml:"columns"`
	Details     []Column     `yaml:"details"`
	Fields      []FieldSpec  `yaml:"fields"`
	UpdateQuery []QueryParam `yaml:"update_query"`
	History     *History     `yaml:"history"`
}

func (d *Descriptor) ListURL(page int) string {
	if !d.Paginated {
		return d.Base
	}
	if page < 0 {
		page = 0
	}

	return d.Base + "?page=" + strconv.Itoa(page)
}

func (d *Descriptor) DetailURL(id int64) string {
	return d.Base + "/" + strconv.FormatInt(id, 10)
}

func (d *Descriptor) CreateURL() string { return d.Base }

// UpdateURL — URL обновления; extra добавляется query-строкой.
func (d *Descriptor) UpdateURL(id int64, extra url.Values) string {
	u := d.DetailURL(id)
	if len(extra) > 0 {
		u += "?" + extra.Encode()
	}

	return u
}

func (d *Descriptor) DeleteURL(id int64) string { return d.DetailURL(id) }

// UpdateParams собирает query-параметры обновления из значений формы.
func (d *Descriptor) UpdateParams(get func(name string) string) url.Values {
	if len(d.UpdateQuery) == 0 {
		return nil
	}

	out := make(url.Values, len(d.UpdateQuery))
	for _, q := range d.UpdateQuery {
		out.Set(q.Param, get(q.Field))
	}

	return out
}

// FieldsFor — поля формы режима m в порядке объявления.
func (d *Descriptor) FieldsFor(m Mode) []FieldSpec {
	return fieldsFor(d.Fields, m)
}

// Field — спецификация поля name в режиме m.
func (d *Descriptor) Field(name string, m Mode) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name && f.In(m) {
			return f, true
		}
	}

	return FieldSpec{}, false
}

func (d *Descriptor) ListTitle() string { return d.Plural + " List" }

func (d *Descriptor) DetailsHeader() string {
	if d.DetailTitle != "" {
		return d.DetailTitle
	}

	return d.Title + " Details"
}

// Form — отдельная форма витрины (регистрация, профиль, доставка).
type Form struct {
	Name   string      `yaml:"name"`
	Title  string      `yaml:"title"`
	Method string      `yaml:"method"`
	Path   string      `yaml:"path"`
	Fields []FieldSpec `yaml:"fields"`
}

func fieldsFor(all []FieldSpec, m Mode) []FieldSpec {
	out := make([]FieldSpec, 0, len(all))
	for _, f := range all {
		if f.In(m) {
			out = append(out, f)
		}
	}

	return out
}

type table struct {
	Entities []*Descriptor `yaml:"entities"`
	Forms    []*Form       `yaml:"forms"`
}

// Registry — неизменяемый реестр дескрипторов.
type Registry struct {
	byTag map[string]*Descriptor
	order []*Descriptor
	forms map[string]*Form
}

// Default — реестр из встроенной таблицы.
func Default() (*Registry, error) {
	return Load(defaultTable)
}

// MustDefault — паника при битой встроенной таблице.
func MustDefault() *Registry {
	r, err := Default()
	if err != nil {
		panic(err)
	}

	return r
}

// Load разбирает и проверяет таблицу дескрипторов.
func Load(data []byte) (*Registry, error) {
	const op = "entity.Load"

	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r := &Registry{
		byTag: make(map[string]*Descriptor, len(t.Entities)*2),
		forms: make(map[string]*Form, len(t.Forms)),
	}

	for _, d := range t.Entities {
		if d.Tag == "" || d.Base == "" {
			return nil, fmt.Errorf("%s: descriptor %q: tag and base are required", op, d.Tag)
		}
		if !strings.HasPrefix(d.Base, "/") {
			return nil, fmt.Errorf("%s: descriptor %q: base must start with /", op, d.Tag)
		}

		for _, key := range append([]string{d.Tag}, d.Aliases...) {
			if _, dup := r.byTag[key]; dup {
				return nil, fmt.Errorf("%s: duplicate tag %q", op, key)
			}
			r.byTag[key] = d
		}

		if err := compileFields(d.Fields); err != nil {
			return nil, fmt.Errorf("%s: descriptor %q: %w", op, d.Tag, err)
		}

		r.order = append(r.order, d)
	}

	for _, f := range t.Forms {
		if f.Name == "" || f.Path == "" {
			return nil, fmt.Errorf("%s: form %q: name and path are required", op, f.Name)
		}
		if _, dup := r.forms[f.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate form %q", op, f.Name)
		}
		if err := compileFields(f.Fields); err != nil {
			return nil, fmt.Errorf("%s: form %q: %w", op, f.Name, err)
		}

		r.forms[f.Name] = f
	}

	return r, nil
}

func compileFields(fields []FieldSpec) error {
	for i := range fields {
		f := &fields[i]

		if f.Name == "" {
			return fmt.Errorf("field #%d: empty name", i)
		}
		if !f.Kind.valid() {
			return fmt.Errorf("field %q: unknown kind %q", f.Name, f.Kind)
		}
		if f.Kind == KindSelect && f.OptionsKind == "" {
			return fmt.Errorf("field %q: select without options_kind", f.Name)
		}
		if f.OptionsKind != "" && f.OptionsKind != OptionsStatic && f.OptionsSource == "" {
			return fmt.Errorf("field %q: options_source is required for %s", f.Name, f.OptionsKind)
		}

		if p := f.Constraints.Pattern; p != "" {
			re, err := regexp.Compile("^(?:" + p + ")$")
			if err != nil {
				return fmt.Errorf("field %q: pattern: %w", f.Name, err)
			}
			f.re = re
		}
	}

	return nil
}

// Lookup разрешает тег или его алиас.
func (r *Registry) Lookup(tag string) (*Descriptor, error) {
	d, ok := r.byTag[strings.ToLower(strings.TrimSpace(tag))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, tag)
	}

	return d, nil
}

// All — дескрипторы в порядке объявления (для навигации админки).
func (r *Registry) All() []*Descriptor {
	out := make([]*Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Form(name string) (*Form, error) {
	f, ok := r.forms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownForm, name)
	}

	return f, nil
}
