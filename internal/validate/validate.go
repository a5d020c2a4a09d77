// validate — локальная проверка форм до любого сетевого запроса.
//
// Семантика совпадает с ограничениями HTML-форм:
//   - пустое необязательное поле не проверяется дальше;
//   - длины считаются в рунах;
//   - pattern должен совпасть со всем значением;
//   - number — в синтаксисе HTML (без Inf, hex и "_"), с учётом step;
//   - email должен быть адресом.
package validate

import (
	"math"
	"regexp"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pribylovaa/storefront-console/internal/entity"
)

// Values — значения формы по имени поля (первое значение).
type Values interface {
	Get(name string) string
}

// Files — имена полей, для которых пришёл непустой файл.
type Files interface {
	Has(name string) bool
}

// Failure — нарушение ограничения одного поля.
type Failure struct {
	Field   string
	Rule    string
	Message string
}

type Result struct {
	Failures []Failure
}

func (r Result) OK() bool { return len(r.Failures) == 0 }

// Invalid сообщает, провалено ли поле name.
func (r Result) Invalid(name string) bool {
	_, ok := r.Message(name)
	return ok
}

// Message — текст ошибки поля name (первой).
func (r Result) Message(name string) (string, bool) {
	for _, f := range r.Failures {
		if f.Field == name {
			return f.Message, true
		}
	}

	return "", false
}

var (
	once sync.Once
	v    *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() { v = validator.New() })
	return v
}

// Check проверяет значения по спецификациям полей.
// На каждое поле — не больше одной ошибки (первое нарушенное правило).
func Check(fields []entity.FieldSpec, values Values, files Files) Result {
	var res Result

	for _, f := range fields {
		if rule, ok := checkField(f, values, files); !ok {
			msg := f.Feedback
			if msg == "" {
				msg = defaultMessage(f, rule)
			}
			res.Failures = append(res.Failures, Failure{Field: f.Name, Rule: rule, Message: msg})
		}
	}

	return res
}

func checkField(f entity.FieldSpec, values Values, files Files) (string, bool) {
	c := f.Constraints

	switch f.Kind {
	case entity.KindCheckbox:
		// Флажок всегда сериализуется как "true"/"false", проверять нечего.
		return "", true
	case entity.KindFile:
		if c.Required && (files == nil || !files.Has(f.Name)) {
			return "required", false
		}
		return "", true
	}

	raw := values.Get(f.Name)
	if raw == "" {
		if c.Required {
			return "required", false
		}
		return "", true
	}

	n := utf8.RuneCountInString(raw)
	if c.MinLength != nil && n < *c.MinLength {
		return "minLength", false
	}
	if c.MaxLength != nil && n > *c.MaxLength {
		return "maxLength", false
	}

	switch f.Kind {
	case entity.KindEmail:
		if engine().Var(raw, "email") != nil {
			return "email", false
		}
	case entity.KindNumber:
		num, ok := parseNumber(raw)
		if !ok {
			return "number", false
		}
		if c.Min != nil && engine().Var(num, "gte="+formatFloat(*c.Min)) != nil {
			return "min", false
		}
		if c.Max != nil && engine().Var(num, "lte="+formatFloat(*c.Max)) != nil {
			return "max", false
		}
		if !onStep(raw, c) {
			return "step", false
		}
	}

	if re := f.Regexp(); re != nil && !re.MatchString(raw) {
		return "pattern", false
	}

	return "", true
}

// Допустимая запись числа в <input type="number">.
var numberRe = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)

func parseNumber(raw string) (float64, bool) {
	if !numberRe.MatchString(raw) {
		return 0, false
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(num, 0) {
		return 0, false
	}

	return num, true
}

// onStep — значение кратно step от базы min (или 0).
// Пустой step означает 1, "any" снимает проверку.
func onStep(raw string, c entity.Constraints) bool {
	step := decimal.NewFromInt(1)
	switch c.Step {
	case "any":
		return true
	case "":
	default:
		d, err := decimal.NewFromString(c.Step)
		if err != nil || !d.IsPositive() {
			return true
		}
		step = d
	}

	val, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}

	base := decimal.Zero
	if c.Min != nil {
		base = decimal.NewFromFloat(*c.Min)
	}

	return val.Sub(base).Mod(step).IsZero()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func defaultMessage(f entity.FieldSpec, rule string) string {
	label := f.Label
	if label == "" {
		label = f.Name
	}

	switch rule {
	case "required":
		return label + " is required."
	default:
		return label + " is invalid."
	}
}
