package view

// Уровни Alert (классы bootstrap).
const (
	LevelSuccess = "success"
	LevelDanger  = "danger"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Alert — инлайн-сообщение в регионе.
type Alert struct {
	Level   string
	Title   string
	Message string
	// Link — необязательная ссылка действия (например, на /login).
	Link      string
	LinkLabel string
}

func (Alert) Template() string { return "alert" }

// InvalidType — явное состояние "неизвестный тип" вместо исключения.
type InvalidType struct {
	Tag string
}

func (InvalidType) Template() string { return "invalid_type" }

func (InvalidType) Message() string { return "Invalid type provided." }

// Cell — отформатированное значение колонки.
type Cell struct {
	Text  string
	Image string
	Alt   string
	Class string
}

// ItemLine — строка состава заказа.
type ItemLine struct {
	Name     string
	Image    string
	Price    string
	Quantity int
}

type Row struct {
	ID    int64
	Link  string
	Cells []Cell
	Items []ItemLine
}

// ListView — таблица записей одного типа.
type ListView struct {
	Title   string
	Tag     string
	Headers []string
	Rows    []Row
	Pager   *Pager
	// HasItems — у строк есть раскрываемый состав (заказы).
	HasItems bool
	Empty    string
}

func (ListView) Template() string { return "list" }

// Span — ширина таблицы в колонках, включая "Actions".
func (l ListView) Span() int { return len(l.Headers) + 1 }

type DetailField struct {
	Label string
	Cell  Cell
}

// DetailView — карточка записи; Edit и Delete присутствуют всегда.
type DetailView struct {
	Header    string
	Tag       string
	ID        int64
	Fields    []DetailField
	EditURL   string
	DeleteURL string
	// History — вложенное под-представление (заказы клиента), nil если нет.
	HistoryTitle string
	History      Fragment
}

func (DetailView) Template() string { return "detail" }

type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// FormField — поле формы с атрибутами ограничений и состоянием проверки.
type FormField struct {
	Name        string
	Label       string
	Kind        string
	Value       string
	Checked     bool
	Placeholder string
	Options     []OptionView
	// OptionsURL — адрес асинхронной подгрузки опций select.
	OptionsURL string

	Required  bool
	MinLength string
	MaxLength string
	Min       string
	Max       string
	Step      string
	Pattern   string

	Invalid  bool
	Feedback string
}

// FormView — форма создания/редактирования.
// Validated соответствует визуальному состоянию "was-validated".
type FormView struct {
	Title     string
	Action    string
	Multipart bool
	Fields    []FormField
	Validated bool
	Alert     *Alert
	Submit    string
	CancelURL string
}

func (FormView) Template() string { return "form" }

// OptionsView — фрагмент <option> для асинхронной подгрузки select.
type OptionsView struct {
	Placeholder string
	Options     []OptionView
}

func (OptionsView) Template() string { return "options" }

type Hidden struct {
	Name  string
	Value string
}

// Confirm — подтверждение разрушающего действия.
type Confirm struct {
	Title     string
	Message   string
	Action    string
	Hidden    []Hidden
	Submit    string
	CancelURL string
}

func (Confirm) Template() string { return "confirm" }

// AdminInfoView — профиль текущего администратора.
type AdminInfoView struct {
	Email       string
	FullName    string
	Address     string
	PhoneNumber string
}

func (AdminInfoView) Template() string { return "admin_info" }
