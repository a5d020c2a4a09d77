package view

// ProductCard — карточка товара в сетке витрины.
type ProductCard struct {
	ID         int64
	Name       string
	Image      string
	Price      string
	OutOfStock bool
	DetailURL  string
}

type HomeView struct {
	Products []ProductCard
}

func (HomeView) Template() string { return "home" }

// FilterLink — пункт фильтра категорий/брендов каталога.
type FilterLink struct {
	ID       int64
	Label    string
	URL      string
	Selected bool
}

type SortOption struct {
	Value    string
	Label    string
	Selected bool
}

type CatalogView struct {
	Title      string
	Query      string
	Products   []ProductCard
	Categories []FilterLink
	Brands     []FilterLink
	Sorts      []SortOption
	// SortAction и SortHidden — форма смены сортировки с текущими фильтрами.
	SortAction string
	SortHidden []Hidden
	Pager      *Pager
	Alert      *Alert
}

func (CatalogView) Template() string { return "catalog" }

type ProductView struct {
	ID          int64
	Name        string
	Image       string
	Brand       string
	Category    string
	Description string
	Price       string
	Quantity    int
}

func (ProductView) Template() string { return "product" }

type CartLine struct {
	ID          int64
	Name        string
	Image       string
	Price       string
	Quantity    int
	MaxQuantity int
}

type CartView struct {
	Lines []CartLine
	Total string
}

func (CartView) Template() string { return "cart" }

func (c CartView) Empty() bool { return len(c.Lines) == 0 }

type OrderRow struct {
	ID        int64
	Total     string
	Status    string
	CreatedAt string
	UpdatedAt string
	Address   string
	FullName  string
	Phone     string
	Items     []ItemLine
}

type OrdersView struct {
	Orders []OrderRow
}

func (OrdersView) Template() string { return "orders" }

// ProfileView — страница профиля: сведения о пользователе и под-вид справа.
type ProfileView struct {
	Email       string
	FullName    string
	Address     string
	PhoneNumber string
	Alert       *Alert
	Content     Fragment
}

func (ProfileView) Template() string { return "profile" }

// CheckoutView — форма доставки с итогом корзины.
type CheckoutView struct {
	Total string
	Form  FormView
}

func (CheckoutView) Template() string { return "checkout" }

type RegisterView struct {
	Form FormView
}

func (RegisterView) Template() string { return "register" }
