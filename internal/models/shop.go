package models

import "github.com/shopspring/decimal"

// Product — карточка товара витрины (/home/get, /home/getAllProducts).
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CategoryID  int64           `json:"categoryId"`
	BrandID     int64           `json:"brandId"`
	ImageURL    string          `json:"imageUrl"`
	Popularity  int             `json:"popularity"`
	IsActive    bool            `json:"isActive"`
}

func (p Product) OutOfStock() bool { return p.Quantity < 1 }

// ProductInfo — товар с именами категории и бренда (/home/product/{id}).
type ProductInfo struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	CategoryName string          `json:"categoryName"`
	BrandName    string          `json:"brandName"`
	ImageURL     string          `json:"imageUrl"`
	Popularity   int             `json:"popularity"`
	IsActive     bool            `json:"isActive"`
}

type CartItem struct {
	ID       int64           `json:"id"`
	CartID   int64           `json:"cartId"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// LineTotal — цена товара, умноженная на количество.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"orderId"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ImageURL     string          `json:"imageUrl"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

// Order — заказ покупателя (/customer/orders).
type Order struct {
	ID                  int64           `json:"id"`
	CustomerEmail       string          `json:"customerEmail"`
	Status              string          `json:"status"`
	TotalPrice          decimal.Decimal `json:"totalPrice"`
	CreatedAt           LocalTime       `json:"createdAt"`
	UpdatedAt           LocalTime       `json:"updatedAt"`
	OrderItems          []OrderItem     `json:"orderItems"`
	DeliveryFullName    string          `json:"deliveryFullName"`
	DeliveryAddress     string          `json:"deliveryAddress"`
	DeliveryPhoneNumber string          `json:"deliveryPhoneNumber"`
}

// CustomerInfo — профиль текущего пользователя (/customer/info, /admin/info).
type CustomerInfo struct {
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

const RoleAdmin = "ROLE_ADMIN"

// UserInfo — ответ /api/user/info.
type UserInfo struct {
	Authenticated bool     `json:"authenticated"`
	Roles         []string `json:"roles"`
}

func (u UserInfo) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin {
			return true
		}
	}

	return false
}
