package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Badges shown on product cards.
const (
	BadgeNewIn      = "New In"
	BadgeBestSeller = "Best Seller"
	BadgeOnOffer    = "On Offer"
	BadgeLimited    = "Limited"
)

// Product represents a sellable catalog entry.
type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Badge           string          `json:"badge,omitempty"`
	ImageURL        string          `json:"image_url"`
	Description     string          `json:"description"`
	LongDescription string          `json:"long_description,omitempty"`
	ShippingNote    string          `json:"shipping_note,omitempty"`
	Active          bool            `json:"active"`
}

// Category groups products in the shop.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sort_order"`
}

// CartLine is one product's presence in the active cart.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns price × quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderLine is the snapshot of a cart line taken when the order is created.
// It does not reference the live catalog.
type OrderLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Customer holds the contact and delivery details captured at checkout.
type Customer struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address"`
	City     string `json:"city,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// PaymentMethodMpesa is the only payment method the shop accepts.
const PaymentMethodMpesa = "mpesa"

// Order represents a completed checkout.
type Order struct {
	ID                  string          `json:"id"`
	Code                string          `json:"code"`
	Lines               []OrderLine     `json:"lines"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	DeliveryFee         decimal.Decimal `json:"delivery_fee"`
	Total               decimal.Decimal `json:"total"`
	Customer            Customer        `json:"customer"`
	DeliveryZone        string          `json:"delivery_zone,omitempty"`
	PaymentMethod       string          `json:"payment_method"`
	PaymentReference    string          `json:"payment_reference,omitempty"`
	PaymentConfirmation string          `json:"payment_confirmation,omitempty"`
	Status              OrderStatus     `json:"status"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// OrderDraft is what checkout hands to the order repository. The repository
// assigns the ID, the code and the timestamps.
type OrderDraft struct {
	Lines               []OrderLine
	Subtotal            decimal.Decimal
	DeliveryFee         decimal.Decimal
	Total               decimal.Decimal
	Customer            Customer
	DeliveryZone        string
	PaymentMethod       string
	PaymentConfirmation string
}

// NewsletterSubscriber is a storefront newsletter signup.
type NewsletterSubscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// --- Events ---

// OrderPlaced is emitted when checkout creates an order.
type OrderPlaced struct {
	OrderID  string          `json:"order_id"`
	Code     string          `json:"code"`
	Lines    []OrderLine     `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Phone    string          `json:"phone"`
	PlacedAt time.Time       `json:"placed_at"`
}

func (e OrderPlaced) EventType() string { return "OrderPlaced" }

// OrderStatusChanged is emitted when an operator moves an order along its lifecycle.
type OrderStatusChanged struct {
	OrderID   string      `json:"order_id"`
	Code      string      `json:"code"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changed_at"`
}

func (e OrderStatusChanged) EventType() string { return "OrderStatusChanged" }
