package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle stage of a purchase.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderDelivered  OrderStatus = "delivered" // terminal
)

// PaymentStatus tracks payment settlement independently of fulfilment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// statusTransitions is the allow-list for order status changes. A target
// status not listed under the current one is rejected; delivered is terminal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing},
	OrderProcessing: {OrderDelivered},
	OrderDelivered:  {},
}

// CanTransition reports whether from → to is an allowed status change.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsOrderStatus reports whether s names a known status.
func IsOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPending, OrderProcessing, OrderDelivered:
		return true
	}
	return false
}

// OrderItem is a snapshot of one purchased line: the product reference plus
// the quantity and unit price at the moment of checkout. Name is populated
// from the product for display and is not authoritative.
type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Name     string             `bson:"name,omitempty" json:"name,omitempty"`
	Quantity int                `bson:"quantity" json:"quantity"`
	Price    float64            `bson:"price" json:"price"`
}

// ShippingAddress is embedded in the order; it never references the user
// document again after checkout.
type ShippingAddress struct {
	House      string `bson:"house" json:"house"`
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	State      string `bson:"state" json:"state"`
	PostalCode string `bson:"postalCode" json:"postalCode"`
	Country    string `bson:"country" json:"country"`
}

// Order is an immutable snapshot of a purchase. Only the status fields are
// mutated after creation, and only through the transition allow-list.
type Order struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User primitive.ObjectID `bson:"user" json:"user"`

	Items           []OrderItem     `bson:"items" json:"items"`
	ShippingAddress ShippingAddress `bson:"shippingAddress" json:"shippingAddress"`
	CustomerContact string          `bson:"customerContact" json:"customerContact"`

	PaymentMethod string        `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	OrderStatus   OrderStatus   `bson:"orderStatus" json:"orderStatus"`

	Subtotal    float64 `bson:"subtotal" json:"subtotal"`
	ShippingFee float64 `bson:"shippingFee" json:"shippingFee"`
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ComputeTotals recalculates subtotal and totalAmount from the items.
// Call before persisting whenever items change.
func (o *Order) ComputeTotals() {
	subtotal := 0.0
	for _, item := range o.Items {
		subtotal += item.Price * float64(item.Quantity)
	}
	o.Subtotal = subtotal
	o.TotalAmount = subtotal + o.ShippingFee
}
