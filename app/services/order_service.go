package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/app/repositories"
	"github.com/fusionfit/storefront/pkg/apperr"
	"github.com/fusionfit/storefront/pkg/database"
	"github.com/fusionfit/storefront/pkg/event"
	"github.com/fusionfit/storefront/pkg/metrics"
)

// OrderService implements checkout and the order status machine.
type OrderService struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository

	// txn runs fn inside a Mongo transaction; swapped out in tests.
	txn func(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error)
}

func NewOrderService(orders repositories.OrderRepository, products repositories.ProductRepository) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
		txn:      database.WithTransaction,
	}
}

// OrderItemInput is one checkout line.
type OrderItemInput struct {
	ProductID string  `json:"product"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// CreateOrderInput is the validated checkout payload.
type CreateOrderInput struct {
	Items           []OrderItemInput       `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	ShippingFee     float64                `json:"shippingFee"`
	CustomerContact string                 `json:"customerContact"`
}

func (in *CreateOrderInput) validate() error {
	if len(in.Items) == 0 {
		return apperr.BadRequest("Order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return apperr.BadRequest("Item quantity must be at least 1")
		}
		if item.Price < 0 {
			return apperr.BadRequest("Item price cannot be negative")
		}
	}
	if in.PaymentMethod != models.PaymentMethodCash && in.PaymentMethod != models.PaymentMethodCard {
		return apperr.BadRequest("Payment method must be cash or card")
	}
	if in.ShippingFee < 0 {
		return apperr.BadRequest("Shipping fee cannot be negative")
	}
	if in.CustomerContact == "" {
		return apperr.BadRequest("Customer contact is required")
	}
	return nil
}

// Create places an order: inside one transaction the order is inserted in
// pending status with recomputed totals, and every product's stock is
// decremented with a stock >= quantity guard. A failed guard aborts the
// whole transaction; nothing is visible on failure.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, in CreateOrderInput) (*models.Order, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, len(in.Items))
	for i, item := range in.Items {
		pid, err := primitive.ObjectIDFromHex(item.ProductID)
		if err != nil {
			return nil, apperr.BadRequest("Invalid product id")
		}
		items[i] = models.OrderItem{
			Product:  pid,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	order := &models.Order{
		User:            userID,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		CustomerContact: in.CustomerContact,
		PaymentMethod:   in.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderPending,
		ShippingFee:     in.ShippingFee,
	}
	order.ComputeTotals()

	_, err := s.txn(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if err := s.orders.Create(sc, order); err != nil {
			return nil, err
		}
		for _, item := range order.Items {
			if err := s.products.DecrementStock(sc, item.Product, item.Quantity); err != nil {
				if errors.Is(err, repositories.ErrInsufficientStock) {
					return nil, apperr.Newf(400, "Insufficient stock for product %s", item.Product.Hex())
				}
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.populateItems(ctx, order)

	metrics.OrdersCreated.Inc()
	event.FireAsync("order.placed", order)

	return order, nil
}

// populateItems fills item names and display prices from the catalog.
// Best-effort: a missing product leaves its snapshot untouched.
func (s *OrderService) populateItems(ctx context.Context, order *models.Order) {
	ids := make([]primitive.ObjectID, len(order.Items))
	for i, item := range order.Items {
		ids[i] = item.Product
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return
	}

	names := make(map[primitive.ObjectID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	for i := range order.Items {
		if name, ok := names[order.Items[i].Product]; ok {
			order.Items[i].Name = name
		}
	}
}

// CustomerOrders returns the user's orders, newest first.
func (s *OrderService) CustomerOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.populateItems(ctx, &orders[i])
	}
	return orders, nil
}

// Get returns one order; only its owner may read it.
func (s *OrderService) Get(ctx context.Context, userID primitive.ObjectID, idHex string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.BadRequest("Invalid order id")
	}

	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}

	if order.User != userID {
		return nil, apperr.Forbidden("Unauthorized access to order")
	}

	s.populateItems(ctx, order)
	return order, nil
}

// AdminOrders returns every order containing a product listed by the admin,
// newest first.
func (s *OrderService) AdminOrders(ctx context.Context, adminID primitive.ObjectID) ([]models.Order, error) {
	products, err := s.products.FindByListedBy(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, apperr.NotFound("No products found for this admin.")
	}

	ids := make([]primitive.ObjectID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	orders, err := s.orders.FindByProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		s.populateItems(ctx, &orders[i])
	}
	return orders, nil
}

// UpdateStatus applies a status transition from the allow-list. Landing on
// delivered completes the payment in the same write.
func (s *OrderService) UpdateStatus(ctx context.Context, idHex, target string) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, apperr.BadRequest("Invalid order id")
	}
	if !models.IsOrderStatus(target) {
		return nil, apperr.Newf(400, "Unknown order status %q", target)
	}
	status := models.OrderStatus(target)

	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}

	if !models.CanTransition(order.OrderStatus, status) {
		metrics.OrderTransitions.WithLabelValues(string(order.OrderStatus), target, "rejected").Inc()
		return nil, apperr.Newf(400,
			"Invalid status change from %s to %s", order.OrderStatus, status)
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status, status == models.OrderDelivered)
	if err != nil {
		metrics.OrderTransitions.WithLabelValues(string(order.OrderStatus), target, "error").Inc()
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(order.OrderStatus), target, "applied").Inc()
	event.FireAsync("order.status", updated)

	return updated, nil
}
