package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/pkg/apperr"
	"github.com/fusionfit/storefront/pkg/event"
)

// newOrderFixture wires an OrderService against in-memory repositories with a
// transaction stub that rolls both stores back when fn fails, mirroring the
// abort semantics of a real session.
func newOrderFixture() (*OrderService, *fakeOrderRepo, *fakeProductRepo) {
	orders := newFakeOrderRepo()
	products := newFakeProductRepo()

	svc := NewOrderService(orders, products)
	svc.txn = func(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
		orderSnap := orders.snapshot()
		productSnap := products.snapshot()
		res, err := fn(mongo.NewSessionContext(ctx, nil))
		if err != nil {
			orders.restore(orderSnap)
			products.restore(productSnap)
		}
		return res, err
	}
	return svc, orders, products
}

func seedProduct(t *testing.T, products *fakeProductRepo, name string, price float64, stock int) primitive.ObjectID {
	t.Helper()
	p := models.Product{
		Name:         name,
		Description:  name,
		Price:        price,
		TargetShapes: []string{"pear"},
		Type:         "dress",
		Stock:        stock,
	}
	if err := products.Create(context.Background(), &p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p.ID
}

func checkoutInput(items ...OrderItemInput) CreateOrderInput {
	return CreateOrderInput{
		Items:           items,
		ShippingAddress: models.ShippingAddress{House: "12", Street: "Main St", City: "Pune", State: "MH", PostalCode: "411001", Country: "IN"},
		PaymentMethod:   models.PaymentMethodCash,
		ShippingFee:     300,
		CustomerContact: "9999999999",
	}
}

func TestCreateOrder(t *testing.T) {
	defer event.Flush()
	svc, orders, products := newOrderFixture()
	userID := primitive.NewObjectID()
	pid := seedProduct(t, products, "Wrap Dress", 500, 10)

	order, err := svc.Create(context.Background(), userID,
		checkoutInput(OrderItemInput{ProductID: pid.Hex(), Quantity: 2, Price: 500}))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	assert.Equal(t, 1000.0, order.Subtotal)
	assert.Equal(t, 1300.0, order.TotalAmount)
	assert.Equal(t, models.OrderPending, order.OrderStatus)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Equal(t, "Wrap Dress", order.Items[0].Name)

	p, _ := products.FindByID(context.Background(), pid)
	assert.Equal(t, 8, p.Stock)

	saved, err := orders.FindByID(context.Background(), order.ID)
	assert.NoError(t, err)
	assert.Equal(t, userID, saved.User)
}

func TestCreateOrderInsufficientStockAborts(t *testing.T) {
	svc, orders, products := newOrderFixture()
	userID := primitive.NewObjectID()
	ok := seedProduct(t, products, "Wrap Dress", 500, 10)
	scarce := seedProduct(t, products, "Silk Scarf", 200, 1)

	_, err := svc.Create(context.Background(), userID, checkoutInput(
		OrderItemInput{ProductID: ok.Hex(), Quantity: 2, Price: 500},
		OrderItemInput{ProductID: scarce.Hex(), Quantity: 3, Price: 200},
	))
	assert.Error(t, err)
	assert.Equal(t, 400, apperr.Status(err))
	assert.Contains(t, apperr.Message(err), "Insufficient stock for product "+scarce.Hex())

	// the whole transaction rolled back: no order, no partial decrement
	n, _ := orders.CountAll(context.Background())
	assert.Zero(t, n)
	p, _ := products.FindByID(context.Background(), ok)
	assert.Equal(t, 10, p.Stock)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, products := newOrderFixture()
	userID := primitive.NewObjectID()
	pid := seedProduct(t, products, "Wrap Dress", 500, 10)

	cases := []struct {
		name  string
		in    CreateOrderInput
		wants string
	}{
		{"no items", checkoutInput(), "at least one item"},
		{"zero quantity", checkoutInput(OrderItemInput{ProductID: pid.Hex(), Quantity: 0, Price: 500}), "at least 1"},
		{"negative price", checkoutInput(OrderItemInput{ProductID: pid.Hex(), Quantity: 1, Price: -5}), "cannot be negative"},
		{"bad product id", checkoutInput(OrderItemInput{ProductID: "not-an-id", Quantity: 1, Price: 500}), "Invalid product id"},
	}
	for _, c := range cases {
		_, err := svc.Create(context.Background(), userID, c.in)
		if assert.Errorf(t, err, "%s should fail", c.name) {
			assert.Contains(t, apperr.Message(err), c.wants)
			assert.Equal(t, 400, apperr.Status(err))
		}
	}

	bad := checkoutInput(OrderItemInput{ProductID: pid.Hex(), Quantity: 1, Price: 500})
	bad.PaymentMethod = "crypto"
	_, err := svc.Create(context.Background(), userID, bad)
	assert.Error(t, err)
	assert.Contains(t, apperr.Message(err), "cash or card")
}

func TestGetOrderOwnerOnly(t *testing.T) {
	defer event.Flush()
	svc, _, products := newOrderFixture()
	owner := primitive.NewObjectID()
	pid := seedProduct(t, products, "Wrap Dress", 500, 10)

	order, err := svc.Create(context.Background(), owner,
		checkoutInput(OrderItemInput{ProductID: pid.Hex(), Quantity: 1, Price: 500}))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	got, err := svc.Get(context.Background(), owner, order.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.Get(context.Background(), primitive.NewObjectID(), order.ID.Hex())
	assert.Equal(t, 403, apperr.Status(err))
	assert.Equal(t, "Unauthorized access to order", apperr.Message(err))
}

func TestUpdateStatus(t *testing.T) {
	defer event.Flush()
	svc, orders, products := newOrderFixture()
	pid := seedProduct(t, products, "Wrap Dress", 500, 10)

	order, err := svc.Create(context.Background(), primitive.NewObjectID(),
		checkoutInput(OrderItemInput{ProductID: pid.Hex(), Quantity: 1, Price: 500}))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), order.ID.Hex(), "processing")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, updated.OrderStatus)
	assert.Equal(t, models.PaymentPending, updated.PaymentStatus)

	// delivered completes the payment in the same write
	updated, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), "delivered")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, updated.OrderStatus)
	assert.Equal(t, models.PaymentCompleted, updated.PaymentStatus)

	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), "pending")
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Invalid status change from delivered to pending", apperr.Message(err))

	saved, _ := orders.FindByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderDelivered, saved.OrderStatus)
}

func TestUpdateStatusNoSkipping(t *testing.T) {
	defer event.Flush()
	svc, orders, products := newOrderFixture()
	pid := seedProduct(t, products, "Wrap Dress", 500, 10)

	order, err := svc.Create(context.Background(), primitive.NewObjectID(),
		checkoutInput(OrderItemInput{ProductID: pid.Hex(), Quantity: 1, Price: 500}))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), order.ID.Hex(), "delivered")
	assert.Equal(t, 400, apperr.Status(err))
	assert.Equal(t, "Invalid status change from pending to delivered", apperr.Message(err))

	saved, _ := orders.FindByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderPending, saved.OrderStatus)
	assert.Equal(t, models.PaymentPending, saved.PaymentStatus)
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc, _, _ := newOrderFixture()

	_, err := svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), "shipped")
	assert.Equal(t, 400, apperr.Status(err))

	_, err = svc.UpdateStatus(context.Background(), primitive.NewObjectID().Hex(), "processing")
	assert.Equal(t, 404, apperr.Status(err))
}

func TestAdminOrders(t *testing.T) {
	defer event.Flush()
	svc, _, products := newOrderFixture()
	adminID := primitive.NewObjectID()

	// adminID lists one product, another admin lists the other
	mine := models.Product{Name: "Wrap Dress", Price: 500, TargetShapes: []string{"pear"}, Type: "dress", Stock: 10, ListedBy: adminID}
	theirs := models.Product{Name: "Silk Scarf", Price: 200, TargetShapes: []string{"apple"}, Type: "top", Stock: 10, ListedBy: primitive.NewObjectID()}
	_ = products.Create(context.Background(), &mine)
	_ = products.Create(context.Background(), &theirs)

	_, err := svc.Create(context.Background(), primitive.NewObjectID(),
		checkoutInput(OrderItemInput{ProductID: mine.ID.Hex(), Quantity: 1, Price: 500}))
	assert.NoError(t, err)
	_, err = svc.Create(context.Background(), primitive.NewObjectID(),
		checkoutInput(OrderItemInput{ProductID: theirs.ID.Hex(), Quantity: 1, Price: 200}))
	assert.NoError(t, err)

	orders, err := svc.AdminOrders(context.Background(), adminID)
	assert.NoError(t, err)
	if assert.Len(t, orders, 1) {
		assert.Equal(t, mine.ID, orders[0].Items[0].Product)
	}

	_, err = svc.AdminOrders(context.Background(), primitive.NewObjectID())
	assert.Equal(t, 404, apperr.Status(err))
	assert.Equal(t, "No products found for this admin.", apperr.Message(err))
}
