// Package listeners wires domain events to their side effects: the admin
// dashboard websocket feed and the order confirmation email.
package listeners

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fusionfit/storefront/app/jobs"
	"github.com/fusionfit/storefront/app/models"
	"github.com/fusionfit/storefront/app/repositories"
	"github.com/fusionfit/storefront/pkg/event"
	"github.com/fusionfit/storefront/pkg/logger"
	"github.com/fusionfit/storefront/pkg/queue"
	"github.com/fusionfit/storefront/pkg/ws"
)

// OrderFeed broadcasts order lifecycle events to connected admin dashboards.
var OrderFeed = ws.NewHub()

type feedEvent struct {
	Type  string        `json:"type"`
	Order *models.Order `json:"order"`
}

func broadcast(eventType string, order *models.Order) {
	payload, err := json.Marshal(feedEvent{Type: eventType, Order: order})
	if err != nil {
		logger.Error("listeners: marshal feed event", "error", err)
		return
	}
	OrderFeed.Broadcast <- payload
}

// Register hooks up the event listeners and starts the feed hub.
// Call once at boot.
func Register(users repositories.UserRepository) {
	go OrderFeed.Run()

	event.Listen("order.placed", func(payload interface{}) {
		order, ok := payload.(*models.Order)
		if !ok {
			return
		}
		broadcast("order.created", order)
		queueConfirmation(users, order)
	})

	event.Listen("order.status", func(payload interface{}) {
		order, ok := payload.(*models.Order)
		if !ok {
			return
		}
		broadcast("order.status_changed", order)
	})
}

func queueConfirmation(users repositories.UserRepository, order *models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := users.FindByID(ctx, order.User)
	if err != nil {
		logger.Error("listeners: load order user", "order", order.ID.Hex(), "error", err)
		return
	}

	if err := queue.Dispatch(&jobs.OrderConfirmationEmailJob{
		Email:   user.Email,
		Name:    user.Name,
		OrderID: order.ID.Hex(),
		Total:   order.TotalAmount,
	}); err != nil {
		logger.Error("listeners: queue confirmation email", "error", err)
	}
}
