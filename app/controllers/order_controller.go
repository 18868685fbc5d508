package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fusionfit/storefront/app/services"
	"github.com/fusionfit/storefront/pkg/bind"
	"github.com/fusionfit/storefront/pkg/response"
)

// OrderController exposes checkout and order management.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var in services.CreateOrderInput
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.Create(r.Context(), userID, in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, response.M{
		"message": "Order created successfully",
		"order":   order,
	})
}

func (c *OrderController) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	orders, err := c.orders.CustomerOrders(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"orders": orders})
}

func (c *OrderController) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	order, err := c.orders.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"order": order})
}

func (c *OrderController) AdminOrders(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	orders, err := c.orders.AdminOrders(r.Context(), adminID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"orders": orders})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var in updateStatusRequest
	if errs, err := bind.JSON(r, &in); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.orders.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), in.Status)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, response.M{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
