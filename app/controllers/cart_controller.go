package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/fusionfit/storefront/app/services"
	"github.com/fusionfit/storefront/pkg/response"
)

// CartController exposes the server-side cart.
type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	items, err := c.cart.Get(r.Context(), userID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"items": items})
}

type replaceCartRequest struct {
	Items []services.CartItem `json:"items"`
}

func (c *CartController) Replace(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var in replaceCartRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := c.cart.Replace(r.Context(), userID, in.Items); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"message": "Cart updated", "items": in.Items})
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := c.cart.Clear(r.Context(), userID); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"message": "Cart cleared"})
}
