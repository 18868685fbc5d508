package controllers

import (
	"net/http"

	"github.com/fusionfit/storefront/app/listeners"
	"github.com/fusionfit/storefront/app/services"
	"github.com/fusionfit/storefront/pkg/response"
	"github.com/fusionfit/storefront/pkg/ws"
)

// AdminController exposes the dashboard aggregates and the live order feed.
type AdminController struct {
	admin *services.AdminService
}

func NewAdminController(admin *services.AdminService) *AdminController {
	return &AdminController{admin: admin}
}

func (c *AdminController) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := c.admin.Dashboard(r.Context())
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"data": stats})
}

// OrderFeed upgrades the connection and streams order events to the
// dashboard until the client disconnects.
func (c *AdminController) OrderFeed(w http.ResponseWriter, r *http.Request) {
	ws.Upgrade(w, r, listeners.OrderFeed)
}
