// Package routes mounts the storefront API onto the router.
package routes

import (
	"time"

	"github.com/fusionfit/storefront/app/controllers"
	"github.com/fusionfit/storefront/pkg/middleware"
	"github.com/fusionfit/storefront/pkg/rbac"
	"github.com/fusionfit/storefront/pkg/router"
)

// Controllers bundles everything the API surface needs.
type Controllers struct {
	Auth    *controllers.AuthController
	Product *controllers.ProductController
	Order   *controllers.OrderController
	Admin   *controllers.AdminController
	Cart    *controllers.CartController
}

// Register mounts every API route. Middleware stacks: public routes are
// rate-limited only; customer routes add Auth; admin routes add HasRole.
func Register(r *router.Router, c Controllers) {
	admin := rbac.HasRole("admin")

	// Auth endpoints carry a tighter rate limit than the catalog.
	auth := r.Group("/api/auth", middleware.RateLimit(30, time.Minute))
	auth.Post("/signup", "auth.signup", c.Auth.Signup, rbac.Guest)
	auth.Post("/login", "auth.login", c.Auth.Login, rbac.Guest)
	auth.Post("/send-verification-email", "auth.send_verification", c.Auth.SendVerificationEmail)
	auth.Get("/verify-email/{token}", "auth.verify_email", c.Auth.VerifyEmail)
	auth.Post("/forgot-password", "auth.forgot_password", c.Auth.ForgotPassword)
	auth.Put("/reset-password/{token}", "auth.reset_password", c.Auth.ResetPassword)
	auth.Get("/favorites", "auth.favorites", c.Auth.Favorites, middleware.Auth)
	auth.Post("/favorites/{productID}", "auth.favorites.toggle", c.Auth.ToggleFavorite, middleware.Auth)

	product := r.Group("/api/product")
	product.Get("/all/products", "products.index", c.Product.List)
	product.Get("/search", "products.search", c.Product.Search)
	product.Get("/search/suggestions", "products.suggestions", c.Product.Suggestions)
	product.Get("/single/{id}", "products.show", c.Product.Show)
	product.Post("/list", "products.create", c.Product.Create, middleware.Auth, admin)
	product.Get("/listed-products", "products.listed", c.Product.ListedProducts, middleware.Auth, admin)
	product.Put("/update/{id}", "products.update", c.Product.Update, middleware.Auth, admin)
	product.Delete("/delete/{id}", "products.delete", c.Product.Delete, middleware.Auth, admin)

	order := r.Group("/api/order", middleware.Auth)
	order.Post("/create", "orders.create", c.Order.Create)
	order.Get("/user-orders", "orders.mine", c.Order.CustomerOrders)
	order.Get("/admin/orders", "orders.admin", c.Order.AdminOrders, admin)
	order.Patch("/status/{orderID}", "orders.status", c.Order.UpdateStatus, admin)
	order.Get("/{id}", "orders.show", c.Order.Show)

	adminGrp := r.Group("/api/admin", middleware.Auth, admin)
	adminGrp.Get("/dashboard", "admin.dashboard", c.Admin.Dashboard)
	adminGrp.Get("/orders/feed", "admin.orders.feed", c.Admin.OrderFeed)

	cart := r.Group("/api/cart", middleware.Auth)
	cart.Get("/", "cart.show", c.Cart.Show)
	cart.Put("/", "cart.replace", c.Cart.Replace)
	cart.Delete("/", "cart.clear", c.Cart.Clear)
}
