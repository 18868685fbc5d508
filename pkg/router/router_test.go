package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fusionfit/storefront/pkg/router"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestNamedRoutes(t *testing.T) {
	r := router.New()
	r.Get("/products/{id}", "products.show", ok)

	path, found := r.Path("products.show")
	if !found || path != "/products/{id}" {
		t.Fatalf("Path = %q, %v", path, found)
	}

	if _, found := r.Path("products.missing"); found {
		t.Fatal("unknown name should not resolve")
	}
}

func TestURL(t *testing.T) {
	r := router.New()
	r.Get("/auth/verify/{token}", "auth.verify", ok)

	url, err := r.URL("auth.verify", map[string]string{"token": "abc123"})
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if url != "/auth/verify/abc123" {
		t.Fatalf("url = %q", url)
	}

	if _, err := r.URL("auth.verify", nil); err == nil {
		t.Fatal("missing params should error")
	}
	if _, err := r.URL("nope", nil); err == nil {
		t.Fatal("unknown name should error")
	}
}

func TestGroupPrefixAndMiddleware(t *testing.T) {
	var order []string
	tag := func(name string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	api := r.Group("/api", tag("outer"))
	orders := api.Group("/order", tag("inner"))
	orders.Post("/", "orders.create", ok, tag("route"))

	req := httptest.NewRequest(http.MethodPost, "/api/order", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Join(order, ",") != "outer,inner,route" {
		t.Fatalf("middleware order = %v", order)
	}

	path, _ := r.Path("orders.create")
	if path != "/api/order" {
		t.Fatalf("path = %q", path)
	}
}

func TestMethodDispatch(t *testing.T) {
	r := router.New()
	r.Get("/cart", "cart.show", ok)
	r.Put("/cart", "cart.replace", ok)
	r.Delete("/cart", "cart.clear", ok)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := httptest.NewRecorder()
		r.Handler().ServeHTTP(rec, httptest.NewRequest(method, "/cart", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s /cart = %d", method, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/cart", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /cart = %d, want 405", rec.Code)
	}
}

func TestRoutesListing(t *testing.T) {
	r := router.New()
	r.Get("/health", "health", ok)
	r.Post("/api/auth/login", "auth.login", ok)

	lines := r.Routes()
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	// sorted by line, so GET /health precedes POST
	if !strings.Contains(lines[0], "/health") || !strings.Contains(lines[1], "auth.login") {
		t.Fatalf("unexpected listing: %v", lines)
	}
}
