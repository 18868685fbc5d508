package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fusionfit/storefront/app/services"
	"github.com/fusionfit/storefront/pkg/bind"
	"github.com/fusionfit/storefront/pkg/response"
)

// ProductController exposes the catalog plus the admin listing CRUD.
type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := c.pageResult(w, r, func() (*services.PageResult, error) {
		return c.catalog.List(r.Context(), q.Get("targetShape"), q.Get("sortBy"), queryInt(r, "page", 1))
	})
	if page == nil {
		return
	}

	response.OK(w, response.M{
		"products":      page.Products,
		"totalProducts": page.TotalProducts,
		"totalPages":    page.TotalPages,
		"currentPage":   page.CurrentPage,
	})
}

func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := c.pageResult(w, r, func() (*services.PageResult, error) {
		return c.catalog.Search(r.Context(),
			q.Get("query"), q.Get("category"), q.Get("sort"),
			queryInt(r, "page", 1), queryInt(r, "limit", 0))
	})
	if page == nil {
		return
	}

	response.OK(w, response.M{
		"products":   page.Products,
		"totalPages": page.TotalPages,
	})
}

// pageResult runs fn and writes the error envelope on failure; the caller
// shapes the success body.
func (c *ProductController) pageResult(w http.ResponseWriter, r *http.Request, fn func() (*services.PageResult, error)) *services.PageResult {
	page, err := fn()
	if err != nil {
		response.FromError(w, r, err)
		return nil
	}
	return page
}

func (c *ProductController) Suggestions(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.Suggestions(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"products": products})
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	product, err := c.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"product": product})
}

func (c *ProductController) ListedProducts(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	products, err := c.catalog.ListedBy(r.Context(), adminID)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"products": products})
}

// ─── Admin mutations ─────────────────────────────────────────────────────────

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUserID(r)
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if err := bind.Multipart(r); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	price, priceErr := strconv.ParseFloat(r.FormValue("price"), 64)
	stock, stockErr := strconv.Atoi(r.FormValue("stock"))
	in := services.CreateProductInput{
		Name:         r.FormValue("name"),
		Description:  r.FormValue("description"),
		Price:        price,
		TargetShapes: r.Form["targetShapes"],
		Type:         r.FormValue("type"),
		Stock:        stock,
	}
	if in.Name == "" || in.Description == "" || priceErr != nil || stockErr != nil ||
		len(in.TargetShapes) == 0 || in.Type == "" {
		response.Error(w, http.StatusBadRequest,
			"All fields are required, including targetShapes and type.")
		return
	}

	images, err := bind.FormFiles(r, "images")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := c.catalog.CreateListing(r.Context(), adminID, in, images)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.Created(w, response.M{
		"message": "Product listed successfully.",
		"product": product,
	})
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	if err := bind.Multipart(r); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	in := services.UpdateProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		DeletedKeys: r.Form["deletedImages"],
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid price")
			return
		}
		in.Price = &price
	}
	if raw := r.FormValue("stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid stock")
			return
		}
		in.Stock = &stock
	}

	images, err := bind.FormFiles(r, "images")
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := c.catalog.UpdateListing(r.Context(), chi.URLParam(r, "id"), in, images)
	if err != nil {
		response.FromError(w, r, err)
		return
	}

	response.OK(w, response.M{
		"message": "Product updated successfully",
		"product": product,
	})
}

func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.catalog.DeleteListing(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, response.M{"message": "Product deleted successfully"})
}
