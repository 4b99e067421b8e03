package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderkaro/orderkaro/internal/domain/catalog"
)

type productView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	SalePrice   *float64          `json:"sale_price,omitempty"`
	ImageURL    string            `json:"image_url"`
	Unit        string            `json:"unit"`
	Stock       int               `json:"stock"`
	CategoryID  string            `json:"category_id"`
	Rating      float64           `json:"rating"`
	Reviews     int               `json:"reviews"`
	Nutrition   map[string]string `json:"nutrition,omitempty"`
}

func toProductView(p catalog.Product) productView {
	v := productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		ImageURL:    p.ImageURL,
		Unit:        p.Unit,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Rating:      p.Rating,
		Reviews:     p.Reviews,
		Nutrition:   p.Nutrition,
	}
	if p.SalePrice != nil {
		sale := p.SalePrice.InexactFloat64()
		v.SalePrice = &sale
	}
	return v
}

func toProductViews(products []catalog.Product) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = toProductView(p)
	}
	return out
}

// ListProducts returns the catalog, optionally filtered by category and
// search term and sorted by price or recency.
func (h *Handler) ListProducts(c *gin.Context) {
	filter := catalog.ListFilter{
		CategoryID: c.Query("category"),
		Search:     c.Query("search"),
		Sort:       catalog.Sort(c.Query("sort")),
	}
	products, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductViews(products))
}

// ListFeaturedProducts returns products flagged for the featured rail.
func (h *Handler) ListFeaturedProducts(c *gin.Context) {
	products, err := h.catalog.ListFeatured(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductViews(products))
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.catalog.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(*p))
}

type categoryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ListCategories returns all categories in display order.
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]categoryView, len(categories))
	for i, cat := range categories {
		out[i] = categoryView{ID: cat.ID, Name: cat.Name, Icon: cat.Icon}
	}
	c.JSON(http.StatusOK, out)
}

// GetCategory returns a single category.
func (h *Handler) GetCategory(c *gin.Context) {
	cat, err := h.catalog.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categoryView{ID: cat.ID, Name: cat.Name, Icon: cat.Icon})
}

// Search matches products by name or description.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		writeMessage(c, http.StatusBadRequest, "Search query is required")
		return
	}
	products, err := h.catalog.List(c.Request.Context(), catalog.ListFilter{Search: query})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductViews(products))
}
