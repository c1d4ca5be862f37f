package handlers

import (
	"net/http"
	"strconv"

	"github.com/notdulain/OAuth-Learning/internal/models"

	"github.com/gin-gonic/gin"
)

// DefaultProfiles is the sample user data served by the resource server.
func DefaultProfiles() []models.Profile {
	return []models.Profile{
		{ID: "1", Name: "Alice Johnson", Email: "alice@example.com"},
		{ID: "2", Name: "Bob Singh", Email: "bob@example.com"},
		{ID: "3", Name: "Charlie Kim", Email: "charlie@example.com"},
	}
}

// DefaultProducts is the sample catalog served by the resource server.
func DefaultProducts() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Laptop", Price: 1299.99, Currency: "USD"},
		{ID: "p2", Name: "Mechanical Keyboard", Price: 129.0, Currency: "USD"},
		{ID: "p3", Name: "Noise-canceling Headphones", Price: 249.99, Currency: "USD"},
	}
}

// ResourceHandler serves the protected sample API.
type ResourceHandler struct {
	profiles []models.Profile
	products []models.Product
}

func NewResourceHandler(profiles []models.Profile, products []models.Product) *ResourceHandler {
	return &ResourceHandler{profiles: profiles, products: products}
}

// ListUsers handles GET /api/users.
func (h *ResourceHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.profiles})
}

// GetUser handles GET /api/users/:id.
func (h *ResourceHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	for _, p := range h.profiles {
		if p.ID == id {
			c.JSON(http.StatusOK, gin.H{"data": p})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "id": id})
}

// ListProducts handles GET /api/products. limit is clamped to [0, len];
// a missing or non-numeric limit returns everything.
func (h *ResourceHandler) ListProducts(c *gin.Context) {
	result := h.products
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			n = max(0, min(len(h.products), n))
			result = h.products[:n]
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// NotFound is the resource server's fallback route.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "path": c.Request.URL.RequestURI()})
}
