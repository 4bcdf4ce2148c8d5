package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"velora/internal/domain"
	"velora/internal/service/catalog"
)

func listProductsHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := cat.ListProducts(c.Request.Context(), c.Query("category"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list products"})
			return
		}
		if products == nil {
			products = []domain.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := cat.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get product"})
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func listCategoriesHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories, err := cat.ListCategories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list categories"})
			return
		}
		if categories == nil {
			categories = []domain.Category{}
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}
