package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"velora/internal/domain"
	"velora/internal/service/catalog"
)

// cartResponse projects the engine snapshot into the consumer contract:
// lines plus derived count and total, and the syncing flag.
func cartResponse(sess *clientSession) gin.H {
	snap := sess.Cart.Snapshot()
	if snap.Lines == nil {
		snap.Lines = []domain.CartLine{}
	}
	return gin.H{
		"lines":   snap.Lines,
		"count":   snap.Count,
		"total":   snap.Total,
		"mode":    snap.Mode,
		"syncing": snap.Syncing,
	}
}

func getCartHandler(c *gin.Context) {
	c.JSON(http.StatusOK, cartResponse(sessionFrom(c)))
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

func addCartItemHandler(cat *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ProductID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}

		product, err := cat.GetProduct(c.Request.Context(), req.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup product"})
			return
		}

		sess := sessionFrom(c)
		sess.Cart.AddLine(*product)
		c.JSON(http.StatusOK, cartResponse(sess))
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func setCartQuantityHandler(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	sess := sessionFrom(c)
	sess.Cart.SetQuantity(c.Param("productId"), req.Quantity)
	c.JSON(http.StatusOK, cartResponse(sess))
}

func removeCartItemHandler(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Cart.RemoveLine(c.Param("productId"))
	c.JSON(http.StatusOK, cartResponse(sess))
}

func clearCartHandler(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Cart.Clear()
	c.JSON(http.StatusOK, cartResponse(sess))
}
