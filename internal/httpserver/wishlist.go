package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func wishlistResponse(sess *clientSession) gin.H {
	return gin.H{
		"productIds": sess.Wishlist.ProductIDs(),
		"loading":    sess.Wishlist.Loading(),
	}
}

func getWishlistHandler(c *gin.Context) {
	c.JSON(http.StatusOK, wishlistResponse(sessionFrom(c)))
}

func toggleWishlistHandler(c *gin.Context) {
	sess := sessionFrom(c)
	if _, authed := sess.Identity.Current(); !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in to use the wishlist"})
		return
	}
	member := sess.Wishlist.Toggle(c.Param("productId"))
	resp := wishlistResponse(sess)
	resp["member"] = member
	c.JSON(http.StatusOK, resp)
}
