package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"velora/internal/service/catalog"
)

// Deps carries the collaborators handlers need.
type Deps struct {
	Catalog  *catalog.Service
	Sessions *SessionRegistry
}

const sessionHeader = "X-Session-Token"

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Content-Type", sessionHeader},
		AllowCredentials: true,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/products", listProductsHandler(deps.Catalog))
	router.GET("/products/:id", getProductHandler(deps.Catalog))
	router.GET("/categories", listCategoriesHandler(deps.Catalog))

	router.POST("/session", beginSessionHandler(deps.Sessions))

	authed := router.Group("/", sessionMiddleware(deps.Sessions))
	authed.POST("/auth/sign-in", signInHandler)
	authed.POST("/auth/sign-out", signOutHandler)

	authed.GET("/cart", getCartHandler)
	authed.POST("/cart/items", addCartItemHandler(deps.Catalog))
	authed.PATCH("/cart/items/:productId", setCartQuantityHandler)
	authed.DELETE("/cart/items/:productId", removeCartItemHandler)
	authed.DELETE("/cart", clearCartHandler)

	authed.GET("/wishlist", getWishlistHandler)
	authed.POST("/wishlist/:productId/toggle", toggleWishlistHandler)

	return router
}

const sessionCtxKey = "session"

// sessionMiddleware resolves the session token into the client session and
// aborts with 401 when it is missing or expired.
func sessionMiddleware(sessions *SessionRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(sessionHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}
		sess, ok := sessions.Resolve(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		c.Set(sessionCtxKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *clientSession {
	return c.MustGet(sessionCtxKey).(*clientSession)
}
