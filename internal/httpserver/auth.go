package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func beginSessionHandler(sessions *SessionRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"token": sessions.Begin()})
	}
}

type signInRequest struct {
	UserID string `json:"userId"`
}

// signInHandler flips the session's identity signal to a concrete user.
// Credential verification lives with the hosted auth provider and is not this
// service's concern; the provider's verified user id is what arrives here.
func signInHandler(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId required"})
		return
	}

	sess := sessionFrom(c)
	sess.Identity.SignIn(req.UserID)
	c.JSON(http.StatusOK, cartResponse(sess))
}

func signOutHandler(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Identity.SignOut()
	c.JSON(http.StatusOK, cartResponse(sess))
}
