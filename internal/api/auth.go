package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/upstream"
	"storefront-gateway/internal/util"
)

// login authenticates against the upstream and opens a gateway session. The
// client gets the gateway session ID as its bearer token; the upstream token
// never leaves the gateway.
func (h *Handler) login(c *gin.Context) {
	var req upstream.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.upstream.Login(c.Request.Context(), &req)
	if err != nil {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		// A 401 here means bad credentials, not an expired session, so the
		// upstream's message is passed through instead of respondError's
		// session-expiry payload.
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
			return
		}
		respondError(c, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), resp.Token, resp.User)
	if err != nil {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, gin.H{
		"token": sess.ID,
		"user":  sess.User,
	})
}

// register forwards an account creation and opens a session on success.
func (h *Handler) register(c *gin.Context) {
	var req upstream.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.upstream.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	sess, err := h.sessions.Create(c.Request.Context(), resp.Token, resp.User)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": sess.ID,
		"user":  sess.User,
	})
}

// logout destroys the caller's session.
func (h *Handler) logout(c *gin.Context) {
	sess := currentSession(c)
	if err := h.sessions.Invalidate(c.Request.Context(), sess.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Logged out",
		"redirect": loginRedirect,
	})
}
