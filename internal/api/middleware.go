package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-gateway/internal/cart"
	"storefront-gateway/internal/session"
	"storefront-gateway/internal/upstream"
	"storefront-gateway/internal/util"
)

const sessionContextKey = "adminSession"

// loginRedirect is sent with every 401 so the UI knows where to go.
const loginRedirect = "/admin/login"

// requireSession resolves the bearer token into an admin session and aborts
// with a login redirect when there is none.
func (h *Handler) requireSession(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		unauthorized(c)
		return
	}

	sess, err := h.sessions.Load(c.Request.Context(), token)
	if errors.Is(err, session.ErrNotFound) {
		unauthorized(c)
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load session",
		})
		return
	}

	c.Set(sessionContextKey, sess)
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    "Authentication required",
		"redirect": loginRedirect,
	})
}

// currentSession returns the session placed in context by requireSession.
func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}

// authedUpstream binds the upstream client to the caller's session token.
// An upstream 401 invalidates the gateway session, so the next request is
// forced back through login regardless of which call tripped it.
func (h *Handler) authedUpstream(c *gin.Context) *upstream.Client {
	sess := currentSession(c)
	return h.upstream.WithAuth(sess.Token, func(ctx context.Context) {
		if err := h.sessions.Invalidate(ctx, sess.ID); err != nil {
			util.GetLogger().Warn("Failed to invalidate session after upstream 401",
				zap.String("session_id", sess.ID),
				zap.Error(err))
		}
	})
}

// respondError translates domain and upstream failures into HTTP responses.
// Upstream error messages are passed through verbatim; a server-side stock
// rejection must reach the user as sent.
func respondError(c *gin.Context, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":    "Session expired",
				"redirect": loginRedirect,
			})
			return
		}
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			c.JSON(apiErr.StatusCode, gin.H{"error": apiErr.Message})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Message})
		return
	}

	switch {
	case errors.Is(err, cart.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrStockExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrMissingCustomer):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
