package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-gateway/internal/cart"
)

// posCatalog serves the sellable product list for the point-of-sale screen:
// in-stock products, searchable by name or SKU.
func (h *Handler) posCatalog(c *gin.Context) {
	api := h.authedUpstream(c)

	products, err := h.carts.Catalog(c.Request.Context(), api, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
	})
}

func cartResponse(c *cart.Cart) gin.H {
	return gin.H{
		"cart":  c,
		"total": c.Total(),
		"lines": len(c.Lines),
	}
}

// createCart opens a new order-entry session with an empty cart.
func (h *Handler) createCart(c *gin.Context) {
	created, err := h.carts.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart"})
		return
	}
	c.JSON(http.StatusCreated, cartResponse(created))
}

// getCart returns the current cart state.
func (h *Handler) getCart(c *gin.Context) {
	loaded, err := h.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(loaded))
}

// addCartItem adds one unit of a product to the cart.
func (h *Handler) addCartItem(c *gin.Context) {
	var req struct {
		ProductID string `json:"productId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	api := h.authedUpstream(c)
	updated, err := h.carts.AddItem(c.Request.Context(), api, c.Param("id"), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(updated))
}

// setCartQuantity sets a line's quantity; zero or less removes the line.
func (h *Handler) setCartQuantity(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	updated, err := h.carts.SetQuantity(c.Request.Context(), c.Param("id"), c.Param("productID"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(updated))
}

// removeCartItem removes a line from the cart.
func (h *Handler) removeCartItem(c *gin.Context) {
	updated, err := h.carts.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("productID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(updated))
}

// clearCart empties the cart but keeps the session alive.
func (h *Handler) clearCart(c *gin.Context) {
	updated, err := h.carts.Clear(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(updated))
}

// submitCart sends the cart upstream as a completed point-of-sale order.
func (h *Handler) submitCart(c *gin.Context) {
	var customer cart.CustomerInfo
	if err := c.ShouldBindJSON(&customer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	api := h.authedUpstream(c)
	order, err := h.carts.Submit(c.Request.Context(), api, c.Param("id"), customer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order":   order,
		"message": "Order #" + order.OrderNumber + " created successfully",
	})
}

// calculatorKeys applies key presses to a calculator session.
func (h *Handler) calculatorKeys(c *gin.Context) {
	var req struct {
		Keys []string `json:"keys" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	state, err := h.calcs.Press(c.Request.Context(), c.Param("id"), req.Keys)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, state)
}

// calculatorReset discards a calculator session.
func (h *Handler) calculatorReset(c *gin.Context) {
	if err := h.calcs.Reset(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset calculator"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"display": "0"})
}
