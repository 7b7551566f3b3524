package handlers

import (
	"errors"
	"net/http"

	"CourseBridge/internal/saleorapp"
	"CourseBridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler redirects learners into the storefront checkout.
type CheckoutHandler struct {
	service *saleorapp.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service *saleorapp.CheckoutService, l *logger.Logger) CheckoutHandler {
	return CheckoutHandler{service: service, log: l}
}

type checkoutQuery struct {
	Email string   `form:"email" binding:"required,email"`
	SKUs  []string `form:"sku" binding:"required,min=1"`
}

// Redirect creates a checkout for the requested SKUs and sends the learner
// to the storefront page to pay.
func (h *CheckoutHandler) Redirect(c *gin.Context) {
	var params checkoutQuery
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing sku or email."})
		return
	}

	url, err := h.service.CheckoutURL(c.Request.Context(), params.Email, params.SKUs)
	if err != nil {
		if errors.Is(err, saleorapp.ErrVariantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": err.Error()})
			return
		}
		h.log.ErrorCtx(c.Request.Context(), "Checkout creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error."})
		return
	}

	c.Redirect(http.StatusFound, url)
}
