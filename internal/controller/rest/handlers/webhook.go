package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"CourseBridge/internal/domain/fulfillment"
	"CourseBridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives order webhooks from Saleor and runs the
// fulfillment pipeline on them.
type WebhookHandler struct {
	service *fulfillment.Service
	log     *logger.Logger
}

func NewWebhookHandler(service *fulfillment.Service, l *logger.Logger) WebhookHandler {
	return WebhookHandler{service: service, log: l}
}

type webhookPayload struct {
	Order json.RawMessage `json:"order"`
}

// EnrollUser handles the ORDER_FULLY_PAID webhook. Pipeline soft failures
// map to 400 so Saleor redelivers; duplicates are acknowledged with 200.
func (h *WebhookHandler) EnrollUser(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON payload."})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Order) == 0 {
		h.log.WarnCtx(c.Request.Context(), "Rejected webhook with malformed payload: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON payload."})
		return
	}

	result, err := h.service.ProcessOrder(c.Request.Context(), payload.Order)
	if err != nil {
		if errors.Is(err, fulfillment.ErrInvalidPayload) {
			h.log.WarnCtx(c.Request.Context(), "Rejected webhook with malformed order: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON payload."})
			return
		}
		h.log.ErrorCtx(c.Request.Context(), "Order webhook processing failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal error."})
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order already processed."})
		return
	}
	if result.Err != "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": result.Err})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Webhook received successfully."})
}
