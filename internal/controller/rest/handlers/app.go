package handlers

import (
	"net/http"

	"CourseBridge/internal/external/saleor"
	"CourseBridge/internal/saleorapp"
	"CourseBridge/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AppHandler serves the Saleor app manifest and receives the app token
// Saleor delivers at install time.
type AppHandler struct {
	manifest saleorapp.Manifest
	tokens   *saleor.TokenStore
	log      *logger.Logger
}

func NewAppHandler(manifest saleorapp.Manifest, tokens *saleor.TokenStore, l *logger.Logger) AppHandler {
	return AppHandler{manifest: manifest, tokens: tokens, log: l}
}

func (h *AppHandler) Manifest(c *gin.Context) {
	c.JSON(http.StatusOK, h.manifest)
}

type registerPayload struct {
	AuthToken string `json:"auth_token"`
}

// Register stores the app token for subsequent Saleor API calls.
func (h *AppHandler) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON payload."})
		return
	}

	h.tokens.Set(payload.AuthToken)
	h.log.InfoCtx(c.Request.Context(), "Saleor app token registered")

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Token received successfully."})
}
