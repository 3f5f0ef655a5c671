package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campushq/notification-engine/internal/api/dto"
	"github.com/campushq/notification-engine/internal/types"
)

// maxWebhookBody caps provider callback payloads at 1 MiB.
const maxWebhookBody = 1 << 20

// providerWebhookHandler
// @Summary      Ingests a provider delivery callback
// @Description  Verifies the HMAC signature and advances the matching audit
// entry's status. Callbacks for unknown messages or out-of-order statuses
// are acknowledged and dropped; only authenticity failures are rejected.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        provider     path    string  true  "provider name"  Enums(mailpost, smsgate, chatbiz)
// @Param        X-Signature  header  string  true  "HMAC signature header"
// @Success      200  {object}  dto.WebhookResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /webhooks/{provider} [post]
func (h *Handler) providerWebhookHandler(c *gin.Context) {
	provider := c.Param("provider")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}

	err = h.tracker.Ingest(c.Request.Context(), provider, body, c.GetHeader("X-Signature"))
	switch {
	case errors.Is(err, types.ErrUnknownProvider):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
	case errors.Is(err, types.ErrInvalidSignature), errors.Is(err, types.ErrStaleSignature):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error occurred while processing callback."})
	default:
		c.JSON(http.StatusOK, dto.WebhookResponse{Status: "accepted"})
	}
}
