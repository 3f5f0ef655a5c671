package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/notification-engine/internal/api/dto"
)

// listInboxHandler
// @Summary      Lists a user's In-App inbox
// @Description  Returns inbox messages newest first with pagination.
// @Tags         Inbox
// @Produce      json
// @Param        userID    path   string  true   "inbox owner"
// @Param        page      query  int     false  "page number"
// @Param        pageSize  query  int     false  "size of page"
// @Success      200  {object}  dto.InboxResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /inbox/{userID} [get]
func (h *Handler) listInboxHandler(c *gin.Context) {
	userID := c.Param("userID")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page number"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page size"})
		return
	}

	messages, total, err := h.inbox.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error occurred while listing inbox."})
		return
	}

	c.JSON(http.StatusOK, dto.InboxResponse{Messages: messages, Total: total})
}

// markInboxReadHandler
// @Summary      Marks a user's In-App messages as read
// @Description  Transitions the user's deliverable In-App audit entries to
// READ and returns how many rows changed.
// @Tags         Inbox
// @Produce      json
// @Param        userID  path  string  true  "inbox owner"
// @Success      200  {object}  dto.InboxReadResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /inbox/{userID}/read [post]
func (h *Handler) markInboxReadHandler(c *gin.Context) {
	userID := c.Param("userID")

	updated, err := h.logRepo.MarkInAppRead(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error occurred while marking inbox read."})
		return
	}

	c.JSON(http.StatusOK, dto.InboxReadResponse{Updated: updated})
}
