package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushq/notification-engine/internal/api/dto"
	"github.com/campushq/notification-engine/internal/bulk"
	"github.com/campushq/notification-engine/internal/dispatch"
	"github.com/campushq/notification-engine/internal/domain"
	"github.com/campushq/notification-engine/internal/inbox"
	"github.com/campushq/notification-engine/internal/repository"
	"github.com/campushq/notification-engine/internal/tracker"
	"github.com/campushq/notification-engine/internal/worker"
)

type Handler struct {
	dispatcher *dispatch.Dispatcher
	bulk       *bulk.Controller
	tracker    *tracker.Tracker
	logRepo    repository.MessageLogRepository
	inbox      inbox.Store
	jobManager *worker.JobManager
	perms      domain.PermissionChecker
	appCtx     context.Context
}

func NewHandler(
	dispatcher *dispatch.Dispatcher,
	bulkController *bulk.Controller,
	deliveryTracker *tracker.Tracker,
	logRepo repository.MessageLogRepository,
	inboxStore inbox.Store,
	jobManager *worker.JobManager,
	perms domain.PermissionChecker,
	appCtx context.Context,
) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		bulk:       bulkController,
		tracker:    deliveryTracker,
		logRepo:    logRepo,
		inbox:      inboxStore,
		jobManager: jobManager,
		perms:      perms,
		appCtx:     appCtx,
	}
}

// dispatchNotificationHandler
// @Summary      Sends a notification to a single recipient
// @Description  Resolves the recipient's channel preference, sends over every
// resolved channel concurrently and records one audit row per attempt.
// @Tags         Notifications
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID    header    string  false  "acting staff user"
// @Param        notification  body      dto.DispatchRequest  true  "Notification content and recipient"
// @Success      200  {object}  dto.DispatchResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /notifications [post]
func (h *Handler) dispatchNotificationHandler(c *gin.Context) {
	var req dto.DispatchRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request: " + err.Error()})
		return
	}

	if !h.allowed(c, "notifications", "send") {
		return
	}

	result := h.dispatcher.Dispatch(c.Request.Context(), req.ToDomain())
	c.JSON(http.StatusOK, dto.ToDispatchResponse(result))
}

// bulkNotificationHandler
// @Summary      Sends a notification to many recipients
// @Description  Validates every recipient address up front; a single malformed
// address rejects the whole batch before anything is sent. Valid batches fan
// out through a rate-limited worker pool.
// @Tags         Notifications
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID  header    string  false  "acting staff user"
// @Param        batch       body      dto.BulkRequest  true  "Recipients and shared content"
// @Success      200  {object}  bulk.Summary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /notifications/bulk [post]
func (h *Handler) bulkNotificationHandler(c *gin.Context) {
	var req dto.BulkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid Request: " + err.Error()})
		return
	}

	if !h.allowed(c, "notifications", "bulk_send") {
		return
	}

	recipients, content := req.ToDomain()
	summary, err := h.bulk.SendBulk(c.Request.Context(), recipients, content)
	if err != nil {
		var invalid *bulk.InvalidRecipientsError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:     "batch rejected, malformed recipient addresses",
				Addresses: invalid.Addresses,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error occurred while sending batch."})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// queryNotificationsHandler
// @Summary      Queries the delivery audit log
// @Description  Filters message log entries by recipient, user, channel,
// status and time window, newest first.
// @Tags         Notifications
// @Produce      json
// @Param        recipient  query  string  false  "recipient address"
// @Param        user_id    query  string  false  "recipient user id"
// @Param        channel    query  string  false  "channel"  Enums(EMAIL, SMS, CHAT, IN_APP)
// @Param        status     query  string  false  "message status"
// @Param        from       query  string  false  "window start (RFC3339)"
// @Param        to         query  string  false  "window end (RFC3339)"
// @Param        page       query  int     false  "page number"
// @Param        pageSize   query  int     false  "size of page"
// @Success      200  {object}  dto.LogListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /notifications [get]
func (h *Handler) queryNotificationsHandler(c *gin.Context) {
	if !h.allowed(c, "notifications", "read") {
		return
	}

	filter, err := logFilterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, total, err := h.logRepo.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error occurred while querying the log."})
		return
	}

	c.JSON(http.StatusOK, dto.LogListResponse{
		Entries:  entries,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

// toggleReconcilerJobHandler
// @Summary      Starts or stops the delivery reconciliation job
// @Description  Toggles the background job that fails audit entries stuck in
// QUEUED or SENDING past the configured threshold.
// @Tags         Jobs
// @Produce      json
// @Success      200  {object}  dto.JobResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /jobs/reconciler/toggle [put]
func (h *Handler) toggleReconcilerJobHandler(c *gin.Context) {
	var err error
	var response dto.JobResponse

	if h.jobManager.IsRunning() {
		err = h.jobManager.Stop()
		response = dto.JobResponse{Status: "stopped"}
	} else {
		err = h.jobManager.Start(h.appCtx)
		response = dto.JobResponse{Status: "started"}
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// healthHandler
// @Summary      Reports service health
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /health [get]
func (h *Handler) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.logRepo.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unreachable"})
		return
	}
	if err := h.inbox.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "inbox store unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// allowed checks the acting user against the permission collaborator and
// writes the 403 itself so handlers can return early on false.
func (h *Handler) allowed(c *gin.Context, resource, action string) bool {
	actor := c.GetHeader("X-Actor-ID")
	if h.perms.IsAllowed(c.Request.Context(), actor, resource, action) {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "actor is not allowed to " + action + " " + resource})
	return false
}

func logFilterFromQuery(c *gin.Context) (domain.LogFilter, error) {
	filter := domain.LogFilter{
		Recipient: c.Query("recipient"),
		UserID:    c.Query("user_id"),
		Channel:   domain.Channel(c.Query("channel")),
		Status:    domain.MessageStatus(c.Query("status")),
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return filter, errors.New("invalid page number")
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize <= 0 {
		return filter, errors.New("invalid page size")
	}
	filter.Page = page
	filter.PageSize = pageSize

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("invalid 'from' timestamp, expected RFC3339")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("invalid 'to' timestamp, expected RFC3339")
		}
		filter.To = &to
	}

	filter.Normalize()
	return filter, nil
}
