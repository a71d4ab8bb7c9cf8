package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	models "github.com/WeSplit-io/WeSplit-Backend/api/models"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	service "github.com/WeSplit-io/WeSplit-Backend/services/notification"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Notification struct {
	server              *Server
	notificationService *service.NotificationService
}

func (n Notification) router(server *Server) {
	n.server = server
	n.notificationService = server.notifications

	serverGroupV1 := server.router.Group("/api/v1/notifications")
	serverGroupV1.GET("", AuthenticatedMiddleware(), n.getFeed)
	serverGroupV1.GET("unread-count", AuthenticatedMiddleware(), n.getUnreadCount)
	serverGroupV1.POST(":id/action", AuthenticatedMiddleware(), n.takeAction)
	serverGroupV1.POST(":id/read", AuthenticatedMiddleware(), n.markRead)
	serverGroupV1.POST("read-all", AuthenticatedMiddleware(), n.markAllRead)
	serverGroupV1.DELETE(":id", AuthenticatedMiddleware(), n.deleteNotification)
}

func (n *Notification) getFeed(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	feed, err := n.notificationService.Feed(ctx.Request.Context(), activeUser.UserID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("notifications fetched successfully", feed))
}

func (n *Notification) getUnreadCount(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	count, err := n.notificationService.UnreadCount(ctx.Request.Context(), activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("unread count fetched", gin.H{"unread": count}))
}

func (n *Notification) takeAction(ctx *gin.Context) {
	notificationID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.NotificationNotFound))
		return
	}

	var request models.NotificationActionParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidActionInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	updated, err := n.notificationService.TakeAction(ctx.Request.Context(), activeUser.UserID, notificationID, request.Action)
	if err != nil {
		switch {
		case errors.Is(err, guard.ErrDuplicateAction), errors.Is(err, service.ErrActionAlreadyTaken):
			// Double-tap or redelivered push; the first action stands.
			ctx.JSON(http.StatusConflict, basemodels.NewError(apistrings.NotificationActionDone))
		case errors.Is(err, service.ErrNotificationNotFound):
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.NotificationNotFound))
		default:
			ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		}
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("action recorded", updated))
}

func (n *Notification) markRead(ctx *gin.Context) {
	notificationID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.NotificationNotFound))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	if err := n.notificationService.MarkRead(ctx.Request.Context(), activeUser.UserID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.NotificationNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("notification marked read", nil))
}

func (n *Notification) markAllRead(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	count, err := n.notificationService.MarkAllRead(ctx.Request.Context(), activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("notifications marked read", gin.H{"updated": count}))
}

func (n *Notification) deleteNotification(ctx *gin.Context) {
	notificationID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.NotificationNotFound))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	if err := n.notificationService.Delete(ctx.Request.Context(), activeUser.UserID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.NotificationNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("notification deleted", nil))
}
