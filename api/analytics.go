package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	activitylogs "github.com/WeSplit-io/WeSplit-Backend/services/activity_logs"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Analytics struct {
	server       *Server
	auditService *activitylogs.ActivityLog
}

func (h Analytics) router(server *Server) {
	h.server = server
	h.auditService = server.audit

	// Scrape target; lives outside the API group and carries no auth.
	server.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	serverGroupV1 := server.router.Group("/api/v1/analytics")
	serverGroupV1.GET("/activity-log/:id", AuthenticatedMiddleware(), h.GetUserActivity)
	serverGroupV1.GET("/activity-logs", AuthenticatedMiddleware(), h.GetRecentActivity)
	serverGroupV1.GET("/active-users-today", AuthenticatedMiddleware(), h.GetActiveUsersCount)
}

func (h *Analytics) GetUserActivity(c *gin.Context) {
	user, _ := utils.GetActiveUser(c)
	if user.Role != "admin" {
		c.JSON(http.StatusForbidden, basemodels.NewError("forbidden"))
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.auditService.GetByUser(c.Request.Context(), userID, int32(limit), int32(offset))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get activity logs"})
		return
	}

	c.JSON(http.StatusOK, basemodels.NewSuccess("Activity logs retrieved successfully", logs))
}

func (h *Analytics) GetRecentActivity(c *gin.Context) {
	user, err := utils.GetActiveUser(c)
	if err != nil {
		h.server.logger.Error(err.Error())
		c.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}
	if user.Role != "admin" {
		c.JSON(http.StatusForbidden, basemodels.NewError("forbidden"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	logs, err := h.auditService.GetRecent(c.Request.Context(), int32(limit), int32(offset))
	if err != nil {
		c.JSON(http.StatusInternalServerError, basemodels.NewError("failed to get recent activity logs"))
		return
	}

	c.JSON(http.StatusOK, basemodels.NewSuccess("Activity logs retrieved successfully", logs))
}

func (h *Analytics) GetActiveUsersCount(c *gin.Context) {
	activeUser, err := utils.GetActiveUser(c)
	if err != nil {
		h.server.logger.Error(err.Error())
		c.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	if activeUser.Role != "admin" {
		c.JSON(http.StatusForbidden, basemodels.NewError("forbidden"))
		return
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	count, err := h.auditService.ActiveUserCount(c.Request.Context(), midnight)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count active users"})
		return
	}

	c.JSON(http.StatusOK, basemodels.NewSuccess("Active Users count retrieved successfully", gin.H{
		"count": count,
		"date":  now.Format("2006-01-02"),
	}))
}
