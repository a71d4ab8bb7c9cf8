package middleware

import (
	"context"
	"net/http"
	"time"

	"slices"

	activitylogs "github.com/WeSplit-io/WeSplit-Backend/services/activity_logs"
	"github.com/gin-gonic/gin"
)

type ActivityLogMiddleware struct {
	service *activitylogs.ActivityLog
}

func NewActivityLogMiddleware(service *activitylogs.ActivityLog) *ActivityLogMiddleware {
	return &ActivityLogMiddleware{
		service: service,
	}
}

// ActivityLogger records an audit entry for the sensitive routes after the
// handler runs. The write happens in the background so a slow insert never
// holds up the response.
func (a *ActivityLogMiddleware) ActivityLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !shouldLog(c.Request.Method, c.FullPath()) {
			c.Next()
			return
		}

		c.Next()

		// Get user from context if authenticated
		var userID *int64
		if uid, exists := c.Get("user_id"); exists {
			if u, ok := uid.(int64); ok {
				userID = &u
			}
		}

		action := actionFor(c.Request.Method, c.FullPath(), c.Writer.Status())
		resource := c.FullPath()
		ip := c.ClientIP()
		userAgent := c.Request.UserAgent()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, _ = a.service.Create(ctx, activitylogs.CreateAuditEntryParams{
				UserID:    userID,
				Action:    action,
				Resource:  resource,
				IPAddress: ip,
				UserAgent: userAgent,
			})
		}()
	}
}

// Should be in sync with routes in actionFor
var auditedPaths = []string{
	"/auth/login",
	"/auth/register",
	"/api/v1/wallets/create",
	"/api/v1/wallets/:id/close",
	"/api/v1/wallets/:id/treasury",
	"/api/v1/wallets/:id/fund",
}

func shouldLog(method, path string) bool {
	if method != http.MethodPost && method != http.MethodPut {
		return false
	}
	return slices.Contains(auditedPaths, path)
}

func actionFor(method, path string, status int) string {
	outcome := "succeeded"
	if status >= http.StatusBadRequest {
		outcome = "failed"
	}

	switch path {
	case "/auth/login":
		return "login " + outcome
	case "/auth/register":
		return "registration " + outcome
	case "/api/v1/wallets/create":
		return "wallet creation " + outcome
	case "/api/v1/wallets/:id/close":
		return "wallet close " + outcome
	case "/api/v1/wallets/:id/treasury":
		return "treasury update " + outcome
	case "/api/v1/wallets/:id/fund":
		return "funding invoice " + outcome
	default:
		return method + " " + path + " " + outcome
	}
}
