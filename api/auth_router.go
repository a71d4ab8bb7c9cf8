package api

import (
	"net/http"

	"github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Auth struct {
	server *Server
}

func (a Auth) router(server *Server) {
	a.server = server

	serverGroup := server.router.Group("/auth")
	serverGroup.Use(RateLimitMiddleware(5, 10))
	serverGroup.GET("test", a.testAuth)
	serverGroup.POST("login", a.login)
	serverGroup.POST("register", a.register)

	profileGroup := server.router.Group("/api/v1/users")
	profileGroup.GET("me", AuthenticatedMiddleware(), a.getProfile)
	profileGroup.PUT("me", AuthenticatedMiddleware(), a.updateProfile)
	profileGroup.PUT("me/wallet-address", AuthenticatedMiddleware(), a.setWalletAddress)
	profileGroup.POST("me/push-tokens", AuthenticatedMiddleware(), a.addPushToken)
	profileGroup.DELETE("me/push-tokens", AuthenticatedMiddleware(), a.removePushToken)
}

func (a Auth) testAuth(ctx *gin.Context) {
	dr := models.SuccessResponse{
		Status:  "success",
		Message: "Authentication API is active",
		Version: utils.REVISION,
	}

	ctx.JSON(http.StatusOK, dr)
}
