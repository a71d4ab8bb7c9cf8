package api

import (
	"fmt"
	"net/http"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/realtime"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Origin checks are useless for a native mobile client, which sends
// whatever it likes; the bearer token on the upgrade request is the gate.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Realtime struct {
	server *Server
}

func (r Realtime) router(server *Server) {
	r.server = server

	server.router.GET("/ws", AuthenticatedMiddleware(), r.connect)
}

func (r *Realtime) connect(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	conn, err := wsUpgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade already wrote its own error response.
		r.server.logger.Error(fmt.Sprintf("websocket upgrade failed: %v", err))
		return
	}

	client := realtime.NewClient(r.server.hub, conn, activeUser.UserID)
	client.Run()
}
