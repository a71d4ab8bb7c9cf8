package api

import (
	"errors"
	"net/http"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	models "github.com/WeSplit-io/WeSplit-Backend/api/models"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/receipt"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Receipt struct {
	server         *Server
	receiptService *receipt.Service
}

func (r Receipt) router(server *Server) {
	r.server = server
	r.receiptService = server.receipts

	serverGroupV1 := server.router.Group("/api/v1/receipts")
	serverGroupV1.POST("analyze", AuthenticatedMiddleware(), r.analyze)
	serverGroupV1.GET("agent-health", AuthenticatedMiddleware(), r.agentHealth)
}

func (r *Receipt) analyze(ctx *gin.Context) {
	var request models.AnalyzeReceiptParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidReceiptInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	analysis, err := r.receiptService.Analyze(ctx.Request.Context(), activeUser.UserID, request.ImageData)
	if err != nil {
		switch {
		case errors.Is(err, receipt.ErrBadImage):
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.BadReceiptImage))
		case errors.Is(err, receipt.ErrNotAReceipt):
			ctx.JSON(http.StatusUnprocessableEntity, basemodels.NewError(apistrings.NotAReceipt))
		default:
			// Agent outage, malformed agent output, upload failure: all
			// upstream problems the client can only retry.
			r.server.logger.Error(err.Error())
			ctx.JSON(http.StatusBadGateway, basemodels.NewError(apistrings.AgentUnavailable))
		}
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("receipt analyzed successfully", analysis))
}

func (r *Receipt) agentHealth(ctx *gin.Context) {
	health, err := r.receiptService.AgentHealth()
	if err != nil {
		ctx.JSON(http.StatusBadGateway, basemodels.NewError(apistrings.AgentUnavailable))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("agent is reachable", health))
}
