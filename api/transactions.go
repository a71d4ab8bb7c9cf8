package api

import (
	"net/http"
	"strconv"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/transaction"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Transaction struct {
	server             *Server
	transactionService *transaction.TransactionService
}

func (t Transaction) router(server *Server) {
	t.server = server
	t.transactionService = server.transactions

	serverGroupV1 := server.router.Group("/api/v1/transactions")
	serverGroupV1.GET("", AuthenticatedMiddleware(), t.getHistory)
}

func (t *Transaction) getHistory(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	history, err := t.transactionService.GetHistory(ctx.Request.Context(), activeUser.UserID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("transactions fetched successfully", history))
}
