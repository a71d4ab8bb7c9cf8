package api

import (
	"errors"
	"net/http"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/providers/onramp"
	"github.com/WeSplit-io/WeSplit-Backend/services/wallet"
	"github.com/gin-gonic/gin"
)

type Onramp struct {
	server         *Server
	fundingService *wallet.FundingService
}

func (o Onramp) router(server *Server) {
	o.server = server
	o.fundingService = server.funding

	// Provider-facing callback, no auth header. The payload is only used to
	// identify the invoice; the settlement status is re-fetched from the
	// provider before anything is credited.
	serverGroupV1 := server.router.Group("/api/v1/onramp")
	serverGroupV1.POST("callback", o.callback)
}

func (o *Onramp) callback(ctx *gin.Context) {
	var payload onramp.WebhookPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil || payload.OrderID == "" {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError("unreadable callback payload"))
		return
	}

	invoice, err := o.fundingService.SettleInvoice(ctx.Request.Context(), payload.OrderID)
	if err != nil {
		if errors.Is(err, wallet.ErrInvoiceNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.InvoiceNotFound))
			return
		}
		// Non-2xx makes the provider redeliver; settlement is idempotent so
		// the retry is safe.
		o.server.logger.Error(err.Error())
		ctx.JSON(http.StatusBadGateway, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("callback processed", gin.H{
		"order_id": invoice.ID,
		"status":   invoice.Status,
	}))
}
