package api

import (
	"errors"
	"net/http"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	apierrors "github.com/WeSplit-io/WeSplit-Backend/api/errors"
	models "github.com/WeSplit-io/WeSplit-Backend/api/models"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/currency"
	"github.com/WeSplit-io/WeSplit-Backend/services/ledger"
	"github.com/WeSplit-io/WeSplit-Backend/services/wallet"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	server         *Server
	ledgerService  *ledger.Service
	fundingService *wallet.FundingService
}

func (w Wallet) router(server *Server) {
	w.server = server
	w.ledgerService = server.ledger
	w.fundingService = server.funding

	serverGroupV1 := server.router.Group("/api/v1/wallets")
	serverGroupV1.POST("create", AuthenticatedMiddleware(), w.createWallet)
	serverGroupV1.GET("", AuthenticatedMiddleware(), w.getUserWallets)
	serverGroupV1.GET(":id", AuthenticatedMiddleware(), w.getWallet)
	serverGroupV1.GET(":id/balances", AuthenticatedMiddleware(), w.getBalances)
	serverGroupV1.POST(":id/events", AuthenticatedMiddleware(), w.appendEvent)
	serverGroupV1.POST(":id/members", AuthenticatedMiddleware(), w.addMember)
	serverGroupV1.POST(":id/close", AuthenticatedMiddleware(), w.closeWallet)
	serverGroupV1.POST(":id/fund", AuthenticatedMiddleware(), w.fundWallet)
	serverGroupV1.GET(":id/invoices", AuthenticatedMiddleware(), w.listInvoices)
	serverGroupV1.POST(":id/deposits", AuthenticatedMiddleware(), w.verifyDeposit)
	serverGroupV1.PUT(":id/treasury", AuthenticatedMiddleware(), w.setTreasury)
}

func (w *Wallet) createWallet(ctx *gin.Context) {
	var request models.CreateWalletParams

	err := ctx.ShouldBindJSON(&request)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	if request.Currency != "" && currency.IsCurrencyInvalid(request.Currency) {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.CurrencyNotSupported))
		return
	}

	created, err := w.ledgerService.CreateWallet(ctx.Request.Context(), request.Name, activeUser.UserID, request.Currency, request.MemberIDs)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("shared wallet created successfully", models.ToWalletResponse(created)))
}

func (w *Wallet) getUserWallets(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	summaries, err := w.ledgerService.ListWallets(ctx.Request.Context(), activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("shared wallets fetched successfully", summaries))
}

func (w *Wallet) getWallet(ctx *gin.Context) {
	snapshot, _, ok := w.memberWallet(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("shared wallet fetched successfully", models.ToWalletResponse(snapshot)))
}

func (w *Wallet) getBalances(ctx *gin.Context) {
	snapshot, _, ok := w.memberWallet(ctx)
	if !ok {
		return
	}

	balances, err := w.ledgerService.Balances(ctx.Request.Context(), snapshot.ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("balances fetched successfully", balances))
}

func (w *Wallet) appendEvent(ctx *gin.Context) {
	var request models.AppendEventParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidEventInput))
		return
	}

	amount, err := decimal.NewFromString(request.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidEventInput))
		return
	}

	snapshot, activeUser, ok := w.memberWallet(ctx)
	if !ok {
		return
	}

	// Members record their own entries; only the creator may record for
	// someone else (settle-up bookkeeping).
	if request.MemberID != activeUser.UserID && snapshot.CreatorID != activeUser.UserID {
		ctx.JSON(http.StatusForbidden, basemodels.NewError(apistrings.NotWalletCreator))
		return
	}

	event := ledger.LedgerEvent{
		WalletID:            snapshot.ID,
		MemberID:            request.MemberID,
		Kind:                ledger.EventKind(request.Kind),
		Amount:              amount,
		SourceTransactionID: request.SourceTransactionID,
	}
	if request.Timestamp != nil {
		event.Timestamp = *request.Timestamp
	}

	updated, err := w.ledgerService.AppendEvent(ctx.Request.Context(), snapshot.ID, event)
	if err != nil {
		w.respondLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("event applied successfully", models.ToWalletResponse(updated)))
}

func (w *Wallet) addMember(ctx *gin.Context) {
	var request models.AddMemberParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletInput))
		return
	}

	snapshot, _, ok := w.memberWallet(ctx)
	if !ok {
		return
	}

	err := w.ledgerService.AddWalletMember(ctx.Request.Context(), snapshot.ID, request.UserID)
	if err != nil {
		if errors.Is(err, ledger.ErrMemberExists) {
			ctx.JSON(http.StatusConflict, basemodels.NewError(apistrings.MemberAlreadyInWallet))
			return
		}
		if errors.Is(err, ledger.ErrWalletClosed) {
			ctx.JSON(http.StatusUnprocessableEntity, basemodels.NewError(apistrings.WalletClosed))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("member added successfully", nil))
}

func (w *Wallet) closeWallet(ctx *gin.Context) {
	walletID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletID))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	closed, err := w.ledgerService.CloseWallet(ctx.Request.Context(), walletID, activeUser.UserID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.WalletNotFound))
			return
		}
		if errors.Is(err, ledger.ErrNotCreator) {
			ctx.JSON(http.StatusForbidden, basemodels.NewError(apistrings.NotWalletCreator))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("shared wallet closed", models.ToWalletResponse(closed)))
}

func (w *Wallet) fundWallet(ctx *gin.Context) {
	var request models.FundWalletParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidFundingInput))
		return
	}

	amount, err := decimal.NewFromString(request.Amount)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidFundingInput))
		return
	}

	walletID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletID))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	invoice, err := w.fundingService.CreateInvoice(ctx.Request.Context(), walletID, activeUser.UserID, amount, request.Currency)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrBadAmount):
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidFundingInput))
		case errors.Is(err, ledger.ErrWalletNotFound):
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.WalletNotFound))
		case errors.Is(err, ledger.ErrUnknownMember):
			ctx.JSON(http.StatusForbidden, basemodels.NewError(apistrings.NotWalletMember))
		default:
			w.server.logger.Error(err.Error())
			ctx.JSON(http.StatusBadGateway, basemodels.NewError(apistrings.OnrampUnavailable))
		}
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("funding invoice created", invoice))
}

func (w *Wallet) listInvoices(ctx *gin.Context) {
	walletID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletID))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	invoices, err := w.fundingService.Invoices(ctx.Request.Context(), walletID, activeUser.UserID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.WalletNotFound))
			return
		}
		if errors.Is(err, ledger.ErrUnknownMember) {
			ctx.JSON(http.StatusForbidden, basemodels.NewError(apistrings.NotWalletMember))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("funding invoices fetched successfully", invoices))
}

func (w *Wallet) verifyDeposit(ctx *gin.Context) {
	var request models.VerifyDepositParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidDepositInput))
		return
	}

	walletID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletID))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	deposit, err := w.fundingService.VerifyDeposit(ctx.Request.Context(), walletID, activeUser.UserID, request.Signature)
	if err != nil {
		w.respondDepositError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("deposit verified and credited", deposit))
}

func (w *Wallet) setTreasury(ctx *gin.Context) {
	var request models.TreasuryParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidTreasuryInput))
		return
	}

	walletID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletID))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	err = w.fundingService.SetTreasuryAddress(ctx.Request.Context(), walletID, activeUser.UserID, request.TreasuryAddress)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrWalletNotFound):
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.WalletNotFound))
		case errors.Is(err, ledger.ErrNotCreator):
			ctx.JSON(http.StatusForbidden, basemodels.NewError(apistrings.NotWalletCreator))
		case errors.Is(err, wallet.ErrBadTreasuryAddress):
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletAddress))
		default:
			ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		}
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("treasury address updated", nil))
}

// memberWallet parses the :id param, loads the wallet and verifies the
// caller belongs to it. On failure the response is already written.
func (w *Wallet) memberWallet(ctx *gin.Context) (*ledger.SharedWallet, utils.TokenObject, bool) {
	walletID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletID))
		return nil, utils.TokenObject{}, false
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return nil, utils.TokenObject{}, false
	}

	snapshot, err := w.ledgerService.GetWallet(ctx.Request.Context(), walletID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.WalletNotFound))
			return nil, utils.TokenObject{}, false
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return nil, utils.TokenObject{}, false
	}

	member := false
	for _, m := range snapshot.Members {
		if m.UserID == activeUser.UserID {
			member = true
			break
		}
	}
	if !member {
		ctx.JSON(http.StatusForbidden, basemodels.NewError(apistrings.NotWalletMember))
		return nil, utils.TokenObject{}, false
	}

	return snapshot, activeUser, true
}

// respondLedgerError maps an AppendEvent failure. Refusals the client can
// act on carry a machine code in a 422; malformed events are plain 400s.
func (w *Wallet) respondLedgerError(ctx *gin.Context, err error) {
	refuse := func(code int, message string) {
		ctx.JSON(http.StatusUnprocessableEntity, models.LedgerRefusal{
			Status:  "failed",
			Message: message,
			Code:    code,
		})
	}

	switch {
	case errors.Is(err, ledger.ErrOutOfOrder):
		refuse(apierrors.LedgerOutOfOrder, apierrors.LedgerOutOfOrderMessage)
	case errors.Is(err, ledger.ErrDuplicateEvent):
		refuse(apierrors.LedgerDuplicateEvent, apierrors.LedgerDuplicateEventMessage)
	case errors.Is(err, ledger.ErrInsufficientBalance):
		refuse(apierrors.LedgerInsufficient, apierrors.LedgerInsufficientMessage)
	case errors.Is(err, ledger.ErrUnknownMember):
		refuse(apierrors.LedgerUnknownMember, apierrors.LedgerUnknownMemberMessage)
	case errors.Is(err, ledger.ErrWalletClosed):
		refuse(apierrors.LedgerWalletClosed, apierrors.LedgerWalletClosedMessage)
	case errors.Is(err, ledger.ErrWalletNotFound):
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.WalletNotFound))
	case errors.Is(err, ledger.ErrNonPositiveAmount),
		errors.Is(err, ledger.ErrUnknownKind),
		errors.Is(err, ledger.ErrMissingSource),
		errors.Is(err, ledger.ErrWalletMismatch):
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidEventInput))
	default:
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
	}
}

func (w *Wallet) respondDepositError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrWalletNotFound):
		ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.WalletNotFound))
	case errors.Is(err, ledger.ErrUnknownMember):
		ctx.JSON(http.StatusForbidden, basemodels.NewError(apistrings.NotWalletMember))
	case errors.Is(err, wallet.ErrNoTreasuryAddress):
		ctx.JSON(http.StatusConflict, basemodels.NewError(wallet.ErrNoTreasuryAddress.Error()))
	case errors.Is(err, wallet.ErrDepositAlreadyCredited):
		ctx.JSON(http.StatusConflict, basemodels.NewError(wallet.ErrDepositAlreadyCredited.Error()))
	case errors.Is(err, wallet.ErrDepositNotFound):
		ctx.JSON(http.StatusNotFound, basemodels.NewError(wallet.ErrDepositNotFound.Error()))
	case errors.Is(err, wallet.ErrDepositFailed):
		ctx.JSON(http.StatusUnprocessableEntity, basemodels.NewError(wallet.ErrDepositFailed.Error()))
	case errors.Is(err, wallet.ErrDepositMismatch):
		ctx.JSON(http.StatusUnprocessableEntity, basemodels.NewError(wallet.ErrDepositMismatch.Error()))
	case errors.Is(err, wallet.ErrUnsupportedAsset):
		ctx.JSON(http.StatusUnprocessableEntity, basemodels.NewError(apistrings.CurrencyNotSupported))
	case errors.Is(err, wallet.ErrCurrencyMismatch):
		ctx.JSON(http.StatusUnprocessableEntity, basemodels.NewError(err.Error()))
	case errors.Is(err, ledger.ErrDuplicateEvent):
		ctx.JSON(http.StatusConflict, basemodels.NewError(wallet.ErrDepositAlreadyCredited.Error()))
	default:
		w.server.logger.Error(err.Error())
		ctx.JSON(http.StatusBadGateway, basemodels.NewError(apistrings.ChainUnavailable))
	}
}
