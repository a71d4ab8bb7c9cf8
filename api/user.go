package api

import (
	"errors"
	"net/http"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	models "github.com/WeSplit-io/WeSplit-Backend/api/models"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	user_service "github.com/WeSplit-io/WeSplit-Backend/services/user"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

func (a *Auth) getProfile(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	dbUser, err := a.server.users.FetchUserByID(ctx.Request.Context(), activeUser.UserID)
	if err != nil {
		if errors.Is(err, user_service.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.UserNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("profile fetched successfully", models.ToUserResponse(dbUser)))
}

func (a *Auth) updateProfile(ctx *gin.Context) {
	var params models.UpdateProfileParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidProfileInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	dbUser, err := a.server.users.UpdateProfile(ctx.Request.Context(), activeUser.UserID, params.Name, params.AvatarURL)
	if err != nil {
		if errors.Is(err, user_service.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.UserNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("profile updated successfully", models.ToUserResponse(dbUser)))
}

func (a *Auth) setWalletAddress(ctx *gin.Context) {
	var params models.WalletAddressParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletAddress))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	dbUser, err := a.server.users.SetWalletAddress(ctx.Request.Context(), activeUser.UserID, params.WalletAddress)
	if err != nil {
		if errors.Is(err, user_service.ErrBadWalletAddress) {
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletAddress))
			return
		}
		if errors.Is(err, user_service.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.UserNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("wallet address updated successfully", models.ToUserResponse(dbUser)))
}

func (a *Auth) addPushToken(ctx *gin.Context) {
	var params models.PushTokenParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidPushTokenInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	token, err := a.server.users.AddUserExpoToken(ctx.Request.Context(), activeUser.UserID, params.ExpoPushToken, params.Platform)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("push token registered", token))
}

func (a *Auth) removePushToken(ctx *gin.Context) {
	var params models.PushTokenParams
	if err := ctx.ShouldBindJSON(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidPushTokenInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	if err := a.server.users.RemoveUserExpoToken(ctx.Request.Context(), activeUser.UserID, params.ExpoPushToken); err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("push token removed", nil))
}
