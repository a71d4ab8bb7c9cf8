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
	_ "github.com/lib/pq"
)

func (a *Auth) login(ctx *gin.Context) {
	user := new(models.UserLoginParams)

	if err := ctx.ShouldBindJSON(user); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidPhoneEmailInput))
		return
	}

	dbUser, err := a.server.users.Login(ctx.Request.Context(), user.Email, user.Password)
	if err != nil {
		if errors.Is(err, user_service.ErrBadCredentials) || errors.Is(err, user_service.ErrUserNotFound) {
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.IncorrectEmailPass))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	token, err := TokenController.CreateToken(utils.TokenObject{
		UserID:   dbUser.ID,
		Role:     dbUser.Role,
		Verified: dbUser.Verified,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	userWT := models.UserWithToken{
		User:  models.ToUserResponse(dbUser),
		Token: token,
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("login successful", userWT))
}
