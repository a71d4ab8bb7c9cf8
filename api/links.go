package api

import (
	"errors"
	"net/http"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	models "github.com/WeSplit-io/WeSplit-Backend/api/models"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/deeplink"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Link struct {
	server     *Server
	linkRouter *deeplink.Router
}

func (li Link) router(server *Server) {
	li.server = server
	li.linkRouter = server.links

	serverGroupV1 := server.router.Group("/api/v1/links")
	serverGroupV1.POST("resolve", AuthenticatedMiddleware(), li.resolve)
}

func (li *Link) resolve(ctx *gin.Context) {
	var request models.ResolveLinkParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidLinkInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	action, err := li.linkRouter.Route(ctx.Request.Context(), request.URI, activeUser.UserID)
	if err != nil {
		var rejection *deeplink.Rejection
		if errors.As(err, &rejection) {
			ctx.JSON(rejectionStatus(rejection.Category), models.LinkRejection{
				Status:   "failed",
				Message:  rejection.Reason,
				Category: string(rejection.Category),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("link resolved", action))
}

// rejectionStatus buckets router rejections onto HTTP statuses: bad links
// are the client's fault, auth wants a login, collaborator failures are
// upstream weather.
func rejectionStatus(category deeplink.Category) int {
	switch category {
	case deeplink.CategoryAuth:
		return http.StatusUnauthorized
	case deeplink.CategoryCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
