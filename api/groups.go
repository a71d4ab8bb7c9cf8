package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	models "github.com/WeSplit-io/WeSplit-Backend/api/models"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/group"
	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/paylink"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Group struct {
	server       *Server
	groupService *group.GroupService
}

func (g Group) router(server *Server) {
	g.server = server
	g.groupService = server.groups

	serverGroupV1 := server.router.Group("/api/v1/groups")
	serverGroupV1.POST("create", AuthenticatedMiddleware(), g.createGroup)
	serverGroupV1.GET("", AuthenticatedMiddleware(), g.listGroups)
	serverGroupV1.GET(":id", AuthenticatedMiddleware(), g.getGroup)
	serverGroupV1.POST(":id/invites", AuthenticatedMiddleware(), g.createInvite)
	serverGroupV1.GET("invites/:code/preview", g.previewInvite)
	serverGroupV1.POST("join/:code", AuthenticatedMiddleware(), g.join)
}

func (g *Group) createGroup(ctx *gin.Context) {
	var request models.CreateGroupParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidGroupInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	created, err := g.groupService.CreateGroup(ctx.Request.Context(), activeUser.UserID, request.Name, request.Icon)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("group created successfully", created))
}

func (g *Group) listGroups(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	groups, err := g.groupService.ListGroups(ctx.Request.Context(), activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("groups fetched successfully", groups))
}

func (g *Group) getGroup(ctx *gin.Context) {
	groupID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.GroupNotFound))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	found, err := g.groupService.GetGroupForUser(ctx.Request.Context(), activeUser.UserID, groupID)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) || errors.Is(err, group.ErrNotMember) {
			// Non-members cannot probe for a group's existence.
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.GroupNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("group fetched successfully", found))
}

func (g *Group) createInvite(ctx *gin.Context) {
	var request models.CreateInviteParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		request = models.CreateInviteParams{}
	}

	groupID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.GroupNotFound))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	ttl := time.Duration(request.TTLHours) * time.Hour

	code, invite, err := g.groupService.CreateInvite(ctx.Request.Context(), activeUser.UserID, groupID, ttl)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) || errors.Is(err, group.ErrNotMember) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.GroupNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	if request.Email != "" {
		g.emailInvite(ctx, activeUser.UserID, groupID, request.Email, code)
	}

	scheme := g.server.config.AppScheme
	if scheme == "" {
		scheme = paylink.DefaultScheme
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("invite created successfully", models.InviteCreatedResponse{
		Code:      code,
		URL:       fmt.Sprintf("%s://join/%s", scheme, code),
		ExpiresAt: invite.ExpiresAt,
	}))
}

func (g *Group) previewInvite(ctx *gin.Context) {
	code := ctx.Param("code")

	preview, err := g.groupService.PreviewInvite(ctx.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrBadInviteCode):
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.BadInviteCode))
		case errors.Is(err, group.ErrInviteExpired):
			ctx.JSON(http.StatusGone, basemodels.NewError(apistrings.InviteExpired))
		case errors.Is(err, group.ErrInviteNotFound), errors.Is(err, group.ErrGroupNotFound):
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.InviteNotFound))
		default:
			ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		}
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("invite preview", preview))
}

func (g *Group) join(ctx *gin.Context) {
	code := ctx.Param("code")

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	result, err := g.groupService.Join(ctx.Request.Context(), activeUser.UserID, code)
	if err != nil {
		switch {
		case errors.Is(err, guard.ErrDuplicateAction):
			// Same activation already in flight; absorbed as a no-op.
			ctx.JSON(http.StatusOK, basemodels.NewSuccess("join already in progress", nil))
		case errors.Is(err, group.ErrBadInviteCode):
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.BadInviteCode))
		case errors.Is(err, group.ErrInviteExpired):
			ctx.JSON(http.StatusGone, basemodels.NewError(apistrings.InviteExpired))
		case errors.Is(err, group.ErrInviteNotFound), errors.Is(err, group.ErrGroupNotFound):
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.InviteNotFound))
		default:
			ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		}
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("joined group", result))
}

// emailInvite sends a best-effort invite email; a mail failure never fails
// the invite itself.
func (g *Group) emailInvite(ctx *gin.Context, inviterID, groupID int64, to, code string) {
	inviter, err := g.server.users.FetchUserByID(ctx.Request.Context(), inviterID)
	if err != nil {
		g.server.logger.Error(fmt.Sprintf("invite email skipped, inviter lookup failed: %v", err))
		return
	}

	grp, err := g.groupService.GetGroupForUser(ctx.Request.Context(), inviterID, groupID)
	if err != nil {
		g.server.logger.Error(fmt.Sprintf("invite email skipped, group lookup failed: %v", err))
		return
	}

	if err := g.server.notifications.InviteEmail(ctx.Request.Context(), to, inviter.Name, grp.Name, code); err != nil {
		g.server.logger.Error(fmt.Sprintf("invite email to %s failed: %v", to, err))
	}
}
