package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/WeSplit-io/WeSplit-Backend/api/apistrings"
	models "github.com/WeSplit-io/WeSplit-Backend/api/models"
	basemodels "github.com/WeSplit-io/WeSplit-Backend/models"
	"github.com/WeSplit-io/WeSplit-Backend/services/contact"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
	"github.com/gin-gonic/gin"
)

type Contact struct {
	server         *Server
	contactService *contact.ContactService
}

func (c Contact) router(server *Server) {
	c.server = server
	c.contactService = server.contacts

	serverGroupV1 := server.router.Group("/api/v1/contacts")
	serverGroupV1.POST("", AuthenticatedMiddleware(), c.addContact)
	serverGroupV1.GET("", AuthenticatedMiddleware(), c.listContacts)
	serverGroupV1.GET("search", AuthenticatedMiddleware(), c.search)
	serverGroupV1.GET(":id", AuthenticatedMiddleware(), c.getContact)
	serverGroupV1.PUT(":id/favorite", AuthenticatedMiddleware(), c.toggleFavorite)
	serverGroupV1.DELETE(":id", AuthenticatedMiddleware(), c.deleteContact)
}

func (c *Contact) addContact(ctx *gin.Context) {
	var request models.AddContactParams
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidContactInput))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	created, err := c.contactService.AddContact(ctx.Request.Context(), activeUser.UserID, request.Name, request.WalletAddress, request.Email)
	if err != nil {
		switch {
		case errors.Is(err, contact.ErrBadAddress):
			ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.InvalidWalletAddress))
		case errors.Is(err, contact.ErrContactExists):
			ctx.JSON(http.StatusConflict, basemodels.NewError(apistrings.ContactExists))
		default:
			ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		}
		return
	}

	ctx.JSON(http.StatusCreated, basemodels.NewSuccess("contact added successfully", created))
}

func (c *Contact) listContacts(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	contacts, err := c.contactService.ListContacts(ctx.Request.Context(), activeUser.UserID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("contacts fetched successfully", contacts))
}

func (c *Contact) search(ctx *gin.Context) {
	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	term := ctx.Query("q")

	results, err := c.contactService.Search(ctx.Request.Context(), activeUser.UserID, term)
	if err != nil {
		if errors.Is(err, contact.ErrSearchSuperseded) {
			// A newer search replaced this one; the client drops stale
			// responses by their 409.
			ctx.JSON(http.StatusConflict, basemodels.NewError(contact.ErrSearchSuperseded.Error()))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("search results", results))
}

func (c *Contact) getContact(ctx *gin.Context) {
	contactID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.ContactNotFound))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	found, err := c.contactService.GetContact(ctx.Request.Context(), activeUser.UserID, contactID)
	if err != nil {
		if errors.Is(err, contact.ErrContactNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.ContactNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("contact fetched successfully", found))
}

func (c *Contact) toggleFavorite(ctx *gin.Context) {
	contactID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.ContactNotFound))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	updated, err := c.contactService.ToggleFavorite(ctx.Request.Context(), activeUser.UserID, contactID)
	if err != nil {
		if errors.Is(err, contact.ErrContactNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.ContactNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("favorite toggled", updated))
}

func (c *Contact) deleteContact(ctx *gin.Context) {
	contactID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, basemodels.NewError(apistrings.ContactNotFound))
		return
	}

	activeUser, err := utils.GetActiveUser(ctx)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, basemodels.NewError(apistrings.UserNotFound))
		return
	}

	if err := c.contactService.DeleteContact(ctx.Request.Context(), activeUser.UserID, contactID); err != nil {
		if errors.Is(err, contact.ErrContactNotFound) {
			ctx.JSON(http.StatusNotFound, basemodels.NewError(apistrings.ContactNotFound))
			return
		}
		ctx.JSON(http.StatusInternalServerError, basemodels.NewError(apistrings.ServerError))
		return
	}

	ctx.JSON(http.StatusOK, basemodels.NewSuccess("contact deleted", nil))
}
