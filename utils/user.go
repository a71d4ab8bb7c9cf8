package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is where the auth middleware parks the verified token
// claims for the rest of the request.
const ContextUserKey = "user"

var ErrNoActiveUser = errors.New("no authenticated user on this request")

// GetActiveUser returns the claims the auth middleware stored on the
// context. An error here means the route was registered without the
// middleware or the middleware let an unauthenticated request through.
func GetActiveUser(ctx *gin.Context) (TokenObject, error) {
	value, exists := ctx.Get(ContextUserKey)
	if !exists {
		return TokenObject{}, ErrNoActiveUser
	}

	user, ok := value.(TokenObject)
	if !ok {
		return TokenObject{}, ErrNoActiveUser
	}

	return user, nil
}
