package utils

import (
	"github.com/gin-gonic/gin"
)

// UserClaims is the resolved session identity. Token issuance is owned by the
// account service; this API only consumes sessions.
type UserClaims struct {
	UserID uint `json:"user_id"`
}

type contextKey string

const UserContextKey contextKey = "user"

func GetUser(c *gin.Context) *UserClaims {
	user, exists := c.Get(string(UserContextKey))
	if !exists {
		return nil
	}
	if userClaims, ok := user.(*UserClaims); ok {
		return userClaims
	}
	return nil
}
