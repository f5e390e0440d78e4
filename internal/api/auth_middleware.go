package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/mtcg/internal/constants"
)

// AuthRequired validates the bearer token and injects the username into context.
func AuthRequired(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		username, err := sessions.Parse(strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix)))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrInvalidSession})
			return
		}
		c.Set(constants.ContextKeyUsername, username)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(constants.ContextKeyUsername)
}
