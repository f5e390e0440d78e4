package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/logging"
	"github.com/ericogr/mtcg/internal/service"
	"github.com/ericogr/mtcg/internal/storage"
)

func statusFor(code service.Code) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeConflict:
		return http.StatusConflict
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Persistence failures are logged and
// reported with fallback, which also replaces not-found messages.
func respondError(c *gin.Context, err error, fallback string) {
	code := service.CodeOf(err)
	status := statusFor(code)
	msg := fallback
	var se *service.Error
	switch {
	case code == service.CodePersistence, code == service.CodeNotFound && fallback != "":
	case errors.As(err, &se):
		msg = se.Message
	}
	if status == http.StatusInternalServerError {
		logging.Error("request failed", err, logging.Fields{"path": c.FullPath()})
		if msg == "" {
			msg = constants.ErrInternal
		}
	}
	c.JSON(status, gin.H{constants.JSONKeyError: msg})
}

// respondBattle writes b, or the error together with the battle when the
// service returned both (a conflict on a completed battle).
func respondBattle(c *gin.Context, b *game.Battle, err error) {
	if err == nil {
		c.JSON(http.StatusOK, b)
		return
	}
	if b != nil && service.CodeOf(err) == service.CodeConflict {
		var se *service.Error
		msg := constants.ErrBattleCompleted
		switch {
		case errors.Is(err, storage.ErrStaleBattle), errors.Is(err, storage.ErrOwnershipChanged):
			msg = constants.ErrBattleChanged
		case errors.As(err, &se):
			msg = se.Message
		}
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: msg, constants.JSONKeyBattle: b})
		return
	}
	fallback := constants.ErrInternal
	if service.CodeOf(err) == service.CodeNotFound {
		fallback = constants.ErrBattleNotFound
	}
	respondError(c, err, fallback)
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return false
	}
	return true
}
