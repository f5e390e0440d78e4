package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/service"
)

type createBattleRequest struct {
	CardIDs  []uint `json:"card_ids"`
	Opponent string `json:"opponent"`
}

// CreateBattle starts a battle between the caller's deck and the opponent
// (the AI when none is given). No rounds are played.
func (h *Handler) CreateBattle(c *gin.Context) {
	var req createBattleRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	b, err := h.battles.CreateBattle(c.Request.Context(), service.CreateBattleRequest{
		PlayerUsername:   currentUser(c),
		CardIDs:          req.CardIDs,
		OpponentUsername: req.Opponent,
	})
	if err != nil {
		respondError(c, err, constants.ErrInternal)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// participantBattle loads the battle and ensures the caller plays in it.
// It writes the response and returns nil when the request must stop.
func (h *Handler) participantBattle(c *gin.Context) *game.Battle {
	b, err := h.battles.GetStatus(c.Request.Context(), c.Param("battleID"))
	if err != nil {
		respondError(c, err, constants.ErrBattleNotFound)
		return nil
	}
	user := currentUser(c)
	if b.PlayerUsername != user && b.OpponentUsername != user {
		c.JSON(http.StatusForbidden, gin.H{constants.JSONKeyError: constants.ErrNotBattlePlayer})
		return nil
	}
	return b
}

func (h *Handler) GetBattle(c *gin.Context) {
	b := h.participantBattle(c)
	if b == nil {
		return
	}
	c.JSON(http.StatusOK, b)
}

// RunBattle plays the battle to completion.
func (h *Handler) RunBattle(c *gin.Context) {
	b := h.participantBattle(c)
	if b == nil {
		return
	}
	b, err := h.battles.RunBattle(c.Request.Context(), b.ID)
	respondBattle(c, b, err)
}

// PlayRound advances the battle by one round.
func (h *Handler) PlayRound(c *gin.Context) {
	b := h.participantBattle(c)
	if b == nil {
		return
	}
	b, err := h.battles.PlayRound(c.Request.Context(), b.ID)
	respondBattle(c, b, err)
}

// UsePowerUp doubles the caller's damage for the next round.
func (h *Handler) UsePowerUp(c *gin.Context) {
	b := h.participantBattle(c)
	if b == nil {
		return
	}
	b, err := h.battles.UsePowerUp(c.Request.Context(), b.ID, currentUser(c))
	respondBattle(c, b, err)
}
