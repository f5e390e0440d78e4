package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/service"
)

type deckRequest struct {
	CardIDs []uint `json:"card_ids"`
}

func (h *Handler) ListCards(c *gin.Context) {
	cards, err := service.ListCards(c.Request.Context(), h.repo, currentUser(c))
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchCards)
		return
	}
	c.JSON(http.StatusOK, cards)
}

func (h *Handler) GetDeck(c *gin.Context) {
	deck, err := service.GetDeck(c.Request.Context(), h.repo, currentUser(c))
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchCards)
		return
	}
	c.JSON(http.StatusOK, deck)
}

// ConfigureDeck replaces the caller's active deck.
func (h *Handler) ConfigureDeck(c *gin.Context) {
	var req deckRequest
	if !bindJSON(c, &req) {
		return
	}
	deck, err := service.ConfigureDeck(c.Request.Context(), h.repo, currentUser(c), req.CardIDs)
	if err != nil {
		respondError(c, err, constants.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, deck)
}

// BuyPackage spends coins on a fresh set of cards.
func (h *Handler) BuyPackage(c *gin.Context) {
	cards, err := service.BuyPackage(c.Request.Context(), h.repo, h.rng, h.econ, h.templates, currentUser(c))
	if err != nil {
		respondError(c, err, constants.ErrInternal)
		return
	}
	c.JSON(http.StatusCreated, cards)
}

func (h *Handler) ListPowerUps(c *gin.Context) {
	out, err := service.ListPowerUps(c.Request.Context(), h.repo, currentUser(c))
	if err != nil {
		respondError(c, err, constants.ErrInternal)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ClaimPowerUp(c *gin.Context) {
	p, err := service.ClaimPowerUp(c.Request.Context(), h.repo, currentUser(c))
	if err != nil {
		respondError(c, err, constants.ErrInternal)
		return
	}
	c.JSON(http.StatusCreated, p)
}
