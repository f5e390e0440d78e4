package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/engine"
	"github.com/ericogr/mtcg/internal/game"
	"github.com/ericogr/mtcg/internal/service"
	"github.com/ericogr/mtcg/internal/storage"
	"github.com/ericogr/mtcg/internal/version"
)

// Handler groups all HTTP handlers.
type Handler struct {
	repo      storage.Repository
	battles   *service.BattleService
	rng       engine.Rand
	econ      service.Economy
	templates []game.CardTemplate
	sessions  *Sessions
	driver    string
}

type HandlerOptions struct {
	Repo      storage.Repository
	Battles   *service.BattleService
	Rand      engine.Rand
	Economy   service.Economy
	Templates []game.CardTemplate
	Sessions  *Sessions
	// Driver is the configured database driver, reported by Version.
	Driver string
}

func NewHandler(opts HandlerOptions) *Handler {
	return &Handler{
		repo:      opts.Repo,
		battles:   opts.Battles,
		rng:       opts.Rand,
		econ:      opts.Economy,
		templates: opts.Templates,
		sessions:  opts.Sessions,
		driver:    opts.Driver,
	}
}

// Register mounts every route on router.
func (h *Handler) Register(router *gin.Engine) {
	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		// Public endpoints
		apiRoutes.GET(constants.RouteVersion, h.Version)
		apiRoutes.POST(constants.RouteUsers, h.RegisterUser)
		apiRoutes.POST(constants.RouteSessions, h.Login)
		apiRoutes.GET(constants.RouteScoreboard, h.Scoreboard)

		protected := apiRoutes.Group("")
		protected.Use(AuthRequired(h.sessions))

		protected.GET(constants.RouteStats, h.Stats)
		protected.GET(constants.RouteCards, h.ListCards)
		protected.GET(constants.RouteDecks, h.GetDeck)
		protected.PUT(constants.RouteDecks, h.ConfigureDeck)
		protected.POST(constants.RoutePackages, h.BuyPackage)
		protected.GET(constants.RoutePowerUps, h.ListPowerUps)
		protected.POST(constants.RoutePowerUpsClaim, h.ClaimPowerUp)

		protected.POST(constants.RouteBattles, h.CreateBattle)
		protected.GET(constants.RouteBattleByID, h.GetBattle)
		protected.POST(constants.RouteBattleRun, h.RunBattle)
		protected.POST(constants.RouteBattleRound, h.PlayRound)
		protected.POST(constants.RouteBattleUsePowerUp, h.UsePowerUp)
	}
}

// Version reports the build, the database driver and the size of the card
// catalogue packages are drawn from.
func (h *Handler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":   constants.TokenIssuer,
		"version":   version.String(),
		"database":  h.driver,
		"templates": len(h.templates),
	})
}
