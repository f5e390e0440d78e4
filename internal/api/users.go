package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ericogr/mtcg/internal/constants"
	"github.com/ericogr/mtcg/internal/logging"
	"github.com/ericogr/mtcg/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterUser creates an account with the starting coins and rating.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := service.RegisterUser(c.Request.Context(), h.repo, h.econ, req.Username, req.Password)
	if err != nil {
		respondError(c, err, constants.ErrInternal)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := service.Authenticate(c.Request.Context(), h.repo, req.Username, req.Password)
	if err != nil {
		respondError(c, err, constants.ErrInvalidCredentials)
		return
	}
	token, err := h.sessions.Create(u.Username)
	if err != nil {
		logging.Error("failed to sign session", err, logging.Fields{constants.LogFieldUsername: u.Username})
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateSession})
		return
	}
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyToken: token})
}

// Scoreboard returns players by rating, top 10 by default.
func (h *Handler) Scoreboard(c *gin.Context) {
	// optional ?limit=N
	limit := 10
	if s := c.Query("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	users, err := service.Scoreboard(c.Request.Context(), h.repo, limit)
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchBoard)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := service.Stats(c.Request.Context(), h.repo, currentUser(c))
	if err != nil {
		respondError(c, err, constants.ErrFailedFetchStats)
		return
	}
	c.JSON(http.StatusOK, st)
}
