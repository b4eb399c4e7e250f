package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/shadefast/moderation-api/internal/domain/trending"
	"github.com/shadefast/moderation-api/internal/infrastructure/auth"
	"github.com/shadefast/moderation-api/internal/interfaces/httpserver/requests"
	"github.com/shadefast/moderation-api/internal/interfaces/httpserver/responses"
)

// TrendingHandler exposes the trending rankings.
type TrendingHandler struct {
	service *domain.Service
	log     zerolog.Logger
}

func NewTrendingHandler(service *domain.Service, log zerolog.Logger) *TrendingHandler {
	return &TrendingHandler{
		service: service,
		log:     log.With().Str("component", "trending-handler").Logger(),
	}
}

// Challenges returns the current challenge ranking.
func (h *TrendingHandler) Challenges(c *gin.Context) {
	// An empty body means default limit.
	var req requests.TrendingChallenges
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		responses.RespondError(c, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
		return
	}

	ranked, err := h.service.TrendingChallenges(c.Request.Context(), req.Limit)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.NewTrendingChallengeList(ranked))
}

// Polls returns the current poll ranking for the caller.
func (h *TrendingHandler) Polls(c *gin.Context) {
	userID := c.GetString(auth.UserIDKey)
	if userID == "" {
		responses.RespondError(c, http.StatusUnauthorized, "missing_auth", "Authentication required.")
		return
	}

	var req requests.TrendingPolls
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		responses.RespondError(c, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
		return
	}

	ranked, err := h.service.TrendingPolls(c.Request.Context(), userID, req.Limit, req.CommunityID)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.NewTrendingPollList(ranked))
}
