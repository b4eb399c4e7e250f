package handlers

import (
	"github.com/rs/zerolog"

	"github.com/shadefast/moderation-api/internal/config"
	moderation "github.com/shadefast/moderation-api/internal/domain/moderation"
	trending "github.com/shadefast/moderation-api/internal/domain/trending"
)

// Provider wires HTTP handlers.
type Provider struct {
	Moderation *ModerationHandler
	Trending   *TrendingHandler
}

func NewProvider(
	cfg *config.Config,
	moderationService *moderation.Service,
	trendingService *trending.Service,
	log zerolog.Logger,
) *Provider {
	return &Provider{
		Moderation: NewModerationHandler(cfg, moderationService, log),
		Trending:   NewTrendingHandler(trendingService, log),
	}
}
