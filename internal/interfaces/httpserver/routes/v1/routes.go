package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/shadefast/moderation-api/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")
	group.POST("/moderation/uploads", r.handlers.Moderation.ModerateUpload)
	group.POST("/moderation/verify-media", r.handlers.Moderation.VerifyMedia)
	group.POST("/trending/challenges", r.handlers.Trending.Challenges)
	group.POST("/trending/polls", r.handlers.Trending.Polls)
}
