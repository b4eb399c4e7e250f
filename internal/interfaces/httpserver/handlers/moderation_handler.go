package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/shadefast/moderation-api/internal/config"
	domain "github.com/shadefast/moderation-api/internal/domain/moderation"
	"github.com/shadefast/moderation-api/internal/infrastructure/auth"
	"github.com/shadefast/moderation-api/internal/interfaces/httpserver/requests"
	"github.com/shadefast/moderation-api/internal/interfaces/httpserver/responses"
)

// ModerationHandler exposes the upload moderation endpoints.
type ModerationHandler struct {
	cfg     *config.Config
	service *domain.Service
	log     zerolog.Logger
}

func NewModerationHandler(cfg *config.Config, service *domain.Service, log zerolog.Logger) *ModerationHandler {
	return &ModerationHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "moderation-handler").Logger(),
	}
}

// ModerateUpload runs the moderation pipeline against a freshly uploaded
// object and returns the verdict.
func (h *ModerationHandler) ModerateUpload(c *gin.Context) {
	userID := c.GetString(auth.UserIDKey)
	if userID == "" {
		responses.RespondError(c, http.StatusUnauthorized, "missing_auth", "Authentication required.")
		return
	}

	var req requests.ModerateUpload
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.RespondError(c, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
		return
	}

	upload, err := h.service.ModerateUpload(c.Request.Context(), userID, domain.ModerateUploadRequest{
		ObjectPath: req.ObjectPath,
		MediaURL:   req.MediaURL,
		MediaType:  req.MediaType,
	})
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.NewModerationResult(upload))
}

// VerifyMedia checks that the referenced media passed moderation recently
// enough to be attached to new content.
func (h *ModerationHandler) VerifyMedia(c *gin.Context) {
	userID := c.GetString(auth.UserIDKey)
	if userID == "" {
		responses.RespondError(c, http.StatusUnauthorized, "missing_auth", "Authentication required.")
		return
	}

	var req requests.VerifyMedia
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.RespondError(c, http.StatusBadRequest, "invalid_json", "Request body must be valid JSON.")
		return
	}

	mediaType := domain.MediaType(req.MediaType)
	if mediaType != domain.MediaTypeImage && mediaType != domain.MediaTypeVideo {
		responses.RespondError(c, http.StatusBadRequest, domain.CodeInvalidMediaType,
			"Media type must be image or video.")
		return
	}

	check, err := h.service.VerifyMediaPolicy(c.Request.Context(), userID, req.MediaURL, mediaType)
	if err != nil {
		responses.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.NewVerifiedMedia(check))
}
