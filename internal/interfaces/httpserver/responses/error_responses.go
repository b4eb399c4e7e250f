package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shadefast/moderation-api/internal/utils/apierrors"
)

// ErrorBody is the stable error envelope: a machine-readable code and a
// human-readable message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorBody under the "error" key.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// RespondError writes the error envelope with an explicit status.
func RespondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message},
	})
}

// HandleError maps a service error onto the envelope. Errors without an
// APIError in their chain become opaque 500s.
func HandleError(c *gin.Context, err error) {
	if apiErr := apierrors.As(err); apiErr != nil {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr.Message)
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal_error", "Internal server error.")
}
