package moderation

import (
	"github.com/shadefast/moderation-api/internal/utils/apierrors"
)

// Stable error codes surfaced by the moderation pipeline. Internal errors
// never cross the HTTP boundary unconverted.
const (
	CodeMissingMediaTarget        = "missing_media_target"
	CodeMediaNotOwned             = "media_not_owned"
	CodeInvalidMediaType          = "invalid_media_type"
	CodeBannedUser                = "banned_user"
	CodeEnforcementCheckFailed    = "enforcement_check_failed"
	CodeRateLimited               = "rate_limited"
	CodeRateLimitCheckFailed      = "rate_limit_check_failed"
	CodeMediaNotFound             = "media_not_found"
	CodeMediaReadFailed           = "media_read_failed"
	CodeMediaBlocked              = "media_blocked"
	CodePolicyProviderUnavailable = "policy_provider_unavailable"

	CodeInvalidMediaURL         = "invalid_media_url"
	CodeMediaPolicyLookupFailed = "media_policy_lookup_failed"
	CodeMediaPolicyMissing      = "media_policy_missing"
	CodeMediaPolicyBlocked      = "media_policy_blocked"
	CodeMediaPolicyError        = "media_policy_error"
	CodeMediaPolicyExpired      = "media_policy_expired"
)

// NewError builds a pipeline error with an explicit HTTP status.
func NewError(code string, status int, message string, err error) *apierrors.APIError {
	return apierrors.New(code, status, message, err)
}

func badRequest(code, message string) *apierrors.APIError {
	return apierrors.BadRequest(code, message)
}

func forbidden(code, message string) *apierrors.APIError {
	return apierrors.Forbidden(code, message)
}

func internal(code, message string, err error) *apierrors.APIError {
	return apierrors.Internal(code, message, err)
}
