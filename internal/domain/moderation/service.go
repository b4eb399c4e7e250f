package moderation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shadefast/moderation-api/internal/config"
	"github.com/shadefast/moderation-api/internal/infrastructure/metrics"
	"github.com/shadefast/moderation-api/internal/infrastructure/observability"
	"github.com/shadefast/moderation-api/utils/checkid"
)

const (
	rateLimitAction = "moderate_upload_10m"
	rateLimitWindow = 10 * time.Minute
	rateLimitMax    = 30
)

// ErrObjectNotFound is returned by ObjectStorage when no object exists at
// the requested path.
var ErrObjectNotFound = errors.New("object not found")

// CheckRepository persists policy check records.
type CheckRepository interface {
	Upsert(ctx context.Context, check *PolicyCheck) error
	LatestByPath(ctx context.Context, objectPath, userID string) (*PolicyCheck, error)
}

// ObjectStorage reads and removes uploaded objects.
type ObjectStorage interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Enforcement exposes the datastore-side ban and rate limit checks.
type Enforcement interface {
	IsUserBanned(ctx context.Context, userID string) (bool, error)
	BumpRateLimit(ctx context.Context, userID, action string, window time.Duration, maxRequests int) (RateLimitResult, error)
}

// PolicyProvider is the optional external moderation decision point. A nil
// verdict with nil error means no provider is configured and the builtin
// verdict stands.
type PolicyProvider interface {
	Check(ctx context.Context, req PolicyCheckRequest) (*Verdict, error)
}

// PolicyCheckRequest is the context handed to the external policy provider.
type PolicyCheckRequest struct {
	UserID     string
	ObjectPath string
	MediaType  MediaType
	MIMEType   *string
	ByteSize   int64
}

// ModerateUploadRequest is the payload for one moderation run.
type ModerateUploadRequest struct {
	ObjectPath string
	MediaURL   string
	MediaType  string
}

// Service drives the upload moderation pipeline.
type Service struct {
	cfg         *config.Config
	checks      CheckRepository
	storage     ObjectStorage
	enforcement Enforcement
	policy      PolicyProvider
	log         zerolog.Logger
}

func NewService(
	cfg *config.Config,
	checks CheckRepository,
	storage ObjectStorage,
	enforcement Enforcement,
	policy PolicyProvider,
	log zerolog.Logger,
) *Service {
	return &Service{
		cfg:         cfg,
		checks:      checks,
		storage:     storage,
		enforcement: enforcement,
		policy:      policy,
		log:         log.With().Str("component", "moderation-service").Logger(),
	}
}

// ModerateUpload runs the full moderation pipeline for one freshly uploaded
// object. The pipeline is strictly linear: each gate is awaited before the
// next, and the first failing gate is terminal.
func (s *Service) ModerateUpload(ctx context.Context, userID string, req ModerateUploadRequest) (*ApprovedUpload, error) {
	ctx, span := observability.StartModerationSpan(ctx, userID, s.resolveObjectPath(req))
	defer span.End()

	upload, err := s.moderateUpload(ctx, userID, req)
	if err != nil {
		observability.RecordError(span, err)
	}
	return upload, err
}

func (s *Service) moderateUpload(ctx context.Context, userID string, req ModerateUploadRequest) (*ApprovedUpload, error) {
	objectPath := s.resolveObjectPath(req)
	if objectPath == "" {
		return nil, badRequest(CodeMissingMediaTarget, "Provide a valid objectPath or mediaUrl.")
	}

	if !IsOwnedPath(objectPath, userID) {
		return nil, forbidden(CodeMediaNotOwned, "Media must be uploaded by the current anonymous user.")
	}

	mediaType := resolveMediaType(req.MediaType, objectPath)
	if mediaType == "" {
		return nil, badRequest(CodeInvalidMediaType, "Media type must be image or video and match object path.")
	}

	banned, err := s.enforcement.IsUserBanned(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("enforcement check failed")
		return nil, internal(CodeEnforcementCheckFailed, "Unable to validate enforcement status.", err)
	}
	if banned {
		return nil, forbidden(CodeBannedUser, "This anonymous user is currently restricted from uploading media.")
	}

	rate, err := s.enforcement.BumpRateLimit(ctx, userID, rateLimitAction, rateLimitWindow, rateLimitMax)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("rate limit check failed")
		return nil, internal(CodeRateLimitCheckFailed, "Unable to validate upload limits.", err)
	}
	if !rate.Allowed {
		return nil, NewError(CodeRateLimited, http.StatusTooManyRequests,
			"Too many media uploads in a short period. Please retry later.", nil)
	}

	data, err := s.storage.Download(ctx, objectPath)
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, NewError(CodeMediaNotFound, http.StatusNotFound, "Uploaded media was not found.", err)
		}

		s.log.Error().Err(err).Str("object_path", objectPath).Msg("storage download failed")
		reason := "unable_to_read_media"
		s.persistCheck(ctx, userID, objectPath, mediaType, nil, 0, Verdict{
			Status:   StatusError,
			Provider: ProviderBuiltin,
			Reason:   &reason,
		})
		return nil, internal(CodeMediaReadFailed, "Unable to inspect uploaded media. Please retry upload.", err)
	}

	byteSize := int64(len(data))
	mimeType := DetectMIMEType(data, objectPath)
	verdict := EvaluateBuiltinPolicy(mediaType, mimeType, byteSize)

	var detectedMIME *string
	if mimeType != "" {
		detectedMIME = &mimeType
	}

	if verdict.Status == StatusApproved && s.policy != nil {
		external, err := s.policy.Check(ctx, PolicyCheckRequest{
			UserID:     userID,
			ObjectPath: objectPath,
			MediaType:  mediaType,
			MIMEType:   detectedMIME,
			ByteSize:   byteSize,
		})
		if err != nil {
			// The provider normalizes its own failures into verdicts; an
			// error here is a programming bug, not a policy outcome.
			s.log.Error().Err(err).Str("object_path", objectPath).Msg("policy provider returned unexpected error")
		} else if external != nil {
			verdict = *external
		}
	}

	s.persistCheck(ctx, userID, objectPath, mediaType, detectedMIME, byteSize, verdict)
	metrics.RecordVerdict(string(mediaType), string(verdict.Status), verdict.Provider)

	if verdict.Status == StatusBlocked {
		s.removeObject(ctx, objectPath)
		message := "Upload blocked by safety policy."
		if verdict.Reason != nil {
			message = *verdict.Reason
		}
		return nil, NewError(CodeMediaBlocked, http.StatusUnprocessableEntity, message, nil)
	}

	if verdict.Status == StatusError && s.cfg.StrictMode() {
		s.removeObject(ctx, objectPath)
		return nil, NewError(CodePolicyProviderUnavailable, http.StatusServiceUnavailable,
			"Media safety checks are temporarily unavailable. Please retry later.", nil)
	}

	return &ApprovedUpload{
		MediaType:         mediaType,
		ObjectPath:        objectPath,
		MIMEType:          detectedMIME,
		ByteSize:          byteSize,
		Provider:          verdict.Provider,
		ProviderReference: verdict.ProviderReference,
		Confidence:        verdict.Confidence,
		Labels:            verdict.Labels,
	}, nil
}

// VerifyMediaPolicy gates post creation on the most recent policy check for
// the referenced media. Records older than the configured max age are
// treated as absent.
func (s *Service) VerifyMediaPolicy(ctx context.Context, userID, mediaURL string, expected MediaType) (*PolicyCheck, error) {
	objectPath := ExtractObjectPath(mediaURL)
	if objectPath == "" {
		return nil, badRequest(CodeInvalidMediaURL, "Media URL must reference the ShadeFast media bucket.")
	}

	if !IsOwnedPath(objectPath, userID) {
		return nil, forbidden(CodeMediaNotOwned, "Media must be uploaded by the current anonymous user.")
	}

	inferred := InferMediaType(objectPath)
	if inferred == "" || inferred != expected {
		return nil, badRequest(CodeInvalidMediaType, "Media type does not match upload policy.")
	}

	check, err := s.checks.LatestByPath(ctx, objectPath, userID)
	if err != nil {
		s.log.Error().Err(err).Str("object_path", objectPath).Msg("policy check lookup failed")
		return nil, internal(CodeMediaPolicyLookupFailed, "Unable to verify media safety checks.", err)
	}
	if check == nil {
		return nil, badRequest(CodeMediaPolicyMissing, "Media has not passed upload safety checks yet.")
	}

	if check.Status == StatusBlocked {
		message := "Media violated upload safety checks."
		if check.Reason != nil {
			message = *check.Reason
		}
		return nil, NewError(CodeMediaPolicyBlocked, http.StatusUnprocessableEntity, message, nil)
	}
	if check.Status == StatusError {
		return nil, NewError(CodeMediaPolicyError, http.StatusServiceUnavailable,
			"Media safety checks could not be completed. Please re-upload.", nil)
	}

	if time.Since(check.CheckedAt) > s.cfg.PolicyCheckMaxAge {
		return nil, badRequest(CodeMediaPolicyExpired, "Media safety check expired. Please re-upload before posting.")
	}

	return check, nil
}

func (s *Service) resolveObjectPath(req ModerateUploadRequest) string {
	if objectPath := strings.TrimSpace(req.ObjectPath); objectPath != "" {
		return objectPath
	}

	mediaURL := strings.TrimSpace(req.MediaURL)
	if mediaURL == "" {
		return ""
	}
	return ExtractObjectPath(mediaURL)
}

func resolveMediaType(provided string, objectPath string) MediaType {
	inferred := InferMediaType(objectPath)
	if provided == "" {
		return inferred
	}

	declared := MediaType(provided)
	if declared != MediaTypeImage && declared != MediaTypeVideo {
		return ""
	}
	if inferred != "" && inferred != declared {
		return ""
	}
	return declared
}

// persistCheck records the verdict for audit and for the post-creation gate.
// Persistence is best-effort telemetry: failures are logged and never change
// the HTTP outcome already determined by the pipeline.
func (s *Service) persistCheck(
	ctx context.Context,
	userID, objectPath string,
	mediaType MediaType,
	mimeType *string,
	byteSize int64,
	verdict Verdict,
) {
	check := &PolicyCheck{
		ID:                checkid.New(),
		UserID:            userID,
		ObjectPath:        objectPath,
		MediaType:         mediaType,
		MIMEType:          mimeType,
		ByteSize:          byteSize,
		Status:            verdict.Status,
		Provider:          verdict.Provider,
		ProviderReference: verdict.ProviderReference,
		Reason:            verdict.Reason,
		Confidence:        verdict.Confidence,
		Labels:            verdict.Labels,
		CheckedAt:         time.Now().UTC(),
	}

	if err := s.checks.Upsert(ctx, check); err != nil {
		s.log.Error().Err(err).Str("object_path", objectPath).Msg("policy check persistence failed")
	}
}

// removeObject deletes a rejected upload. Removal is advisory: failures are
// logged, never surfaced.
func (s *Service) removeObject(ctx context.Context, objectPath string) {
	if err := s.storage.Delete(ctx, objectPath); err != nil {
		s.log.Error().Err(err).Str("object_path", objectPath).Msg("media removal failed")
	}
}
