package moderation_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/shadefast/moderation-api/internal/config"
	moderation "github.com/shadefast/moderation-api/internal/domain/moderation"
	"github.com/shadefast/moderation-api/internal/utils/apierrors"
)

// jpegHeader is a minimal valid JPEG prefix for the sniffer.
var jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46, 0x00, 0x01}

type mockChecks struct {
	UpsertFunc       func(ctx context.Context, check *moderation.PolicyCheck) error
	LatestByPathFunc func(ctx context.Context, objectPath, userID string) (*moderation.PolicyCheck, error)

	upserted []*moderation.PolicyCheck
}

func (m *mockChecks) Upsert(ctx context.Context, check *moderation.PolicyCheck) error {
	m.upserted = append(m.upserted, check)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, check)
	}
	return nil
}

func (m *mockChecks) LatestByPath(ctx context.Context, objectPath, userID string) (*moderation.PolicyCheck, error) {
	if m.LatestByPathFunc != nil {
		return m.LatestByPathFunc(ctx, objectPath, userID)
	}
	return nil, nil
}

type mockStorage struct {
	DownloadFunc   func(ctx context.Context, key string) ([]byte, error)
	DeleteFunc     func(ctx context.Context, key string) error
	PresignGetFunc func(ctx context.Context, key string, ttl time.Duration) (string, error)

	deleted []string
}

func (m *mockStorage) Download(ctx context.Context, key string) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, key)
	}
	return jpegHeader, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *mockStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if m.PresignGetFunc != nil {
		return m.PresignGetFunc(ctx, key, ttl)
	}
	return "https://signed.example/" + key, nil
}

type mockEnforcement struct {
	IsUserBannedFunc  func(ctx context.Context, userID string) (bool, error)
	BumpRateLimitFunc func(ctx context.Context, userID, action string, window time.Duration, maxRequests int) (moderation.RateLimitResult, error)
}

func (m *mockEnforcement) IsUserBanned(ctx context.Context, userID string) (bool, error) {
	if m.IsUserBannedFunc != nil {
		return m.IsUserBannedFunc(ctx, userID)
	}
	return false, nil
}

func (m *mockEnforcement) BumpRateLimit(ctx context.Context, userID, action string, window time.Duration, maxRequests int) (moderation.RateLimitResult, error) {
	if m.BumpRateLimitFunc != nil {
		return m.BumpRateLimitFunc(ctx, userID, action, window, maxRequests)
	}
	return moderation.RateLimitResult{Allowed: true, CurrentCount: 1}, nil
}

type mockPolicy struct {
	CheckFunc func(ctx context.Context, req moderation.PolicyCheckRequest) (*moderation.Verdict, error)

	calls int
}

func (m *mockPolicy) Check(ctx context.Context, req moderation.PolicyCheckRequest) (*moderation.Verdict, error) {
	m.calls++
	if m.CheckFunc != nil {
		return m.CheckFunc(ctx, req)
	}
	return nil, nil
}

type serviceFixture struct {
	cfg         *config.Config
	checks      *mockChecks
	storage     *mockStorage
	enforcement *mockEnforcement
	policy      *mockPolicy
	service     *moderation.Service
}

func newFixture(strict bool) *serviceFixture {
	cfg := &config.Config{
		PolicyCheckMaxAge: 48 * time.Hour,
		SignedURLTTL:      5 * time.Minute,
	}
	if strict {
		cfg.PolicyStrictMode = "true"
	}

	f := &serviceFixture{
		cfg:         cfg,
		checks:      &mockChecks{},
		storage:     &mockStorage{},
		enforcement: &mockEnforcement{},
		policy:      &mockPolicy{},
	}
	f.service = moderation.NewService(cfg, f.checks, f.storage, f.enforcement, f.policy, zerolog.Nop())
	return f
}

func requireAPIError(t *testing.T, err error, wantCode string, wantStatus int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", wantCode)
	}
	apiErr := apierrors.As(err)
	if apiErr == nil {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != wantCode {
		t.Fatalf("code = %q, want %q", apiErr.Code, wantCode)
	}
	if apiErr.Status != wantStatus {
		t.Fatalf("status = %d, want %d", apiErr.Status, wantStatus)
	}
}

func TestModerateUpload_MissingTarget(t *testing.T) {
	f := newFixture(false)
	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{})
	requireAPIError(t, err, moderation.CodeMissingMediaTarget, http.StatusBadRequest)
}

func TestModerateUpload_ResolvesMediaURL(t *testing.T) {
	f := newFixture(false)
	var downloaded string
	f.storage.DownloadFunc = func(ctx context.Context, key string) ([]byte, error) {
		downloaded = key
		return jpegHeader, nil
	}

	upload, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		MediaURL: "https://cdn.example.com/storage/v1/object/public/media/posts/u1/photo.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if downloaded != "posts/u1/photo.jpg" {
		t.Errorf("downloaded key = %q, want posts/u1/photo.jpg", downloaded)
	}
	if upload.MediaType != moderation.MediaTypeImage {
		t.Errorf("media type = %q, want image", upload.MediaType)
	}
}

func TestModerateUpload_NotOwned(t *testing.T) {
	f := newFixture(false)
	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u2/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeMediaNotOwned, http.StatusForbidden)
}

func TestModerateUpload_DeclaredTypeMismatch(t *testing.T) {
	f := newFixture(false)
	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
		MediaType:  "video",
	})
	requireAPIError(t, err, moderation.CodeInvalidMediaType, http.StatusBadRequest)
}

func TestModerateUpload_BannedUser(t *testing.T) {
	f := newFixture(false)
	f.enforcement.IsUserBannedFunc = func(ctx context.Context, userID string) (bool, error) {
		return true, nil
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeBannedUser, http.StatusForbidden)
}

func TestModerateUpload_EnforcementFailure(t *testing.T) {
	f := newFixture(false)
	f.enforcement.IsUserBannedFunc = func(ctx context.Context, userID string) (bool, error) {
		return false, errors.New("db down")
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeEnforcementCheckFailed, http.StatusInternalServerError)
}

func TestModerateUpload_RateLimited(t *testing.T) {
	f := newFixture(false)
	f.enforcement.BumpRateLimitFunc = func(ctx context.Context, userID, action string, window time.Duration, maxRequests int) (moderation.RateLimitResult, error) {
		if action != "moderate_upload_10m" {
			t.Errorf("action = %q, want moderate_upload_10m", action)
		}
		if window != 10*time.Minute {
			t.Errorf("window = %v, want 10m", window)
		}
		if maxRequests != 30 {
			t.Errorf("maxRequests = %d, want 30", maxRequests)
		}
		return moderation.RateLimitResult{Allowed: false, CurrentCount: 31}, nil
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeRateLimited, http.StatusTooManyRequests)
}

func TestModerateUpload_ObjectNotFound(t *testing.T) {
	f := newFixture(false)
	f.storage.DownloadFunc = func(ctx context.Context, key string) ([]byte, error) {
		return nil, moderation.ErrObjectNotFound
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeMediaNotFound, http.StatusNotFound)
	if len(f.checks.upserted) != 0 {
		t.Errorf("missing object must not persist a check, got %d", len(f.checks.upserted))
	}
}

func TestModerateUpload_ReadFailurePersistsErrorVerdict(t *testing.T) {
	f := newFixture(false)
	f.storage.DownloadFunc = func(ctx context.Context, key string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeMediaReadFailed, http.StatusInternalServerError)

	if len(f.checks.upserted) != 1 {
		t.Fatalf("expected one persisted check, got %d", len(f.checks.upserted))
	}
	check := f.checks.upserted[0]
	if check.Status != moderation.StatusError {
		t.Errorf("status = %q, want error", check.Status)
	}
	if check.Reason == nil || *check.Reason != "unable_to_read_media" {
		t.Errorf("reason = %v, want unable_to_read_media", check.Reason)
	}
}

func TestModerateUpload_BuiltinBlockDeletesObject(t *testing.T) {
	f := newFixture(false)
	oversized := make([]byte, 8*1024*1024+1)
	copy(oversized, jpegHeader)
	f.storage.DownloadFunc = func(ctx context.Context, key string) ([]byte, error) {
		return oversized, nil
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeMediaBlocked, http.StatusUnprocessableEntity)

	if len(f.storage.deleted) != 1 || f.storage.deleted[0] != "posts/u1/photo.jpg" {
		t.Errorf("blocked upload must be deleted, deleted = %v", f.storage.deleted)
	}
	if f.policy.calls != 0 {
		t.Errorf("builtin block must skip the external provider, calls = %d", f.policy.calls)
	}
	if len(f.checks.upserted) != 1 || f.checks.upserted[0].Status != moderation.StatusBlocked {
		t.Errorf("blocked verdict must be persisted")
	}
}

func TestModerateUpload_ApprovedWithoutProvider(t *testing.T) {
	f := newFixture(false)

	upload, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upload.Provider != moderation.ProviderBuiltin {
		t.Errorf("provider = %q, want builtin", upload.Provider)
	}
	if upload.MIMEType == nil || *upload.MIMEType != "image/jpeg" {
		t.Errorf("mime = %v, want image/jpeg", upload.MIMEType)
	}
	if upload.ByteSize != int64(len(jpegHeader)) {
		t.Errorf("byte size = %d, want %d", upload.ByteSize, len(jpegHeader))
	}
	if len(f.checks.upserted) != 1 || f.checks.upserted[0].Status != moderation.StatusApproved {
		t.Errorf("approved verdict must be persisted")
	}
	if len(f.storage.deleted) != 0 {
		t.Errorf("approved upload must not be deleted")
	}
}

func TestModerateUpload_WebhookBlockOverridesBuiltin(t *testing.T) {
	f := newFixture(false)
	reason := "graphic violence"
	f.policy.CheckFunc = func(ctx context.Context, req moderation.PolicyCheckRequest) (*moderation.Verdict, error) {
		if req.ObjectPath != "posts/u1/photo.jpg" {
			t.Errorf("object path = %q", req.ObjectPath)
		}
		return &moderation.Verdict{
			Status:   moderation.StatusBlocked,
			Provider: "webhook",
			Reason:   &reason,
		}, nil
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodeMediaBlocked, http.StatusUnprocessableEntity)

	apiErr := apierrors.As(err)
	if apiErr.Message != reason {
		t.Errorf("message = %q, want webhook reason", apiErr.Message)
	}
	if len(f.storage.deleted) != 1 {
		t.Errorf("blocked upload must be deleted")
	}
}

func TestModerateUpload_ProviderErrorStrictMode(t *testing.T) {
	f := newFixture(true)
	f.policy.CheckFunc = func(ctx context.Context, req moderation.PolicyCheckRequest) (*moderation.Verdict, error) {
		reason := "webhook_http_500"
		return &moderation.Verdict{
			Status:   moderation.StatusError,
			Provider: "webhook",
			Reason:   &reason,
		}, nil
	}

	_, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	requireAPIError(t, err, moderation.CodePolicyProviderUnavailable, http.StatusServiceUnavailable)

	if len(f.storage.deleted) != 1 {
		t.Errorf("strict mode provider failure must delete the object")
	}
	if len(f.checks.upserted) != 1 || f.checks.upserted[0].Status != moderation.StatusError {
		t.Errorf("error verdict must be persisted")
	}
}

func TestModerateUpload_NilProviderVerdictKeepsBuiltin(t *testing.T) {
	f := newFixture(false)
	f.policy.CheckFunc = func(ctx context.Context, req moderation.PolicyCheckRequest) (*moderation.Verdict, error) {
		return nil, nil
	}

	upload, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upload.Provider != moderation.ProviderBuiltin {
		t.Errorf("provider = %q, want builtin", upload.Provider)
	}
}

func TestModerateUpload_PersistFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(false)
	f.checks.UpsertFunc = func(ctx context.Context, check *moderation.PolicyCheck) error {
		return errors.New("unique violation")
	}

	if _, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	}); err != nil {
		t.Fatalf("persistence failure must not fail the request: %v", err)
	}
}

func TestVerifyMediaPolicy(t *testing.T) {
	const mediaURL = "https://cdn.example.com/storage/v1/object/public/media/posts/u1/photo.jpg"
	blockedReason := "nudity"

	tests := []struct {
		name       string
		mediaURL   string
		expected   moderation.MediaType
		check      *moderation.PolicyCheck
		lookupErr  error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "url outside media bucket",
			mediaURL:   "https://example.com/photo.jpg",
			expected:   moderation.MediaTypeImage,
			wantCode:   moderation.CodeInvalidMediaURL,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "foreign path",
			mediaURL:   "https://cdn.example.com/storage/v1/object/public/media/posts/u2/photo.jpg",
			expected:   moderation.MediaTypeImage,
			wantCode:   moderation.CodeMediaNotOwned,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "type mismatch",
			mediaURL:   mediaURL,
			expected:   moderation.MediaTypeVideo,
			wantCode:   moderation.CodeInvalidMediaType,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "lookup failure",
			mediaURL:   mediaURL,
			expected:   moderation.MediaTypeImage,
			lookupErr:  errors.New("db down"),
			wantCode:   moderation.CodeMediaPolicyLookupFailed,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "no prior check",
			mediaURL:   mediaURL,
			expected:   moderation.MediaTypeImage,
			wantCode:   moderation.CodeMediaPolicyMissing,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "blocked check",
			mediaURL: mediaURL,
			expected: moderation.MediaTypeImage,
			check: &moderation.PolicyCheck{
				Status:    moderation.StatusBlocked,
				Reason:    &blockedReason,
				CheckedAt: time.Now(),
			},
			wantCode:   moderation.CodeMediaPolicyBlocked,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:     "errored check",
			mediaURL: mediaURL,
			expected: moderation.MediaTypeImage,
			check: &moderation.PolicyCheck{
				Status:    moderation.StatusError,
				CheckedAt: time.Now(),
			},
			wantCode:   moderation.CodeMediaPolicyError,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:     "stale check",
			mediaURL: mediaURL,
			expected: moderation.MediaTypeImage,
			check: &moderation.PolicyCheck{
				Status:    moderation.StatusApproved,
				CheckedAt: time.Now().Add(-49 * time.Hour),
			},
			wantCode:   moderation.CodeMediaPolicyExpired,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "fresh approved check",
			mediaURL: mediaURL,
			expected: moderation.MediaTypeImage,
			check: &moderation.PolicyCheck{
				Status:    moderation.StatusApproved,
				CheckedAt: time.Now().Add(-time.Hour),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(false)
			f.checks.LatestByPathFunc = func(ctx context.Context, objectPath, userID string) (*moderation.PolicyCheck, error) {
				return tt.check, tt.lookupErr
			}

			check, err := f.service.VerifyMediaPolicy(context.Background(), "u1", tt.mediaURL, tt.expected)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if check == nil {
					t.Fatal("expected check, got nil")
				}
				return
			}
			requireAPIError(t, err, tt.wantCode, tt.wantStatus)
		})
	}
}

func TestModerateUploadTracesPipeline(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	defer otel.SetTracerProvider(previous)

	f := newFixture(false)
	if _, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name() != "moderation.upload" {
		t.Fatalf("unexpected span name %q", spans[0].Name())
	}
	if spans[0].Status().Code == codes.Error {
		t.Fatal("approved upload must not mark the span as errored")
	}

	f = newFixture(false)
	f.storage.DownloadFunc = func(ctx context.Context, key string) ([]byte, error) {
		return nil, moderation.ErrObjectNotFound
	}
	if _, err := f.service.ModerateUpload(context.Background(), "u1", moderation.ModerateUploadRequest{
		ObjectPath: "posts/u1/photo.jpg",
	}); err == nil {
		t.Fatal("expected error for missing object")
	}

	spans = recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Status().Code != codes.Error {
		t.Fatal("failing gate must mark the span as errored")
	}
}
