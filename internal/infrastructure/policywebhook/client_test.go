package policywebhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadefast/moderation-api/internal/config"
	moderation "github.com/shadefast/moderation-api/internal/domain/moderation"
	"github.com/shadefast/moderation-api/internal/infrastructure/policywebhook"
)

type stubPresigner struct {
	url string
	err error
}

func (s *stubPresigner) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s.url, s.err
}

func newClient(url string, strict bool, presigner *stubPresigner) *policywebhook.Client {
	cfg := &config.Config{
		PolicyWebhookURL:     url,
		PolicyWebhookToken:   "secret-token",
		PolicyWebhookTimeout: 2 * time.Second,
		SignedURLTTL:         5 * time.Minute,
	}
	if strict {
		cfg.PolicyStrictMode = "true"
	}
	if presigner == nil {
		presigner = &stubPresigner{url: "https://signed.example/object"}
	}
	return policywebhook.NewClient(cfg, presigner, zerolog.Nop())
}

func checkRequest() moderation.PolicyCheckRequest {
	mime := "image/jpeg"
	return moderation.PolicyCheckRequest{
		UserID:     "u1",
		ObjectPath: "posts/u1/photo.jpg",
		MediaType:  moderation.MediaTypeImage,
		MIMEType:   &mime,
		ByteSize:   2048,
	}
}

func TestCheck_Unconfigured(t *testing.T) {
	client := newClient("", false, nil)
	verdict, err := client.Check(context.Background(), checkRequest())
	require.NoError(t, err)
	assert.Nil(t, verdict)
}

func TestCheck_PayloadAndAuth(t *testing.T) {
	var payload map[string]any
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]any{"decision": "allow"})
	}))
	defer server.Close()

	client := newClient(server.URL, false, nil)
	verdict, err := client.Check(context.Background(), checkRequest())
	require.NoError(t, err)
	require.NotNil(t, verdict)

	assert.Equal(t, "Bearer secret-token", authHeader)
	assert.Equal(t, "u1", payload["userId"])
	assert.Equal(t, "posts/u1/photo.jpg", payload["objectPath"])
	assert.Equal(t, "image", payload["mediaType"])
	assert.Equal(t, "image/jpeg", payload["mimeType"])
	assert.Equal(t, float64(2048), payload["byteSize"])
	assert.Equal(t, "https://signed.example/object", payload["signedUrl"])
}

func TestCheck_PresignFailureIsBestEffort(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]any{"decision": "allow"})
	}))
	defer server.Close()

	client := newClient(server.URL, false, &stubPresigner{err: context.DeadlineExceeded})
	verdict, err := client.Check(context.Background(), checkRequest())
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, moderation.StatusApproved, verdict.Status)
	assert.Nil(t, payload["signedUrl"])
}

func TestCheck_DecisionNormalization(t *testing.T) {
	tests := []struct {
		decision string
		want     moderation.VerdictStatus
	}{
		{"allow", moderation.StatusApproved},
		{"APPROVED", moderation.StatusApproved},
		{"pass", moderation.StatusApproved},
		{"block", moderation.StatusBlocked},
		{"Blocked", moderation.StatusBlocked},
		{"reject", moderation.StatusBlocked},
		{"denied", moderation.StatusBlocked},
		{"review", moderation.StatusBlocked},
	}

	for _, tt := range tests {
		t.Run(tt.decision, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"decision": tt.decision})
			}))
			defer server.Close()

			verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
			require.NoError(t, err)
			require.NotNil(t, verdict)
			assert.Equal(t, tt.want, verdict.Status)
		})
	}
}

func TestCheck_BlockedDefaultReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"decision": "block"})
	}))
	defer server.Close()

	verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
	require.NoError(t, err)
	require.NotNil(t, verdict.Reason)
	assert.Equal(t, "Upload blocked by policy provider.", *verdict.Reason)
}

func TestCheck_FieldNormalization(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"decision":   "block",
			"provider":   " hive ",
			"reason":     "  explicit content  ",
			"confidence": "0.97",
			"labels":     []any{"nudity", "  ", 42, "violence"},
			"reference":  "job-123",
		})
	}))
	defer server.Close()

	verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
	require.NoError(t, err)
	require.NotNil(t, verdict)

	assert.Equal(t, "hive", verdict.Provider)
	require.NotNil(t, verdict.Reason)
	assert.Equal(t, "explicit content", *verdict.Reason)
	require.NotNil(t, verdict.Confidence)
	assert.InDelta(t, 0.97, *verdict.Confidence, 1e-9)
	assert.Equal(t, []string{"nudity", "violence"}, verdict.Labels)
	require.NotNil(t, verdict.ProviderReference)
	assert.Equal(t, "job-123", *verdict.ProviderReference)
}

func TestCheck_NonFiniteConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence string
	}{
		{"infinity", "Infinity"},
		{"negative infinity", "-Infinity"},
		{"nan", "NaN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"decision":   "allow",
					"confidence": tt.confidence,
				})
			}))
			defer server.Close()

			verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
			require.NoError(t, err)
			require.NotNil(t, verdict)
			assert.Equal(t, moderation.StatusApproved, verdict.Status)
			assert.Nil(t, verdict.Confidence)
		})
	}
}

func TestCheck_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
	require.NoError(t, err)
	require.NotNil(t, verdict)
	assert.Equal(t, moderation.StatusApproved, verdict.Status)
	assert.Equal(t, "webhook_fallback", verdict.Provider)
	require.NotNil(t, verdict.Reason)
	assert.Equal(t, "webhook_request_failed", *verdict.Reason)
}

func TestCheck_InvalidDecision(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown word", `{"decision":"maybe"}`},
		{"numeric decision", `{"decision":1}`},
		{"missing decision", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
			require.NoError(t, err)
			require.NotNil(t, verdict)
			assert.Equal(t, moderation.StatusApproved, verdict.Status)
			assert.Equal(t, "webhook_fallback", verdict.Provider)
			require.NotNil(t, verdict.Reason)
			assert.Equal(t, "invalid_webhook_decision", *verdict.Reason)
		})
	}
}

func TestCheck_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	t.Run("lax mode fails open", func(t *testing.T) {
		verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusApproved, verdict.Status)
		assert.Equal(t, "webhook_fallback", verdict.Provider)
		assert.Equal(t, "webhook_http_502", *verdict.Reason)
	})

	t.Run("strict mode fails closed", func(t *testing.T) {
		verdict, err := newClient(server.URL, true, nil).Check(context.Background(), checkRequest())
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusError, verdict.Status)
		assert.Equal(t, "webhook", verdict.Provider)
		assert.Equal(t, "webhook_http_502", *verdict.Reason)
	})
}

func TestCheck_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	t.Run("lax mode fails open", func(t *testing.T) {
		verdict, err := newClient(server.URL, false, nil).Check(context.Background(), checkRequest())
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusApproved, verdict.Status)
		assert.Equal(t, "webhook_request_failed", *verdict.Reason)
	})

	t.Run("strict mode fails closed", func(t *testing.T) {
		verdict, err := newClient(server.URL, true, nil).Check(context.Background(), checkRequest())
		require.NoError(t, err)
		assert.Equal(t, moderation.StatusError, verdict.Status)
		assert.Equal(t, "webhook_request_failed", *verdict.Reason)
	})
}
