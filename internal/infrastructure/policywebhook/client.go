package policywebhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shadefast/moderation-api/internal/config"
	domain "github.com/shadefast/moderation-api/internal/domain/moderation"
	"github.com/shadefast/moderation-api/internal/infrastructure/metrics"
)

const (
	providerWebhook  = "webhook"
	providerFallback = "webhook_fallback"
)

// Presigner creates a time-limited read URL so the provider can fetch the
// object content without broader storage access.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Client calls the configured external policy webhook and normalizes its
// response into a verdict. When no webhook URL is configured every check
// returns nil and the builtin verdict stands.
type Client struct {
	cfg        *config.Config
	presigner  Presigner
	httpClient *http.Client
	log        zerolog.Logger
}

func NewClient(cfg *config.Config, presigner Presigner, log zerolog.Logger) *Client {
	return &Client{
		cfg:       cfg,
		presigner: presigner,
		httpClient: &http.Client{
			Timeout: cfg.PolicyWebhookTimeout,
		},
		log: log.With().Str("component", "policy-webhook").Logger(),
	}
}

type checkPayload struct {
	UserID     string  `json:"userId"`
	ObjectPath string  `json:"objectPath"`
	MediaType  string  `json:"mediaType"`
	MIMEType   *string `json:"mimeType"`
	ByteSize   int64   `json:"byteSize"`
	SignedURL  *string `json:"signedUrl"`
}

// webhookResponse holds the provider's fields as raw JSON; every field is
// normalized explicitly rather than trusted.
type webhookResponse struct {
	Decision   json.RawMessage `json:"decision"`
	Provider   json.RawMessage `json:"provider"`
	Reason     json.RawMessage `json:"reason"`
	Confidence json.RawMessage `json:"confidence"`
	Labels     json.RawMessage `json:"labels"`
	Reference  json.RawMessage `json:"reference"`
}

// Check performs exactly one outbound call when a webhook is configured.
// Transport and semantic failures never escape as errors: strict mode maps
// them to an error verdict, otherwise the check fails open as approved.
func (c *Client) Check(ctx context.Context, req domain.PolicyCheckRequest) (*domain.Verdict, error) {
	if c.cfg.PolicyWebhookURL == "" {
		return nil, nil
	}

	payload := checkPayload{
		UserID:     req.UserID,
		ObjectPath: req.ObjectPath,
		MediaType:  string(req.MediaType),
		MIMEType:   req.MIMEType,
		ByteSize:   req.ByteSize,
		SignedURL:  c.signedURL(ctx, req.ObjectPath),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return c.failureVerdict("webhook_request_failed"), nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.PolicyWebhookURL, bytes.NewReader(body))
	if err != nil {
		return c.failureVerdict("webhook_request_failed"), nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.PolicyWebhookToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.PolicyWebhookToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Str("object_path", req.ObjectPath).Msg("webhook request failed")
		metrics.RecordWebhookCall("transport_error", time.Since(start).Seconds())
		return c.failureVerdict("webhook_request_failed"), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordWebhookCall(fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start).Seconds())
		return c.failureVerdict(fmt.Sprintf("webhook_http_%d", resp.StatusCode)), nil
	}

	var decoded webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		metrics.RecordWebhookCall("invalid_body", time.Since(start).Seconds())
		return c.failureVerdict("webhook_request_failed"), nil
	}

	decision := normalizeDecision(decoded.Decision)
	if decision == "" {
		metrics.RecordWebhookCall("invalid_decision", time.Since(start).Seconds())
		return c.failureVerdict("invalid_webhook_decision"), nil
	}
	metrics.RecordWebhookCall("ok", time.Since(start).Seconds())

	provider := providerWebhook
	if name := normalizeString(decoded.Provider); name != nil {
		provider = *name
	}

	verdict := &domain.Verdict{
		Status:            decision,
		Provider:          provider,
		ProviderReference: normalizeString(decoded.Reference),
		Reason:            normalizeString(decoded.Reason),
		Confidence:        normalizeNumber(decoded.Confidence),
		Labels:            normalizeLabels(decoded.Labels),
	}

	if decision == domain.StatusBlocked && verdict.Reason == nil {
		reason := "Upload blocked by policy provider."
		verdict.Reason = &reason
	}
	return verdict, nil
}

// signedURL is best effort: a failure to sign must not abort the check.
func (c *Client) signedURL(ctx context.Context, objectPath string) *string {
	signed, err := c.presigner.PresignGet(ctx, objectPath, c.cfg.SignedURLTTL)
	if err != nil || signed == "" {
		if err != nil {
			c.log.Warn().Err(err).Str("object_path", objectPath).Msg("signed url generation failed")
		}
		return nil
	}
	return &signed
}

// failureVerdict applies the strict/fail-open branching shared by transport
// failures, bad statuses and invalid decisions.
func (c *Client) failureVerdict(reason string) *domain.Verdict {
	if c.cfg.StrictMode() {
		return &domain.Verdict{
			Status:   domain.StatusError,
			Provider: providerWebhook,
			Reason:   &reason,
		}
	}
	return &domain.Verdict{
		Status:   domain.StatusApproved,
		Provider: providerFallback,
		Reason:   &reason,
	}
}

func normalizeDecision(raw json.RawMessage) domain.VerdictStatus {
	var value string
	if len(raw) == 0 || json.Unmarshal(raw, &value) != nil {
		return ""
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "allow", "approved", "pass":
		return domain.StatusApproved
	case "block", "blocked", "reject", "denied", "review":
		return domain.StatusBlocked
	default:
		return ""
	}
}

func normalizeString(raw json.RawMessage) *string {
	var value string
	if len(raw) == 0 || json.Unmarshal(raw, &value) != nil {
		return nil
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// normalizeNumber accepts a finite JSON number or a finite numeric string;
// the scale is opaque and passed through unbounded.
func normalizeNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return finiteNumber(number)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return finiteNumber(parsed)
		}
	}
	return nil
}

// finiteNumber drops Inf and NaN, which strconv accepts but the JSON
// responses cannot carry.
func finiteNumber(value float64) *float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return nil
	}
	return &value
}

func normalizeLabels(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var values []interface{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}

	labels := make([]string, 0, len(values))
	for _, value := range values {
		text, ok := value.(string)
		if !ok {
			continue
		}
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			labels = append(labels, trimmed)
		}
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}
