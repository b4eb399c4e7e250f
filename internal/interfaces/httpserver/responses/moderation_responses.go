package responses

import (
	"time"

	domain "github.com/shadefast/moderation-api/internal/domain/moderation"
)

// ModerationResult wraps the approved verdict under the "verdict" key.
type ModerationResult struct {
	Verdict ApprovedUpload `json:"verdict"`
}

// ApprovedUpload is the verdict detail for an upload that passed moderation.
type ApprovedUpload struct {
	Status            string   `json:"status"`
	MediaType         string   `json:"mediaType"`
	ObjectPath        string   `json:"objectPath"`
	MIMEType          *string  `json:"mimeType"`
	ByteSize          int64    `json:"byteSize"`
	Provider          string   `json:"provider"`
	ProviderReference *string  `json:"providerReference"`
	Confidence        *float64 `json:"confidence"`
	Labels            []string `json:"labels"`
}

func NewModerationResult(upload *domain.ApprovedUpload) ModerationResult {
	labels := upload.Labels
	if labels == nil {
		labels = []string{}
	}
	return ModerationResult{Verdict: ApprovedUpload{
		Status:            string(domain.StatusApproved),
		MediaType:         string(upload.MediaType),
		ObjectPath:        upload.ObjectPath,
		MIMEType:          upload.MIMEType,
		ByteSize:          upload.ByteSize,
		Provider:          upload.Provider,
		ProviderReference: upload.ProviderReference,
		Confidence:        upload.Confidence,
		Labels:            labels,
	}}
}

// VerifiedMedia is returned when a prior check clears the content gate.
type VerifiedMedia struct {
	OK         bool      `json:"ok"`
	Status     string    `json:"status"`
	MediaType  string    `json:"mediaType"`
	ObjectPath string    `json:"objectPath"`
	Provider   string    `json:"provider"`
	CheckedAt  time.Time `json:"checkedAt"`
}

func NewVerifiedMedia(check *domain.PolicyCheck) VerifiedMedia {
	return VerifiedMedia{
		OK:         true,
		Status:     string(check.Status),
		MediaType:  string(check.MediaType),
		ObjectPath: check.ObjectPath,
		Provider:   check.Provider,
		CheckedAt:  check.CheckedAt,
	}
}
