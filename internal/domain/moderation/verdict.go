package moderation

import "time"

// MediaType is the declared kind of an uploaded object.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// VerdictStatus is the outcome of a policy evaluation.
type VerdictStatus string

const (
	StatusApproved VerdictStatus = "approved"
	StatusBlocked  VerdictStatus = "blocked"
	StatusError    VerdictStatus = "error"
)

// Verdict is the result of evaluating one upload against moderation policy.
// Exactly one of approved/blocked/error holds; a blocked verdict always
// carries a reason.
type Verdict struct {
	Status            VerdictStatus
	Provider          string
	ProviderReference *string
	Reason            *string
	Confidence        *float64
	Labels            []string
}

// PolicyCheck is the persisted record of a verdict, keyed by object path.
// Only the latest check per path is retained.
type PolicyCheck struct {
	ID                string
	UserID            string
	ObjectPath        string
	MediaType         MediaType
	MIMEType          *string
	ByteSize          int64
	Status            VerdictStatus
	Provider          string
	ProviderReference *string
	Reason            *string
	Confidence        *float64
	Labels            []string
	CheckedAt         time.Time
}

// ApprovedUpload is the full detail returned for an upload that passed
// moderation.
type ApprovedUpload struct {
	MediaType         MediaType
	ObjectPath        string
	MIMEType          *string
	ByteSize          int64
	Provider          string
	ProviderReference *string
	Confidence        *float64
	Labels            []string
}

// RateLimitResult reports the outcome of a rate limit bump.
type RateLimitResult struct {
	Allowed      bool
	CurrentCount int
}
