package moderation

const (
	maxImageBytes = 8 * 1024 * 1024
	maxVideoBytes = 10 * 1024 * 1024

	// ProviderBuiltin marks verdicts produced by the static format/size rules.
	ProviderBuiltin = "builtin"
)

var allowedImageMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

var allowedVideoMIMEs = map[string]struct{}{
	"video/mp4":       {},
	"video/quicktime": {},
	"video/webm":      {},
}

// EvaluateBuiltinPolicy applies the static format and size rules for the
// declared media kind. Pure: every input maps deterministically to an
// approved or blocked verdict, never an error.
func EvaluateBuiltinPolicy(mediaType MediaType, mimeType string, byteSize int64) Verdict {
	if mimeType == "" {
		return blockedVerdict("Unsupported media format.")
	}

	if mediaType == MediaTypeImage {
		if _, ok := allowedImageMIMEs[mimeType]; !ok {
			return blockedVerdict("Unsupported image type.")
		}
		if byteSize > maxImageBytes {
			return blockedVerdict("Image exceeds 8 MB upload limit.")
		}
	}

	if mediaType == MediaTypeVideo {
		if _, ok := allowedVideoMIMEs[mimeType]; !ok {
			return blockedVerdict("Unsupported video type.")
		}
		if byteSize > maxVideoBytes {
			return blockedVerdict("Video exceeds 10 MB upload limit.")
		}
	}

	return Verdict{
		Status:   StatusApproved,
		Provider: ProviderBuiltin,
	}
}

func blockedVerdict(reason string) Verdict {
	return Verdict{
		Status:   StatusBlocked,
		Provider: ProviderBuiltin,
		Reason:   &reason,
	}
}
