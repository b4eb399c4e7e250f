package moderation

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	imagePathPrefix = "posts/"
	videoPathPrefix = "videos/"
)

var mediaPathPattern = regexp.MustCompile(`/storage/v1/object/(?:public|sign)/media/(.+)$`)

// ExtractObjectPath pulls the object path out of a media bucket URL.
// Returns "" when the URL does not reference the media bucket.
func ExtractObjectPath(mediaURL string) string {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return ""
	}

	match := mediaPathPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return ""
	}

	unescaped, err := url.PathUnescape(match[1])
	if err != nil {
		return ""
	}
	return unescaped
}

// InferMediaType derives the media kind from the object path's storage
// prefix. Returns "" for paths outside the known roots.
func InferMediaType(objectPath string) MediaType {
	if strings.HasPrefix(objectPath, imagePathPrefix) {
		return MediaTypeImage
	}
	if strings.HasPrefix(objectPath, videoPathPrefix) {
		return MediaTypeVideo
	}
	return ""
}

// IsOwnedPath reports whether the object path sits under the uploader's
// identity segment.
func IsOwnedPath(objectPath, userID string) bool {
	if userID == "" || objectPath == "" {
		return false
	}
	return strings.HasPrefix(objectPath, imagePathPrefix+userID+"/") ||
		strings.HasPrefix(objectPath, videoPathPrefix+userID+"/")
}
