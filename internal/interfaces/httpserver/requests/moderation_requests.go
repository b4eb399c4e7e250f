package requests

// ModerateUpload asks for a policy decision on a freshly uploaded object.
// Either objectPath or mediaUrl must identify the object.
type ModerateUpload struct {
	ObjectPath string `json:"objectPath"`
	MediaURL   string `json:"mediaUrl"`
	MediaType  string `json:"mediaType"`
}

// VerifyMedia gates content creation on a prior moderation check.
type VerifyMedia struct {
	MediaURL  string `json:"mediaUrl" binding:"required"`
	MediaType string `json:"mediaType" binding:"required"`
}
