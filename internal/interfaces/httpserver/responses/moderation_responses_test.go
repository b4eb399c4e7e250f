package responses_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/shadefast/moderation-api/internal/domain/moderation"
	"github.com/shadefast/moderation-api/internal/interfaces/httpserver/responses"
)

func TestModerationResultEmitsOptionalFields(t *testing.T) {
	mime := "image/jpeg"
	body, err := json.Marshal(responses.NewModerationResult(&domain.ApprovedUpload{
		MediaType:  domain.MediaTypeImage,
		ObjectPath: "posts/u1/photo.jpg",
		MIMEType:   &mime,
		ByteSize:   2048,
		Provider:   domain.ProviderBuiltin,
	}))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	verdict, ok := decoded["verdict"].(map[string]any)
	require.True(t, ok)

	// Clients see every verdict field even when no provider set them.
	for _, key := range []string{"providerReference", "confidence", "labels"} {
		_, present := verdict[key]
		assert.True(t, present, key)
	}
	assert.Nil(t, verdict["providerReference"])
	assert.Nil(t, verdict["confidence"])
	assert.Equal(t, []any{}, verdict["labels"])
}
