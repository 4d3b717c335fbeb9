package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageContentType(t *testing.T) {
	assert.True(t, IsImageContentType("image/png"))
	assert.True(t, IsImageContentType(" IMAGE/JPEG "))
	assert.False(t, IsImageContentType("application/pdf"))
	assert.False(t, IsImageContentType(""))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "heart_scan.png", SanitizeFilename("heart scan.png"))
	assert.Equal(t, "x.jpg", SanitizeFilename("../../x.jpg"))
	assert.Equal(t, "x.jpg", SanitizeFilename(`C:\Users\doc\x.jpg`))
	assert.Equal(t, "image", SanitizeFilename(".."))
}

func TestStagingKey(t *testing.T) {
	u := New()

	key, err := u.StagingKey("01DRAFT", "My Photo.png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "drafts/01DRAFT/"))
	assert.True(t, strings.HasSuffix(key, "-My_Photo.png"))
}

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()

	a, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)
	b, err := u.NewULIDFromTimestamp(time.Now())
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}
