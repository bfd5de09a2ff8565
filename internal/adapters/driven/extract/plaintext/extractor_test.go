package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

func TestNew(t *testing.T) {
	extractor := New()
	require.NotNil(t, extractor)
	assert.IsType(t, &Extractor{}, extractor)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	require.NotEmpty(t, mimeTypes)
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/csv")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestExtract_Success(t *testing.T) {
	text, err := New().Extract(context.Background(), []byte("  Plain text content.\n"), "note.txt")
	require.NoError(t, err)
	assert.Equal(t, "Plain text content.", text)
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{0xff, 0xfe, 0x41}, "bad.txt")
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_UnicodeContent(t *testing.T) {
	content := "多语言文本测试\nこんにちは世界\n🚀 Emoji test 🎉"

	text, err := New().Extract(context.Background(), []byte(content), "unicode.txt")
	require.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestExtract_EmptyContent(t *testing.T) {
	text, err := New().Extract(context.Background(), nil, "empty.txt")
	require.NoError(t, err)
	assert.Empty(t, text)
}
