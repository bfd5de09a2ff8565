package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// fakeExtractor claims a fixed set of MIME types.
type fakeExtractor struct {
	mimes []string
	text  string
}

func (f *fakeExtractor) SupportedMIMETypes() []string { return f.mimes }

func (f *fakeExtractor) Extract(context.Context, []byte, string) (string, error) {
	return f.text, nil
}

func TestRegistry_ForMIME(t *testing.T) {
	registry := NewRegistry()
	plain := &fakeExtractor{mimes: []string{"text/plain"}, text: "plain"}
	registry.Register(plain)

	e, err := registry.ForMIME("text/plain")
	require.NoError(t, err)
	assert.Same(t, plain, e)
}

func TestRegistry_NormalisesMIME(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&fakeExtractor{mimes: []string{"text/plain"}})

	tests := []string{
		"text/plain; charset=utf-8",
		"TEXT/PLAIN",
		"  text/plain  ",
	}
	for _, mime := range tests {
		e, err := registry.ForMIME(mime)
		require.NoError(t, err, "mime %q", mime)
		assert.NotNil(t, e)
	}
}

func TestRegistry_Unsupported(t *testing.T) {
	registry := NewRegistry()

	e, err := registry.ForMIME("application/x-unknown")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	assert.Contains(t, err.Error(), "application/x-unknown")
	assert.Nil(t, e)
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	registry := NewRegistry()
	first := &fakeExtractor{mimes: []string{"text/plain"}, text: "first"}
	second := &fakeExtractor{mimes: []string{"text/plain"}, text: "second"}
	registry.Register(first)
	registry.Register(second)

	e, err := registry.ForMIME("text/plain")
	require.NoError(t, err)
	assert.Same(t, second, e)
}
