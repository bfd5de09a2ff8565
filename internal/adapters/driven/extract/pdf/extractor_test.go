package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deskhand/internal/core/domain"
)

// stubRunner records invocations and returns canned output.
type stubRunner struct {
	out   []byte
	err   error
	name  string
	args  []string
	calls int
}

func (r *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls++
	r.name = name
	r.args = args
	return r.out, r.err
}

func TestSupportedMIMETypes(t *testing.T) {
	runner := &stubRunner{}
	assert.Equal(t, []string{"application/pdf"}, New(runner).SupportedMIMETypes())
}

func TestExtract_InvokesPdftotext(t *testing.T) {
	runner := &stubRunner{out: []byte("Extracted page text.\n")}

	text, err := New(runner).Extract(context.Background(), []byte("%PDF-1.4 fake"), "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Extracted page text.", text)

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, "pdftotext", runner.name)
	require.Len(t, runner.args, 3)
	assert.Equal(t, "-layout", runner.args[0])
	assert.Equal(t, "-", runner.args[2], "output goes to stdout")
}

func TestExtract_RunnerFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exec: pdftotext not found")}

	_, err := New(runner).Extract(context.Background(), []byte("%PDF-1.4"), "report.pdf")
	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "report.pdf")
}
