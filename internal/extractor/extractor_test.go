// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extractor

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitallegionke/USFM/pkg/types"
)

func TestPlainTextExtract(t *testing.T) {
	tests := []struct {
		name    string
		doc     []byte
		want    string
		wantErr bool
	}{
		{"plain", []byte("notes on Genesis"), "notes on Genesis", false},
		{"strips BOM", append([]byte{0xEF, 0xBB, 0xBF}, []byte("notes")...), "notes", false},
		{"normalizes CRLF", []byte("line one\r\nline two\r\n"), "line one\nline two\n", false},
		{"rejects binary", []byte{0xFF, 0xFE, 0x00, 0x01}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlainText{}.Extract(tt.doc, "notes.txt")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fakeRuntime satisfies container.Runtime for pandoc tests.
type fakeRuntime struct {
	imageErr error
	output   string
	lastArgs []string
}

func (f *fakeRuntime) Name() string             { return "docker" }
func (f *fakeRuntime) Available() bool          { return true }
func (f *fakeRuntime) ImageExists(string) error { return f.imageErr }

func (f *fakeRuntime) Run(_ string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.lastArgs = args
	io.Copy(io.Discard, stdin)
	fmt.Fprint(stdout, f.output)
	return nil
}

func TestNewPandocRequiresImage(t *testing.T) {
	_, err := NewPandoc(&fakeRuntime{imageErr: fmt.Errorf("not found")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pandoc image not available")
}

func TestPandocExtractByExtension(t *testing.T) {
	rt := &fakeRuntime{output: "extracted notes"}
	p, err := NewPandoc(rt)
	require.NoError(t, err)

	got, err := p.Extract([]byte("binary-docx"), "study-notes.DOCX")
	require.NoError(t, err)
	assert.Equal(t, "extracted notes", got)
	assert.Equal(t, []string{"-f", "docx", "-t", "plain"}, rt.lastArgs)
}

func TestPandocExtractUnknownExtension(t *testing.T) {
	p, err := NewPandoc(&fakeRuntime{})
	require.NoError(t, err)

	_, err = p.Extract([]byte("data"), "notes.xyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document extension")
}

func TestForBackend(t *testing.T) {
	ex, err := ForBackend(types.ExtractorPlainText)
	require.NoError(t, err)
	assert.IsType(t, PlainText{}, ex)

	ex, err = ForBackend("")
	require.NoError(t, err)
	assert.IsType(t, PlainText{}, ex)

	_, err = ForBackend("nope")
	require.Error(t, err)
}
