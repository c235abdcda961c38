// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extractor turns uploaded documents into plain note text for the
// conversion pipeline. Backends are pluggable: a UTF-8 pass-through for
// text files and a pandoc container for binary formats.
package extractor

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/digitallegionke/USFM/internal/container"
	"github.com/digitallegionke/USFM/pkg/types"
)

// Extractor turns a document into plain text.
type Extractor interface {
	// Extract returns the plain text of the document. The filename hint
	// (may be empty) lets backends pick a format by extension.
	Extract(doc []byte, filename string) (string, error)
}

// PlainText treats the document as UTF-8 text: it strips a leading BOM and
// normalizes CRLF line endings. Non-UTF-8 input is rejected rather than
// silently mangled.
type PlainText struct{}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extract implements Extractor.
func (PlainText) Extract(doc []byte, _ string) (string, error) {
	doc = bytes.TrimPrefix(doc, utf8BOM)
	if !utf8.Valid(doc) {
		return "", fmt.Errorf("document is not UTF-8 text: use the pandoc backend for binary formats")
	}
	return strings.ReplaceAll(string(doc), "\r\n", "\n"), nil
}

// pandocImage is the container image used for binary document extraction.
const pandocImage = "pandoc/core:latest"

// pandocFormats maps file extensions to pandoc input format names.
var pandocFormats = map[string]string{
	".docx": "docx",
	".odt":  "odt",
	".html": "html",
	".htm":  "html",
	".md":   "markdown",
	".rtf":  "rtf",
	".epub": "epub",
}

// Pandoc extracts text by piping documents through a pandoc container.
type Pandoc struct {
	runtime container.Runtime
}

// NewPandoc returns a Pandoc extractor after verifying the image exists in
// the given runtime.
func NewPandoc(rt container.Runtime) (*Pandoc, error) {
	if err := rt.ImageExists(pandocImage); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	return &Pandoc{runtime: rt}, nil
}

// Extract implements Extractor. The input format comes from the filename
// extension; unknown extensions are an error so pandoc never guesses.
func (p *Pandoc) Extract(doc []byte, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	format, ok := pandocFormats[ext]
	if !ok {
		return "", fmt.Errorf("unsupported document extension %q: supported: docx, odt, html, md, rtf, epub", ext)
	}

	var out bytes.Buffer
	args := []string{"-f", format, "-t", "plain"}
	if err := p.runtime.Run(pandocImage, args, bytes.NewReader(doc), &out); err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", filename, err)
	}
	return out.String(), nil
}

// ForBackend constructs the configured extractor. The pandoc backend
// requires a detectable container runtime.
func ForBackend(backend types.ExtractorBackend) (Extractor, error) {
	switch backend {
	case types.ExtractorPlainText, "":
		return PlainText{}, nil
	case types.ExtractorPandoc:
		rt, err := container.Detect()
		if err != nil {
			return nil, err
		}
		return NewPandoc(rt)
	default:
		return nil, fmt.Errorf("unknown extractor backend %q: use plaintext or pandoc", backend)
	}
}
