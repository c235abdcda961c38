// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt builds the two-message conversation sent to the completion
// endpoint: a fixed system instruction describing the target USFM grammar,
// followed by the user's note text verbatim.
package prompt

import "github.com/digitallegionke/USFM/pkg/types"

// Version identifies the system instruction revision. Bump when the
// instruction text changes so history records stay comparable.
const Version = "v1"

// systemInstruction is the constant system message. It describes the USFM
// subset the model must emit and the output contract (markup only, no prose).
const systemInstruction = `You are a study-note to USFM converter. Convert the user's study notes into valid USFM (Unified Standard Format Markers) markup.

Required document structure:
- \id <BOOK> - book identification, first line of the document
- \h <text> - running header
- \toc1 <text> - long table of contents text
- \toc2 <text> - short table of contents text
- \mt <text> - main title
- \c <number> - chapter number
- \v <number> <text> - verse number and text
- \p - paragraph start
- \s1 <text> - section heading

Notes and references:
- Footnotes: \f + \fr <chapter:verse> \ft <footnote text> \f*
- Cross references: \x + \xo <chapter:verse> \xt <references> \x*
- Study notes: \ef + \fr <chapter:verse> \ft <study note text> \ef*

Rules:
1. Every opening marker \f, \x, or \ef must be closed by its matching \f*, \x*, or \ef*.
2. Preserve the wording of the notes; do not summarize or editorialize.
3. Infer book, chapter, and verse references from the notes where present.
4. Respond with USFM markup only. No prose, no explanations, no code fences.`

// Build returns the ordered [system, user] conversation for the given note
// text. The note text is passed through verbatim; Build never mutates or
// re-interprets it.
func Build(noteText string) []types.Message {
	return []types.Message{
		{Role: types.RoleSystem, Content: systemInstruction},
		{Role: types.RoleUser, Content: noteText},
	}
}
