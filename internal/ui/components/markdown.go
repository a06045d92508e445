// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders tutor answers, which arrive as markdown with
// headings, lists, and quiz questions.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdownRenderer creates a renderer for the given word-wrap width.
func NewMarkdownRenderer(width int) (*MarkdownRenderer, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{renderer: r, width: width}, nil
}

// Render converts markdown to styled terminal output. Falls back to the raw
// text when rendering fails so an answer is never lost.
func (m *MarkdownRenderer) Render(markdown string) string {
	if m == nil || m.renderer == nil {
		return markdown
	}
	out, err := m.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}

// Width returns the renderer's wrap width.
func (m *MarkdownRenderer) Width() int {
	return m.width
}

// =============================================================================
// CODE HIGHLIGHTING
// =============================================================================

// RenderPlain is the fallback when full markdown rendering is unavailable.
// It leaves prose untouched but still syntax-highlights fenced code blocks.
func RenderPlain(markdown string) string {
	lines := strings.Split(markdown, "\n")
	var out strings.Builder
	var code []string
	lang := ""
	inFence := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				out.WriteString(HighlightCode(strings.Join(code, "\n"), lang))
				out.WriteString("\n")
				code = code[:0]
				inFence = false
			} else {
				lang = strings.TrimPrefix(trimmed, "```")
				inFence = true
			}
			continue
		}
		if inFence {
			code = append(code, line)
			continue
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	// An unterminated fence renders as-is.
	if inFence {
		out.WriteString(strings.Join(code, "\n"))
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}

// HighlightCode applies syntax highlighting to a code snippet using chroma.
func HighlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
