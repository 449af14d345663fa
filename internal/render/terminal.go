package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the terminal width used when none is configured.
const DefaultWordWrap = 100

// Terminal renders markdown for a terminal.
//
// PARAMETERS:
//   - markdown: The document, usually the output of Markdown.
//   - style: A glamour standard style name; "" or "auto" detects the
//     terminal background.
//   - width: The word wrap width. Zero or less selects DefaultWordWrap.
func Terminal(markdown, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}

	out, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
