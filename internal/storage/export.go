// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/morganforge/pdftutor/internal/model"
	"github.com/morganforge/pdftutor/internal/util"
)

// =============================================================================
// EXPORT
// =============================================================================

// ExportMarkdown renders a session as a markdown transcript suitable for
// sharing or archiving. The document payload is not included, only its name.
func ExportMarkdown(s *model.Session) string {
	var sb strings.Builder

	sb.WriteString("# " + s.Title + "\n\n")
	sb.WriteString("- Document: " + s.Document.Name + "\n")
	sb.WriteString("- Created: " + s.CreatedAt.Format("2006-01-02 15:04") + "\n")
	sb.WriteString("- Messages: " + util.IntToString(len(s.Messages)) + "\n")
	if s.ELIFMode {
		sb.WriteString("- Mode: explain like I'm five\n")
	}
	sb.WriteString("\n")

	for _, msg := range s.Messages {
		sb.WriteString("## " + msg.Role.DisplayName() + "\n\n")
		sb.WriteString(msg.Content + "\n\n")
	}

	return sb.String()
}

// ExportJSON renders a session as indented JSON in the stored shape.
func ExportJSON(s *model.Session) ([]byte, error) {
	data, err := json.MarshalIndent(ToStored(s), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export session: %w", err)
	}
	return data, nil
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList formats sessions as a table for CLI display.
func FormatSessionList(sessions []*model.Session, activeID string) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString("Sessions:\n")
	sb.WriteString("--------------------------------------------------------------\n")
	sb.WriteString(formatPadded("", 2) + formatPadded("ID", 10) + " " +
		formatPadded("Created", 17) + " " + formatPadded("Messages", 8) + " Document\n")
	sb.WriteString("--------------------------------------------------------------\n")

	for _, s := range sessions {
		marker := "  "
		if s.ID == activeID {
			marker = "* "
		}
		idStr := s.ID
		if len(idStr) > 8 {
			idStr = idStr[:8]
		}
		sb.WriteString(marker +
			formatPadded(idStr, 10) + " " +
			formatPadded(s.CreatedAt.Format("2006-01-02 15:04"), 17) + " " +
			formatPadded(util.IntToString(len(s.Messages)), 8) + " " +
			util.TruncateRunes(s.Document.Name, 30) + "\n")
	}
	return sb.String()
}

// formatPadded pads a string to the specified width with spaces.
func formatPadded(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(runes))
}
