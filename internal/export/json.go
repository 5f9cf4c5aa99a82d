// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"

	"github.com/lingcode/lingcode-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders a conversation as indented JSON. The output
// reuses the conversation's own JSON encoding, so it round-trips
// through the storage layer.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts a conversation to JSON.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("export: conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("export: conversation has no messages")
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: encode json: %w", err)
	}
	return append(data, '\n'), nil
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
