// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes saved conversations to shareable files.
//
// Three formats are supported: Markdown for docs and review, JSON for
// tooling, and a standalone HTML page. Exporters work on
// model.Conversation directly, so saved and in-progress conversations
// export the same way.
package export
