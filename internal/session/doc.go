// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the state of one generation: the conversation,
// the token buffer that batches streamed output for rendering, any
// files being rewritten by the stream, and pending action approvals.
//
// A Session hands out a cancellable context for each stream and
// classifies failures into user-facing categories, so the UI can show
// "Rate limited. Press r to retry." instead of a raw error chain.
package session
