// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the full-screen conversation view.
//
// The Bubble Tea model owns a generation session and a mention
// environment. User input flows through mention expansion into a
// streaming request; tokens land in the session's buffer and are
// drained onto the screen on a fixed tick, so the UI loop never blocks
// on the network.
package chat
