// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the lingcode application:
// rune-safe string truncation and numeric/string conversion.
package util
