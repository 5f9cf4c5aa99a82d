// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"

	"github.com/lingcode/lingcode-tui/internal/ai"
)

// =============================================================================
// FAILURE CLASSIFICATION
// =============================================================================

// FailureCategory is a user-visible class of generation failure. The
// session surfaces the category as a terminal state; retry is always a
// user action, never automatic.
type FailureCategory int

const (
	FailureNone FailureCategory = iota
	FailureCancelled
	FailureRateLimited
	FailureUnavailable
	FailureMalformed
	FailureModelNotFound
	FailureUnknown
)

// Message returns the text shown to the user for this category.
func (c FailureCategory) Message() string {
	switch c {
	case FailureNone:
		return ""
	case FailureCancelled:
		return "Generation stopped"
	case FailureRateLimited:
		return "Rate limited. Press r to retry."
	case FailureUnavailable:
		return "Model server unavailable. Press r to retry."
	case FailureMalformed:
		return "Model produced malformed output. Press r to retry."
	case FailureModelNotFound:
		return "Model not found. Check your configuration."
	default:
		return "Generation failed. Press r to retry."
	}
}

// Retryable reports whether a user-initiated retry makes sense.
func (c FailureCategory) Retryable() bool {
	switch c {
	case FailureRateLimited, FailureUnavailable, FailureMalformed, FailureUnknown:
		return true
	default:
		return false
	}
}

// Classify maps a streaming error to its user-visible category.
func Classify(err error) FailureCategory {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.Canceled):
		return FailureCancelled
	case ai.IsRateLimited(err):
		return FailureRateLimited
	case ai.IsUnavailable(err):
		return FailureUnavailable
	case ai.IsMalformed(err):
		return FailureMalformed
	case ai.IsModelNotFound(err):
		return FailureModelNotFound
	case ai.IsTimeout(err):
		// A timeout caused by the user's stop signal is a cancellation;
		// anything else reads as the server going away.
		return FailureUnavailable
	default:
		return FailureUnknown
	}
}
