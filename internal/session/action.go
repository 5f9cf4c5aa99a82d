// Copyright (c) 2025 LingCode Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// =============================================================================
// ACTION STATE MACHINE
// =============================================================================

// ErrInvalidTransition indicates an event that is not legal in the
// action's current status.
var ErrInvalidTransition = errors.New("session: invalid action transition")

// ActionStatus is the lifecycle status of one file-level operation.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionExecuting ActionStatus = "executing"
	ActionCompleted ActionStatus = "completed"
	ActionFailed    ActionStatus = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s ActionStatus) Terminal() bool {
	return s == ActionCompleted || s == ActionFailed
}

// Action is one file-level operation (create, edit, run). Values are
// immutable: Apply returns a new Action rather than mutating in place,
// so UI and core never share a mutable object graph.
type Action struct {
	ID          string
	Name        string
	Status      ActionStatus
	FilePath    string
	FileContent string
	Result      string
	Error       string
}

// NewAction creates a pending action.
func NewAction(name, filePath, fileContent string) Action {
	return Action{
		ID:          uuid.NewString(),
		Name:        name,
		Status:      ActionPending,
		FilePath:    filePath,
		FileContent: fileContent,
	}
}

// Event drives an action through its lifecycle.
type Event interface {
	isActionEvent()
}

// Started moves a pending action to executing.
type Started struct{}

// Completed moves an executing action to completed with its result.
type Completed struct{ Result string }

// Failed moves an executing action to failed with its error message.
type Failed struct{ Reason string }

func (Started) isActionEvent()   {}
func (Completed) isActionEvent() {}
func (Failed) isActionEvent()    {}

// Apply is the reducer: it validates the transition
// pending -> executing -> {completed, failed} and returns the next
// Action value. Illegal transitions return the input unchanged plus
// ErrInvalidTransition.
func Apply(a Action, ev Event) (Action, error) {
	switch ev := ev.(type) {
	case Started:
		if a.Status != ActionPending {
			return a, transitionErr(a.Status, "start")
		}
		a.Status = ActionExecuting
		return a, nil

	case Completed:
		if a.Status != ActionExecuting {
			return a, transitionErr(a.Status, "complete")
		}
		a.Status = ActionCompleted
		a.Result = ev.Result
		return a, nil

	case Failed:
		if a.Status != ActionExecuting {
			return a, transitionErr(a.Status, "fail")
		}
		a.Status = ActionFailed
		a.Error = ev.Reason
		return a, nil

	default:
		return a, fmt.Errorf("%w: unknown event %T", ErrInvalidTransition, ev)
	}
}

func transitionErr(from ActionStatus, event string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, event, from)
}
