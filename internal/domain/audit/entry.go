// Package audit describes the record kept for every control action an operator triggers.
package audit

import (
	"encoding/json"
	"time"
)

// Action names a control operation.
type Action string

const (
	ActionStart           Action = "start"
	ActionStop            Action = "stop"
	ActionAutoStop        Action = "auto_stop"
	ActionStatus          Action = "status"
	ActionDeleteSubstring Action = "delete_by_substring"
	ActionDeleteDesigners Action = "delete_by_designers"
	ActionDeleteLowCount  Action = "delete_low_count_designers"
)

// Destructive reports whether the action removes data on the backend.
func (a Action) Destructive() bool {
	switch a {
	case ActionDeleteSubstring, ActionDeleteDesigners, ActionDeleteLowCount:
		return true
	default:
		return false
	}
}

// Outcome is the result of an audited action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Entry is one audited control action.
type Entry struct {
	ID         string
	Actor      string
	Kind       string
	Action     Action
	Params     json.RawMessage
	Outcome    Outcome
	Message    string
	OccurredAt time.Time
}

// ListOptions filters audit queries.
type ListOptions struct {
	Kind   string
	Action Action
	Limit  int
	Offset int
}
