// Package action implements the cooperative, single-threaded time-driven
// runtime that owns every in-flight Safe Stream, stream-pipeline, and API
// operation. There is exactly one Processor per client session; no action
// ever runs concurrently with another, and all suspension is via returned
// deadlines, never blocking I/O.
package action

import "time"

// StatusKind discriminates the possible results of an Update call.
type StatusKind int

const (
	// StatusContinue asks to be updated again on the very next tick.
	StatusContinue StatusKind = iota
	// StatusDelay asks to be updated again no earlier than Deadline.
	StatusDelay
	// StatusResult is a terminal success.
	StatusResult
	// StatusError is a terminal failure.
	StatusError
	// StatusStop is a terminal cancellation.
	StatusStop
)

// Status is the outcome of one Update call.
type Status struct {
	Kind     StatusKind
	Deadline time.Time   // valid when Kind == StatusDelay
	Result   interface{} // valid when Kind == StatusResult
	Err      error       // valid when Kind == StatusError
}

// Continue reschedules the action for the very next tick.
func Continue() Status { return Status{Kind: StatusContinue} }

// Delay reschedules the action for no earlier than deadline.
func Delay(deadline time.Time) Status { return Status{Kind: StatusDelay, Deadline: deadline} }

// Result terminates the action successfully with the given value.
func Result(v interface{}) Status { return Status{Kind: StatusResult, Result: v} }

// Error terminates the action with err.
func Error(err error) Status { return Status{Kind: StatusError, Err: err} }

// Stop terminates the action via cancellation.
func Stop() Status { return Status{Kind: StatusStop} }

// IsTerminal reports whether s is one of Result/Error/Stop.
func (s Status) IsTerminal() bool {
	return s.Kind == StatusResult || s.Kind == StatusError || s.Kind == StatusStop
}

// Action is one cooperative task. Update is called by the owning
// Processor whenever the action is dirty (Trigger() was called since the
// last tick) or its previously returned deadline has elapsed. Update must
// never block.
type Action interface {
	Update(now time.Time) Status
}

// Canceler is implemented by actions that support external cancellation.
// Stop transitions the action to StatusStop at the next Update.
type Canceler interface {
	Stop()
}
