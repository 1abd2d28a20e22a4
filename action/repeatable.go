package action

import "time"

// RepeatableTask is a prebuilt Action that runs a supplied thunk every
// interval, up to maxRepeatCount times (0 means unlimited), or until
// Stop is called. State machine: Run -> Wait -> Run ... -> Stop |
// RepeatCountExceeded, per spec.md §4.A.
//
// Grounded on ae_actions/ping.cpp (periodic thunk with a repeat cap)
// and the teacher's keepalive() ticker loop in client2/connection.go,
// reshaped into the cooperative Update(now) model.
type RepeatableTask struct {
	interval       time.Duration
	maxRepeatCount int // 0 == unlimited
	thunk          func(now time.Time) error

	count     int
	nextRun   time.Time
	started   bool
	cancelled bool
}

// NewRepeatableTask creates a task that calls thunk every interval.
func NewRepeatableTask(interval time.Duration, maxRepeatCount int, thunk func(now time.Time) error) *RepeatableTask {
	return &RepeatableTask{
		interval:       interval,
		maxRepeatCount: maxRepeatCount,
		thunk:          thunk,
	}
}

// Stop cancels the task; the next Update returns StatusStop.
func (t *RepeatableTask) Stop() {
	t.cancelled = true
}

// Update implements Action.
func (t *RepeatableTask) Update(now time.Time) Status {
	if t.cancelled {
		return Stop()
	}

	if !t.started {
		t.started = true
		t.nextRun = now
	}

	if now.Before(t.nextRun) {
		return Delay(t.nextRun)
	}

	if t.maxRepeatCount > 0 && t.count >= t.maxRepeatCount {
		return Error(ErrRepeatCountExceeded)
	}

	if err := t.thunk(now); err != nil {
		return Error(err)
	}
	t.count++

	if t.maxRepeatCount > 0 && t.count >= t.maxRepeatCount {
		return Result(t.count)
	}

	t.nextRun = now.Add(t.interval)
	return Delay(t.nextRun)
}

// ErrRepeatCountExceeded is the error a RepeatableTask ends with when
// it is updated after its repeat budget is already exhausted.
// RepeatableTask only ever returns this from that early "already
// exhausted on entry" branch; ordinary
// exhaustion after a successful run ends in StatusResult instead.
var ErrRepeatCountExceeded = repeatCountExceededError{}

type repeatCountExceededError struct{}

func (repeatCountExceededError) Error() string { return "action: repeat count exceeded" }
