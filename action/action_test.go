package action

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingAction struct {
	updates  int
	resultAt int
}

func (c *countingAction) Update(now time.Time) Status {
	c.updates++
	if c.updates >= c.resultAt {
		return Result(c.updates)
	}
	return Continue()
}

func TestProcessorDrivesActionToTerminal(t *testing.T) {
	p := NewProcessor()
	list := NewList[*countingAction]()
	Register(p, list)

	a := &countingAction{resultAt: 3}
	ptr := list.Insert(a)

	var gotResult interface{}
	ptr.OnResult(func(v interface{}) { gotResult = v })

	now := time.Unix(0, 0)
	for i := 0; i < 5; i++ {
		next := p.Tick(now)
		if next.IsZero() {
			continue
		}
		if !ptr.Valid() {
			break
		}
	}

	require.Equal(t, 3, gotResult)
	require.False(t, ptr.Valid(), "slot should be recycled after terminal status")
}

type errorAction struct{ ran bool }

func (e *errorAction) Update(now time.Time) Status {
	e.ran = true
	return Error(errors.New("boom"))
}

func TestActionErrorFiresOnce(t *testing.T) {
	p := NewProcessor()
	list := NewList[*errorAction]()
	Register(p, list)

	ptr := list.Insert(&errorAction{})
	var errs int
	ptr.OnError(func(err error) { errs++ })

	p.Tick(time.Unix(0, 0))
	p.Tick(time.Unix(1, 0))

	require.Equal(t, 1, errs)
}

type stoppableAction struct {
	stopped bool
}

func (s *stoppableAction) Update(now time.Time) Status {
	if s.stopped {
		return Stop()
	}
	return Delay(now.Add(time.Hour))
}

func (s *stoppableAction) Stop() { s.stopped = true }

func TestActionPtrStop(t *testing.T) {
	p := NewProcessor()
	list := NewList[*stoppableAction]()
	Register(p, list)

	ptr := list.Insert(&stoppableAction{})
	stopped := false
	ptr.OnStop(func() { stopped = true })

	now := time.Unix(0, 0)
	p.Tick(now)
	ptr.Stop()
	ptr.Trigger()
	p.Tick(now)

	require.True(t, stopped)
}

func TestTimerQueueOrdering(t *testing.T) {
	q := NewTimerQueue[string]()
	base := time.Unix(100, 0)
	q.Push(base.Add(3*time.Second), "third")
	q.Push(base.Add(1*time.Second), "first")
	q.Push(base.Add(2*time.Second), "second")

	var order []string
	for q.Len() > 0 {
		v, _, _ := q.Pop()
		order = append(order, v)
	}
	require.Equal(t, []string{"first", "second", "third"}, order)
}

func TestRepeatableTaskRunsUpToLimit(t *testing.T) {
	calls := 0
	rt := NewRepeatableTask(10*time.Millisecond, 3, func(now time.Time) error {
		calls++
		return nil
	})

	now := time.Unix(0, 0)
	st := rt.Update(now)
	require.Equal(t, StatusDelay, st.Kind)
	st = rt.Update(now.Add(10 * time.Millisecond))
	require.Equal(t, StatusDelay, st.Kind)
	st = rt.Update(now.Add(20 * time.Millisecond))
	require.Equal(t, StatusResult, st.Kind)
	require.Equal(t, 3, calls)
}

func TestRepeatableTaskStop(t *testing.T) {
	rt := NewRepeatableTask(time.Millisecond, 0, func(now time.Time) error { return nil })
	now := time.Unix(0, 0)
	rt.Update(now)
	rt.Stop()
	st := rt.Update(now)
	require.Equal(t, StatusStop, st.Kind)
}
