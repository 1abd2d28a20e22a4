package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitVisitsLiveSubscribersOnce(t *testing.T) {
	var e Event
	var calls []int
	e.Subscribe(func(args ...interface{}) { calls = append(calls, 1) })
	e.Subscribe(func(args ...interface{}) { calls = append(calls, 2) })

	e.Emit()

	require.Equal(t, []int{1, 2}, calls)
}

func TestSubscribeDuringEmitIsDeferred(t *testing.T) {
	var e Event
	var order []int
	e.Subscribe(func(args ...interface{}) {
		order = append(order, 1)
		e.Subscribe(func(args ...interface{}) { order = append(order, 99) })
	})

	e.Emit()
	require.Equal(t, []int{1}, order, "handler added during Emit must not fire in the same Emit")

	e.Emit()
	require.Equal(t, []int{1, 1, 99}, order, "it must fire on the next Emit")
}

func TestUnsubscribeDuringEmitStopsFutureFires(t *testing.T) {
	var e Event
	var sub Subscription
	fired := 0
	sub = e.Subscribe(func(args ...interface{}) {
		fired++
		sub.Unsubscribe()
	})

	e.Emit()
	e.Emit()

	require.Equal(t, 1, fired)
}

func TestUnsubscribeBeforeEmitPreventsFiring(t *testing.T) {
	var e Event
	fired := false
	sub := e.Subscribe(func(args ...interface{}) { fired = true })
	sub.Unsubscribe()

	e.Emit()

	require.False(t, fired)
}

func TestOnceFiresExactlyOnce(t *testing.T) {
	var e Event
	fired := 0
	e.Subscribe(func(args ...interface{}) { fired++ }).Once()

	e.Emit()
	e.Emit()
	e.Emit()

	require.Equal(t, 1, fired)
}

func TestDroppingDeadHandlerDuringIterationSkipsIt(t *testing.T) {
	var e Event
	var sub2 Subscription
	var fired []string
	e.Subscribe(func(args ...interface{}) {
		fired = append(fired, "a")
		sub2.Unsubscribe()
	})
	sub2 = e.Subscribe(func(args ...interface{}) { fired = append(fired, "b") })

	e.Emit()

	require.Equal(t, []string{"a"}, fired, "b must not fire: it was dropped before being visited")
}

func TestRecursiveEmitSeesCurrentLiveSet(t *testing.T) {
	var e Event
	depth := 0
	var calls []int
	e.Subscribe(func(args ...interface{}) {
		calls = append(calls, 1)
		if depth == 0 {
			depth++
			e.Emit()
		}
	})

	e.Emit()
	require.Equal(t, []int{1, 1}, calls)
}

func TestArgsPassedThrough(t *testing.T) {
	var e Event
	var got string
	e.Subscribe(func(args ...interface{}) { got = args[0].(string) })
	e.Emit("hello")
	require.Equal(t, "hello", got)
}
