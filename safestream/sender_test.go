package safestream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aethernetio/aether-go/action"
)

func testConfig() Config {
	c := DefaultConfig()
	c.WindowSize = 64
	c.MaxPacketSize = 16
	c.MaxRepeatCount = 2
	c.WaitConfirmTimeout = 10 * time.Millisecond
	c.SendConfirmTimeout = 10 * time.Millisecond
	c.SendRepeatTimeout = 10 * time.Millisecond
	c.RTOGrowFactor = 2.0
	return c
}

func newTestSender(t *testing.T, transmit func([]byte)) *Sender {
	proc := action.NewProcessor()
	return NewSender(proc, testConfig(), 0, transmit)
}

func TestSenderSendsInitThenRetriesWithBackoffBeforeAck(t *testing.T) {
	var frames [][]byte
	s := newTestSender(t, func(b []byte) { frames = append(frames, b) })

	t0 := time.Unix(0, 0)
	s.Tick(t0)
	require.Len(t, frames, 1)
	init, err := DecodeMessage(frames[0])
	require.NoError(t, err)
	require.IsType(t, Init{}, init)
	require.Equal(t, 0, init.(Init).RepeatCount)

	// too soon: no retry yet
	s.Tick(t0.Add(5 * time.Millisecond))
	require.Len(t, frames, 1)

	// past wait_confirm_timeout: retries once with repeat_count 1
	s.Tick(t0.Add(11 * time.Millisecond))
	require.Len(t, frames, 2)
	retry, err := DecodeMessage(frames[1])
	require.NoError(t, err)
	require.Equal(t, 1, retry.(Init).RepeatCount)
}

func TestSenderFillsWindowAndConfirmResolvesWrite(t *testing.T) {
	var frames [][]byte
	proc := action.NewProcessor()
	s := NewSender(proc, testConfig(), 0, func(b []byte) { frames = append(frames, b) })

	wa := s.SendData([]byte("0123456789abcdef012345"))
	t0 := time.Unix(0, 0)
	s.Tick(t0)
	init := mustDecode[Init](t, frames[len(frames)-1])

	s.HandleInitAck(InitAck{RequestId: init.RequestId, Params: InitParams{Offset: 0, WindowSize: 64, MaxPacketSize: 16}})
	frames = nil
	s.Tick(t0)

	require.Len(t, frames, 2) // 22 bytes split into 16 + 6
	first := mustDecode[Send](t, frames[0])
	require.Equal(t, RingIndex(0), first.Offset)
	require.Len(t, first.Data, 16)
	second := mustDecode[Send](t, frames[1])
	require.Equal(t, RingIndex(16), second.Offset)
	require.Len(t, second.Data, 6)

	var result interface{}
	wa.OnResult(func(v interface{}) { result = v })
	s.HandleConfirm(Confirm{Offset: 21})
	proc.Tick(t0) // the write's Result event fires on the processor's next sweep
	require.Equal(t, 22, result)
}

func TestSenderFillWindowNeverOvershootsEffectiveWindow(t *testing.T) {
	var frames [][]byte
	s := newTestSender(t, func(b []byte) { frames = append(frames, b) })

	s.SendData([]byte("0123456789abcdef012345"))
	t0 := time.Unix(0, 0)
	s.Tick(t0)
	init := mustDecode[Init](t, frames[len(frames)-1])

	// window=10 doesn't divide evenly by maxPacketSize=16, so the last
	// slice fillWindow takes must be capped below maxPacketSize to avoid
	// pushing last_sent past begin+window.
	s.HandleInitAck(InitAck{RequestId: init.RequestId, Params: InitParams{Offset: 0, WindowSize: 10, MaxPacketSize: 16}})
	frames = nil
	s.Tick(t0)

	require.Equal(t, RingIndex(0), s.begin)
	require.LessOrEqual(t, uint32(s.begin.Distance(s.lastSent)), s.effectiveWindow())
}

func TestSenderStaleConfirmIgnored(t *testing.T) {
	var frames [][]byte
	s := newTestSender(t, func(b []byte) { frames = append(frames, b) })
	s.SendData([]byte("hello"))
	t0 := time.Unix(0, 0)
	s.Tick(t0)
	init := mustDecode[Init](t, frames[len(frames)-1])
	s.HandleInitAck(InitAck{RequestId: init.RequestId, Params: InitParams{Offset: 0, WindowSize: 64, MaxPacketSize: 16}})
	s.Tick(t0)

	before := s.begin
	s.HandleConfirm(Confirm{Offset: ^RingIndex(0)}) // offset "before" begin under wraparound compare
	require.Equal(t, before, s.begin)
}

func TestSenderRetransmitsThenFailsAfterMaxRepeatCount(t *testing.T) {
	var frames [][]byte
	proc := action.NewProcessor()
	s := NewSender(proc, testConfig(), 0, func(b []byte) { frames = append(frames, b) })
	wa := s.SendData([]byte("hello"))
	t0 := time.Unix(0, 0)
	s.Tick(t0)
	init := mustDecode[Init](t, frames[len(frames)-1])
	s.HandleInitAck(InitAck{RequestId: init.RequestId, Params: InitParams{Offset: 0, WindowSize: 64, MaxPacketSize: 16}})
	s.Tick(t0)
	require.Len(t, s.chunks, 1)

	var failErr error
	wa.OnError(func(err error) { failErr = err })

	// MaxRepeatCount is 2: first overdue tick retransmits (repeatCount 1),
	// second overdue tick retransmits (repeatCount 2 == max) without
	// giving up yet (>= check fires on the *next* overdue tick).
	s.Tick(t0.Add(20 * time.Millisecond))
	require.Equal(t, 1, s.chunks[0].RepeatCount)
	s.Tick(t0.Add(100 * time.Millisecond))
	require.Equal(t, 2, s.chunks[0].RepeatCount)
	s.Tick(t0.Add(500 * time.Millisecond))
	require.Empty(t, s.chunks)
	proc.Tick(t0.Add(500 * time.Millisecond)) // the write's Error event fires on the processor's next sweep
	require.ErrorIs(t, failErr, ErrRepeatCountExceeded)
}

func TestSenderHandleRequestRepeatForcesImmediateRetransmit(t *testing.T) {
	var frames [][]byte
	s := newTestSender(t, func(b []byte) { frames = append(frames, b) })
	s.SendData([]byte("hello"))
	t0 := time.Unix(0, 0)
	s.Tick(t0)
	init := mustDecode[Init](t, frames[len(frames)-1])
	s.HandleInitAck(InitAck{RequestId: init.RequestId, Params: InitParams{Offset: 0, WindowSize: 64, MaxPacketSize: 16}})
	s.Tick(t0)
	require.Len(t, s.chunks, 1)

	s.HandleRequestRepeat(RequestRepeat{Offset: 0})
	frames = nil
	s.Tick(t0.Add(time.Microsecond))
	require.Len(t, frames, 1)
	repeat := mustDecode[Repeat](t, frames[0])
	require.Equal(t, RingIndex(0), repeat.Offset)
}

func mustDecode[T any](t *testing.T, buf []byte) T {
	t.Helper()
	m, err := DecodeMessage(buf)
	require.NoError(t, err)
	v, ok := m.(T)
	require.True(t, ok, "unexpected message type %T", m)
	return v
}
