package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/aethernetio/aether-go/event"
	"github.com/aethernetio/aether-go/peer"
	"github.com/aethernetio/aether-go/streams"
)

// MockCloudResolver is a testify/mock stand-in for peer.CloudResolver,
// for tests that want to assert which uids get resolved and in what
// order rather than wiring a full StaticCloudResolver — the same shift
// from a hand-rolled fake to an assertion-capable mock the teacher's
// own mockComposerSender/mockSentEventSender (client2/arq_test.go)
// never needed, since its tests only inspected captured requests by
// hand.
type MockCloudResolver struct {
	mock.Mock
}

func (m *MockCloudResolver) Resolve(uid peer.Uid) ([]peer.ServerAddr, error) {
	args := m.Called(uid)
	addrs, _ := args.Get(0).([]peer.ServerAddr)
	return addrs, args.Error(1)
}

// MockStream is a testify/mock streams.Stream, for tests that need to
// assert on Write calls (arguments, call count, ordering) rather than
// just observe delivered bytes the way LossyLoopback's peer-linked
// pair does.
type MockStream struct {
	mock.Mock

	outEvt    event.Event
	updateEvt event.Cumulative
}

func (m *MockStream) Write(data []byte) streams.WriteAction {
	args := m.Called(data)
	wa, _ := args.Get(0).(streams.WriteAction)
	return wa
}

func (m *MockStream) OutDataEvent() *event.Event           { return &m.outEvt }
func (m *MockStream) StreamUpdateEvent() *event.Cumulative { return &m.updateEvt }

func (m *MockStream) Info() streams.StreamInfo {
	args := m.Called()
	info, _ := args.Get(0).(streams.StreamInfo)
	return info
}

func (m *MockStream) LinkOut(downstream streams.Stream) { m.Called(downstream) }
func (m *MockStream) Unlink()                           { m.Called() }

// Deliver emits data on OutDataEvent, standing in for the peer side of
// a real connection without recording a mock.Mock expectation for it —
// tests drive inbound traffic this way and reserve .On()/.AssertExpectations()
// for the outbound Write assertions they actually care about.
func (m *MockStream) Deliver(data []byte) { m.outEvt.Emit(data) }
