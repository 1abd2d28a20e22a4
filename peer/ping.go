package peer

import (
	"time"

	"github.com/aethernetio/aether-go/action"
	"github.com/aethernetio/aether-go/event"
)

// PingStats is the per-channel round-trip statistic spec.md §4.G
// describes: how many pings in a row have gone unanswered, and how
// many pongs this connection has ever received.
type PingStats struct {
	ConsecutiveTimeouts int
	TotalPongs          int
}

// Ping periodically calls AuthorizedApi.Ping on a connection; a pong
// resets ConsecutiveTimeouts, and maxRepeatPingCount consecutive
// timeouts fire DeadEvent. Grounded on ae_actions/ping.cpp's periodic
// thunk and client2/arq.go's repeat-count-until-dead style, built on
// this port's own action.RepeatableTask rather than re-deriving the
// same state machine.
type Ping struct {
	api                *AuthorizedApi
	interval           time.Duration
	maxRepeatPingCount int

	stats       PingStats
	havePending bool

	pongEvt event.Event
	deadEvt event.Event
}

// NewPing builds a ping action. maxRepeatPingCount of 0 means never
// declare the connection dead from timeouts alone.
func NewPing(api *AuthorizedApi, interval time.Duration, maxRepeatPingCount int) *Ping {
	return &Ping{api: api, interval: interval, maxRepeatPingCount: maxRepeatPingCount}
}

// Stats returns a snapshot of the current round-trip statistic.
func (p *Ping) Stats() PingStats { return p.stats }

// PongEvent fires (with no arguments) each time a pong arrives.
func (p *Ping) PongEvent() *event.Event { return &p.pongEvt }

// DeadEvent fires once maxRepeatPingCount consecutive pings have gone
// unanswered.
func (p *Ping) DeadEvent() *event.Event { return &p.deadEvt }

// Task builds the action.RepeatableTask to register with the
// session's action.Processor; it repeats indefinitely (repeat count
// 0) since a dead connection is signaled via DeadEvent, not by the
// task terminating.
func (p *Ping) Task() *action.RepeatableTask {
	return action.NewRepeatableTask(p.interval, 0, p.tick)
}

func (p *Ping) tick(time.Time) error {
	if p.havePending {
		p.stats.ConsecutiveTimeouts++
		if p.maxRepeatPingCount > 0 && p.stats.ConsecutiveTimeouts >= p.maxRepeatPingCount {
			p.deadEvt.Emit()
		}
	}
	p.havePending = true
	p.api.Ping(func(ok bool) {
		if !ok {
			return
		}
		p.havePending = false
		p.stats.ConsecutiveTimeouts = 0
		p.stats.TotalPongs++
		p.pongEvt.Emit()
	})
	return nil
}
