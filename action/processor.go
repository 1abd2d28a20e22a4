package action

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	channels "gopkg.in/eapache/channels.v1"
)

// ticker is the type-erased interface Processor uses to sweep every
// registered List[T] without knowing T. Implemented by *List[T].
type ticker interface {
	sweep(now time.Time) (nextWake time.Time, immediate bool)
}

// Processor owns the registry of every in-flight action across all
// List[T] kinds and computes the next wake-up deadline, per spec.md
// §4.A. The embedder calls Tick(now) in a loop and sleeps until the
// returned deadline (or until external I/O arrives and calls
// WakeNow/Register again).
//
// Mirrors the teacher's per-connection timer/select loop
// (client2/connection.go: connectWorker) collapsed into the cooperative
// Update(now) model the spec mandates, rather than a blocking select.
type Processor struct {
	log     *log.Logger
	tickers []ticker

	// pending buffers WakeNow() signals until the next Tick drains
	// them; eapache's InfiniteChannel means a WakeNow from an I/O
	// callback can never block waiting for the processor to drain it.
	pending *channels.InfiniteChannel
}

// NewProcessor creates an empty Processor.
func NewProcessor() *Processor {
	p := &Processor{
		log:     log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "action/processor"}),
		pending: channels.NewInfiniteChannel(),
	}
	return p
}

// Register adds a List[T] to the set this Processor sweeps each Tick.
// Must be called before the first Tick that should include it; safe to
// call again later to add more kinds as a session grows new action
// types.
func Register[T Action](p *Processor, l *List[T]) {
	p.tickers = append(p.tickers, l)
}

// WakeNow requests that the very next Tick run regardless of deadlines,
// e.g. because an external transport delivered inbound bytes. Safe to
// call from outside the Tick loop (the embedder's I/O callback).
func (p *Processor) WakeNow() {
	p.pending.In() <- struct{}{}
}

// Tick runs exactly one scheduling pass: every dirty-or-expired action
// across every registered List is updated once, and the earliest next
// deadline is returned. now itself is returned when Tick should run
// again immediately (some action returned Continue or WakeNow was
// pending); a zero Time means no action has a pending deadline.
func (p *Processor) Tick(now time.Time) time.Time {
	// Drain any WakeNow signals accumulated since the last Tick; their
	// presence just means "run a sweep now", which this Tick call is
	// already doing.
	drained := false
	for {
		select {
		case <-p.pending.Out():
			drained = true
			continue
		default:
		}
		break
	}

	var nextWake time.Time
	immediate := drained
	for _, t := range p.tickers {
		wake, imm := t.sweep(now)
		if imm {
			immediate = true
		}
		if !wake.IsZero() && (nextWake.IsZero() || wake.Before(nextWake)) {
			nextWake = wake
		}
	}

	if immediate {
		return now
	}
	return nextWake
}

// Len reports the total number of in-flight actions across every
// registered List, for diagnostics.
func (p *Processor) Len() int {
	// Each ticker is a *List[T]; List.Len is exposed via the Lener
	// interface below to keep this type-erased.
	n := 0
	for _, t := range p.tickers {
		if l, ok := t.(lener); ok {
			n += l.Len()
		}
	}
	return n
}

type lener interface {
	Len() int
}
