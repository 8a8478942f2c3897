package engine

import (
	"kombio/internal/domain"

	"github.com/sirupsen/logrus"
)

// EffectHandler executes side effects returned by the reducer. Handlers
// may synchronously enqueue further events on the dispatcher; the drain
// loop's re-entrancy guard absorbs that.
type EffectHandler interface {
	HandleEffect(effect SideEffect)
}

// Publisher receives every snapshot the reducer produces, in order,
// including intermediate ones mid-drain.
type Publisher func(*domain.GameState)

// Dispatcher serializes incoming events into state transitions. It owns a
// single FIFO queue and a non-reentrancy guard: if Enqueue is called while
// a drain is in progress (a side effect feeding an event back in), the
// event is appended and the outer loop picks it up, keeping total ordering
// without growing the stack with the event chain.
//
// The dispatcher is not safe for concurrent use; it assumes a single
// logical thread of control. The manager serializes access.
type Dispatcher struct {
	reducer  *Reducer
	current  *domain.GameState
	queue    []GameEvent
	draining bool
	publish  Publisher
	effects  EffectHandler
	fatal    chan<- error
	log      *logrus.Entry
}

// NewDispatcher builds a dispatcher around an initial snapshot. Fatal
// reducer errors are sent to the fatal channel and halt processing; the
// core never recovers from them.
func NewDispatcher(reducer *Reducer, initial *domain.GameState, publish Publisher, effects EffectHandler, fatal chan<- error, log *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		reducer: reducer,
		current: initial,
		publish: publish,
		effects: effects,
		fatal:   fatal,
		log:     log,
	}
}

// State returns the latest published snapshot.
func (d *Dispatcher) State() *domain.GameState {
	return d.current
}

// Replace installs a snapshot produced outside the reducer and publishes
// it. Reserved for the manager's UI-adjacent partial updates.
func (d *Dispatcher) Replace(s *domain.GameState) {
	d.current = s
	d.publish(s)
}

// Enqueue appends an event and drains the queue. Events enqueued during
// side-effect execution of event N are processed strictly after all
// follow-up events of N and before anything enqueued after the drain
// returns.
func (d *Dispatcher) Enqueue(ev GameEvent) {
	d.queue = append(d.queue, ev)
	if d.draining {
		return
	}
	d.draining = true
	defer func() { d.draining = false }()

	for len(d.queue) > 0 {
		head := d.queue[0]
		d.queue = d.queue[1:]

		next, followUps, effects, err := d.reducer.Reduce(d.current, head)
		if err != nil {
			d.log.WithError(err).WithField("event", head.Name()).Error("fatal reducer error")
			d.queue = nil
			select {
			case d.fatal <- err:
			default:
			}
			return
		}

		d.current = next
		d.publish(next)
		d.queue = append(d.queue, followUps...)
		for _, eff := range effects {
			d.effects.HandleEffect(eff)
		}
	}
}
