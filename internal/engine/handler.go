package engine

// Handler is one interception point wrapped around a model run.
//
// Enter and Exit bracket the run and scope any resources the handler leases
// (axis names, RNG sources). Exit always runs, in reverse entry order, even
// when the model or an inner handler failed; the run's error is passed in so
// a handler can distinguish clean unwind from failure unwind.
//
// ProcessMessage runs before the default draw and may resolve the message.
// PostProcessMessage runs after resolution and must not change the value.
type Handler interface {
	Enter(rt *Runtime) error
	Exit(rt *Runtime, runErr error) error
	ProcessMessage(rt *Runtime, m *Message) error
	PostProcessMessage(rt *Runtime, m *Message) error
}

// Base is a no-op Handler for embedding. Concrete handlers override only
// the phases they care about.
type Base struct{}

// Enter implements Handler.
func (Base) Enter(*Runtime) error { return nil }

// Exit implements Handler.
func (Base) Exit(*Runtime, error) error { return nil }

// ProcessMessage implements Handler.
func (Base) ProcessMessage(*Runtime, *Message) error { return nil }

// PostProcessMessage implements Handler.
func (Base) PostProcessMessage(*Runtime, *Message) error { return nil }
