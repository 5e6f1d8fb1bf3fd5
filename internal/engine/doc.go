// Package engine implements the effect-handler runtime.
//
// A model is an ordinary Go function that announces random-draw events
// through Runtime.Sample and Runtime.Observe. Each event is a Message -
// name, distribution, observed flag, resolution state, and inference
// directives. Handlers intercept messages in a fixed stack order: pre-draw
// processing runs innermost-first and may resolve the event's value;
// post-draw processing runs outermost-first and sees the resolved event.
//
// Execution is single-threaded and synchronous. The model runs once,
// straight through, with each event handled inline in the order the model's
// statements execute. There are no retries and no recovery layer; failures
// propagate to the caller.
package engine
