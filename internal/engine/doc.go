// Package engine owns synthesizer process availability.
//
// Ownership boundary:
// - probing the engine shell address
// - launching the engine subprocess when nothing answers
// - bounded reconnect attempts after a launch
// - best-effort termination of a process this supervisor started
package engine
