// Package statusapi owns the local HTTP surface over the client.
//
// Ownership boundary:
// - JSON status and command endpoints for external tooling
// - the websocket command/status stream
// - serialization of network callers onto the single engine connection
//
// The API consumes the same client surface the GUI does; it adds nothing
// protocol-aware of its own.
package statusapi
