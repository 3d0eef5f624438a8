// Package shell owns the engine socket and transaction framing.
//
// Ownership boundary:
// - the single TCP connection to the engine command shell
// - newline-terminated command writes
// - sentinel-delimited response framing for blocking transactions
//
// The engine stream has no prompt and no native response framing. Every
// blocking transaction appends two echo commands so the response boundary
// can be recovered from the byte stream: a blank echo guarantees a leading
// newline even when the command produced no trailing one, and a sentinel
// echo marks end of output. A response that itself contains the sentinel
// line terminates framing early; the sentinel is configurable for that
// reason, the collision is not otherwise disambiguated.
package shell
