// Package synth owns the typed command vocabulary and the client-side
// bookkeeping for the engine's mutable state.
//
// Ownership boundary:
// - typed get/set and effect commands over the shell transactor
// - the loaded-font map (engine id -> source path)
// - the 16-channel assignment table and selection cursor
// - the unload-when-unreferenced font memory policy
//
// All state mutation funnels through Client methods; State itself is a
// plain record so an embedding application can persist and restore it.
package synth
