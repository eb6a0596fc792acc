// Package tracker maintains the authoritative set of active contacts.
//
// The Tracker applies lifecycle events (begin, move, end, cancel) to an
// insertion-ordered set keyed by contact id and exposes an ordered, read-only
// snapshot for rendering. It is synchronous and not safe for concurrent use:
// exactly one owner (the session actor) calls it.
package tracker
