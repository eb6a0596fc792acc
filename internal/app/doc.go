// Package app provides the session layer.
//
// A Visualizer is one tester session: it owns a contact tracker, a render
// pipeline, the raster surface, the resize coalescer and the optional shake
// detector, and serializes every mutation on a single actor goroutine.
// The Registry indexes live sessions for the HTTP inspection API.
package app
