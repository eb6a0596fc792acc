// Package domain defines the core domain types and interfaces.
//
// Concept-oriented files (contact.go, event.go, render.go, errors.go) hold the shared
// contact model, the closed lifecycle-event variant and the per-session render config.
// No implementation code beyond constructors and small value helpers - just contracts.
package domain
