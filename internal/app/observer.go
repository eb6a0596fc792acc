package app

import "time"

// Observer receives session telemetry. The Prometheus visualizer metrics
// implement it; a nil Observer is replaced by a no-op.
type Observer interface {
	EventProcessed(event, kind, outcome string)
	FrameRendered(d time.Duration, contacts int)
	ContactsCleared(reason string, dropped int)
	SessionsActive(n int)
}

type nopObserver struct{}

func (nopObserver) EventProcessed(string, string, string) {}
func (nopObserver) FrameRendered(time.Duration, int)      {}
func (nopObserver) ContactsCleared(string, int)           {}
func (nopObserver) SessionsActive(int)                    {}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return nopObserver{}
	}
	return o
}
