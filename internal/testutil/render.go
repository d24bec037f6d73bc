package testutil

// Frame is one recorded Render call.
type Frame[S any] struct {
	State S
	DT    float64
}

// RenderRecorder records every Render call. It satisfies director.Renderer.
type RenderRecorder[S any] struct {
	Frames []Frame[S]
}

// Render records state and dt.
func (r *RenderRecorder[S]) Render(state S, dt float64) {
	r.Frames = append(r.Frames, Frame[S]{State: state, DT: dt})
}

// Last returns the most recent frame. ok is false if nothing was rendered.
func (r *RenderRecorder[S]) Last() (frame Frame[S], ok bool) {
	if len(r.Frames) == 0 {
		return frame, false
	}
	return r.Frames[len(r.Frames)-1], true
}

// SubscriberRecorder records every state it is notified with and never
// mutates the store. It satisfies store.Subscriber.
type SubscriberRecorder[S any] struct {
	Name string
	Seen []S

	// Log, when set, receives Name on every notification so tests can check
	// ordering across several recorders.
	Log *[]string
}

// OnStateChanged records state and returns false.
func (r *SubscriberRecorder[S]) OnStateChanged(state S) bool {
	r.Seen = append(r.Seen, state)
	if r.Log != nil {
		*r.Log = append(*r.Log, r.Name)
	}
	return false
}
