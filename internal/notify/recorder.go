package notify

import "sync"

// Recorder keeps every notification it is asked to show. Tests use it to
// assert on side effects.
type Recorder struct {
	mutex     sync.Mutex
	shown     []Notification
	dismissed []ID
	active    map[ID]Notification
}

func NewRecorder() *Recorder {
	return &Recorder{active: make(map[ID]Notification)}
}

func (r *Recorder) Show(n Notification) ID {
	if n.ID == "" {
		n.ID = NewID()
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.shown = append(r.shown, n)
	r.active[n.ID] = n
	return n.ID
}

func (r *Recorder) Dismiss(id ID) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.active[id]; !ok {
		return
	}
	delete(r.active, id)
	r.dismissed = append(r.dismissed, id)
}

// Shown returns every notification in the order it was shown, including
// ones that replaced an earlier toast
func (r *Recorder) Shown() []Notification {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]Notification(nil), r.shown...)
}

// Dismissed returns the IDs dismissed while active
func (r *Recorder) Dismissed() []ID {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]ID(nil), r.dismissed...)
}

// Active returns the notifications currently on screen
func (r *Recorder) Active() map[ID]Notification {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make(map[ID]Notification, len(r.active))
	for id, n := range r.active {
		out[id] = n
	}
	return out
}

// Reset forgets everything recorded so far
func (r *Recorder) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.shown = nil
	r.dismissed = nil
	r.active = make(map[ID]Notification)
}
