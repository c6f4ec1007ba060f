package contact

// Mood is the affect signal derived from form interaction. It drives the
// avatar animation on the site and never feeds back into the form.
type Mood string

const (
	MoodNeutral   Mood = "neutral"
	MoodAttentive Mood = "attentive"
	MoodPositive  Mood = "positive"
	MoodNegative  Mood = "negative"
)

// MoodListener receives mood changes of a form. Listeners run synchronously
// on the goroutine that changed the mood, after the form lock is released,
// one notification at a time and never older than one already delivered.
// A listener must not change the form it listens to.
type MoodListener interface {
	MoodChanged(formID string, mood Mood)
}

// MoodListenerFunc adapts a function to MoodListener.
type MoodListenerFunc func(formID string, mood Mood)

func (fn MoodListenerFunc) MoodChanged(formID string, mood Mood) {
	fn(formID, mood)
}

// Subscribe registers l and returns a function that removes it.
func (f *Form) Subscribe(l MoodListener) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextListener
	f.nextListener++
	f.listeners[id] = l

	return func() {
		f.mu.Lock()
		delete(f.listeners, id)
		f.mu.Unlock()
	}
}

// SubscribeCurrent is Subscribe, but first hands l the current mood. No
// change can slip in between the two.
func (f *Form) SubscribeCurrent(l MoodListener) (unsubscribe func()) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	unsubscribe = f.Subscribe(l)
	l.MoodChanged(f.id, f.Mood())
	return unsubscribe
}

// setMoodLocked records m and returns the notification to run once f.mu is
// released. Caller holds f.mu.
func (f *Form) setMoodLocked(m Mood) (notify func()) {
	f.mood = m
	f.moodSeq++
	seq := f.moodSeq
	ls := make([]MoodListener, 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	return func() {
		f.notifyMu.Lock()
		defer f.notifyMu.Unlock()
		// a later mood already went out; this one is stale
		if seq <= f.delivered {
			return
		}
		f.delivered = seq
		for _, l := range ls {
			l.MoodChanged(f.id, m)
		}
	}
}
