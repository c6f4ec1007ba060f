package usecase

import (
	"sync"
	"sync/atomic"
	"time"

	"obsidiana-backend/internal/contact"
)

// formEntry tracks a live form and when it was last used.
type formEntry struct {
	form     *contact.Form
	lastSeen atomic.Int64 // unix nanos
}

// formStore keeps form sessions in memory and drops the idle ones.
type formStore struct {
	forms sync.Map // id -> *formEntry
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newFormStore(ttl time.Duration, now func() time.Time) *formStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &formStore{ttl: ttl, now: now, stop: make(chan struct{})}
}

// startSweeper removes expired forms every interval until close.
func (s *formStore) startSweeper(interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *formStore) put(f *contact.Form) {
	e := &formEntry{form: f}
	e.lastSeen.Store(s.now().UnixNano())
	s.forms.Store(f.ID(), e)
}

// get returns the form and refreshes its idle timer.
func (s *formStore) get(id string) (*contact.Form, bool) {
	v, ok := s.forms.Load(id)
	if !ok {
		return nil, false
	}
	e := v.(*formEntry)
	e.lastSeen.Store(s.now().UnixNano())
	return e.form, true
}

// sweep drops idle forms. A form that is submitting is kept until it settles.
func (s *formStore) sweep() int {
	cutoff := s.now().Add(-s.ttl).UnixNano()
	removed := 0
	s.forms.Range(func(key, value interface{}) bool {
		e := value.(*formEntry)
		if e.lastSeen.Load() < cutoff && e.form.State() != contact.StateSubmitting {
			s.forms.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

func (s *formStore) close() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}
