package console

import (
	"sync"
	"time"
)

// BannerKind selects the banner's appearance. The values double as CSS
// classes.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the status message shown under the event form.
type Banner struct {
	ID      uint64
	Kind    BannerKind
	Message string
	HideAt  time.Time // zero: stays until replaced or hidden
}

// BannerState holds the visible banner and its pending hide timer. Showing a
// new banner stops the previous timer, and a timer only hides the banner it
// was started for.
type BannerState struct {
	mu      sync.Mutex
	seq     uint64
	current *Banner
	timer   *time.Timer
	now     func() time.Time
}

// Show replaces the visible banner. If hideAfter > 0 the banner hides
// itself after that delay.
func (s *BannerState) Show(kind BannerKind, msg string, hideAfter time.Duration) Banner {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.seq++
	b := Banner{ID: s.seq, Kind: kind, Message: msg}
	if hideAfter > 0 {
		b.HideAt = s.clock().Add(hideAfter)
		id := b.ID
		s.timer = time.AfterFunc(hideAfter, func() { s.hideIf(id) })
	}
	s.current = &b
	return b
}

// Hide removes the visible banner and cancels its timer.
func (s *BannerState) Hide() {
	s.mu.Lock()
	s.stopTimerLocked()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the visible banner, if any.
func (s *BannerState) Current() (Banner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Banner{}, false
	}
	return *s.current, true
}

// Pending reports whether a hide timer is armed.
func (s *BannerState) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *BannerState) hideIf(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		s.current = nil
		s.timer = nil
	}
}

func (s *BannerState) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *BannerState) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
