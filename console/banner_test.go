package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBannerShowWithoutTTLStays(t *testing.T) {
	var s BannerState
	b := s.Show(BannerError, "Error: boom", 0)

	assert.True(t, b.HideAt.IsZero())
	assert.False(t, s.Pending())

	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, b, got)
}

func TestBannerHideAtUsesClock(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := BannerState{now: func() time.Time { return fixed }}

	b := s.Show(BannerSuccess, "ok", 3*time.Second)
	defer s.Hide()
	assert.Equal(t, fixed.Add(3*time.Second), b.HideAt)
	assert.True(t, s.Pending())
}

func TestBannerAutoHides(t *testing.T) {
	var s BannerState
	s.Show(BannerSuccess, "ok", 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		_, ok := s.Current()
		return !ok
	}, time.Second, 5*time.Millisecond)
	assert.False(t, s.Pending())
}

func TestBannerNewShowCancelsPreviousTimer(t *testing.T) {
	var s BannerState
	s.Show(BannerSuccess, "first", 30*time.Millisecond)
	second := s.Show(BannerSuccess, "second", 400*time.Millisecond)
	defer s.Hide()

	time.Sleep(100 * time.Millisecond)

	got, ok := s.Current()
	require.True(t, ok, "first timer must not hide the second banner")
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "second", got.Message)
}

func TestBannerStaleTimerIgnored(t *testing.T) {
	var s BannerState
	first := s.Show(BannerSuccess, "first", time.Hour)
	second := s.Show(BannerError, "second", 0)

	s.hideIf(first.ID)

	got, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)
}

func TestBannerHide(t *testing.T) {
	var s BannerState
	s.Show(BannerSuccess, "ok", time.Hour)
	s.Hide()

	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Pending())
}

func TestBannerIDsIncrease(t *testing.T) {
	var s BannerState
	a := s.Show(BannerSuccess, "a", 0)
	b := s.Show(BannerSuccess, "b", 0)
	assert.Greater(t, b.ID, a.ID)
}
