package clock_test

import (
	"testing"
	"time"

	"github.com/fa-friend/fa/pkg/utils/clock"
	"github.com/m-mizutani/gt"
)

func TestFixedConvertsToLocalZone(t *testing.T) {
	utc := time.Date(2025, 3, 1, 20, 30, 0, 0, time.UTC)
	now := clock.Fixed(utc)()

	gt.Equal(t, now.Hour(), 3)
	gt.Equal(t, clock.Date(now), "2025-03-02")
}

func TestMust(t *testing.T) {
	ts := clock.Must("2025-03-01 14:30")
	_, offset := ts.Zone()
	gt.Equal(t, offset, 7*60*60)
	gt.Equal(t, ts.Minute(), 30)
}
