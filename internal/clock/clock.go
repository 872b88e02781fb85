// Package clock provides the wall-clock tick source.
package clock

import "time"

// Wall emits real time.Ticker ticks.
type Wall struct{}

// Ticks returns a ticking channel and a stop function.
func (Wall) Ticks(interval time.Duration) (<-chan time.Time, func()) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}
