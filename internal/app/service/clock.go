package service

import "time"

// Ticker abstracts time.Ticker so timer-driven components can be tested
// deterministically.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock produces time and tickers. Cancellation of anything scheduled on a
// Clock goes through the caller's context, not the clock itself.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

// RealClock returns the wall-clock implementation used in production.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
