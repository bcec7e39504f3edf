package service

// FallbackRevealSeconds is applied when the intro media duration cannot be
// probed, so the CTA is never unreachable because of a media error.
const FallbackRevealSeconds = 90

// RevealGate withholds the purchase call-to-action until an intro-media
// countdown elapses or playback ends, whichever comes first. The reveal is a
// one-way latch: once open it never closes for the lifetime of the gate.
//
// The countdown is playback-bound, not wall-clock-bound: Tick only decrements
// while the media is playing. Pausing the media pauses the countdown.
type RevealGate struct {
	remaining   int
	durationSet bool
	playing     bool
	revealed    bool
}

// NewRevealGate returns a gate in its initial state: no duration resolved,
// CTA hidden.
func NewRevealGate() *RevealGate {
	return &RevealGate{}
}

// NewRevealGateFromProbe builds a gate whose countdown is the probed media
// duration, or the fallback when the probe yielded nothing usable.
func NewRevealGateFromProbe(probedSeconds int) *RevealGate {
	g := NewRevealGate()
	if probedSeconds > 0 {
		g.SetDuration(probedSeconds)
	} else {
		g.ApplyFallback()
	}
	return g
}

// SetDuration resolves the countdown from the media metadata probe. It is a
// no-op after the gate revealed or once a duration is already set.
func (g *RevealGate) SetDuration(seconds int) {
	if g.revealed || g.durationSet {
		return
	}
	if seconds <= 0 {
		g.reveal()
		return
	}
	g.remaining = seconds
	g.durationSet = true
}

// ApplyFallback resolves the countdown with the fixed fallback duration,
// used when the media metadata probe failed or timed out.
func (g *RevealGate) ApplyFallback() {
	g.SetDuration(FallbackRevealSeconds)
}

// Play marks the media as playing; the countdown advances on Tick.
func (g *RevealGate) Play() { g.playing = true }

// Pause stops the countdown without affecting remaining time.
func (g *RevealGate) Pause() { g.playing = false }

// Tick advances the countdown by one second of playback. Ticks before the
// duration is resolved, while paused, or after reveal are ignored.
func (g *RevealGate) Tick() {
	if g.revealed || !g.durationSet || !g.playing {
		return
	}
	g.remaining--
	if g.remaining <= 0 {
		g.reveal()
	}
}

// End handles the media "ended" signal, which reveals regardless of the
// countdown. Probed duration and actual playback length can drift; ended
// always wins.
func (g *RevealGate) End() {
	g.reveal()
}

// Revealed reports whether the CTA is visible.
func (g *RevealGate) Revealed() bool { return g.revealed }

// Remaining returns the countdown seconds left, zero once revealed.
func (g *RevealGate) Remaining() int {
	if g.revealed {
		return 0
	}
	return g.remaining
}

// Playing reports whether the countdown is currently advancing on ticks.
func (g *RevealGate) Playing() bool { return g.playing }

func (g *RevealGate) reveal() {
	g.revealed = true
	g.playing = false
	g.remaining = 0
}
