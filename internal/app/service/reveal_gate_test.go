package service

import "testing"

func TestRevealGate_CountdownReveals(t *testing.T) {
	g := NewRevealGate()
	g.SetDuration(3)
	g.Play()

	for i := 0; i < 2; i++ {
		g.Tick()
		if g.Revealed() {
			t.Fatalf("revealed after %d of 3 ticks", i+1)
		}
	}
	g.Tick()
	if !g.Revealed() {
		t.Fatal("expected reveal after countdown reached zero")
	}
	if g.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", g.Remaining())
	}
}

func TestRevealGate_PauseStopsCountdown(t *testing.T) {
	g := NewRevealGate()
	g.SetDuration(2)
	g.Play()
	g.Tick()
	g.Pause()

	// Ticks while paused must not advance the countdown.
	for i := 0; i < 10; i++ {
		g.Tick()
	}
	if g.Revealed() {
		t.Fatal("gate revealed while paused")
	}
	if g.Remaining() != 1 {
		t.Fatalf("expected 1 remaining, got %d", g.Remaining())
	}

	g.Play()
	g.Tick()
	if !g.Revealed() {
		t.Fatal("expected reveal after resuming")
	}
}

func TestRevealGate_EndedRevealsEarly(t *testing.T) {
	g := NewRevealGate()
	g.SetDuration(120)
	g.Play()
	g.Tick()

	// Media ended before the derived duration elapsed: ended wins.
	g.End()
	if !g.Revealed() {
		t.Fatal("expected reveal on media end")
	}
}

func TestRevealGate_RevealIsMonotonic(t *testing.T) {
	g := NewRevealGate()
	g.SetDuration(1)
	g.Play()
	g.Tick()
	if !g.Revealed() {
		t.Fatal("expected revealed gate")
	}

	// No further input may close the gate again.
	g.Tick()
	g.End()
	g.Play()
	g.Tick()
	g.SetDuration(100)
	if !g.Revealed() {
		t.Fatal("reveal must be irreversible")
	}
	if g.Remaining() != 0 {
		t.Fatalf("expected 0 remaining after reveal, got %d", g.Remaining())
	}
}

func TestRevealGate_FallbackWhenProbeFails(t *testing.T) {
	// Probe yielded nothing usable: the fallback keeps the gate reachable.
	g := NewRevealGateFromProbe(0)
	if g.Remaining() != FallbackRevealSeconds {
		t.Fatalf("expected fallback duration %d, got %d", FallbackRevealSeconds, g.Remaining())
	}

	g.Play()
	for i := 0; i < FallbackRevealSeconds; i++ {
		g.Tick()
	}
	if !g.Revealed() {
		t.Fatal("gate must reveal within the fallback duration")
	}
}

func TestRevealGate_ProbedDurationUsed(t *testing.T) {
	g := NewRevealGateFromProbe(42)
	if g.Remaining() != 42 {
		t.Fatalf("expected probed duration 42, got %d", g.Remaining())
	}
}

func TestRevealGate_TicksBeforeDurationIgnored(t *testing.T) {
	g := NewRevealGate()
	g.Play()
	g.Tick()
	g.Tick()
	if g.Revealed() {
		t.Fatal("gate revealed before duration was resolved")
	}

	g.SetDuration(1)
	g.Tick()
	if !g.Revealed() {
		t.Fatal("expected reveal after resolved countdown elapsed")
	}
}
