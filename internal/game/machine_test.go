package game

import (
	"sync"
	"testing"
	"time"

	"sprinttap/internal/config"
	"sprinttap/internal/events"
)

func fastConfig() config.Game {
	return config.Game{
		TotalRounds:        3,
		MinWaitMs:          1,
		MaxWaitMs:          5,
		CountdownMs:        1,
		ReadyTimeoutMs:     300,
		RoundDelayMs:       1,
		ResultDisplayMs:    1,
		HumanMinReactionMs: 0,
		HumanMaxReactionMs: 2000,
	}
}

func waitForState(t *testing.T, bus *events.Bus, want State) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-bus.StateChanges:
			if ev.State == string(want) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", want)
		}
	}
}

func effectsEqual(a, b []Effect) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTransition(t *testing.T) {
	mid := Progress{Recorded: 1, Total: 3, Valid: 1}
	doneValid := Progress{Recorded: 3, Total: 3, Valid: 2}
	doneInvalid := Progress{Recorded: 3, Total: 3, Valid: 0}

	tests := []struct {
		name        string
		state       State
		event       Event
		progress    Progress
		wantState   State
		wantEffects []Effect
	}{
		{"start", StateIdle, EventStart, Progress{}, StateCountdown, []Effect{EffectScheduleCountdown}},
		{"tap during countdown ignored", StateCountdown, EventTap, Progress{}, StateCountdown, nil},
		{"countdown elapses", StateCountdown, EventCountdownDone, Progress{}, StateWaiting, []Effect{EffectScheduleStimulus}},
		{"early tap fails round", StateWaiting, EventTap, mid, StateFailed, []Effect{EffectRecordEarlyTap, EffectScheduleAdvance}},
		{"stimulus", StateWaiting, EventStimulus, mid, StateReady, []Effect{EffectScheduleTimeout}},
		{"tap in time", StateReady, EventTap, mid, StateTapDetected, []Effect{EffectRecordReaction, EffectScheduleAdvance}},
		{"response timeout", StateReady, EventTimeout, mid, StateFailed, []Effect{EffectRecordTimeout, EffectScheduleAdvance}},
		{"advance mid-game", StateTapDetected, EventAdvance, Progress{Recorded: 2, Total: 3, Valid: 1}, StateRoundComplete, []Effect{EffectScheduleNextRound}},
		{"advance after last round", StateTapDetected, EventAdvance, doneValid, StateGameComplete, []Effect{EffectFinalize}},
		{"advance with no valid attempts", StateFailed, EventAdvance, doneInvalid, StateFailed, []Effect{EffectFinalize}},
		{"round delay elapses", StateRoundComplete, EventNextRound, mid, StateWaiting, []Effect{EffectScheduleStimulus}},
		{"stale timeout after tap", StateTapDetected, EventTimeout, mid, StateTapDetected, nil},
		{"stale stimulus after early tap", StateFailed, EventStimulus, mid, StateFailed, nil},
		{"tap after completion", StateGameComplete, EventTap, doneValid, StateGameComplete, nil},
		{"abort mid-round", StateWaiting, EventAbort, mid, StateFailed, []Effect{EffectFinalize}},
		{"abort when idle", StateIdle, EventAbort, Progress{}, StateIdle, nil},
		{"abort after completion", StateGameComplete, EventAbort, doneValid, StateGameComplete, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotState, gotEffects := Transition(tt.state, tt.event, tt.progress)
			if gotState != tt.wantState {
				t.Errorf("state = %s, want %s", gotState, tt.wantState)
			}
			if !effectsEqual(gotEffects, tt.wantEffects) {
				t.Errorf("effects = %v, want %v", gotEffects, tt.wantEffects)
			}
		})
	}
}

type finalizeRecorder struct {
	mu        sync.Mutex
	calls     int
	attempts  []Attempt
	completed bool
	done      chan struct{}
}

func newFinalizeRecorder() *finalizeRecorder {
	return &finalizeRecorder{done: make(chan struct{}, 4)}
}

func (f *finalizeRecorder) finalize(attempts []Attempt, completed bool) {
	f.mu.Lock()
	f.calls++
	f.attempts = attempts
	f.completed = completed
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *finalizeRecorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for finalization")
	}
}

func TestMachine_FullGame(t *testing.T) {
	bus := events.NewBus()
	rec := newFinalizeRecorder()
	m, err := NewMachine(fastConfig(), bus, rec.finalize)
	if err != nil {
		t.Fatalf("NewMachine() error: %v", err)
	}

	m.Start()
	for i := 0; i < 3; i++ {
		waitForState(t, bus, StateReady)
		m.Tap()
	}
	rec.wait(t)

	if m.State() != StateGameComplete {
		t.Errorf("state = %s, want %s", m.State(), StateGameComplete)
	}
	if len(rec.attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(rec.attempts))
	}
	if !rec.completed {
		t.Error("session should be completed")
	}
	for i, a := range rec.attempts {
		if a.Number != i+1 {
			t.Errorf("attempt %d has Number %d", i, a.Number)
		}
		if !a.Valid {
			t.Errorf("attempt %d should be valid with open human bounds", i+1)
		}
	}
}

func TestMachine_EarlyTapRecordsZero(t *testing.T) {
	cfg := fastConfig()
	cfg.TotalRounds = 1
	cfg.MinWaitMs = 100
	cfg.MaxWaitMs = 150

	bus := events.NewBus()
	rec := newFinalizeRecorder()
	m, err := NewMachine(cfg, bus, rec.finalize)
	if err != nil {
		t.Fatalf("NewMachine() error: %v", err)
	}

	m.Start()
	waitForState(t, bus, StateWaiting)
	m.Tap() // before the stimulus
	rec.wait(t)

	if len(rec.attempts) != 1 {
		t.Fatalf("attempts = %d, want 1", len(rec.attempts))
	}
	a := rec.attempts[0]
	if a.ReactionMs != 0 || a.Valid {
		t.Errorf("early tap attempt = {ReactionMs: %d, Valid: %v}, want {0, false}", a.ReactionMs, a.Valid)
	}
	if m.State() != StateFailed {
		t.Errorf("state = %s, want %s", m.State(), StateFailed)
	}
	if !rec.completed {
		t.Error("a game that ran all its rounds is completed even when every round failed")
	}
}

func TestMachine_TimeoutRecordsOneAttempt(t *testing.T) {
	cfg := fastConfig()
	cfg.TotalRounds = 1
	cfg.ReadyTimeoutMs = 20

	bus := events.NewBus()
	rec := newFinalizeRecorder()
	m, _ := NewMachine(cfg, bus, rec.finalize)

	m.Start()
	rec.wait(t)

	if len(rec.attempts) != 1 {
		t.Fatalf("attempts = %d, want exactly 1 per round", len(rec.attempts))
	}
	a := rec.attempts[0]
	if a.ReactionMs != cfg.ReadyTimeoutMs || a.Valid {
		t.Errorf("timeout attempt = {ReactionMs: %d, Valid: %v}, want {%d, false}", a.ReactionMs, a.Valid, cfg.ReadyTimeoutMs)
	}
}

func TestMachine_TapDuringCountdownIgnored(t *testing.T) {
	cfg := fastConfig()
	cfg.CountdownMs = 100

	bus := events.NewBus()
	m, _ := NewMachine(cfg, bus, nil)

	m.Start()
	m.Tap()

	if got := len(m.Attempts()); got != 0 {
		t.Errorf("attempts after countdown tap = %d, want 0", got)
	}
	if m.State() != StateCountdown {
		t.Errorf("state = %s, want %s", m.State(), StateCountdown)
	}
	m.Stop()
}

func TestMachine_FinalizeIsOneShot(t *testing.T) {
	bus := events.NewBus()
	rec := newFinalizeRecorder()
	m, _ := NewMachine(fastConfig(), bus, rec.finalize)

	m.Start()
	for i := 0; i < 3; i++ {
		waitForState(t, bus, StateReady)
		m.Tap()
	}
	rec.wait(t)

	// Both completion paths racing: the game already finished, now a
	// manual stop arrives twice.
	m.Stop()
	m.Stop()
	time.Sleep(20 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.calls != 1 {
		t.Errorf("finalizer ran %d times, want exactly 1", rec.calls)
	}
}

func TestMachine_AbortFinalizesIncomplete(t *testing.T) {
	cfg := fastConfig()
	cfg.MinWaitMs = 100
	cfg.MaxWaitMs = 150

	bus := events.NewBus()
	rec := newFinalizeRecorder()
	m, _ := NewMachine(cfg, bus, rec.finalize)

	m.Start()
	waitForState(t, bus, StateWaiting)
	m.Stop()
	rec.wait(t)

	if rec.completed {
		t.Error("aborted session must not be completed")
	}
	if m.State() != StateFailed {
		t.Errorf("state = %s, want %s", m.State(), StateFailed)
	}
}

func TestMachine_PauseCancelsTimers(t *testing.T) {
	cfg := fastConfig()
	cfg.MinWaitMs = 150
	cfg.MaxWaitMs = 200

	bus := events.NewBus()
	m, _ := NewMachine(cfg, bus, nil)

	m.Start()
	waitForState(t, bus, StateWaiting)
	m.Pause()

	// Well past the stimulus delay; nothing may fire while paused.
	time.Sleep(300 * time.Millisecond)
	if m.State() != StateWaiting {
		t.Fatalf("state while paused = %s, want %s", m.State(), StateWaiting)
	}

	// Taps while paused are ignored too.
	m.Tap()
	if got := len(m.Attempts()); got != 0 {
		t.Errorf("attempts recorded while paused = %d, want 0", got)
	}

	m.Resume()
	waitForState(t, bus, StateReady)
	m.Stop()
}
