package game

import (
	"sync"
	"time"

	"sprinttap/internal/config"
	"sprinttap/internal/events"
)

type State string

const (
	StateIdle          State = "IDLE"
	StateCountdown     State = "COUNTDOWN"
	StateWaiting       State = "WAITING"
	StateReady         State = "READY"
	StateTapDetected   State = "TAP_DETECTED"
	StateRoundComplete State = "ROUND_COMPLETE"
	StateGameComplete  State = "GAME_COMPLETE"
	StateFailed        State = "FAILED"
)

type Event string

const (
	EventStart         Event = "start"
	EventCountdownDone Event = "countdown_done"
	EventStimulus      Event = "stimulus"
	EventTap           Event = "tap"
	EventTimeout       Event = "timeout"
	EventAdvance       Event = "advance"
	EventNextRound     Event = "next_round"
	EventAbort         Event = "abort"
)

// Effect is a directive the transition function hands back to the driver
// instead of performing timer or persistence work inline.
type Effect int

const (
	EffectScheduleCountdown Effect = iota
	EffectScheduleStimulus
	EffectScheduleTimeout
	EffectScheduleAdvance
	EffectScheduleNextRound
	EffectRecordEarlyTap
	EffectRecordReaction
	EffectRecordTimeout
	EffectFinalize
)

// Progress is the slice of trial state the transition function needs
// beyond the current State.
type Progress struct {
	Recorded int // attempts recorded so far
	Total    int // configured round count
	Valid    int // valid attempts so far
}

// Transition maps (state, event) to the next state and the effects to
// execute. Events that make no sense in the current state leave it
// unchanged with no effects; that is what makes stale timer callbacks and
// taps in the wrong phase harmless.
func Transition(s State, ev Event, p Progress) (State, []Effect) {
	if ev == EventAbort {
		switch s {
		case StateIdle, StateGameComplete:
			return s, nil
		}
		return StateFailed, []Effect{EffectFinalize}
	}

	switch s {
	case StateIdle:
		if ev == EventStart {
			return StateCountdown, []Effect{EffectScheduleCountdown}
		}
	case StateCountdown:
		// Taps during the countdown are ignored.
		if ev == EventCountdownDone {
			return StateWaiting, []Effect{EffectScheduleStimulus}
		}
	case StateWaiting:
		switch ev {
		case EventTap:
			// Early is binary: the round fails with a zero reaction time
			// no matter how close the stimulus was.
			return StateFailed, []Effect{EffectRecordEarlyTap, EffectScheduleAdvance}
		case EventStimulus:
			return StateReady, []Effect{EffectScheduleTimeout}
		}
	case StateReady:
		switch ev {
		case EventTap:
			return StateTapDetected, []Effect{EffectRecordReaction, EffectScheduleAdvance}
		case EventTimeout:
			return StateFailed, []Effect{EffectRecordTimeout, EffectScheduleAdvance}
		}
	case StateTapDetected, StateFailed:
		if ev == EventAdvance {
			if p.Recorded >= p.Total {
				if p.Valid == 0 {
					return StateFailed, []Effect{EffectFinalize}
				}
				return StateGameComplete, []Effect{EffectFinalize}
			}
			return StateRoundComplete, []Effect{EffectScheduleNextRound}
		}
	case StateRoundComplete:
		if ev == EventNextRound {
			return StateWaiting, []Effect{EffectScheduleStimulus}
		}
	}
	return s, nil
}

// Finalizer receives the finished round sequence. The machine guarantees
// it runs at most once per game, no matter how completion was reached.
type Finalizer func(attempts []Attempt, completed bool)

// Machine drives one game of rounds: it owns the attempt list, the clock
// and the current state, and serializes every event through one mutex.
type Machine struct {
	mu        sync.Mutex
	cfg       config.Game
	validator Validator
	clock     *Clock
	bus       *events.Bus
	finalizer Finalizer

	state     State
	attempts  []Attempt
	readyAt   time.Time
	paused    bool
	finalized bool
}

func NewMachine(cfg config.Game, bus *events.Bus, finalizer Finalizer) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Machine{
		cfg:       cfg,
		validator: NewValidator(cfg),
		clock:     NewClock(),
		bus:       bus,
		finalizer: finalizer,
		state:     StateIdle,
	}, nil
}

func (m *Machine) Start() { m.dispatch(EventStart) }
func (m *Machine) Tap()   { m.dispatch(EventTap) }

// Stop aborts the game; the session is finalized as incomplete. Safe to
// call concurrently with a round timer reaching completion.
func (m *Machine) Stop() { m.dispatch(EventAbort) }

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Attempts() []Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Attempt(nil), m.attempts...)
}

// Pause cancels every pending timer without losing which phase was
// active. Resume schedules fresh delays rather than resuming partially
// elapsed ones.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalized || m.state == StateIdle || m.state == StateGameComplete {
		return
	}
	m.paused = true
	m.clock.CancelAll()
}

func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.paused {
		return
	}
	m.paused = false
	switch m.state {
	case StateCountdown:
		m.apply(EffectScheduleCountdown)
	case StateWaiting, StateReady:
		// Re-enter waiting with a fresh random delay; resuming the old
		// timer would leak how much of the delay had elapsed.
		m.state = StateWaiting
		m.publishState()
		m.apply(EffectScheduleStimulus)
	case StateTapDetected, StateFailed:
		m.apply(EffectScheduleAdvance)
	case StateRoundComplete:
		m.apply(EffectScheduleNextRound)
	}
}

type finalization struct {
	attempts  []Attempt
	completed bool
}

func (m *Machine) dispatch(ev Event) {
	m.mu.Lock()
	fin := m.step(ev)
	m.mu.Unlock()
	// The finalizer runs outside the lock so it can call back into the
	// machine or block on IO.
	if fin != nil && m.finalizer != nil {
		m.finalizer(fin.attempts, fin.completed)
	}
}

func (m *Machine) step(ev Event) *finalization {
	if m.finalized {
		return nil
	}
	if m.paused && ev != EventAbort {
		return nil
	}

	next, effects := Transition(m.state, ev, m.progress())
	if next == m.state && len(effects) == 0 {
		return nil
	}

	// Whichever of tap and timeout wins, the loser's timer dies now;
	// state checks alone are not enough once a callback is in flight.
	if ev == EventTap || ev == EventTimeout {
		m.clock.Cancel(PhaseStimulus)
		m.clock.Cancel(PhaseTimeout)
	}

	m.state = next
	m.publishState()

	var fin *finalization
	for _, ef := range effects {
		if ef == EffectFinalize {
			fin = m.finalizeOnce()
			continue
		}
		m.apply(ef)
	}
	return fin
}

func (m *Machine) progress() Progress {
	valid := 0
	for _, a := range m.attempts {
		if a.Valid {
			valid++
		}
	}
	return Progress{Recorded: len(m.attempts), Total: m.cfg.TotalRounds, Valid: valid}
}

func (m *Machine) apply(ef Effect) {
	switch ef {
	case EffectScheduleCountdown:
		m.clock.Schedule(PhaseCountdown, m.ms(m.cfg.CountdownMs), func() {
			m.dispatch(EventCountdownDone)
		})
	case EffectScheduleStimulus:
		delay := RandomWaitDelay(m.cfg.MinWaitMs, m.cfg.MaxWaitMs)
		m.clock.Schedule(PhaseStimulus, m.ms(delay), func() {
			m.dispatch(EventStimulus)
		})
	case EffectScheduleTimeout:
		m.readyAt = time.Now()
		m.clock.Schedule(PhaseTimeout, m.ms(m.cfg.ReadyTimeoutMs), func() {
			m.dispatch(EventTimeout)
		})
	case EffectScheduleAdvance:
		m.clock.Schedule(PhaseAdvance, m.ms(m.cfg.ResultDisplayMs), func() {
			m.dispatch(EventAdvance)
		})
	case EffectScheduleNextRound:
		m.clock.Schedule(PhaseAdvance, m.ms(m.cfg.RoundDelayMs), func() {
			m.dispatch(EventNextRound)
		})
	case EffectRecordEarlyTap:
		m.record(0, false)
	case EffectRecordReaction:
		elapsed := int(time.Since(m.readyAt).Milliseconds())
		m.record(elapsed, m.validator.OK(elapsed))
	case EffectRecordTimeout:
		m.record(m.cfg.ReadyTimeoutMs, false)
	}
}

func (m *Machine) record(reactionMs int, valid bool) {
	a := NewAttempt(len(m.attempts)+1, reactionMs, valid)
	m.attempts = append(m.attempts, a)
	if m.bus != nil {
		m.bus.PublishRound(events.RoundResultEvent{
			Number:     a.Number,
			ReactionMs: a.ReactionMs,
			Valid:      a.Valid,
		})
	}
}

// finalizeOnce is the one-shot guard for game completion: the round timer
// path and a manual Stop can race here, but only the first caller gets a
// finalization back.
func (m *Machine) finalizeOnce() *finalization {
	if m.finalized {
		return nil
	}
	m.finalized = true
	m.clock.CancelAll()
	return &finalization{
		attempts:  append([]Attempt(nil), m.attempts...),
		completed: len(m.attempts) >= m.cfg.TotalRounds,
	}
}

func (m *Machine) publishState() {
	if m.bus != nil {
		m.bus.PublishState(events.StateChangeEvent{
			State: string(m.state),
			Round: len(m.attempts),
		})
	}
}

func (m *Machine) ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
