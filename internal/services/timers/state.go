package timers

import (
	"time"

	"github.com/JorgeSaicoski/timekeeper/internal/db"
)

// State is the lifecycle position of the open timer of one owner+category.
type State int

const (
	StateAbsent  State = iota // no open time log
	StateRunning              // open, StartTime set
	StatePaused               // open, StartTime nil
	StateClosed               // EndTime set; terminal
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Command is a client request against a timer.
type Command int

const (
	CommandStart Command = iota
	CommandPause
	CommandResume
	CommandStop
)

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandStop:
		return "stop"
	default:
		return "unknown"
	}
}

// StateOf classifies a time log. A nil log is Absent.
func StateOf(log *db.TimeLog) State {
	switch {
	case log == nil:
		return StateAbsent
	case log.EndTime != nil:
		return StateClosed
	case log.StartTime != nil:
		return StateRunning
	default:
		return StatePaused
	}
}

// transitions maps each command to the states it accepts and the state it
// leads to. Any pair not listed is rejected.
var transitions = map[Command]map[State]State{
	CommandStart:  {StateAbsent: StateRunning},
	CommandPause:  {StateRunning: StatePaused},
	CommandResume: {StatePaused: StateRunning},
	CommandStop:   {StateRunning: StateClosed, StatePaused: StateClosed},
}

// Next returns the state reached by applying cmd in state, or the error the
// caller should see when the pair is not allowed.
func Next(state State, cmd Command, category db.Category) (State, error) {
	if next, ok := transitions[cmd][state]; ok {
		return next, nil
	}
	switch cmd {
	case CommandStart:
		return state, conflictError(category)
	case CommandPause:
		return state, noRunningError(category)
	case CommandResume:
		return state, noPausedError(category)
	default:
		return state, noActiveError(category)
	}
}

// bank moves the running interval into AccumulatedSeconds and clears
// StartTime. It is a no-op on a log that is not running.
func bank(log *db.TimeLog, now time.Time) {
	if log.StartTime == nil {
		return
	}
	log.AccumulatedSeconds += elapsedSeconds(*log.StartTime, now)
	log.StartTime = nil
}

func applyPause(log *db.TimeLog, now time.Time) {
	bank(log, now)
	log.UpdatedAt = now
}

func applyResume(log *db.TimeLog, now time.Time) {
	started := now
	log.StartTime = &started
	log.UpdatedAt = now
}

func applyStop(log *db.TimeLog, now time.Time, in StopInput) {
	bank(log, now)
	ended := now
	log.EndTime = &ended
	log.CompletionStatus = in.CompletionStatus
	if in.Description != "" {
		desc := in.Description
		log.WorkDescription = &desc
	}
	log.UpdatedAt = now
}
