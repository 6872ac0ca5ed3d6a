package practice

import (
	prac "github.com/repeatio/examweb/internal/practice"
)

// startedMsg is sent when the practice run has been loaded or created.
type startedMsg struct {
	Session *prac.Session
	Err     error
}

// autoAdvanceMsg fires after the auto-advance delay following a correct
// answer. Session and Token identify the run and question it was scheduled
// for; a tick reaching any other run is dropped.
type autoAdvanceMsg struct {
	Session *prac.Session
	Token   uint64
}

// restartConfirmedMsg is sent when the learner confirms a restart.
type restartConfirmedMsg struct{}

// restartCancelledMsg is sent when the learner backs out of a restart.
type restartCancelledMsg struct{}
