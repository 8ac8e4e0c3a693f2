package mocks

import (
	"time"
)

// DoneToken is an mqtt.Token that has already completed with the given error.
type DoneToken struct {
	Err error
}

// NewDoneToken returns a completed token.
func NewDoneToken(err error) *DoneToken {
	return &DoneToken{Err: err}
}

func (t *DoneToken) Wait() bool                     { return true }
func (t *DoneToken) WaitTimeout(time.Duration) bool { return true }
func (t *DoneToken) Error() error                   { return t.Err }

func (t *DoneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
