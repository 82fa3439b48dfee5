package fetch

import (
	"errors"
	"sync"
)

// ErrCanceled is observed by whoever awaits a fetch whose token was canceled.
// It marks a superseded request, not a failure.
var ErrCanceled = errors.New("fetch canceled")

// Token is a one-shot cancellation signal shared between the controller and
// the goroutine awaiting a fetch.
type Token struct {
	once sync.Once
	done chan struct{}
}

// NewToken returns an armed token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel fires the token. Calling it more than once is harmless.
func (t *Token) Cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.done) })
}

// Done is closed once the token is canceled. A nil token never fires.
func (t *Token) Done() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.done
}

// Err returns ErrCanceled after Cancel, nil before.
func (t *Token) Err() error {
	if t == nil {
		return nil
	}
	select {
	case <-t.done:
		return ErrCanceled
	default:
		return nil
	}
}

// Await runs fn and returns its result, or ErrCanceled as soon as t fires,
// whichever comes first. fn keeps running after cancellation; its result is
// discarded.
func Await[T any](t *Token, fn func() (T, error)) (T, error) {
	type outcome struct {
		v   T
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		v, err := fn()
		ch <- outcome{v: v, err: err}
	}()

	select {
	case o := <-ch:
		return o.v, o.err
	case <-t.Done():
		var zero T
		return zero, ErrCanceled
	}
}
