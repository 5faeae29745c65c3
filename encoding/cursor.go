package encoding

import (
	"iter"

	"github.com/illuscio-dev/wxftools-go/wxftypes"
)

// Cursor pulls a token stream one token at a time, for consumers that cannot be
// written as a range loop. Abandoning a cursor before the end of the stream is safe
// as long as Close is called.
//
//	cursor := chain.Cursor(value)
//	defer cursor.Close()
//	for cursor.Next() {
//		write(cursor.Token())
//	}
//	if err := cursor.Err(); err != nil {
//		...
//	}
type Cursor struct {
	next  func() (wxftypes.Token, error, bool)
	stop  func()
	token wxftypes.Token
	err   error
	done  bool
}

// NewCursor returns a cursor over stream.
func NewCursor(stream Stream) *Cursor {
	next, stop := iter.Pull2(stream)
	return &Cursor{next: next, stop: stop}
}

// Cursor returns a cursor over the token stream for value.
func (chain *Chain) Cursor(value interface{}) *Cursor {
	return NewCursor(chain.ProvideTokens(value))
}

// Next advances to the next token. It returns false at the end of the stream or on
// the first error, which is then available from Err.
func (cursor *Cursor) Next() bool {
	if cursor.done {
		return false
	}

	token, err, ok := cursor.next()
	if !ok || err != nil {
		cursor.err = err
		cursor.token = wxftypes.Token{}
		cursor.Close()
		return false
	}

	cursor.token = token
	return true
}

// Token returns the token Next advanced to.
func (cursor *Cursor) Token() wxftypes.Token {
	return cursor.token
}

// Err returns the error that ended the stream, if any.
func (cursor *Cursor) Err() error {
	return cursor.err
}

// Close releases the underlying stream. It is safe to call more than once.
func (cursor *Cursor) Close() {
	if cursor.done {
		return
	}
	cursor.done = true
	cursor.stop()
}
