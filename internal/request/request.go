// Package request defines the canonical re-issuable command that flows from
// the converter through the dispatcher to the worker pool.
package request

import "bytes"

// Request is a verb plus its ordered argument list, ready to be pipelined
// against a target connection. Equality is by byte content, not identity.
type Request struct {
	Verb string
	Args [][]byte
}

// New builds a Request from a verb and a set of string arguments.
func New(verb string, args ...string) Request {
	bs := make([][]byte, len(args))
	for i, a := range args {
		bs[i] = []byte(a)
	}
	return Request{Verb: verb, Args: bs}
}

// NewBytes builds a Request from a verb and pre-encoded byte arguments.
func NewBytes(verb string, args ...[]byte) Request {
	return Request{Verb: verb, Args: args}
}

// Key returns the request's routing key: the first argument after the verb.
// Returns false if the request carries no arguments (a bare verb like EXEC).
func (r Request) Key() ([]byte, bool) {
	if len(r.Args) == 0 {
		return nil, false
	}
	return r.Args[0], true
}

// Equal compares two requests by verb and byte-exact argument content.
func (r Request) Equal(other Request) bool {
	if r.Verb != other.Verb || len(r.Args) != len(other.Args) {
		return false
	}
	for i := range r.Args {
		if !bytes.Equal(r.Args[i], other.Args[i]) {
			return false
		}
	}
	return true
}

// StringArgs renders the argument list as strings, for logging.
func (r Request) StringArgs() []string {
	out := make([]string, len(r.Args))
	for i, a := range r.Args {
		out[i] = string(a)
	}
	return out
}
