// Package dictation drives the spoken entry of a case identifier.
//
// A [Machine] is the pure three-turn state machine: type, then number, then
// year. A [Protocol] runs it against a [Listener], prompting the visitor,
// echoing the partial identifier after every accepted turn and mapping
// recognition failures onto the package sentinels.
package dictation

import (
	"strings"

	"github.com/MrWong99/courtkiosk/pkg/caseid"
)

// State is a dictation state.
type State int

const (
	AwaitingType State = iota
	AwaitingNumber
	AwaitingYear
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingType:
		return "awaiting type"
	case AwaitingNumber:
		return "awaiting number"
	case AwaitingYear:
		return "awaiting year"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Kind returns the turn kind taken in s: "type", "number", "year" or "".
func (s State) Kind() string {
	switch s {
	case AwaitingType:
		return "type"
	case AwaitingNumber:
		return "number"
	case AwaitingYear:
		return "year"
	}
	return ""
}

// Done reports whether s is terminal.
func (s State) Done() bool { return s == Complete || s == Failed }

// MachineOption configures a [Machine].
type MachineOption func(*Machine)

// WithAttempts allows n attempts per turn for recoverable input errors.
// The default of 1 fails the protocol on the first bad answer.
func WithAttempts(n int) MachineOption {
	return func(m *Machine) {
		if n > 0 {
			m.attempts = n
		}
	}
}

// Machine is the three-turn dictation state machine. It is not safe for
// concurrent use; turns are strictly sequential.
type Machine struct {
	vocab    *caseid.Vocabulary
	lang     caseid.Language
	attempts int

	state State
	used  int
	id    caseid.Identifier
	err   error
}

// NewMachine returns a machine in [AwaitingType]. Numbers and years are
// normalised with the numerals of lang.
func NewMachine(v *caseid.Vocabulary, lang caseid.Language, opts ...MachineOption) *Machine {
	m := &Machine{vocab: v, lang: lang, attempts: 1}
	for _, o := range opts {
		o(m)
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Identifier returns the identifier assembled so far. It is only final once
// the state is [Complete].
func (m *Machine) Identifier() caseid.Identifier { return m.id }

// Partial renders the identifier assembled so far: "CWP", "CWP-1234" or
// "CWP-1234-2023".
func (m *Machine) Partial() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.id.Type, m.id.Number, m.id.Year} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}

// Err returns the error that moved the machine to [Failed].
func (m *Machine) Err() error { return m.err }

// Apply consumes the transcript of one turn. On success the machine advances
// and nil is returned. On an input error a *TurnError is returned; the
// machine stays in the same state while attempts remain and moves to
// [Failed] otherwise.
func (m *Machine) Apply(transcript string) error {
	if m.state.Done() {
		return &TurnError{State: m.state, Err: ErrFinished}
	}

	var err error
	switch m.state {
	case AwaitingType:
		var t string
		if t, err = m.vocab.ResolveType(transcript); err == nil {
			m.id.Type = t
		}
	case AwaitingNumber:
		var n string
		if n, err = caseid.NormalizeNumber(transcript, m.lang); err == nil {
			m.id.Number = n
		}
	case AwaitingYear:
		var y string
		if y, err = caseid.NormalizeYear(transcript, m.lang); err == nil {
			m.id.Year = y
		}
	}
	if err != nil {
		return m.Reject(err)
	}
	m.state++
	m.used = 0
	return nil
}

// Reject records a failed attempt at the current turn for a reason other
// than a bad transcript, such as unrecognized speech. Non-recoverable
// errors fail the machine immediately.
func (m *Machine) Reject(err error) error {
	if m.state.Done() {
		return &TurnError{State: m.state, Err: ErrFinished}
	}
	te := &TurnError{State: m.state, Err: err}
	m.used++
	if !Recoverable(err) || m.used >= m.attempts {
		m.state = Failed
		m.err = te
	}
	return te
}

// Abort moves the machine to [Failed]. The partial identifier is kept for
// diagnostics but must not be looked up.
func (m *Machine) Abort(err error) error {
	te := &TurnError{State: m.state, Err: err}
	if !m.state.Done() {
		m.state = Failed
		m.err = te
	}
	return te
}
