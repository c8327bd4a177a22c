package dictation

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrWong99/courtkiosk/pkg/caseid"
	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
)

// Recognition failures, as reported to the visitor.
var (
	ErrNoSpeechDetected              = errors.New("dictation: no speech detected")
	ErrUnrecognizedSpeech            = errors.New("dictation: speech not recognized")
	ErrRecognitionServiceUnavailable = errors.New("dictation: recognition service unavailable")

	// ErrFinished is returned when a turn is applied after the protocol
	// reached Complete or Failed.
	ErrFinished = errors.New("dictation: protocol already finished")
)

// TurnError reports the failure of one turn. Err wraps one of this package's
// sentinels or a caseid sentinel such as [caseid.ErrInvalidCaseType].
type TurnError struct {
	// State is the state the turn was taken in.
	State State
	Err   error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("dictation: %s: %v", e.State, e.Err)
}

func (e *TurnError) Unwrap() error { return e.Err }

// Recoverable reports whether err is an input error the visitor can fix by
// repeating the turn, as opposed to a timeout or a service outage.
func Recoverable(err error) bool {
	switch {
	case errors.Is(err, ErrUnrecognizedSpeech),
		errors.Is(err, caseid.ErrInvalidCaseType),
		errors.Is(err, caseid.ErrInvalidCaseNumber),
		errors.Is(err, caseid.ErrInvalidCaseYear),
		errors.Is(err, caseid.ErrMalformedCombinedIdentifier):
		return true
	}
	return false
}

// classifyListen maps a listener failure onto the recognition sentinels.
// Unknown failures count as the service being unavailable.
func classifyListen(err error) error {
	switch {
	case errors.Is(err, stt.ErrNoSpeech), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrNoSpeechDetected, err)
	case errors.Is(err, stt.ErrUnrecognized):
		return fmt.Errorf("%w: %w", ErrUnrecognizedSpeech, err)
	default:
		return fmt.Errorf("%w: %w", ErrRecognitionServiceUnavailable, err)
	}
}

// Message returns the short English status line shown for err.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNoSpeechDetected):
		return "I did not hear anything."
	case errors.Is(err, ErrUnrecognizedSpeech):
		return "Sorry, I could not understand the audio."
	case errors.Is(err, ErrRecognitionServiceUnavailable):
		return "Could not request results from the speech recognition service."
	case errors.Is(err, caseid.ErrInvalidCaseType):
		return "Unrecognized case type."
	case errors.Is(err, caseid.ErrInvalidCaseNumber):
		return "Invalid case number."
	case errors.Is(err, caseid.ErrInvalidCaseYear):
		return "Invalid year."
	case errors.Is(err, caseid.ErrMalformedCombinedIdentifier):
		return "Invalid case ID format."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	}
	return "An error occurred."
}
