package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultListenTimeout bounds a single capture when none is configured.
const DefaultListenTimeout = 8 * time.Second

// Listener captures one utterance and transcribes it.
type Listener struct {
	capturer   Capturer
	recognizer Recognizer
	timeout    time.Duration
	onStart    func()
	onEnd      func()
}

// ListenerOption configures a [Listener].
type ListenerOption func(*Listener)

// WithTimeout bounds every capture. Defaults to [DefaultListenTimeout].
func WithTimeout(d time.Duration) ListenerOption {
	return func(l *Listener) { l.timeout = d }
}

// WithCues registers callbacks run when recording starts and ends, typically
// the listening chime.
func WithCues(start, end func()) ListenerOption {
	return func(l *Listener) {
		l.onStart = start
		l.onEnd = end
	}
}

// NewListener returns a Listener over c and r.
func NewListener(c Capturer, r Recognizer, opts ...ListenerOption) *Listener {
	l := &Listener{capturer: c, recognizer: r, timeout: DefaultListenTimeout}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Listen records one utterance and returns its transcript. A capture that
// hits ctx's deadline is reported as [ErrNoSpeech]; an empty transcript as
// [ErrUnrecognized].
func (l *Listener) Listen(ctx context.Context, language string) (string, error) {
	if l.onStart != nil {
		l.onStart()
	}
	c, err := l.capturer.Capture(ctx, l.timeout)
	if l.onEnd != nil {
		l.onEnd()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", ErrNoSpeech, err)
		}
		return "", fmt.Errorf("stt: capture: %w", err)
	}
	text, err := l.recognizer.Recognize(ctx, c, language)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}
