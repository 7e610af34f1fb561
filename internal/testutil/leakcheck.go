// Package testutil provides testing utilities for the MoleBeat application.
package testutil

import (
	"testing"

	"go.uber.org/goleak"
)

// VerifyNoLeaks should be deferred at the start of tests that spawn goroutines.
// It verifies that no goroutines were leaked during the test.
func VerifyNoLeaks(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	goleak.VerifyNone(t, opts...)
}

// VerifyNoLeaksOnCleanup registers the leak check as the first test cleanup,
// so it runs after cleanups registered later by helpers that stop services.
// Call it at the top of the test, before any helper.
func VerifyNoLeaksOnCleanup(t *testing.T, opts ...goleak.Option) {
	t.Helper()
	t.Cleanup(func() {
		goleak.VerifyNone(t, opts...)
	})
}

// IgnoreSpeakerGoroutines returns goleak options to ignore the audio output
// goroutines, which live for the whole process once the device is opened.
// Use this when testing components that drive the real audio engine.
func IgnoreSpeakerGoroutines() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreAnyFunction("github.com/faiface/beep/speaker.Init.func1"),
		goleak.IgnoreAnyFunction("github.com/hajimehoshi/oto.newDriver.func1"),
	}
}
