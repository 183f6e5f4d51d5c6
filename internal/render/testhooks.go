package render

import (
	"context"

	"lapsync/internal/config"
	"lapsync/internal/preflight"
)

// runPreflight is the check runner used before a render starts.
// It is a package-level variable so tests can override it.
var runPreflight = preflight.RunAll

// SetPreflightForTests overrides the preflight runner during tests.
func SetPreflightForTests(fn func(context.Context, *config.Config, preflight.Inputs) []preflight.Result) func() {
	previous := runPreflight
	runPreflight = fn
	return func() {
		runPreflight = previous
	}
}
